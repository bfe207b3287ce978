package process

import (
	"strings"
	"time"

	"github.com/kbukum/flowkit/validation"
)

// DefaultGracePeriod is the delay between SIGTERM and SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to DefaultGracePeriod if zero.
	GracePeriod time.Duration
}

// Validate checks the command before it is started.
func (c Command) Validate() error {
	return validation.New().
		Required("binary", c.Binary).
		NotNegative("grace_period", c.GracePeriod).
		Validate()
}

// String returns the command line.
func (c Command) String() string {
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}
