package process

import (
	"fmt"
	"time"
)

// stderrTail is the number of trailing stderr bytes kept.
const stderrTail = 4096

// Result holds the status of a completed subprocess.
type Result struct {
	// ExitCode is the process exit code. -1 if the process was killed.
	ExitCode int
	// Stderr holds the last bytes written to standard error.
	Stderr []byte
	// Duration is how long the process ran.
	Duration time.Duration
}

// ExitError reports a command that did not exit cleanly.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("process %q: exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("process %q: exit code %d: %v", e.Command, e.ExitCode, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte { return t.buf }
