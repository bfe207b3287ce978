package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Run executes cmd with stdin and stdout attached and waits for it to exit.
// Either stream may be nil. If ctx is canceled, SIGTERM is sent to the
// process group first, then SIGKILL after the grace period.
func Run(ctx context.Context, cmd Command, stdin io.Reader, stdout io.Writer) (*Result, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = DefaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)
	c.Stdin = stdin
	c.Stdout = stdout

	stderr := &tailBuffer{max: stderrTail}
	c.Stderr = stderr

	// process group so the whole tree is signalled
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()

	result := &Result{
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if c.ProcessState != nil {
		result.ExitCode = c.ProcessState.ExitCode()
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("process %q: killed by context: %w", cmd.String(), ctx.Err())
		}
		return result, &ExitError{
			Command:  cmd.String(),
			ExitCode: result.ExitCode,
			Stderr:   string(bytes.TrimSpace(result.Stderr)),
			Err:      err,
		}
	}
	return result, nil
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
