package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/wtp/internal/log"
)

// Options configures a Shell invocation.
type Options struct {
	Dir     string
	Timeout time.Duration // zero means no timeout beyond ctx
}

// Result holds the captured output of a Shell invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Error is returned when a process exits non-zero or cannot be started.
type Error struct {
	Command string
	Stderr  string
	Err     error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RunContext executes a command in dir, discarding stdout.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := OutputContext(ctx, dir, name, args...)
	return err
}

// OutputContext executes a command in dir and returns stdout.
// On failure the error message is the command's stderr when it wrote any.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	done(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{
			Command: strings.TrimSpace(name + " " + strings.Join(args, " ")),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout.Bytes(), nil
}

// Shell runs command through sh -c and returns both output streams.
func Shell(ctx context.Context, opts Options, command string) (Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	done := log.FromContext(ctx).Command(opts.Dir, "sh", "-c", command)
	start := time.Now()

	c := exec.CommandContext(ctx, "sh", "-c", command)
	c.Dir = opts.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	done(time.Since(start))
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, &Error{Command: command, Stderr: strings.TrimSpace(res.Stderr), Err: err}
	}
	return res, nil
}
