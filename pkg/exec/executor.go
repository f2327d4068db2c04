// Package exec runs process.Command values.
// Resolution code only depends on the Executor interface so that tests can
// substitute scripted output for real processes.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"

	"github.com/systmms/secstream/pkg/process"
)

// Executor runs a command to completion and captures its output.
//
// A command that starts and exits non-zero is not an error: the exit code
// is reported in the returned Output. Errors are reserved for commands
// that could not be started or were interrupted by ctx.
type Executor interface {
	Run(ctx context.Context, cmd process.Command) (*process.Output, error)
}

// SpawnError reports a command that could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// OSExecutor runs Program commands with os/exec.
type OSExecutor struct{}

// Run executes cmd.Program directly. Shell commands are rejected.
func (o *OSExecutor) Run(ctx context.Context, cmd process.Command) (*process.Output, error) {
	if cmd.Program == "" {
		return nil, &SpawnError{Command: cmd.String(), Err: errors.New("no program to run")}
	}

	c := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	c.Dir = cmd.Dir
	if env := cmd.Environ(); env != nil {
		c.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := &process.Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return nil, &SpawnError{Command: cmd.Program, Err: err}
	}
	return out, nil
}

// ShellExecutor interprets Shell commands in-process with mvdan.cc/sh, so
// no system shell is required. External programs named by the line are
// still started through PATH lookup.
type ShellExecutor struct{}

// Run interprets cmd.Shell. Program commands are rejected.
func (s *ShellExecutor) Run(ctx context.Context, cmd process.Command) (*process.Output, error) {
	if cmd.Shell == "" {
		return nil, &SpawnError{Command: cmd.String(), Err: errors.New("no shell line to run")}
	}

	prog, err := process.ParseShell(cmd.Shell)
	if err != nil {
		return nil, &SpawnError{Command: cmd.Shell, Err: err}
	}

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(append(os.Environ(), cmd.Environ()...)...)),
		interp.StdIO(nil, &stdout, &stderr),
	}
	if cmd.Dir != "" {
		opts = append(opts, interp.Dir(cmd.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return nil, &SpawnError{Command: cmd.Shell, Err: err}
	}

	out := &process.Output{}
	err = runner.Run(ctx, prog)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitStatus interp.ExitStatus
		if !errors.As(err, &exitStatus) {
			return nil, &SpawnError{Command: firstWord(cmd.Shell), Err: err}
		}
		out.ExitCode = int(exitStatus)
	}

	out.Stdout = stdout.Bytes()
	out.Stderr = stderr.Bytes()
	return out, nil
}

// Dispatcher routes each command to the executor for its form.
type Dispatcher struct {
	Shell   Executor
	Program Executor
}

// Run implements Executor.
func (d *Dispatcher) Run(ctx context.Context, cmd process.Command) (*process.Output, error) {
	if err := cmd.Validate(); err != nil {
		return nil, &SpawnError{Command: cmd.String(), Err: err}
	}
	if cmd.Shell != "" {
		return d.Shell.Run(ctx, cmd)
	}
	return d.Program.Run(ctx, cmd)
}

// DefaultExecutor returns the standard production executor.
func DefaultExecutor() Executor {
	return &Dispatcher{Shell: &ShellExecutor{}, Program: &OSExecutor{}}
}

func firstWord(line string) string {
	if f := strings.Fields(line); len(f) > 0 {
		return f[0]
	}
	return line
}
