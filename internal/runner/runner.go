// Package runner executes external commands (git, package managers, the content-build tool).
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/docversions/internal/logfields"
)

// ErrCommandFailed is matched by every *CommandError.
var ErrCommandFailed = errors.New("command failed")

// Command describes one external process invocation.
type Command struct {
	Dir  string
	Name string
	Args []string
	// Env is appended to the inherited process environment.
	Env []string
	// Stream attaches the child to the parent's stdout/stderr. Nothing is captured.
	Stream bool
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner runs commands synchronously.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// CommandError reports a command that could not start or exited non-zero.
type CommandError struct {
	Command  string
	Dir      string
	ExitCode int // -1 when the process never started
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }

// ExecRunner runs commands with os/exec. No timeout is applied; ctx cancellation kills the child.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExecRunner returns a runner streaming to the process's stdout and stderr.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, Logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	// #nosec G204 -- command lines come from configuration and fixed git invocations
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var buf bytes.Buffer
	if c.Stream {
		cmd.Stdin = os.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
	} else {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	r.Logger.Debug("Running command", logfields.Command(c.String()), logfields.Path(c.Dir))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	out := buf.Bytes()
	if err == nil {
		r.Logger.Debug("Command finished", logfields.Command(c.String()), logfields.Duration(elapsed))
		return out, nil
	}

	cmdErr := &CommandError{Command: c.String(), Dir: c.Dir, ExitCode: -1, Output: string(out), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	r.Logger.Debug("Command failed",
		logfields.Command(c.String()),
		logfields.Duration(elapsed),
		logfields.ExitCode(cmdErr.ExitCode),
		logfields.Error(err))
	return out, cmdErr
}
