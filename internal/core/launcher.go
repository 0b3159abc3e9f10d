package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// CommandRunner is an interface for running commands, allowing for testing with mocks
type CommandRunner interface {
	CommandContext(ctx context.Context, name string, arg ...string) Command
}

// Command is an interface for exec.Cmd, allowing for testing with mocks
type Command interface {
	StdoutPipe() (io.ReadCloser, error)
	StderrPipe() (io.ReadCloser, error)
	Start() error
	Wait() error
}

// execCommand wraps exec.Cmd to implement Command interface
type execCommand struct {
	*exec.Cmd
}

// Explicitly forward methods from *exec.Cmd to satisfy the Command interface
// (even though they're already available through embedding, this makes it explicit for the linter)
func (e *execCommand) Start() error {
	return e.Cmd.Start()
}

func (e *execCommand) Wait() error {
	return e.Cmd.Wait()
}

func (e *execCommand) StdoutPipe() (io.ReadCloser, error) {
	return e.Cmd.StdoutPipe()
}

func (e *execCommand) StderrPipe() (io.ReadCloser, error) {
	return e.Cmd.StderrPipe()
}

// Interface guard for execCommand
var _ Command = &execCommand{}

// execCommandRunner wraps exec.CommandContext to implement CommandRunner
type execCommandRunner struct{}

func (e *execCommandRunner) CommandContext(ctx context.Context, name string, arg ...string) Command {
	return &execCommand{Cmd: exec.CommandContext(ctx, name, arg...)}
}

// Interface guard for execCommandRunner
var _ CommandRunner = &execCommandRunner{}

// Launcher runs external programs with an argument vector (never a shell
// string) and captures their outcome.
type Launcher struct {
	timeout       time.Duration
	clock         clockwork.Clock
	commandRunner CommandRunner
}

// NewLauncher creates a launcher with a real clock. timeoutSeconds of 0
// disables the deadline, leaving the external program to run indefinitely.
func NewLauncher(timeoutSeconds int) *Launcher {
	return NewLauncherWithClock(timeoutSeconds, clockwork.NewRealClock())
}

// NewLauncherWithClock creates a launcher with a custom clock.
// This is useful for testing with a fake clock.
func NewLauncherWithClock(timeoutSeconds int, clock clockwork.Clock) *Launcher {
	return &Launcher{
		timeout:       time.Duration(timeoutSeconds) * time.Second,
		clock:         clock,
		commandRunner: &execCommandRunner{},
	}
}

// NewLauncherWithClockAndRunner creates a launcher with a custom clock and
// command runner, for testing with mocked command execution.
func NewLauncherWithClockAndRunner(timeoutSeconds int, clock clockwork.Clock, runner CommandRunner) *Launcher {
	return &Launcher{
		timeout:       time.Duration(timeoutSeconds) * time.Second,
		clock:         clock,
		commandRunner: runner,
	}
}

// LaunchResult represents the outcome of launching an external program
type LaunchResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Error    error  `json:"-"`
}

// Launch runs the named program with the given arguments and waits for it to
// exit, capturing stdout and stderr.
func (l *Launcher) Launch(ctx context.Context, name string, args []string) (*LaunchResult, error) {
	cancel := func() {}
	if l.timeout > 0 {
		ctx, cancel = clockwork.WithTimeout(ctx, l.clock, l.timeout)
	}
	defer cancel()

	cmd := l.commandRunner.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	var stdoutBuf, stderrBuf strings.Builder
	done := make(chan error, 2)

	go func() {
		_, copyErr := io.Copy(&stdoutBuf, stdout)
		done <- copyErr
	}()

	go func() {
		_, copyErr := io.Copy(&stderrBuf, stderr)
		done <- copyErr
	}()

	// Wait for output reading to complete
	<-done
	<-done

	err = cmd.Wait()

	result := &LaunchResult{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: 0,
	}

	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			result.ExitCode = exitError.ExitCode()
		} else {
			result.Error = err
			return result, err
		}
	}

	if ctx.Err() == context.DeadlineExceeded {
		result.Error = fmt.Errorf("external program timed out after %v", l.timeout)
		return result, result.Error
	}

	return result, nil
}
