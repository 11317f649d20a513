package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// CommandExecutor is an interface for executing system commands
type CommandExecutor interface {
	// Run executes a command to completion, streaming its output, and
	// returns the exit code. A non-nil error means the process could not
	// be started or was interrupted; a non-zero exit is not an error.
	Run(ctx context.Context, name string, args ...string) (int, error)

	// LookPath searches for an executable in the directories named by the PATH
	LookPath(file string) (string, error)
}

// SystemExecutor implements CommandExecutor using os/exec
type SystemExecutor struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewSystemExecutor creates a SystemExecutor bound to the process stdout/stderr
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts the command with no stdin and waits for it
func (e *SystemExecutor) Run(ctx context.Context, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// LookPath searches for an executable
func (e *SystemExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// MockExecutor is a mock implementation for testing
type MockExecutor struct {
	RunFunc      func(name string, args ...string) (int, error)
	LookPathFunc func(file string) (string, error)
	Calls        []CommandCall
}

// CommandCall records a command execution for verification
type CommandCall struct {
	Name string
	Args []string
}

// Run records the call and delegates to RunFunc
func (m *MockExecutor) Run(ctx context.Context, name string, args ...string) (int, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if m.RunFunc != nil {
		return m.RunFunc(name, args...)
	}
	return 0, nil
}

// LookPath calls the mock function
func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// CallsTo returns the recorded calls for the named command, in order
func (m *MockExecutor) CallsTo(name string) []CommandCall {
	var calls []CommandCall
	for _, c := range m.Calls {
		if c.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}
