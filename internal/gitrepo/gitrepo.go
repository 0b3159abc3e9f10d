// Package gitrepo brings freshly scaffolded extension directories under
// version control with a single initial commit.
package gitrepo

import (
	"fmt"
	"os/exec"
)

// InitialCommitMessage is the fixed message of the first commit in every
// scaffolded extension repository.
const InitialCommitMessage = "Initial commit"

// GitRunner is an interface for running git commands, allowing for testing with mocks
type GitRunner interface {
	Init(dir string) error
	SetConfig(dir, key, value string) error
	AddAll(dir string) error
	Commit(dir, message string) error
}

// execGitRunner implements GitRunner using exec.Command
type execGitRunner struct{}

// runGit runs one git subcommand inside dir, folding the combined output
// into the error so the diagnostic reaches the operator.
func runGit(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w, output: %s", args[0], err, string(output))
	}
	return nil
}

func (e *execGitRunner) Init(dir string) error {
	return runGit(dir, "init")
}

func (e *execGitRunner) SetConfig(dir, key, value string) error {
	return runGit(dir, "config", key, value)
}

func (e *execGitRunner) AddAll(dir string) error {
	return runGit(dir, "add", "-A")
}

func (e *execGitRunner) Commit(dir, message string) error {
	return runGit(dir, "commit", "-m", message)
}

// defaultGitRunner is the default GitRunner implementation
var defaultGitRunner GitRunner = &execGitRunner{}

// GetDefaultGitRunner returns the default GitRunner (exported for testing)
func GetDefaultGitRunner() GitRunner {
	return defaultGitRunner
}

// SetGitRunner sets the GitRunner implementation (used for testing)
func SetGitRunner(runner GitRunner) {
	defaultGitRunner = runner
}

// Initialize creates a repository rooted at dir, sets the local commit
// identity, stages every file, and creates the initial commit. When email is
// empty the identity email falls back to "<author>@localhost". Any failing
// step aborts the sequence; the directory is left as-is for the caller.
func Initialize(dir, author, email string) error {
	if email == "" {
		email = author + "@localhost"
	}

	if err := defaultGitRunner.Init(dir); err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	if err := defaultGitRunner.SetConfig(dir, "user.name", author); err != nil {
		return fmt.Errorf("failed to set commit identity name: %w", err)
	}
	if err := defaultGitRunner.SetConfig(dir, "user.email", email); err != nil {
		return fmt.Errorf("failed to set commit identity email: %w", err)
	}
	if err := defaultGitRunner.AddAll(dir); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	if err := defaultGitRunner.Commit(dir, InitialCommitMessage); err != nil {
		return fmt.Errorf("failed to create initial commit: %w", err)
	}

	return nil
}

// MockGitRunner is a mock implementation of GitRunner for testing
// It can be used across packages to test code that depends on GitRunner
type MockGitRunner struct {
	InitErr      error
	SetConfigErr error
	AddAllErr    error
	CommitErr    error

	InitCalls      []string
	SetConfigCalls []struct{ Dir, Key, Value string }
	AddAllCalls    []string
	CommitCalls    []struct{ Dir, Message string }

	InitFunc      func(dir string) error
	SetConfigFunc func(dir, key, value string) error
	AddAllFunc    func(dir string) error
	CommitFunc    func(dir, message string) error
}

func (m *MockGitRunner) Init(dir string) error {
	m.InitCalls = append(m.InitCalls, dir)
	if m.InitFunc != nil {
		return m.InitFunc(dir)
	}
	return m.InitErr
}

func (m *MockGitRunner) SetConfig(dir, key, value string) error {
	m.SetConfigCalls = append(m.SetConfigCalls, struct{ Dir, Key, Value string }{dir, key, value})
	if m.SetConfigFunc != nil {
		return m.SetConfigFunc(dir, key, value)
	}
	return m.SetConfigErr
}

func (m *MockGitRunner) AddAll(dir string) error {
	m.AddAllCalls = append(m.AddAllCalls, dir)
	if m.AddAllFunc != nil {
		return m.AddAllFunc(dir)
	}
	return m.AddAllErr
}

func (m *MockGitRunner) Commit(dir, message string) error {
	m.CommitCalls = append(m.CommitCalls, struct{ Dir, Message string }{dir, message})
	if m.CommitFunc != nil {
		return m.CommitFunc(dir, message)
	}
	return m.CommitErr
}

// Interface guard
var _ GitRunner = &MockGitRunner{}
