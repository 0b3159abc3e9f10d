package gitrepo

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMockRunner swaps in a mock for the duration of one test.
func withMockRunner(t *testing.T, mock *MockGitRunner) {
	t.Helper()
	original := GetDefaultGitRunner()
	SetGitRunner(mock)
	t.Cleanup(func() { SetGitRunner(original) })
}

func TestInitialize_Sequence(t *testing.T) {
	mock := &MockGitRunner{}
	withMockRunner(t, mock)

	require.NoError(t, Initialize("/tmp/ext", "Ada", "ada@example.com"))

	assert.Equal(t, []string{"/tmp/ext"}, mock.InitCalls)
	require.Len(t, mock.SetConfigCalls, 2)
	assert.Equal(t, struct{ Dir, Key, Value string }{"/tmp/ext", "user.name", "Ada"}, mock.SetConfigCalls[0])
	assert.Equal(t, struct{ Dir, Key, Value string }{"/tmp/ext", "user.email", "ada@example.com"}, mock.SetConfigCalls[1])
	assert.Equal(t, []string{"/tmp/ext"}, mock.AddAllCalls)
	require.Len(t, mock.CommitCalls, 1)
	assert.Equal(t, InitialCommitMessage, mock.CommitCalls[0].Message)
}

func TestInitialize_EmailFallback(t *testing.T) {
	mock := &MockGitRunner{}
	withMockRunner(t, mock)

	require.NoError(t, Initialize("/tmp/ext", "Ada", ""))

	require.Len(t, mock.SetConfigCalls, 2)
	assert.Equal(t, "Ada@localhost", mock.SetConfigCalls[1].Value)
}

func TestInitialize_StepFailures(t *testing.T) {
	tests := []struct {
		name string
		mock *MockGitRunner
		want string
	}{
		{"init fails", &MockGitRunner{InitErr: errors.New("boom")}, "failed to initialize repository"},
		{"config fails", &MockGitRunner{SetConfigErr: errors.New("boom")}, "failed to set commit identity name"},
		{"add fails", &MockGitRunner{AddAllErr: errors.New("boom")}, "failed to stage files"},
		{"commit fails", &MockGitRunner{CommitErr: errors.New("boom")}, "failed to create initial commit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withMockRunner(t, tt.mock)

			err := Initialize("/tmp/ext", "Ada", "ada@example.com")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInitialize_ShortCircuitsOnFirstFailure(t *testing.T) {
	mock := &MockGitRunner{InitErr: errors.New("boom")}
	withMockRunner(t, mock)

	require.Error(t, Initialize("/tmp/ext", "Ada", ""))
	assert.Empty(t, mock.SetConfigCalls)
	assert.Empty(t, mock.AddAllCalls)
	assert.Empty(t, mock.CommitCalls)
}

func TestExecGitRunner_Initialize(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	// #nosec G306 -- test file permissions are acceptable for temporary test files
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte("// entry\n"), 0644))

	require.NoError(t, Initialize(dir, "Test Author", "test@example.com"))

	assert.DirExists(t, filepath.Join(dir, ".git"))

	// Exactly one commit with the fixed message, containing the file.
	cmd := exec.Command("git", "log", "--oneline")
	cmd.Dir = dir
	output, err := cmd.Output()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], InitialCommitMessage)

	cmd = exec.Command("git", "show", "--name-only", "--format=", "HEAD")
	cmd.Dir = dir
	output, err = cmd.Output()
	require.NoError(t, err)
	assert.Contains(t, string(output), "index.js")
}

func TestExecGitRunner_InitError(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	runner := &execGitRunner{}
	err := runner.Init(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
