package editor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extforge/extforge/internal/core"
	"github.com/extforge/extforge/internal/extension"
)

// mockCommand implements core.Command with canned behavior.
type mockCommand struct {
	stdout   string
	stderr   string
	startErr error
	waitErr  error
}

func (m *mockCommand) StdoutPipe() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.stdout)), nil
}

func (m *mockCommand) StderrPipe() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.stderr)), nil
}

func (m *mockCommand) Start() error { return m.startErr }
func (m *mockCommand) Wait() error  { return m.waitErr }

// mockCommandRunner records invocations and hands out one mockCommand.
type mockCommandRunner struct {
	command *mockCommand
	calls   []struct {
		Name string
		Args []string
	}
}

func (m *mockCommandRunner) CommandContext(ctx context.Context, name string, arg ...string) core.Command {
	m.calls = append(m.calls, struct {
		Name string
		Args []string
	}{name, arg})
	return m.command
}

// Interface guards
var (
	_ core.Command       = &mockCommand{}
	_ core.CommandRunner = &mockCommandRunner{}
)

var testEditors = []string{"code", "webstorm", "atom"}

// newTestLauncher builds a Launcher over a temp extensions root containing
// one extension with an entry file.
func newTestLauncher(t *testing.T, runner *mockCommandRunner) (*Launcher, string) {
	t.Helper()

	root := t.TempDir()
	extDir := filepath.Join(root, "myext")
	require.NoError(t, os.Mkdir(extDir, 0750))
	// #nosec G306 -- test file permissions are acceptable for temporary test files
	require.NoError(t, os.WriteFile(filepath.Join(extDir, extension.EntrypointFileName), []byte("// entry\n"), 0644))

	processes := core.NewLauncherWithClockAndRunner(0, clockwork.NewRealClock(), runner)
	return New(root, testEditors, "webstorm", processes), root
}

func TestOpen_Success(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, root := newTestLauncher(t, runner)

	require.NoError(t, launcher.Open(context.Background(), "code", "myext"))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "code", runner.calls[0].Name)
	assert.Equal(t, []string{filepath.Join(root, "myext", extension.EntrypointFileName)}, runner.calls[0].Args)
}

func TestOpen_DefaultEditor(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, _ := newTestLauncher(t, runner)

	require.NoError(t, launcher.Open(context.Background(), "", "myext"))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "webstorm", runner.calls[0].Name)
}

func TestOpen_UnknownEditor(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, _ := newTestLauncher(t, runner)

	err := launcher.Open(context.Background(), "vim", "myext")

	var validationErr *core.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "editor", validationErr.Field)
	// The message lists the allowed editors.
	assert.Contains(t, validationErr.Reason, "code, webstorm, atom")
	assert.Empty(t, runner.calls)
}

func TestOpen_EditorTypoSuggestion(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, _ := newTestLauncher(t, runner)

	err := launcher.Open(context.Background(), "webstrom", "myext")

	var validationErr *core.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Reason, `did you mean "webstorm"`)
}

func TestOpen_MissingExtensionName(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, _ := newTestLauncher(t, runner)

	err := launcher.Open(context.Background(), "code", "")

	var validationErr *core.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "extensionName", validationErr.Field)
}

func TestOpen_UnknownExtension(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, _ := newTestLauncher(t, runner)

	err := launcher.Open(context.Background(), "code", "other")

	var notFoundErr *core.NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
	assert.Empty(t, runner.calls)
}

func TestOpen_ExtensionTypoSuggestion(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, _ := newTestLauncher(t, runner)

	err := launcher.Open(context.Background(), "code", "myxt")

	var notFoundErr *core.NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
	assert.Contains(t, notFoundErr.Resource, `did you mean "myext"`)
}

func TestOpen_MissingEntryFile(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, root := newTestLauncher(t, runner)

	require.NoError(t, os.Remove(filepath.Join(root, "myext", extension.EntrypointFileName)))

	err := launcher.Open(context.Background(), "code", "myext")

	var notFoundErr *core.NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
	assert.Contains(t, notFoundErr.Resource, extension.EntrypointFileName)
}

func TestOpen_LaunchFailure(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{
		stderr:   "webstorm: command not found",
		startErr: errors.New("executable file not found"),
	}}
	launcher, _ := newTestLauncher(t, runner)

	err := launcher.Open(context.Background(), "webstorm", "myext")

	var processErr *core.ProcessError
	require.True(t, errors.As(err, &processErr))
	assert.Equal(t, "webstorm", processErr.Program)
}

func TestOpen_NonZeroExit(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{
		stderr:  "cannot open display",
		waitErr: &fakeExitError{code: 2},
	}}
	launcher, _ := newTestLauncher(t, runner)

	err := launcher.Open(context.Background(), "code", "myext")

	var processErr *core.ProcessError
	require.True(t, errors.As(err, &processErr))
	assert.Equal(t, "cannot open display", processErr.Details)
}

// fakeExitError stands in for a process exiting non-zero. The launcher only
// recognizes *exec.ExitError for exit codes, so any other error from Wait is
// reported as a launch failure, which is also a ProcessError here.
type fakeExitError struct{ code int }

func (e *fakeExitError) Error() string { return "exit status 2" }

func TestEditors_ReturnsConfiguredOrder(t *testing.T) {
	runner := &mockCommandRunner{command: &mockCommand{}}
	launcher, _ := newTestLauncher(t, runner)

	editors := launcher.Editors()
	assert.Equal(t, testEditors, editors)

	// Mutating the returned slice must not affect the launcher.
	editors[0] = "mutated"
	assert.Equal(t, testEditors, launcher.Editors())
}
