package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile writes a config file into a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extforge.yaml")
	// #nosec G306 -- test file permissions are acceptable for temporary test files
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, "extensions_dir: exts\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEditor, cfg.DefaultEditor)
	assert.Equal(t, DefaultEditors, cfg.Editors)
	assert.Equal(t, 0, cfg.EditorTimeout)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
}

func TestLoadConfig_RelativeRootsResolveAgainstConfigDir(t *testing.T) {
	path := writeConfigFile(t, "extensions_dir: exts\ntemplates_dir: skel\n")
	configDir := filepath.Dir(path)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(configDir, "exts"), cfg.ExtensionsDir)
	assert.Equal(t, filepath.Join(configDir, "skel"), cfg.TemplatesDir)
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfigFile(t, `port: 9090
default_editor: code
editors:
  - code
  - vim
editor_timeout: 15
log_format: pretty
log_level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "code", cfg.DefaultEditor)
	assert.Equal(t, []string{"code", "vim"}, cfg.Editors)
	assert.Equal(t, 15, cfg.EditorTimeout)
	assert.Equal(t, LogFormatPretty, cfg.LogFormat)
	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("EXTFORGE_PORT", "7777")

	path := writeConfigFile(t, "port: 9090\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad port", "port: 99999\n", "port must be between"},
		{"empty editors", "editors: []\n", "allow-list cannot be empty"},
		{"default editor not allowed", "default_editor: vim\n", "not in the editors allow-list"},
		{"negative timeout", "editor_timeout: -1\n", "cannot be negative"},
		{"bad log format", "log_format: xml\n", "invalid log_format"},
		{"bad log level", "log_level: loud\n", "invalid log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestIsValidLogFormat(t *testing.T) {
	assert.True(t, IsValidLogFormat(LogFormatJSON))
	assert.True(t, IsValidLogFormat(LogFormatPretty))
	assert.False(t, IsValidLogFormat("xml"))
}

func TestIsValidLogLevel(t *testing.T) {
	assert.True(t, IsValidLogLevel(LogLevelDebug))
	assert.False(t, IsValidLogLevel("loud"))
}
