// Package config provides configuration management for extforge, including
// loading configuration with precedence and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Defaults applied when neither config file nor environment sets a value
const (
	DefaultPort          = 8080
	DefaultExtensionsDir = "extensions"
	DefaultTemplatesDir  = "templates"
	DefaultEditor        = "webstorm"
)

// DefaultEditors is the default editor allow-list, in the order echoed by
// GET /editors.
var DefaultEditors = []string{"code", "webstorm", "atom", "sublime", "notepad++"}

type LogFormat string

const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

func ValidLogFormats() map[LogFormat]struct{} {
	return map[LogFormat]struct{}{
		LogFormatPretty: {},
		LogFormatJSON:   {},
	}
}

func IsValidLogFormat(format LogFormat) bool {
	_, ok := ValidLogFormats()[format]
	return ok
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func ValidLogLevels() map[LogLevel]struct{} {
	return map[LogLevel]struct{}{
		LogLevelDebug: {},
		LogLevelInfo:  {},
		LogLevelWarn:  {},
		LogLevelError: {},
	}
}

func IsValidLogLevel(level LogLevel) bool {
	_, ok := ValidLogLevels()[level]
	return ok
}

// Config represents the extforge configuration: the two directory roots the
// hosting environment supplies, the HTTP port, the editor allow-list, and
// logging options.
type Config struct {
	ExtensionsDir string    `yaml:"extensions_dir,omitempty" mapstructure:"extensions_dir"` // root where new extensions are created
	TemplatesDir  string    `yaml:"templates_dir,omitempty" mapstructure:"templates_dir"`   // read-only skeleton template root
	Port          int       `yaml:"port,omitempty" mapstructure:"port"`                     // the port to listen on
	DefaultEditor string    `yaml:"default_editor,omitempty" mapstructure:"default_editor"` // editor used when /open names none
	Editors       []string  `yaml:"editors,omitempty" mapstructure:"editors"`               // ordered editor allow-list
	EditorTimeout int       `yaml:"editor_timeout,omitempty" mapstructure:"editor_timeout"` // seconds; 0 disables the deadline
	LogFormat     LogFormat `yaml:"log_format,omitempty" mapstructure:"log_format"`         // "pretty" or "json"
	LogLevel      LogLevel  `yaml:"log_level,omitempty" mapstructure:"log_level"`           // "debug", "info", "warn", "error"
}

// GetUserConfigPath returns the path to the user-specific config file (~/.extforge/config.yaml)
func GetUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".extforge", "config.yaml"), nil
}

// GetProjectConfigPath returns the path to the project-specific config file
// (./extforge.yaml) relative to the current working directory
func GetProjectConfigPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return filepath.Join(cwd, "extforge.yaml"), nil
}

// setupViper configures Viper with defaults, config file locations, and environment variables.
// If configPath is provided (non-empty), loads from that specific path instead of using precedence.
func setupViper(configPath string) error {
	viper.Reset()
	setViperDefaults()
	viper.SetEnvPrefix("EXTFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	// Otherwise use precedence: user config first, then project config
	userPath, userErr := GetUserConfigPath()
	if userErr == nil {
		if _, statErr := os.Stat(userPath); statErr == nil {
			viper.SetConfigFile(userPath)
			if readErr := viper.ReadInConfig(); readErr != nil {
				zap.L().Debug("Failed to read user config file", zap.String("path", userPath), zap.Error(readErr))
			}
		}
	}

	projectPath, projectErr := GetProjectConfigPath()
	if projectErr == nil {
		if _, statErr := os.Stat(projectPath); statErr == nil {
			viper.SetConfigFile(projectPath)
			if mergeErr := viper.MergeInConfig(); mergeErr != nil {
				zap.L().Debug("Failed to merge project config file", zap.String("path", projectPath), zap.Error(mergeErr))
			}
		}
	}

	return nil
}

// setViperDefaults sets default values in Viper
func setViperDefaults() {
	viper.SetDefault("extensions_dir", DefaultExtensionsDir)
	viper.SetDefault("templates_dir", DefaultTemplatesDir)
	viper.SetDefault("port", DefaultPort)
	viper.SetDefault("default_editor", DefaultEditor)
	viper.SetDefault("editors", DefaultEditors)
	viper.SetDefault("editor_timeout", 0)
	viper.SetDefault("log_format", "json")
	viper.SetDefault("log_level", "info")
}

// LoadConfig loads configuration with precedence: project config > user config > defaults.
// Environment variables override config file values.
// If configPath is provided, loads from that specific path instead.
func LoadConfig(configPath string) (*Config, error) {
	if err := setupViper(configPath); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Relative roots resolve against the config file's directory when one was
	// loaded, so a project config carries its own layout.
	var baseDir string
	if configPath != "" {
		baseDir = filepath.Dir(configPath)
	}
	if err := resolveRoots(cfg, baseDir); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveRoots turns both directory roots into absolute paths.
func resolveRoots(cfg *Config, baseDir string) error {
	for _, dir := range []*string{&cfg.ExtensionsDir, &cfg.TemplatesDir} {
		if *dir == "" {
			continue
		}
		if !filepath.IsAbs(*dir) && baseDir != "" {
			*dir = filepath.Join(baseDir, *dir)
		}
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return fmt.Errorf("failed to resolve directory path %s: %w", *dir, err)
		}
		*dir = abs
	}
	return nil
}

// validateConfig checks the loaded configuration for consistency
func validateConfig(cfg *Config) error {
	if cfg.ExtensionsDir == "" {
		return fmt.Errorf("extensions_dir cannot be empty")
	}
	if cfg.TemplatesDir == "" {
		return fmt.Errorf("templates_dir cannot be empty")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if len(cfg.Editors) == 0 {
		return fmt.Errorf("editors allow-list cannot be empty")
	}
	if !slices.Contains(cfg.Editors, cfg.DefaultEditor) {
		return fmt.Errorf("default_editor %q is not in the editors allow-list", cfg.DefaultEditor)
	}
	if cfg.EditorTimeout < 0 {
		return fmt.Errorf("editor_timeout cannot be negative, got %d", cfg.EditorTimeout)
	}
	if !IsValidLogFormat(cfg.LogFormat) {
		return fmt.Errorf("invalid log_format: %s", cfg.LogFormat)
	}
	if !IsValidLogLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log_level: %s", cfg.LogLevel)
	}
	return nil
}
