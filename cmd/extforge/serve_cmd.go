package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/extforge/extforge/internal/config"
	"github.com/extforge/extforge/internal/core"
	"github.com/extforge/extforge/internal/server"
)

type serveFlags struct {
	configPath    string
	prettyLog     bool
	port          int
	extensionsDir string
	templatesDir  string
}

func addServeFlags(cmd *cobra.Command, flags *serveFlags) {
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to extforge.yaml config file")
	cmd.Flags().IntVar(&flags.port, "port", 0, "Port to listen on (overrides config file)")
	cmd.Flags().BoolVar(&flags.prettyLog, "pretty", false, "Use pretty-printed logs instead of JSON")
	cmd.Flags().StringVar(&flags.extensionsDir, "extensions-dir", "", "Extensions root (overrides config file)")
	cmd.Flags().StringVar(&flags.templatesDir, "templates-dir", "", "Skeleton templates root (overrides config file)")
}

// newServeCmd creates the serve command
func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the extforge plugin server",
		Long: `Start the extforge plugin server. This is the default command when no
subcommand is specified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags)
		},
	}

	addServeFlags(cmd, &flags)
	return cmd
}

// runServe runs the server with the given flags
func runServe(flags serveFlags) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return err
	}

	applyOverrides(cfg, flags)

	pretty := resolveLogFormat(cfg, flags.prettyLog)
	if err := core.Init(pretty, string(cfg.LogLevel)); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return err
	}
	defer zap.L().Sync() //nolint:errcheck // Sync errors on stdout/stderr are common and not critical

	if err := ensureRoots(cfg); err != nil {
		return err
	}

	srv := server.New(cfg, flags.configPath)

	ctx, cancel := setupSignalHandling(context.Background(), srv)
	defer cancel()

	addr := fmt.Sprintf(":%d", cfg.Port)
	if err := srv.Serve(ctx, addr); err != nil {
		if errors.Is(err, context.Canceled) {
			zap.L().Info("Server context canceled, exiting gracefully")
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// loadConfig loads configuration from a file path, or uses the precedence
// chain (project config > user config > defaults) when the path is empty.
func loadConfig(configPath string) (*config.Config, error) {
	return config.LoadConfig(configPath)
}

// applyOverrides applies command-line flag overrides to the loaded config
func applyOverrides(cfg *config.Config, flags serveFlags) {
	if flags.port != 0 {
		cfg.Port = flags.port
	}
	if flags.extensionsDir != "" {
		cfg.ExtensionsDir = flags.extensionsDir
	}
	if flags.templatesDir != "" {
		cfg.TemplatesDir = flags.templatesDir
	}
}

// resolveLogFormat determines the log format based on CLI flag and config
func resolveLogFormat(cfg *config.Config, prettyLog bool) bool {
	if !prettyLog && cfg.LogFormat == config.LogFormatPretty {
		return true
	}
	return prettyLog
}

// ensureRoots creates the extensions root if missing and verifies the
// templates root exists. The templates root is read-only source material, so
// a missing one is a deployment error, not something to create.
func ensureRoots(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.ExtensionsDir, 0750); err != nil {
		return fmt.Errorf("failed to create extensions root: %w", err)
	}
	if _, err := os.Stat(cfg.TemplatesDir); err != nil {
		return fmt.Errorf("templates root is not accessible: %w", err)
	}
	return nil
}

// setupSignalHandling sets up signal handling for hot reload and graceful shutdown
func setupSignalHandling(ctx context.Context, srv *server.PluginServer) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for {
			sig := <-sigChan
			switch sig {
			case syscall.SIGHUP:
				zap.L().Info("Received SIGHUP, reloading configuration")
				if err := srv.Reload(); err != nil {
					zap.L().Error("Failed to reload", zap.Error(err))
				} else {
					zap.L().Info("Successfully reloaded configuration")
				}
			case syscall.SIGINT, syscall.SIGTERM:
				zap.L().Info("Received shutdown signal")
				cancel()
				return
			}
		}
	}()

	return ctx, cancel
}
