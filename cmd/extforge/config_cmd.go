package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/extforge/extforge/internal/core"
)

// newConfigCmd creates the config command group
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect extforge configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

// newConfigShowCmd creates the "config show" command, printing the effective
// configuration after precedence and environment overrides.
func newConfigShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			core.MustFprintf(os.Stdout, "%s", string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to extforge.yaml config file")
	return cmd
}
