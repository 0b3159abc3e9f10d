package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/extforge/extforge/internal/core"
	"github.com/extforge/extforge/internal/extension"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	var (
		configPath string
		asJSON     bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed extensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			infos, err := extension.List(cfg.ExtensionsDir)
			if err != nil {
				return fmt.Errorf("failed to list extensions: %w", err)
			}

			return printExtensions(infos, asJSON, verbose)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to extforge.yaml config file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show display name, version, and author")

	return cmd
}

func printExtensions(infos []extension.Info, asJSON, verbose bool) error {
	if len(infos) == 0 {
		if asJSON {
			core.MustFprintf(os.Stdout, "[]\n")
			return nil
		}
		core.MustFprintf(os.Stdout, "No extensions installed.\n")
		core.MustFprintf(os.Stdout, "Scaffold one with: extforge create --name NAME --display-name NAME --author YOU\n")
		return nil
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	}

	if verbose {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		core.MustFprintf(w, "NAME\tDISPLAY NAME\tVERSION\tAUTHOR\n")
		core.MustFprintf(w, "----\t------------\t-------\t------\n")

		for _, info := range infos {
			displayName, version, author := "-", "-", "-"
			if info.Manifest != nil {
				displayName = info.Manifest.DisplayName
				version = info.Manifest.Version
				author = info.Manifest.Author
			}
			core.MustFprintf(w, "%s\t%s\t%s\t%s\n", info.Name, displayName, version, author)
		}

		return w.Flush()
	}

	// Simple format by default: name (version)
	for _, info := range infos {
		version := "unknown"
		if info.Manifest != nil {
			version = info.Manifest.Version
		}
		core.MustFprintf(os.Stdout, "%s (%s)\n", info.Name, version)
	}

	return nil
}
