package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/extforge/extforge/internal/core"
	"github.com/extforge/extforge/internal/extension"
	"github.com/extforge/extforge/internal/scaffold"
	"github.com/extforge/extforge/internal/tui"
)

// newCreateCmd creates the create command, which scaffolds an extension from
// the terminal using the same pipeline as POST /create.
func newCreateCmd() *cobra.Command {
	var (
		configPath     string
		req            scaffold.Request
		showReadme     bool
		outputManifest bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Scaffold a new extension",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := os.MkdirAll(cfg.ExtensionsDir, 0750); err != nil {
				return fmt.Errorf("failed to create extensions root: %w", err)
			}

			scaffolder := scaffold.New(cfg.ExtensionsDir, cfg.TemplatesDir)

			// The terminal operator owns the machine; treat them as privileged.
			caller := core.CallerIdentity{Handle: "local-operator", Privileged: true}

			tui.Progress("Scaffolding extension...")
			result, err := scaffolder.Create(caller, req)
			if err != nil {
				return err
			}
			tui.ProgressSuccess(fmt.Sprintf("Created %s", result.Path))

			if outputManifest {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(result.Manifest); err != nil {
					return fmt.Errorf("failed to encode manifest: %w", err)
				}
			}

			if showReadme {
				readme, err := core.ReadFileUnder(result.Path, extension.ReadmeFileName)
				if err != nil {
					return fmt.Errorf("failed to read generated README: %w", err)
				}
				rendered, err := tui.RenderMarkdown(string(readme), 80)
				if err != nil {
					rendered = string(readme)
				}
				core.MustFprintf(os.Stdout, "%s", rendered)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to extforge.yaml config file")
	cmd.Flags().StringVar(&req.Name, "name", "", "Extension name (sanitized into the directory leaf)")
	cmd.Flags().StringVar(&req.DisplayName, "display-name", "", "Display name written into the manifest")
	cmd.Flags().StringVar(&req.Author, "author", "", "Author name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Author email (optional)")
	cmd.Flags().StringVar(&req.GitHubUsername, "github-username", "", "GitHub username for the homepage link (optional)")
	cmd.Flags().BoolVar(&outputManifest, "manifest", true, "Print the created manifest to stdout")
	cmd.Flags().BoolVar(&showReadme, "readme", false, "Render the generated README after creation")

	return cmd
}
