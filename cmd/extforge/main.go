package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	// build time date
	buildDate = "unknown"
)

func main() {
	var flags serveFlags

	rootCmd := &cobra.Command{
		Use:   "extforge",
		Short: "Extension scaffolding plugin server",
		Long: `extforge is a server-side plugin for a chat-application host that lets a
privileged operator browse, scaffold, and open third-party extension folders
on disk.`,
		Version: fmt.Sprintf("%s (built: %s)", version, buildDate),
		// Default to serve command when no subcommand is provided
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags)
		},
	}

	// Serve flags are also available on the root command so that a bare
	// "extforge" starts the server.
	addServeFlags(rootCmd, &flags)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
