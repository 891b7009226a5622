// Package commands wires the CLI surface: parsing statements locally,
// importing them into the ledger store and serving the HTTP API.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kasbuku/statement-recon/internal/buildinfo"
	"github.com/kasbuku/statement-recon/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "statement-recon",
		Short:   "Bank statement ingestion and reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to statement-recon.yaml")

	rootCmd.AddCommand(newParseCommand(&configPath))
	rootCmd.AddCommand(newImportCommand(&configPath))
	rootCmd.AddCommand(newReconcileCommand(&configPath))
	rootCmd.AddCommand(newServeCommand(&configPath))

	return rootCmd
}

// loadConfig resolves the effective configuration: the file named by --config
// when given, defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
