package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kasbuku/statement-recon/internal/ledger"
	"github.com/kasbuku/statement-recon/internal/logging"
)

func newImportCommand(configPath *string) *cobra.Command {
	var media string

	cmd := &cobra.Command{
		Use:   "import <statement-file>",
		Short: "Parse a statement and persist its lines into the ledger store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)

			sum, err := parseFile(args[0], media, cfg.Statement.Currency)
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg.Store.Path, log)
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.ImportStatement(cmd.Context(), sum)
			if err != nil {
				return fmt.Errorf("importing statement: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported statement %s (%s): %d lines, debits %s, credits %s\n",
				id, sum.Period, len(sum.Transactions),
				sum.TotalDebits.StringFixed(2), sum.TotalCredits.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&media, "media", "", "document media type: pdf or spreadsheet (default from extension)")

	return cmd
}
