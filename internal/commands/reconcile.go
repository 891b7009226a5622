package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kasbuku/statement-recon/internal/ledger"
	"github.com/kasbuku/statement-recon/internal/logging"
	"github.com/kasbuku/statement-recon/internal/recon"
)

func newReconcileCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Suggest ledger matches for every unmatched statement line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)

			store, err := ledger.Open(cfg.Store.Path, log)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := recon.NewService(store, recon.NewMatcher(cfg.Matcher), log)
			cands, err := svc.SuggestAll(cmd.Context())
			if err != nil {
				return err
			}

			if len(cands) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No new suggestions.")
				return nil
			}
			for _, c := range cands {
				fmt.Fprintf(cmd.OutOrStdout(), "line %s -> entry %s (confidence %.2f)\n",
					c.LineID, c.EntryID, c.Confidence)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d suggestions awaiting review.\n", len(cands))
			return nil
		},
	}

	return cmd
}
