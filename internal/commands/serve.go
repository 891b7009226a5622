package commands

import (
	"github.com/spf13/cobra"

	"github.com/kasbuku/statement-recon/internal/api"
	"github.com/kasbuku/statement-recon/internal/ledger"
	"github.com/kasbuku/statement-recon/internal/logging"
	"github.com/kasbuku/statement-recon/internal/recon"
)

func newServeCommand(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ingestion and reconciliation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log := logging.New(cfg.LogLevel)

			store, err := ledger.Open(cfg.Store.Path, log)
			if err != nil {
				return err
			}
			defer store.Close()

			h := &api.Handler{
				Store:    store,
				Recon:    recon.NewService(store, recon.NewMatcher(cfg.Matcher), log),
				Currency: cfg.Statement.Currency,
				Log:      log,
			}

			log.Info().Str("addr", cfg.Server.Addr).Msg("starting API server")
			return h.App().Listen(cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
