package main

import (
	"github.com/spf13/cobra"

	"airdrop-ledger/db/migrations"
	"airdrop-ledger/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
			return err
		}
		logger.Info("migrations applied successfully", "version", migrations.Version)
		return nil
	},
}
