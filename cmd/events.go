package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"airdrop-ledger/internal/adapter/postgres"
	"airdrop-ledger/internal/core/domain"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream ledger events as they are committed",
	Long: `Stream ledger events as they are committed.

Events are received over Postgres LISTEN/NOTIFY and written to the log,
one line per event, until the process is interrupted.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func runEvents(cmd *cobra.Command, _ []string) error {
	if cfg.Ledger.UseMemory() {
		return errNeedsPostgres
	}
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	listener := postgres.NewEventListener(cfg.Psql.Addr.String(), logger)
	return listener.Listen(ctx, func(e domain.Event) error {
		logger.Info("ledger event",
			slog.Int64("seq", e.Seq),
			slog.String("kind", string(e.Kind)),
			slog.Int64("campaign_id", e.CampaignID),
			slog.String("participant", e.Participant.String()),
			slog.Uint64("amount", e.Amount),
		)
		return nil
	})
}
