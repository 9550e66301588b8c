package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "airdrop-ledger/internal/adapter/http"
	"airdrop-ledger/internal/adapter/usecase"
	"airdrop-ledger/internal/db"
	"airdrop-ledger/internal/platform/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger HTTP API",
	Long: `Run the ledger HTTP API.

Migrations are applied first when PSQL_RUN_MIGRATIONS is set. The server
stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracing shutdown error", slog.Any("error", err))
		}
	}()

	if cfg.Psql.RunMigrations && !cfg.Ledger.UseMemory() {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied successfully")
	}

	svc, cleanup, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	handler := httpadapter.NewHandler(usecase.NewSequencer(svc, cfg.HTTP.TurnTimeout), logger, httpadapter.ClaimLimits{
		RPS:   cfg.HTTP.ClaimRPS,
		Burst: cfg.HTTP.ClaimBurst,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.Int("port", int(cfg.HTTP.Port)),
			slog.String("store", cfg.Ledger.Store),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var exitCode int
	select {
	case err = <-serveErr:
		return fmt.Errorf("server: %w", err)
	case value := <-quit:
		exitCode = 128 + int(value.(syscall.Signal))
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancelShutdown()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return err
	}
	logger.Info("server gracefully stopped")
	return &exitError{code: exitCode}
}
