package main

import (
	"context"
	"errors"
	"log/slog"

	"airdrop-ledger/internal/adapter/assethttp"
	"airdrop-ledger/internal/adapter/memory"
	"airdrop-ledger/internal/adapter/postgres"
	"airdrop-ledger/internal/adapter/usecase"
	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
	"airdrop-ledger/internal/db"
)

var errNeedsPostgres = errors.New(`this command requires LEDGER_STORE="postgres"`)

// openLedger wires the repository selected by LEDGER_STORE and the asset
// resolver into a ledger. The returned cleanup releases the database pool.
func openLedger(ctx context.Context) (*usecase.LedgerUseCase, func(), error) {
	custody := domain.NewAddress(cfg.Ledger.Custody)
	owner := domain.NewAddress(cfg.Ledger.Owner)

	var assets port.AssetResolver
	if cfg.Assets.Remote() {
		assets = assethttp.NewResolver(cfg.Assets.Endpoints, custody, cfg.Assets.Timeout)
	} else {
		bank := memory.NewAssetBank(custody)
		for _, a := range cfg.Assets.DevAssets {
			bank.Mint(domain.NewAddress(a), owner, cfg.Assets.DevMint)
		}
		logger.Warn("no asset endpoints configured, using in-process bank",
			slog.Any("assets", cfg.Assets.DevAssets),
			slog.Uint64("minted", cfg.Assets.DevMint),
		)
		assets = bank
	}
	transfer := usecase.NewSafeTransfer(assets, custody, logger)

	var (
		repo    port.LedgerRepository
		cleanup = func() {}
	)
	if cfg.Ledger.UseMemory() {
		repo = memory.NewLedgerRepository()
	} else {
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, err
		}
		repo = postgres.NewLedgerRepository(pool)
		cleanup = pool.Close
	}

	svc, err := usecase.NewLedgerUseCase(ctx, repo, transfer, usecase.SystemClock{}, owner)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
