// Package db owns the ledger's connection to PostgreSQL: building the
// pgx pool the repository runs on and bringing the schema to the version
// the code expects.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"airdrop-ledger/internal/config/configs"
)

// pingTimeout bounds the connectivity check made before a pool is handed
// out.
const pingTimeout = 5 * time.Second

// NewPostgresPool creates a pgxpool.Pool for cfg.Addr. MaxConns and
// MinConns override the pgxpool defaults when they are positive; leave
// them at zero to let pgxpool size the pool from the host's CPU count.
//
// The pool is pinged before it is returned so a wrong address or a
// database that is not up yet fails at startup rather than on the first
// ledger operation. On a failed ping the pool is closed again. The caller
// owns the returned pool and must close it.
func NewPostgresPool(ctx context.Context, cfg configs.Postgres) (*pgxpool.Pool, error) {
	poolConf, err := pgxpool.ParseConfig(cfg.Addr.String())
	if err != nil {
		return nil, fmt.Errorf("parse postgres address: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConf.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConf.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConf)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
