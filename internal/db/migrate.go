package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"airdrop-ledger/db/migrations"
)

// Migrate brings the database at addr to migrations.Version using the SQL
// files embedded in the binary. It moves up or down as needed, so a
// database touched by a newer build is rolled back to what this build
// understands. Running it against an up-to-date database is a no-op.
//
// A database left dirty by an interrupted migration is reported with its
// version and not forced; repairing it is an operator decision. addr is
// any URL the golang-migrate postgres driver accepts.
func Migrate(addr string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	defer source.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", source, addr)
	if err != nil {
		return fmt.Errorf("connect migrator: %w", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case dirty:
		return fmt.Errorf("database is in dirty state at version %d", version)
	}

	if err = mg.Migrate(migrations.Version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate to version %d: %w", migrations.Version, err)
	}
	return nil
}
