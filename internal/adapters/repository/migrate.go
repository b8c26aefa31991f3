package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// runMigrations applies every pending migration under dir for the given
// database driver. It does not close the driver's database handle.
func runMigrations(dir, dbName string, driver database.Driver) error {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrMigration, dir, err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return fmt.Errorf("%w: creating migrator: %w", ErrMigration, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}
	return nil
}
