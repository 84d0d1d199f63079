package sqlite

import (
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/miniboss/internal/auth/store/drivers/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// applyMigrations applies any pending migrations using the embedded files
// compiled into the binary.
func applyMigrations(db *sql.DB) error {
	// 1. Create the SQLite migration driver
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return err
	}

	// 2. Create the iofs (embedded filesystem) source driver
	migrationsFilesystem, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	// 3. Create the migrate instance to run migrations
	instance, err := migrate.NewWithInstance("iofs", migrationsFilesystem, "sqlite", driver)
	if err != nil {
		return err
	}

	// 4. Apply all up migrations. The instance is not closed: that would
	// close the shared *sql.DB.
	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
