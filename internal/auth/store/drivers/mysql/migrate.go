package mysql

import (
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/miniboss/internal/auth/store/drivers/mysql/migrations"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// applyMigrations applies the embedded MySQL migrations over a dedicated
// connection pool that is closed afterwards.
func applyMigrations(cfg *mysql.Config) error {
	mcfg := cfg.Clone()
	mcfg.MultiStatements = true

	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return err
	}
	db := sql.OpenDB(connector)

	// 1. Create the MySQL migration driver
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}

	// 2. Create the iofs (embedded filesystem) source driver
	migrationsFilesystem, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		_ = driver.Close()
		return err
	}

	// 3. Create the migrate instance to run migrations
	instance, err := migrate.NewWithInstance("iofs", migrationsFilesystem, "mysql", driver)
	if err != nil {
		_ = driver.Close()
		return err
	}
	defer instance.Close()

	// 4. Apply all up migrations
	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
