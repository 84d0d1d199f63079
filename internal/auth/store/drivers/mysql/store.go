package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/store/sqlstore"

	"github.com/go-sql-driver/mysql"
)

const errDuplicateEntry = 1062

// NewStore connects to MySQL using a go-sql-driver DSN
// (user:pass@tcp(host:3306)/dbname).
func NewStore(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return sqlstore.New(db, Dialect(cfg)), nil
}

// Dialect returns the MySQL hooks for sqlstore. Migrations run on their own
// connection built from cfg, since they need multi-statement support.
func Dialect(cfg *mysql.Config) sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:              "mysql",
		IsUniqueViolation: isUniqueViolation,
		Migrate: func(*sql.DB) error {
			return applyMigrations(cfg)
		},
	}
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}
