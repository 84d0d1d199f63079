package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/miniboss/internal/auth/store/sqlstore"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// NewStore opens a SQLite database at dsn (a file path or ":memory:").
//
// SQLite allows a single writer, so the pool is capped at one connection.
// That also keeps ":memory:" databases alive for the life of the Store.
func NewStore(dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	}
	if dsn != ":memory:" {
		pragmas = append(pragmas, `PRAGMA journal_mode = WAL;`)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(context.Background(), p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	return sqlstore.New(db, Dialect()), nil
}

// Dialect returns the SQLite hooks for sqlstore.
func Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:              "sqlite",
		IsUniqueViolation: isUniqueViolation,
		Migrate:           applyMigrations,
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
