// Package sqlstore implements store.Store over database/sql. The SQL is
// written to run unchanged on SQLite and MySQL; the drivers under
// store/drivers supply the connection, the dialect hooks and migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/miniboss/internal/auth/store"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect holds the driver-specific pieces the shared queries need.
type Dialect struct {
	Name string

	// IsUniqueViolation reports whether err is a unique or primary key
	// constraint failure.
	IsUniqueViolation func(err error) bool

	// Migrate applies the driver's embedded migrations.
	Migrate func(db *sql.DB) error
}

type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Store = (*Store)(nil)

// New wraps an open database. The Store takes ownership of db.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying handle for driver-level tooling.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.dialect.Migrate == nil {
		return fmt.Errorf("sqlstore: %s dialect has no migrations", s.dialect.Name)
	}
	return s.dialect.Migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, dialect: s.dialect}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                     { return &usersRepo{db: s.db, d: s.dialect} }
func (s *Store) Credentials() store.Credentials         { return &credentialsRepo{db: s.db, d: s.dialect} }
func (s *Store) PermittedScopes() store.PermittedScopes { return &scopesRepo{db: s.db, d: s.dialect} }
func (s *Store) Clients() store.Clients                 { return &clientsRepo{db: s.db, d: s.dialect} }
func (s *Store) PendingAuthorizations() store.PendingAuthorizations {
	return &pendingRepo{db: s.db, d: s.dialect}
}
func (s *Store) AuthorizationCodes() store.AuthorizationCodes { return &codesRepo{db: s.db, d: s.dialect} }
func (s *Store) AccessTokens() store.AccessTokens             { return &tokensRepo{db: s.db, d: s.dialect} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapInsert translates unique violations into store.ErrAlreadyExists.
func (d Dialect) mapInsert(err error) error {
	if err != nil && d.IsUniqueViolation != nil && d.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// exactlyOne checks a conditional write hit a single row.
func exactlyOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
