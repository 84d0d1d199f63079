package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/miniboss/internal/auth/store"
)

type txStore struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays open.
func (t *txStore) Close() error { return nil }

// Ping is a no-op for transactions; the connection is already established.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users                     { return &usersRepo{db: t.tx, d: t.dialect} }
func (t *txStore) Credentials() store.Credentials         { return &credentialsRepo{db: t.tx, d: t.dialect} }
func (t *txStore) PermittedScopes() store.PermittedScopes { return &scopesRepo{db: t.tx, d: t.dialect} }
func (t *txStore) Clients() store.Clients                 { return &clientsRepo{db: t.tx, d: t.dialect} }
func (t *txStore) PendingAuthorizations() store.PendingAuthorizations {
	return &pendingRepo{db: t.tx, d: t.dialect}
}
func (t *txStore) AuthorizationCodes() store.AuthorizationCodes { return &codesRepo{db: t.tx, d: t.dialect} }
func (t *txStore) AccessTokens() store.AccessTokens             { return &tokensRepo{db: t.tx, d: t.dialect} }
