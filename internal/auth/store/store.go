package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict reports that a single-assignment field is already set.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, mysql)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so transactions cannot be nested by accident.
type Store interface {
	Users() Users
	Credentials() Credentials
	PermittedScopes() PermittedScopes
	Clients() Clients
	PendingAuthorizations() PendingAuthorizations
	AuthorizationCodes() AuthorizationCodes
	AccessTokens() AccessTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts u. The stored admin flag is forced on when the
	// users table is empty, decided by the same statement that inserts.
	// Returns the user as stored. Duplicate email is ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already-normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
}

type Credentials interface {
	GetCredential(ctx context.Context, userID string) (domain.Credential, error)
	CreateCredential(ctx context.Context, c domain.Credential) error
	UpdateCredential(ctx context.Context, c domain.Credential) error
}

type PermittedScopes interface {
	ListScopes(ctx context.Context, userID string) ([]string, error)

	// GrantScope is a no-op when the scope is already granted.
	GrantScope(ctx context.Context, userID, scope string, now time.Time) error

	// RevokeScope is a no-op when the scope is not granted.
	RevokeScope(ctx context.Context, userID, scope string) error
}

type Clients interface {
	CreateClient(ctx context.Context, c domain.Client) error
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (oldest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// ListInternalClients returns every client with the internal flag. A
	// healthy deployment has exactly one.
	ListInternalClients(ctx context.Context) ([]domain.Client, error)
}

type PendingAuthorizations interface {
	CreatePendingAuthorization(ctx context.Context, p domain.PendingAuthorization) error

	// GetPendingAuthorization returns a pending authorization that has not
	// expired at now.
	GetPendingAuthorization(ctx context.Context, id string, now time.Time) (domain.PendingAuthorization, error)

	// BindUser sets user_id only if it is currently unset and the record is
	// live. An already bound record is ErrConflict; a missing or expired one
	// is ErrNotFound.
	BindUser(ctx context.Context, id, userID string, now time.Time) error

	// ConsumePendingAuthorization deletes a bound record. Exactly one caller
	// can consume a given id; the rest get ErrNotFound.
	ConsumePendingAuthorization(ctx context.Context, id string) error

	DeleteExpiredPendingAuthorizations(ctx context.Context, now time.Time) (int64, error)
}

type AuthorizationCodes interface {
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error
	GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// ClaimAuthorizationCode marks an unused, unexpired code as used and
	// returns it. Concurrent claims of one code yield exactly one success;
	// the others, and any claim of a used or expired code, get ErrNotFound.
	ClaimAuthorizationCode(ctx context.Context, hash string, now time.Time) (domain.AuthorizationCode, error)

	DeleteExpiredAuthorizationCodes(ctx context.Context, now time.Time) (int64, error)
}

type AccessTokens interface {
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error
	GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error)
	DeleteExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error)
}
