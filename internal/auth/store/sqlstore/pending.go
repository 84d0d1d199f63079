package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
)

const pendingColumns = `id, client_id, redirect_uri, scopes, state, user_id, expires_at, created_at`

const createPending = `
INSERT INTO oauth2_pending_authorizations
	(id, client_id, redirect_uri, scopes, state, user_id, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const getPending = `
SELECT ` + pendingColumns + ` FROM oauth2_pending_authorizations
WHERE id = ? AND expires_at > ?`

// Single assignment: the row only changes while user_id is still NULL.
const bindPendingUser = `
UPDATE oauth2_pending_authorizations SET user_id = ?
WHERE id = ? AND user_id IS NULL AND expires_at > ?`

const consumePending = `
DELETE FROM oauth2_pending_authorizations WHERE id = ? AND user_id IS NOT NULL`

const deleteExpiredPending = `
DELETE FROM oauth2_pending_authorizations WHERE expires_at <= ?`

type pendingRepo struct {
	db DBTX
	d  Dialect
}

func (r *pendingRepo) CreatePendingAuthorization(ctx context.Context, p domain.PendingAuthorization) error {
	_, err := r.db.ExecContext(ctx, createPending,
		p.ID,
		p.ClientID,
		p.RedirectURI,
		joinScopes(p.Scopes),
		p.State,
		nullString(p.UserID),
		unix(p.ExpiresAt),
		unix(p.CreatedAt),
	)
	return r.d.mapInsert(err)
}

func (r *pendingRepo) GetPendingAuthorization(ctx context.Context, id string, now time.Time) (domain.PendingAuthorization, error) {
	var (
		p         domain.PendingAuthorization
		scopes    string
		userID    sql.NullString
		expiresAt int64
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, getPending, id, unix(now)).Scan(
		&p.ID,
		&p.ClientID,
		&p.RedirectURI,
		&scopes,
		&p.State,
		&userID,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return domain.PendingAuthorization{}, mapNotFound(err)
	}

	p.Scopes = splitScopes(scopes)
	p.UserID = userID.String
	p.ExpiresAt = fromUnix(expiresAt)
	p.CreatedAt = fromUnix(createdAt)
	return p, nil
}

func (r *pendingRepo) BindUser(ctx context.Context, id, userID string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, bindPendingUser, userID, id, unix(now))
	if err != nil {
		return err
	}
	ok, err := exactlyOne(res)
	if err != nil || ok {
		return err
	}

	// Nothing updated: either gone/expired, or somebody already bound it.
	p, err := r.GetPendingAuthorization(ctx, id, now)
	if err != nil {
		return err
	}
	if p.Bound() {
		return store.ErrConflict
	}
	return errors.New("sqlstore: pending authorization bind affected no rows")
}

func (r *pendingRepo) ConsumePendingAuthorization(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, consumePending, id)
	if err != nil {
		return err
	}
	ok, err := exactlyOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r *pendingRepo) DeleteExpiredPendingAuthorizations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredPending, unix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
