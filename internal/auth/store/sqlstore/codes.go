package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
)

const codeColumns = `id, code_hash, client_id, user_id, redirect_uri, scopes, expires_at, used_at, created_at`

const createCode = `
INSERT INTO oauth2_codes
	(id, code_hash, client_id, user_id, redirect_uri, scopes, expires_at, used_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)`

const getCodeByHash = `SELECT ` + codeColumns + ` FROM oauth2_codes WHERE code_hash = ?`

// Check-and-set: only an unused, unexpired code is claimed.
const claimCode = `
UPDATE oauth2_codes SET used_at = ?
WHERE code_hash = ? AND used_at IS NULL AND expires_at > ?`

const deleteExpiredCodes = `DELETE FROM oauth2_codes WHERE expires_at <= ?`

type codesRepo struct {
	db DBTX
	d  Dialect
}

func (r *codesRepo) CreateAuthorizationCode(ctx context.Context, c domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx, createCode,
		c.ID,
		c.CodeHash,
		c.ClientID,
		c.UserID,
		c.RedirectURI,
		joinScopes(c.Scopes),
		unix(c.ExpiresAt),
		unix(c.CreatedAt),
	)
	return r.d.mapInsert(err)
}

func (r *codesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	var (
		c         domain.AuthorizationCode
		scopes    string
		expiresAt int64
		usedAt    sql.NullInt64
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, getCodeByHash, hash).Scan(
		&c.ID,
		&c.CodeHash,
		&c.ClientID,
		&c.UserID,
		&c.RedirectURI,
		&scopes,
		&expiresAt,
		&usedAt,
		&createdAt,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}

	c.Scopes = splitScopes(scopes)
	c.ExpiresAt = fromUnix(expiresAt)
	c.UsedAt = fromNullUnix(usedAt)
	c.CreatedAt = fromUnix(createdAt)
	return c, nil
}

func (r *codesRepo) ClaimAuthorizationCode(ctx context.Context, hash string, now time.Time) (domain.AuthorizationCode, error) {
	res, err := r.db.ExecContext(ctx, claimCode, unix(now), hash, unix(now))
	if err != nil {
		return domain.AuthorizationCode{}, err
	}
	ok, err := exactlyOne(res)
	if err != nil {
		return domain.AuthorizationCode{}, err
	}
	if !ok {
		return domain.AuthorizationCode{}, store.ErrNotFound
	}
	return r.GetAuthorizationCodeByHash(ctx, hash)
}

func (r *codesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredCodes, unix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
