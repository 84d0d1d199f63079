package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
)

const createToken = `
INSERT INTO oauth2_access_tokens
	(id, token_hash, client_id, user_id, scopes, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

const getTokenByHash = `
SELECT id, token_hash, client_id, user_id, scopes, expires_at, created_at
FROM oauth2_access_tokens WHERE token_hash = ?`

const deleteExpiredTokens = `DELETE FROM oauth2_access_tokens WHERE expires_at <= ?`

type tokensRepo struct {
	db DBTX
	d  Dialect
}

func (r *tokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.db.ExecContext(ctx, createToken,
		t.ID,
		t.TokenHash,
		t.ClientID,
		t.UserID,
		joinScopes(t.Scopes),
		unix(t.ExpiresAt),
		unix(t.CreatedAt),
	)
	return r.d.mapInsert(err)
}

func (r *tokensRepo) GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error) {
	var (
		t         domain.AccessToken
		scopes    string
		expiresAt int64
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, getTokenByHash, hash).Scan(
		&t.ID,
		&t.TokenHash,
		&t.ClientID,
		&t.UserID,
		&scopes,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}

	t.Scopes = splitScopes(scopes)
	t.ExpiresAt = fromUnix(expiresAt)
	t.CreatedAt = fromUnix(createdAt)
	return t, nil
}

func (r *tokensRepo) DeleteExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredTokens, unix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
