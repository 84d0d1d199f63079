package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
)

const getCredential = `
SELECT user_id, password_hash, salt, updated_at
FROM user_credentials WHERE user_id = ?`

const createCredential = `
INSERT INTO user_credentials (user_id, password_hash, salt, updated_at)
VALUES (?, ?, ?, ?)`

const updateCredential = `
UPDATE user_credentials SET password_hash = ?, salt = ?, updated_at = ?
WHERE user_id = ?`

type credentialsRepo struct {
	db DBTX
	d  Dialect
}

func (r *credentialsRepo) GetCredential(ctx context.Context, userID string) (domain.Credential, error) {
	var (
		c         domain.Credential
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, getCredential, userID).
		Scan(&c.UserID, &c.PasswordHash, &c.Salt, &updatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	c.UpdatedAt = fromUnix(updatedAt)
	return c, nil
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	_, err := r.db.ExecContext(ctx, createCredential, c.UserID, c.PasswordHash, c.Salt, unix(c.UpdatedAt))
	return r.d.mapInsert(err)
}

func (r *credentialsRepo) UpdateCredential(ctx context.Context, c domain.Credential) error {
	res, err := r.db.ExecContext(ctx, updateCredential, c.PasswordHash, c.Salt, unix(c.UpdatedAt), c.UserID)
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
