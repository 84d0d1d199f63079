package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/store"
)

const listScopes = `
SELECT scope FROM user_permitted_scopes WHERE user_id = ? ORDER BY scope`

const grantScope = `
INSERT INTO user_permitted_scopes (user_id, scope, created_at) VALUES (?, ?, ?)`

const revokeScope = `
DELETE FROM user_permitted_scopes WHERE user_id = ? AND scope = ?`

type scopesRepo struct {
	db DBTX
	d  Dialect
}

func (r *scopesRepo) ListScopes(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listScopes, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *scopesRepo) GrantScope(ctx context.Context, userID, scope string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, grantScope, userID, scope, unix(now))
	if err = r.d.mapInsert(err); errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}

func (r *scopesRepo) RevokeScope(ctx context.Context, userID, scope string) error {
	_, err := r.db.ExecContext(ctx, revokeScope, userID, scope)
	return err
}
