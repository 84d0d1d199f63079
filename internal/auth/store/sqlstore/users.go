package sqlstore

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
)

const userColumns = `id, name, email, is_admin, created_at`

// The admin flag is decided inside the insert so two registrations can never
// both observe an empty table.
const createUser = `
INSERT INTO users (id, name, email, is_admin, created_at)
SELECT ?, ?, ?, CASE WHEN ? = 1 OR existing.n = 0 THEN 1 ELSE 0 END, ?
FROM (SELECT COUNT(*) AS n FROM users) AS existing`

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

type usersRepo struct {
	db DBTX
	d  Dialect
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	_, err := r.db.ExecContext(ctx, createUser,
		u.ID,
		u.Name,
		u.Email,
		boolToInt(u.IsAdmin),
		unix(u.CreatedAt),
	)
	if err != nil {
		return domain.User{}, r.d.mapInsert(err)
	}
	return r.GetUserByID(ctx, u.ID)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByID, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmail, email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row scanner) (domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &createdAt); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = fromUnix(createdAt)
	return u, nil
}
