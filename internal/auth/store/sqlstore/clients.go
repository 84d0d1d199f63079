package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
)

const clientColumns = `id, name, redirect_uri, is_internal, created_at`

const createClient = `
INSERT INTO oauth2_clients (id, name, redirect_uri, is_internal, created_at)
VALUES (?, ?, ?, ?, ?)`

const getClientByID = `SELECT ` + clientColumns + ` FROM oauth2_clients WHERE id = ?`

const listClients = `SELECT ` + clientColumns + ` FROM oauth2_clients ORDER BY created_at, id`

const listInternalClients = `SELECT ` + clientColumns + ` FROM oauth2_clients WHERE is_internal = 1 ORDER BY created_at, id`

type clientsRepo struct {
	db DBTX
	d  Dialect
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, createClient,
		c.ID,
		c.Name,
		c.RedirectURI,
		boolToInt(c.IsInternal),
		unix(c.CreatedAt),
	)
	return r.d.mapInsert(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, getClientByID, id))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	return r.list(ctx, listClients)
}

func (r *clientsRepo) ListInternalClients(ctx context.Context) ([]domain.Client, error) {
	return r.list(ctx, listInternalClients)
}

func (r *clientsRepo) list(ctx context.Context, query string) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClient(row scanner) (domain.Client, error) {
	var (
		c         domain.Client
		createdAt int64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.RedirectURI, &c.IsInternal, &createdAt); err != nil {
		return domain.Client{}, err
	}
	c.CreatedAt = fromUnix(createdAt)
	return c, nil
}
