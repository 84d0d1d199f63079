package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"
	"github.com/google/uuid"
)

// ClientService is the registry of OAuth2 clients. Clients are
// provisioned out of band (CLI), never over the public API.
type ClientService struct {
	Store store.Store
}

// Create registers a client. Only one internal client may exist; a second
// is ErrConflict.
func (s *ClientService) Create(ctx context.Context, name, redirectURI string, internal bool) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" || !validRedirectURI(redirectURI) {
		return domain.Client{}, ErrInvalidRequest
	}

	c := domain.Client{
		ID:          uuid.NewString(),
		Name:        name,
		RedirectURI: redirectURI,
		IsInternal:  internal,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if internal {
			existing, err := tx.Clients().ListInternalClients(ctx)
			if err != nil {
				return storageErr("list internal clients", err)
			}
			if len(existing) > 0 {
				return ErrConflict
			}
		}
		if err := tx.Clients().CreateClient(ctx, c); err != nil {
			return storageErr("create client", err)
		}
		return nil
	})
	if err != nil {
		return domain.Client{}, err
	}

	l.Info("client created",
		slog.String("client_id", c.ID),
		slog.String("name", c.Name),
		slog.Bool("internal", c.IsInternal),
	)
	return c, nil
}

func (s *ClientService) LookupByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := s.Store.Clients().GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrNotFound
		}
		return domain.Client{}, storageErr("get client", err)
	}
	return c, nil
}

// LookupInternalClient returns the single first-party client used by the
// login UI. Zero or several internal clients is ErrInvariantViolation.
func (s *ClientService) LookupInternalClient(ctx context.Context) (domain.Client, error) {
	clients, err := s.Store.Clients().ListInternalClients(ctx)
	if err != nil {
		return domain.Client{}, storageErr("list internal clients", err)
	}
	if len(clients) != 1 {
		return domain.Client{}, fmt.Errorf("%w: expected exactly one internal client, found %d", ErrInvariantViolation, len(clients))
	}
	return clients[0], nil
}

func (s *ClientService) List(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.Store.Clients().ListClients(ctx)
	if err != nil {
		return nil, storageErr("list clients", err)
	}
	return clients, nil
}

// validRedirectURI accepts absolute URIs without a fragment (RFC 6749
// section 3.1.2).
func validRedirectURI(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != "" && u.Fragment == ""
}
