package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/metrics"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/pkg/cryptox"
	"github.com/aussiebroadwan/miniboss/pkg/idx"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"
)

const (
	DefaultPendingTTL = 10 * time.Minute
	DefaultCodeTTL    = 60 * time.Second
	DefaultTokenTTL   = time.Hour

	responseTypeCode = "code"
	tokenTypeBearer  = "Bearer"
)

// GrantService drives an authorization attempt through its states:
// pending, bound to a user, exchanged for a code, exchanged for a token.
// Every transition is a single conditional write against the store, so
// any number of instances may share one database.
type GrantService struct {
	Store   store.Store
	Users   *UserService
	Clients *ClientService
	Metrics *metrics.Metrics

	PendingTTL time.Duration
	CodeTTL    time.Duration
	TokenTTL   time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// AuthorizationRequest is the query of an authorization request
// (RFC 6749 section 4.1.1).
type AuthorizationRequest struct {
	ClientID     string
	RedirectURI  string
	ResponseType string
	Scope        string
	State        string
}

// AuthorizationView is the login UI's read model of a pending authorization.
type AuthorizationView struct {
	ID          string
	ClientID    string
	ClientName  string
	RedirectURI string
	Scopes      []string
	State       string
	ExpiresAt   time.Time
}

// IssuedCode is what the client receives on its redirect URI.
type IssuedCode struct {
	Code        string
	RedirectURI string
	State       string
}

// TokenInfo is the introspection result. Inactive tokens carry no other
// fields, whatever the reason.
type TokenInfo struct {
	Active    bool
	UserID    string
	ClientID  string
	Scopes    []string
	ExpiresAt time.Time
}

func (s *GrantService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *GrantService) record(transition string, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = OAuth2Code(err)
	}
	s.Metrics.GrantTransition(transition, outcome)
}

// StartAuthorization validates an authorization request and records a
// pending authorization awaiting login. Errors are *GrantError; the
// RedirectURI is only set once the client and its redirect URI have been
// verified.
func (s *GrantService) StartAuthorization(ctx context.Context, req AuthorizationRequest) (p domain.PendingAuthorization, err error) {
	defer func() { s.record(metrics.TransitionStart, err) }()
	l := slogx.FromContext(ctx)

	if req.ClientID == "" {
		return p, &GrantError{Err: ErrInvalidRequest, State: req.State}
	}

	client, err := s.Clients.LookupByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.Info("authorization request from unknown client", slog.String("client_id", req.ClientID))
			return p, &GrantError{Err: ErrUnauthorizedClient, State: req.State}
		}
		return p, &GrantError{Err: err, State: req.State}
	}

	// Omitted redirect_uri falls back to the single registered one.
	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = client.RedirectURI
	}
	if redirectURI != client.RedirectURI {
		l.Info("authorization request redirect_uri mismatch", slog.String("client_id", client.ID))
		return p, &GrantError{Err: ErrInvalidRequest, State: req.State}
	}

	reject := func(err error) error {
		return &GrantError{Err: err, RedirectURI: redirectURI, State: req.State}
	}

	if req.ResponseType != responseTypeCode {
		return p, reject(ErrUnsupportedResponseType)
	}

	scopes := domain.ParseScopes(req.Scope)
	for _, sc := range scopes {
		if !domain.ValidScopeToken(sc) {
			return p, reject(ErrInvalidScope)
		}
	}

	now := s.now()
	p = domain.PendingAuthorization{
		ID:          idx.NewAt(now).String(),
		ClientID:    client.ID,
		RedirectURI: redirectURI,
		Scopes:      scopes,
		State:       req.State,
		ExpiresAt:   now.Add(s.PendingTTL),
		CreatedAt:   now,
	}
	if err := s.Store.PendingAuthorizations().CreatePendingAuthorization(ctx, p); err != nil {
		return domain.PendingAuthorization{}, reject(storageErr("create pending authorization", err))
	}

	l.Debug("authorization started", slog.String("authorization_id", p.ID), slog.String("client_id", client.ID))
	return p, nil
}

// GetAuthorization returns a live pending authorization together with the
// requesting client's display name.
func (s *GrantService) GetAuthorization(ctx context.Context, pendingID string) (AuthorizationView, error) {
	p, err := s.loadPending(ctx, pendingID)
	if err != nil {
		return AuthorizationView{}, err
	}

	client, err := s.Clients.LookupByID(ctx, p.ClientID)
	if err != nil {
		return AuthorizationView{}, err
	}

	return AuthorizationView{
		ID:          p.ID,
		ClientID:    client.ID,
		ClientName:  client.Name,
		RedirectURI: p.RedirectURI,
		Scopes:      p.Scopes,
		State:       p.State,
		ExpiresAt:   p.ExpiresAt,
	}, nil
}

// BindUser authenticates the user and attaches them to the pending
// authorization. Non-admin users may only request scopes they were
// granted plus the OpenID baseline; any other scope rejects the whole
// request. A pending authorization can be bound once.
func (s *GrantService) BindUser(ctx context.Context, pendingID, email, password string) (p domain.PendingAuthorization, err error) {
	defer func() { s.record(metrics.TransitionBind, err) }()
	l := slogx.FromContext(ctx)

	p, err = s.loadPending(ctx, pendingID)
	if err != nil {
		return p, err
	}
	if p.Bound() {
		return p, rejectPending(ErrConflict, p)
	}

	user, err := s.Users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			l.Info("login failed", slog.String("authorization_id", p.ID))
		}
		return p, rejectPending(err, p)
	}

	if !user.IsAdmin {
		permitted, err := s.Users.ListPermittedScopes(ctx, user.ID)
		if err != nil {
			return p, rejectPending(err, p)
		}
		allowed := append(domain.BaselineScopes(), permitted...)
		if ok, missing := domain.ScopeSubset(p.Scopes, allowed); !ok {
			l.Info("login requested scopes the user does not hold",
				slog.String("user_id", user.ID),
				slog.String("scopes", strings.Join(missing, " ")),
			)
			return p, rejectPending(ErrForbidden, p)
		}
	}

	if err := s.Store.PendingAuthorizations().BindUser(ctx, p.ID, user.ID, s.now()); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return p, rejectPending(ErrConflict, p)
		case errors.Is(err, store.ErrNotFound):
			return p, rejectPending(ErrNotFound, p)
		default:
			return p, rejectPending(storageErr("bind user", err), p)
		}
	}

	p.UserID = user.ID
	l.Info("user bound to authorization", slog.String("authorization_id", p.ID), slog.String("user_id", user.ID))
	return p, nil
}

// IssueCode turns a bound pending authorization into a single-use
// authorization code. The pending record is consumed in the same
// transaction that stores the code. An unbound or already consumed
// record is a plain ErrInvalidRequest that carries no redirect target.
func (s *GrantService) IssueCode(ctx context.Context, pendingID string) (issued IssuedCode, err error) {
	defer func() { s.record(metrics.TransitionIssueCode, err) }()

	p, err := s.loadPending(ctx, pendingID)
	if err != nil {
		return issued, err
	}
	if !p.Bound() {
		return issued, ErrInvalidRequest
	}

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return issued, rejectPending(err, p)
	}

	now := s.now()
	code := domain.AuthorizationCode{
		ID:          idx.NewAt(now).String(),
		CodeHash:    cryptox.FingerprintToken(raw),
		ClientID:    p.ClientID,
		UserID:      p.UserID,
		RedirectURI: p.RedirectURI,
		Scopes:      p.Scopes,
		ExpiresAt:   now.Add(s.CodeTTL),
		CreatedAt:   now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PendingAuthorizations().ConsumePendingAuthorization(ctx, p.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRequest
			}
			return storageErr("consume pending authorization", err)
		}
		if err := tx.AuthorizationCodes().CreateAuthorizationCode(ctx, code); err != nil {
			return storageErr("create authorization code", err)
		}
		return nil
	})
	if errors.Is(err, ErrInvalidRequest) {
		return issued, err
	}
	if err != nil {
		return issued, rejectPending(err, p)
	}

	slogx.FromContext(ctx).Info("authorization code issued",
		slog.String("client_id", code.ClientID),
		slog.String("user_id", code.UserID),
	)
	return IssuedCode{Code: raw, RedirectURI: p.RedirectURI, State: p.State}, nil
}

// Exchange redeems an authorization code for an access token (RFC 6749
// section 4.1.3). The code is claimed first, so of several concurrent
// exchanges exactly one succeeds; a mismatched client or redirect URI
// rolls the claim back.
func (s *GrantService) Exchange(ctx context.Context, code, redirectURI, clientID string) (resp domain.TokenResponse, err error) {
	defer func() { s.record(metrics.TransitionExchange, err) }()
	l := slogx.FromContext(ctx)

	if code == "" || clientID == "" {
		return resp, ErrInvalidRequest
	}

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return resp, err
	}

	now := s.now()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		claimed, err := tx.AuthorizationCodes().ClaimAuthorizationCode(ctx, cryptox.FingerprintToken(code), now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return storageErr("claim authorization code", err)
		}

		if claimed.ClientID != clientID || claimed.RedirectURI != redirectURI {
			l.Info("authorization code presented with mismatched client or redirect_uri",
				slog.String("client_id", clientID),
			)
			return ErrInvalidGrant
		}

		token := domain.AccessToken{
			ID:        idx.NewAt(now).String(),
			TokenHash: cryptox.FingerprintToken(raw),
			ClientID:  claimed.ClientID,
			UserID:    claimed.UserID,
			Scopes:    claimed.Scopes,
			ExpiresAt: now.Add(s.TokenTTL),
			CreatedAt: now,
		}
		if err := tx.AccessTokens().CreateAccessToken(ctx, token); err != nil {
			return storageErr("create access token", err)
		}

		resp = domain.TokenResponse{
			AccessToken: raw,
			TokenType:   tokenTypeBearer,
			ExpiresIn:   s.TokenTTL,
			Scopes:      token.Scopes,
		}
		return nil
	})
	if err != nil {
		return domain.TokenResponse{}, err
	}
	return resp, nil
}

// Introspect resolves a bearer token. Unknown and expired tokens are both
// reported as inactive without an error.
func (s *GrantService) Introspect(ctx context.Context, token string) (info TokenInfo, err error) {
	defer func() { s.record(metrics.TransitionIntrospect, err) }()

	if token == "" {
		return TokenInfo{}, nil
	}

	t, err := s.Store.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenInfo{}, nil
		}
		return TokenInfo{}, storageErr("get access token", err)
	}
	if !t.Active(s.now()) {
		return TokenInfo{}, nil
	}

	return TokenInfo{
		Active:    true,
		UserID:    t.UserID,
		ClientID:  t.ClientID,
		Scopes:    t.Scopes,
		ExpiresAt: t.ExpiresAt,
	}, nil
}

func (s *GrantService) loadPending(ctx context.Context, id string) (domain.PendingAuthorization, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.PendingAuthorization{}, ErrNotFound
	}
	p, err := s.Store.PendingAuthorizations().GetPendingAuthorization(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PendingAuthorization{}, ErrNotFound
		}
		return domain.PendingAuthorization{}, storageErr("get pending authorization", err)
	}
	return p, nil
}
