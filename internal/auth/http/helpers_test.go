package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/miniboss/internal/auth/http"
	"github.com/aussiebroadwan/miniboss/internal/auth/metrics"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testPepper      = "test-pepper"
	testPassword    = "correct horse battery staple"
	testRedirectURI = "https://app.example.com/callback"
	loginURI        = "https://login.example.com/login"
)

// env is a running server over an in-memory store with an internal
// client, a third-party client, an admin and a regular user.
type env struct {
	srv    *httptest.Server
	sdk    *authsdk.SDKClient
	store  store.Store
	users  *service.UserService
	grants *service.GrantService

	internal domain.Client
	client   domain.Client
	admin    domain.User
	user     domain.User
}

type envOption func(*envConfig)

type envConfig struct {
	withoutInternal bool
	limits          *authhttp.Limits
}

func withoutInternalClient() envOption {
	return func(c *envConfig) { c.withoutInternal = true }
}

func withLimits(l authhttp.Limits) envOption {
	return func(c *envConfig) { c.limits = &l }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()
	ctx := t.Context()

	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	m := metrics.New()
	users := &service.UserService{Store: st, Pepper: testPepper}
	clients := &service.ClientService{Store: st}
	grants := &service.GrantService{
		Store:      st,
		Users:      users,
		Clients:    clients,
		Metrics:    m,
		PendingTTL: service.DefaultPendingTTL,
		CodeTTL:    service.DefaultCodeTTL,
		TokenTTL:   service.DefaultTokenTTL,
	}

	router := authhttp.NewRouter("test", st, m, slogx.Discard())
	router.LoginURL = loginURI
	router.UserService = users
	router.ClientService = clients
	router.GrantService = grants
	router.TokenValidator = &service.TokenValidator{Grants: grants}
	if cfg.limits != nil {
		router.Limits = *cfg.limits
	} else {
		router.Limits = authhttp.Limits{Disabled: true}
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	e := &env{
		srv:    srv,
		sdk:    authsdk.NewSDKClient(srv.URL),
		store:  st,
		users:  users,
		grants: grants,
	}

	if !cfg.withoutInternal {
		e.internal, err = clients.Create(ctx, "Login", "https://login.example.com/callback", true)
		require.NoError(t, err)
	}
	e.client, err = clients.Create(ctx, "Example App", testRedirectURI, false)
	require.NoError(t, err)

	e.admin, err = users.Register(ctx, "Admin", "admin@example.com", false)
	require.NoError(t, err)
	require.NoError(t, users.SetPassword(ctx, e.admin.ID, testPassword))

	e.user, err = users.Register(ctx, "Alice", "alice@example.com", false)
	require.NoError(t, err)
	require.NoError(t, users.SetPassword(ctx, e.user.ID, testPassword))

	return e
}

// noRedirect is an HTTP client that reports redirects instead of following them.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// token runs the full flow for the regular user and returns an access token.
func (e *env) token(t *testing.T, scopes ...string) string {
	t.Helper()
	ctx := t.Context()

	res, err := e.sdk.AuthorizeWithPassword(ctx, e.client.ID, testRedirectURI, "state", scopes, e.user.Email, testPassword)
	require.NoError(t, err)

	tok, err := e.sdk.ExchangeAuthorizationCode(ctx, e.client.ID, res.Code, testRedirectURI)
	require.NoError(t, err)
	return tok.AccessToken
}

func requireOAuth2Error(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)

	var oauthErr *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oauthErr)
	require.Equal(t, status, oauthErr.StatusCode)
	require.Equal(t, code, oauthErr.Code)
}

func decode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
