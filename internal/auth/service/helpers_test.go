package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

const (
	testPepper      = "test-pepper"
	testRedirectURI = "https://app.example.com/callback"
	testPassword    = "correct horse battery staple"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

// fixture wires the services over a fresh store with one third-party
// client, an admin and a regular user, both with testPassword.
type fixture struct {
	store   store.Store
	users   *UserService
	clients *ClientService
	grants  *GrantService

	client domain.Client
	admin  domain.User
	user   domain.User

	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := t.Context()

	st := newTestStore(t)
	f := &fixture{
		store:   st,
		users:   &UserService{Store: st, Pepper: testPepper},
		clients: &ClientService{Store: st},
		now:     time.Now().UTC(),
	}
	f.grants = &GrantService{
		Store:      st,
		Users:      f.users,
		Clients:    f.clients,
		PendingTTL: DefaultPendingTTL,
		CodeTTL:    DefaultCodeTTL,
		TokenTTL:   DefaultTokenTTL,
		Now:        func() time.Time { return f.now },
	}

	var err error
	f.client, err = f.clients.Create(ctx, "Example App", testRedirectURI, false)
	require.NoError(t, err)

	f.admin, err = f.users.Register(ctx, "Admin", "admin@example.com", false)
	require.NoError(t, err)
	require.NoError(t, f.users.SetPassword(ctx, f.admin.ID, testPassword))

	f.user, err = f.users.Register(ctx, "Alice", "alice@example.com", false)
	require.NoError(t, err)
	require.NoError(t, f.users.SetPassword(ctx, f.user.ID, testPassword))

	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) start(t *testing.T, scope, state string) domain.PendingAuthorization {
	t.Helper()
	p, err := f.grants.StartAuthorization(t.Context(), AuthorizationRequest{
		ClientID:     f.client.ID,
		RedirectURI:  testRedirectURI,
		ResponseType: "code",
		Scope:        scope,
		State:        state,
	})
	require.NoError(t, err)
	return p
}

// code runs the flow up to code issuance for the regular user.
func (f *fixture) code(t *testing.T, scope string) string {
	t.Helper()
	p := f.start(t, scope, "state")
	_, err := f.grants.BindUser(t.Context(), p.ID, f.user.Email, testPassword)
	require.NoError(t, err)
	issued, err := f.grants.IssueCode(t.Context(), p.ID)
	require.NoError(t, err)
	return issued.Code
}
