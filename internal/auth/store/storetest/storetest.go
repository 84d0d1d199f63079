// Package storetest is a conformance suite every store.Store driver must pass.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/pkg/cryptox"
	"github.com/aussiebroadwan/miniboss/pkg/idx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Opener returns a freshly migrated, empty store.
type Opener func(t *testing.T) store.Store

// Run executes the suite. Each subtest gets its own store.
func Run(t *testing.T, open Opener) {
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("Credentials", func(t *testing.T) { testCredentials(t, open(t)) })
	t.Run("PermittedScopes", func(t *testing.T) { testPermittedScopes(t, open(t)) })
	t.Run("Clients", func(t *testing.T) { testClients(t, open(t)) })
	t.Run("PendingAuthorizations", func(t *testing.T) { testPendingAuthorizations(t, open(t)) })
	t.Run("AuthorizationCodes", func(t *testing.T) { testAuthorizationCodes(t, open(t)) })
	t.Run("ConcurrentClaim", func(t *testing.T) { testConcurrentClaim(t, open(t)) })
	t.Run("AccessTokens", func(t *testing.T) { testAccessTokens(t, open(t)) })
	t.Run("WithTxRollback", func(t *testing.T) { testWithTxRollback(t, open(t)) })
}

// now is truncated to seconds because timestamps are stored as unix seconds.
func now() time.Time { return time.Now().UTC().Truncate(time.Second) }

func newUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()
	id, err := cryptox.GenerateString(32)
	require.NoError(t, err)
	u, err := s.Users().CreateUser(t.Context(), domain.User{ID: id, Name: email, Email: email, CreatedAt: now()})
	require.NoError(t, err)
	return u
}

func newClient(t *testing.T, s store.Store, internal bool) domain.Client {
	t.Helper()
	c := domain.Client{
		ID:          uuid.NewString(),
		Name:        "client",
		RedirectURI: "https://app.example.com/callback",
		IsInternal:  internal,
		CreatedAt:   now(),
	}
	require.NoError(t, s.Clients().CreateClient(t.Context(), c))
	return c
}

func testUsers(t *testing.T, s store.Store) {
	ctx := t.Context()

	first := newUser(t, s, "first@example.com")
	require.True(t, first.IsAdmin, "first user is admin")

	second := newUser(t, s, "second@example.com")
	require.False(t, second.IsAdmin, "later users are not admin")

	explicit, err := s.Users().CreateUser(ctx, domain.User{ID: "explicit-admin", Name: "x", Email: "x@example.com", IsAdmin: true, CreatedAt: now()})
	require.NoError(t, err)
	require.True(t, explicit.IsAdmin)

	_, err = s.Users().CreateUser(ctx, domain.User{ID: "dup", Name: "dup", Email: "first@example.com", CreatedAt: now()})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Users().GetUserByEmail(ctx, "second@example.com")
	require.NoError(t, err)
	require.Equal(t, second, got)

	got, err = s.Users().GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first, got)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	all, err := s.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func testCredentials(t *testing.T, s store.Store) {
	ctx := t.Context()
	u := newUser(t, s, "cred@example.com")

	_, err := s.Credentials().GetCredential(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Credentials().UpdateCredential(ctx, domain.Credential{UserID: u.ID, PasswordHash: "h", Salt: []byte("s"), UpdatedAt: now()}), store.ErrNotFound)

	salt := make([]byte, cryptox.SaltSize)
	salt[0] = 0xff
	c := domain.Credential{UserID: u.ID, PasswordHash: "hash-1", Salt: salt, UpdatedAt: now()}
	require.NoError(t, s.Credentials().CreateCredential(ctx, c))
	require.ErrorIs(t, s.Credentials().CreateCredential(ctx, c), store.ErrAlreadyExists)

	got, err := s.Credentials().GetCredential(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, c, got)

	c.PasswordHash = "hash-2"
	require.NoError(t, s.Credentials().UpdateCredential(ctx, c))
	got, err = s.Credentials().GetCredential(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "hash-2", got.PasswordHash)
}

func testPermittedScopes(t *testing.T, s store.Store) {
	ctx := t.Context()
	u := newUser(t, s, "scopes@example.com")
	repo := s.PermittedScopes()

	scopes, err := repo.ListScopes(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, scopes)

	require.NoError(t, repo.GrantScope(ctx, u.ID, "custom:b", now()))
	require.NoError(t, repo.GrantScope(ctx, u.ID, "custom:a", now()))
	require.NoError(t, repo.GrantScope(ctx, u.ID, "custom:a", now()), "granting twice is a no-op")

	scopes, err = repo.ListScopes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"custom:a", "custom:b"}, scopes)

	require.NoError(t, repo.RevokeScope(ctx, u.ID, "custom:a"))
	require.NoError(t, repo.RevokeScope(ctx, u.ID, "custom:a"), "revoking twice is a no-op")

	scopes, err = repo.ListScopes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"custom:b"}, scopes)
}

func testClients(t *testing.T, s store.Store) {
	ctx := t.Context()

	internal, err := s.Clients().ListInternalClients(ctx)
	require.NoError(t, err)
	require.Empty(t, internal)

	ui := newClient(t, s, true)
	app := newClient(t, s, false)

	got, err := s.Clients().GetClientByID(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, app, got)

	internal, err = s.Clients().ListInternalClients(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Client{ui}, internal)

	all, err := s.Clients().ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = s.Clients().GetClientByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Clients().CreateClient(ctx, app), store.ErrAlreadyExists)
}

func newPending(t *testing.T, s store.Store, c domain.Client, expiresAt time.Time) domain.PendingAuthorization {
	t.Helper()
	p := domain.PendingAuthorization{
		ID:          idx.New().String(),
		ClientID:    c.ID,
		RedirectURI: c.RedirectURI,
		Scopes:      []string{"openid", "profile"},
		State:       "xyz",
		ExpiresAt:   expiresAt,
		CreatedAt:   now(),
	}
	require.NoError(t, s.PendingAuthorizations().CreatePendingAuthorization(t.Context(), p))
	return p
}

func testPendingAuthorizations(t *testing.T, s store.Store) {
	ctx := t.Context()
	repo := s.PendingAuthorizations()
	c := newClient(t, s, false)
	alice := newUser(t, s, "alice@example.com")
	bob := newUser(t, s, "bob@example.com")
	ts := now()

	p := newPending(t, s, c, ts.Add(10*time.Minute))

	got, err := repo.GetPendingAuthorization(ctx, p.ID, ts)
	require.NoError(t, err)
	require.Equal(t, p, got)
	require.False(t, got.Bound())

	// Consuming an unbound authorization is refused
	require.ErrorIs(t, repo.ConsumePendingAuthorization(ctx, p.ID), store.ErrNotFound)

	require.NoError(t, repo.BindUser(ctx, p.ID, alice.ID, ts))
	require.ErrorIs(t, repo.BindUser(ctx, p.ID, alice.ID, ts), store.ErrConflict, "same user")
	require.ErrorIs(t, repo.BindUser(ctx, p.ID, bob.ID, ts), store.ErrConflict, "different user")

	got, err = repo.GetPendingAuthorization(ctx, p.ID, ts)
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.UserID)

	require.NoError(t, repo.ConsumePendingAuthorization(ctx, p.ID))
	require.ErrorIs(t, repo.ConsumePendingAuthorization(ctx, p.ID), store.ErrNotFound)
	_, err = repo.GetPendingAuthorization(ctx, p.ID, ts)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Expired records behave as absent
	expired := newPending(t, s, c, ts.Add(-time.Second))
	_, err = repo.GetPendingAuthorization(ctx, expired.ID, ts)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, repo.BindUser(ctx, expired.ID, alice.ID, ts), store.ErrNotFound)
	require.ErrorIs(t, repo.BindUser(ctx, "missing", alice.ID, ts), store.ErrNotFound)

	n, err := repo.DeleteExpiredPendingAuthorizations(ctx, ts)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func newCode(t *testing.T, s store.Store, c domain.Client, u domain.User, expiresAt time.Time) domain.AuthorizationCode {
	t.Helper()
	code := domain.AuthorizationCode{
		ID:          idx.New().String(),
		CodeHash:    cryptox.FingerprintToken(cryptox.MustGenerateToken(cryptox.TokenSize128)),
		ClientID:    c.ID,
		UserID:      u.ID,
		RedirectURI: c.RedirectURI,
		Scopes:      []string{"custom:scope", "openid"},
		ExpiresAt:   expiresAt,
		CreatedAt:   now(),
	}
	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(t.Context(), code))
	return code
}

func testAuthorizationCodes(t *testing.T, s store.Store) {
	ctx := t.Context()
	repo := s.AuthorizationCodes()
	c := newClient(t, s, false)
	u := newUser(t, s, "codes@example.com")
	ts := now()

	code := newCode(t, s, c, u, ts.Add(time.Minute))

	got, err := repo.GetAuthorizationCodeByHash(ctx, code.CodeHash)
	require.NoError(t, err)
	require.Equal(t, code, got)
	require.Nil(t, got.UsedAt)

	claimed, err := repo.ClaimAuthorizationCode(ctx, code.CodeHash, ts)
	require.NoError(t, err)
	require.NotNil(t, claimed.UsedAt)
	require.Equal(t, ts, *claimed.UsedAt)

	_, err = repo.ClaimAuthorizationCode(ctx, code.CodeHash, ts)
	require.ErrorIs(t, err, store.ErrNotFound, "second claim fails")

	expired := newCode(t, s, c, u, ts.Add(-time.Second))
	_, err = repo.ClaimAuthorizationCode(ctx, expired.CodeHash, ts)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.ClaimAuthorizationCode(ctx, "unknown", ts)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := repo.DeleteExpiredAuthorizationCodes(ctx, ts)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func testConcurrentClaim(t *testing.T, s store.Store) {
	c := newClient(t, s, false)
	u := newUser(t, s, "race@example.com")
	code := newCode(t, s, c, u, now().Add(time.Minute))

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(context.Background(), func(tx store.Tx) error {
				_, err := tx.AuthorizationCodes().ClaimAuthorizationCode(context.Background(), code.CodeHash, now())
				return err
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes, "exactly one concurrent claim succeeds")
}

func testAccessTokens(t *testing.T, s store.Store) {
	ctx := t.Context()
	repo := s.AccessTokens()
	c := newClient(t, s, false)
	u := newUser(t, s, "tokens@example.com")
	ts := now()

	tok := domain.AccessToken{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken("token"),
		ClientID:  c.ID,
		UserID:    u.ID,
		Scopes:    []string{"openid"},
		ExpiresAt: ts.Add(time.Hour),
		CreatedAt: ts,
	}
	require.NoError(t, repo.CreateAccessToken(ctx, tok))

	got, err := repo.GetAccessTokenByHash(ctx, tok.TokenHash)
	require.NoError(t, err)
	require.Equal(t, tok, got)

	_, err = repo.GetAccessTokenByHash(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := repo.DeleteExpiredAccessTokens(ctx, ts)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = repo.DeleteExpiredAccessTokens(ctx, ts.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func testWithTxRollback(t *testing.T, s store.Store) {
	ctx := t.Context()
	c := newClient(t, s, false)
	u := newUser(t, s, "tx@example.com")
	code := newCode(t, s, c, u, now().Add(time.Minute))

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.AuthorizationCodes().ClaimAuthorizationCode(ctx, code.CodeHash, now()); err != nil {
			return err
		}
		return store.ErrConflict
	})
	require.ErrorIs(t, err, store.ErrConflict)

	got, err := s.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, code.CodeHash)
	require.NoError(t, err)
	require.Nil(t, got.UsedAt, "rolled back claim leaves the code unused")
}
