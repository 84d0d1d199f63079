package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("first user is admin", func(t *testing.T) {
		t.Parallel()
		users := &UserService{Store: newTestStore(t), Pepper: testPepper}

		first, err := users.Register(t.Context(), "First", "first@example.com", false)
		require.NoError(t, err)
		require.True(t, first.IsAdmin)

		second, err := users.Register(t.Context(), "Second", "second@example.com", false)
		require.NoError(t, err)
		require.False(t, second.IsAdmin)

		promoted, err := users.Register(t.Context(), "Third", "third@example.com", true)
		require.NoError(t, err)
		require.True(t, promoted.IsAdmin)
	})

	t.Run("duplicate email is a conflict regardless of case", func(t *testing.T) {
		t.Parallel()
		users := &UserService{Store: newTestStore(t), Pepper: testPepper}

		u, err := users.Register(t.Context(), "Bob", "  Bob@Example.com ", false)
		require.NoError(t, err)
		require.Equal(t, "bob@example.com", u.Email)
		require.Len(t, u.ID, userIDLength)

		_, err = users.Register(t.Context(), "Bobby", "bob@example.com", false)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("rejects incomplete input", func(t *testing.T) {
		t.Parallel()
		users := &UserService{Store: newTestStore(t), Pepper: testPepper}

		_, err := users.Register(t.Context(), "", "x@example.com", false)
		require.ErrorIs(t, err, ErrInvalidRequest)
		_, err = users.Register(t.Context(), "X", "not-an-email", false)
		require.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestPasswords(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	users := &UserService{Store: newTestStore(t), Pepper: testPepper}

	u, err := users.Register(ctx, "Carol", "carol@example.com", false)
	require.NoError(t, err)

	ok, err := users.VerifyPassword(ctx, u.ID, "anything")
	require.NoError(t, err)
	require.False(t, ok, "user without credential never verifies")

	require.NoError(t, users.SetPassword(ctx, u.ID, "first-password"))
	ok, err = users.VerifyPassword(ctx, u.ID, "first-password")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, users.SetPassword(ctx, u.ID, "second-password"))
	ok, err = users.VerifyPassword(ctx, u.ID, "first-password")
	require.NoError(t, err)
	require.False(t, ok, "old password no longer verifies")
	ok, err = users.VerifyPassword(ctx, u.ID, "second-password")
	require.NoError(t, err)
	require.True(t, ok)

	// A different pepper invalidates every stored hash
	other := &UserService{Store: users.Store, Pepper: "other-pepper"}
	ok, err = other.VerifyPassword(ctx, u.ID, "second-password")
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, users.SetPassword(ctx, "missing-user", "pw"), ErrNotFound)
	require.ErrorIs(t, users.SetPassword(ctx, u.ID, ""), ErrInvalidRequest)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()

	u, err := f.users.Authenticate(ctx, "ALICE@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, u.ID)

	_, errWrongPassword := f.users.Authenticate(ctx, f.user.Email, "wrong")
	_, errUnknownEmail := f.users.Authenticate(ctx, "nobody@example.com", testPassword)
	require.ErrorIs(t, errWrongPassword, ErrUnauthorized)
	require.ErrorIs(t, errUnknownEmail, ErrUnauthorized)
	require.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
}

func TestAuthenticate_UserWithoutPasswordStillHashes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()

	nopw, err := f.users.Register(ctx, "Dave", "dave@example.com", false)
	require.NoError(t, err)

	fastest := func(email string) time.Duration {
		best := time.Duration(1<<63 - 1)
		for range 3 {
			start := time.Now()
			_, err := f.users.Authenticate(ctx, email, "wrong")
			elapsed := time.Since(start)
			require.ErrorIs(t, err, ErrUnauthorized)
			best = min(best, elapsed)
		}
		return best
	}

	wrongPassword := fastest(f.user.Email)
	noCredential := fastest(nopw.Email)
	require.GreaterOrEqual(t, noCredential, wrongPassword/4,
		"no credential took %s, wrong password took %s", noCredential, wrongPassword)
}

func TestRegisterWithPassword(t *testing.T) {
	t.Parallel()

	t.Run("creates user and credential", func(t *testing.T) {
		t.Parallel()
		users := &UserService{Store: newTestStore(t), Pepper: testPepper}

		u, err := users.RegisterWithPassword(t.Context(), "Erin", "Erin@Example.com", testPassword, false)
		require.NoError(t, err)
		require.Equal(t, "erin@example.com", u.Email)
		require.True(t, u.IsAdmin, "first user is admin")

		got, err := users.Authenticate(t.Context(), "erin@example.com", testPassword)
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)

		_, err = users.RegisterWithPassword(t.Context(), "Erin", "erin@example.com", "other", false)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("rejects empty password without creating the user", func(t *testing.T) {
		t.Parallel()
		users := &UserService{Store: newTestStore(t), Pepper: testPepper}

		_, err := users.RegisterWithPassword(t.Context(), "Frank", "frank@example.com", "", false)
		require.ErrorIs(t, err, ErrInvalidRequest)

		_, err = users.LookupByEmail(t.Context(), "frank@example.com")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("credential failure leaves no user behind", func(t *testing.T) {
		t.Parallel()
		st := newTestStore(t)
		users := &UserService{Store: failingCredentialStore{st}, Pepper: testPepper}

		_, err := users.RegisterWithPassword(t.Context(), "Grace", "grace@example.com", testPassword, false)
		require.ErrorIs(t, err, ErrStorage)

		_, err = (&UserService{Store: st}).LookupByEmail(t.Context(), "grace@example.com")
		require.ErrorIs(t, err, ErrNotFound)

		// The email is still free
		_, err = (&UserService{Store: st, Pepper: testPepper}).RegisterWithPassword(t.Context(), "Grace", "grace@example.com", testPassword, false)
		require.NoError(t, err)
	})
}

var errCredentialWrite = errors.New("credential write failed")

// failingCredentialStore fails every credential insert made inside a
// transaction.
type failingCredentialStore struct{ store.Store }

func (s failingCredentialStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(failingCredentialTx{tx})
	})
}

// txStore aliases store.Tx so the embedded field name does not collide
// with the promoted Tx method.
type txStore = store.Tx

type failingCredentialTx struct{ txStore }

func (tx failingCredentialTx) Credentials() store.Credentials {
	return failingCredentials{tx.txStore.Credentials()}
}

type failingCredentials struct{ store.Credentials }

func (failingCredentials) CreateCredential(context.Context, domain.Credential) error {
	return errCredentialWrite
}

func TestPermittedScopes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := t.Context()

	require.NoError(t, f.users.GrantScope(ctx, f.user.ID, "custom:scope"))
	require.NoError(t, f.users.GrantScope(ctx, f.user.ID, "custom:scope"))

	scopes, err := f.users.ListPermittedScopes(ctx, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"custom:scope"}, scopes)

	require.ErrorIs(t, f.users.GrantScope(ctx, f.user.ID, `bad"scope`), ErrInvalidScope)
	require.ErrorIs(t, f.users.GrantScope(ctx, "missing", "custom:scope"), ErrNotFound)

	require.NoError(t, f.users.RevokeScope(ctx, f.user.ID, "custom:scope"))
	require.NoError(t, f.users.RevokeScope(ctx, f.user.ID, "custom:scope"))

	scopes, err = f.users.ListPermittedScopes(ctx, f.user.ID)
	require.NoError(t, err)
	require.Empty(t, scopes)
}

func TestLookup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	u, err := f.users.LookupByID(t.Context(), f.user.ID)
	require.NoError(t, err)
	require.Equal(t, f.user, u)

	_, err = f.users.LookupByID(t.Context(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.users.LookupByEmail(t.Context(), "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}
