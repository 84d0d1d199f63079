package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenValidator(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := &TokenValidator{Grants: f.grants}

	tok, err := f.grants.Exchange(t.Context(), f.code(t, "openid profile"), testRedirectURI, f.client.ID)
	require.NoError(t, err)

	info, err := v.Validate(t.Context(), tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, info.UserID)

	ok, err := v.RequireScope(t.Context(), tok.AccessToken, "profile")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = v.RequireScope(t.Context(), tok.AccessToken, "email")
	require.NoError(t, err)
	require.False(t, ok)

	p, err := v.Authenticate(t.Context(), tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, p.UserID)
	require.Equal(t, f.client.ID, p.ClientID)
	require.Equal(t, []string{"openid", "profile"}, p.Scopes)

	_, err = v.Validate(t.Context(), "bogus")
	require.ErrorIs(t, err, ErrUnauthorized)

	f.advance(DefaultTokenTTL + time.Second)
	_, err = v.Validate(t.Context(), tok.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = v.RequireScope(t.Context(), tok.AccessToken, "profile")
	require.ErrorIs(t, err, ErrUnauthorized)
}
