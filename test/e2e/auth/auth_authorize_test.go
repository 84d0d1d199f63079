package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestAuthorizationCodeFlow drives the whole flow through the internal
// client: authorize, login, code, token, introspection and user info.
func TestAuthorizationCodeFlow(t *testing.T) {
	client := authsdk.NewSDKClient(setupContainer(t, false))
	ctx := t.Context()

	_, userID := seedUsers(t, client)

	internal, err := client.InternalClient(ctx)
	require.NoError(t, err)

	res, err := client.AuthorizeWithPassword(ctx,
		internal.ClientID, internal.RedirectURI, "e2e-state",
		[]string{"openid", "profile", "email"},
		userEmail, testPassword,
	)
	require.NoError(t, err)
	require.Equal(t, "e2e-state", res.State)

	tok, err := client.ExchangeAuthorizationCode(ctx, internal.ClientID, res.Code, internal.RedirectURI)
	require.NoError(t, err)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, "email openid profile", tok.Scope)

	info, err := client.TokenInfo(ctx, tok.AccessToken)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, userID, info.Sub)

	me, err := client.UserInfo(ctx, tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userEmail, me.Email)
	require.False(t, me.IsAdmin)

	// Codes are single use.
	_, err = client.ExchangeAuthorizationCode(ctx, internal.ClientID, res.Code, internal.RedirectURI)
	oauthErr := assertOAuth2Error(t, err, http.StatusBadRequest)
	require.Equal(t, authsdk.ErrorCodeInvalidGrant, oauthErr.Code)
}

// TestForbiddenScope verifies a regular user cannot request scopes outside
// the baseline without a grant.
func TestForbiddenScope(t *testing.T) {
	client := authsdk.NewSDKClient(setupContainer(t, false))
	ctx := t.Context()

	seedUsers(t, client)

	internal, err := client.InternalClient(ctx)
	require.NoError(t, err)

	id, err := client.StartAuthorization(ctx, internal.ClientID, internal.RedirectURI, "s", []string{"openid", "admin:write"})
	require.NoError(t, err)

	err = client.Login(ctx, id, userEmail, testPassword)
	oauthErr := assertOAuth2Error(t, err, http.StatusForbidden)
	require.Equal(t, authsdk.ErrorCodeAccessDenied, oauthErr.Code)

	// The admin is not restricted.
	id, err = client.StartAuthorization(ctx, internal.ClientID, internal.RedirectURI, "s", []string{"openid", "admin:write"})
	require.NoError(t, err)
	require.NoError(t, client.Login(ctx, id, adminEmail, testPassword))
}
