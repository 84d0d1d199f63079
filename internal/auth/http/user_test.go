package http_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()

	res, err := e.sdk.Register(ctx, authsdk.RegisterRequest{
		Name:     "Bob",
		Email:    "  Bob@Example.com ",
		Password: testPassword,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)

	u, err := e.users.LookupByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.ID, u.ID)
	assert.False(t, u.IsAdmin)

	t.Run("new user can log in", func(t *testing.T) {
		_, err := e.sdk.AuthorizeWithPassword(ctx, e.client.ID, testRedirectURI, "", []string{"openid"}, "bob@example.com", testPassword)
		require.NoError(t, err)
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := e.sdk.Register(ctx, authsdk.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "x"})
		requireOAuth2Error(t, err, http.StatusConflict, authsdk.ErrorCodeInvalidRequest)
	})

	tests := []struct {
		name string
		req  authsdk.RegisterRequest
	}{
		{"missing password", authsdk.RegisterRequest{Name: "Carol", Email: "carol@example.com"}},
		{"missing name", authsdk.RegisterRequest{Email: "carol@example.com", Password: "x"}},
		{"invalid email", authsdk.RegisterRequest{Name: "Carol", Email: "carol", Password: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sdk.Register(ctx, tt.req)
			requireOAuth2Error(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
		})
	}

	t.Run("form body", func(t *testing.T) {
		resp, err := http.Post(e.srv.URL+authsdk.PathRegister, "application/x-www-form-urlencoded", strings.NewReader(url.Values{
			"name":     {"Dave"},
			"email":    {"dave@example.com"},
			"password": {testPassword},
		}.Encode()))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestUserInfo(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()

	t.Run("profile scope", func(t *testing.T) {
		info, err := e.sdk.UserInfo(ctx, e.token(t, "openid", "profile"))
		require.NoError(t, err)
		assert.Equal(t, e.user.ID, info.ID)
		assert.Equal(t, "Alice", info.Name)
		assert.Empty(t, info.Email)
		assert.False(t, info.IsAdmin)
	})

	t.Run("email scope adds email", func(t *testing.T) {
		info, err := e.sdk.UserInfo(ctx, e.token(t, "profile", "email"))
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", info.Email)
	})

	t.Run("missing profile scope", func(t *testing.T) {
		_, err := e.sdk.UserInfo(ctx, e.token(t, "openid"))
		requireOAuth2Error(t, err, http.StatusForbidden, authsdk.ErrorCodeInsufficientScope)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := e.sdk.UserInfo(ctx, "bogus")
		requireOAuth2Error(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
	})
}

func TestInternalClient(t *testing.T) {
	e := newEnv(t)

	c, err := e.sdk.InternalClient(t.Context())
	require.NoError(t, err)
	assert.Equal(t, e.internal.ID, c.ClientID)
	assert.Equal(t, "https://login.example.com/callback", c.RedirectURI)

	t.Run("missing internal client", func(t *testing.T) {
		e := newEnv(t, withoutInternalClient())
		_, err := e.sdk.InternalClient(t.Context())
		requireOAuth2Error(t, err, http.StatusInternalServerError, authsdk.ErrorCodeServerError)
	})
}
