package authsdk

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	client := NewSDKClient("https://auth.example.com/")

	t.Run("minimal parameters", func(t *testing.T) {
		url := client.BuildAuthorizeURL("test-client", "https://app.example.com/callback", "", nil)
		require.Contains(t, url, "https://auth.example.com/v1/oauth/authorize?")
		require.Contains(t, url, "response_type=code")
		require.Contains(t, url, "client_id=test-client")
		require.Contains(t, url, "redirect_uri=https%3A%2F%2Fapp.example.com%2Fcallback")
		require.NotContains(t, url, "state=")
		require.NotContains(t, url, "scope=")
	})

	t.Run("all parameters", func(t *testing.T) {
		url := client.BuildAuthorizeURL("test-client", "https://app.example.com/callback", "state123", []string{"openid", "custom:scope"})
		require.Contains(t, url, "state=state123")
		require.Contains(t, url, "scope=openid+custom%3Ascope")
	})
}

func TestParseAuthorizationCallback(t *testing.T) {
	t.Parallel()

	t.Run("success with code and state", func(t *testing.T) {
		code, state, err := ParseAuthorizationCallback("https://app.example.com/callback?code=auth-code-123&state=random-state")
		require.NoError(t, err)
		require.Equal(t, "auth-code-123", code)
		require.Equal(t, "random-state", state)
	})

	t.Run("success with code only", func(t *testing.T) {
		code, state, err := ParseAuthorizationCallback("https://app.example.com/callback?code=auth-code-456")
		require.NoError(t, err)
		require.Equal(t, "auth-code-456", code)
		require.Empty(t, state)
	})

	t.Run("error response keeps state", func(t *testing.T) {
		_, state, err := ParseAuthorizationCallback("https://app.example.com/callback?error=access_denied&error_description=User+denied+access&state=xyz")
		require.Error(t, err)
		require.Equal(t, "xyz", state)

		var oauthErr *OAuth2Error
		require.True(t, errors.As(err, &oauthErr))
		require.Equal(t, ErrorCodeAccessDenied, oauthErr.Code)
		require.Contains(t, err.Error(), "User denied access")
	})

	t.Run("missing code", func(t *testing.T) {
		_, _, err := ParseAuthorizationCallback("https://app.example.com/callback?state=random-state")
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing authorization code")
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, _, err := ParseAuthorizationCallback("://invalid-url")
		require.Error(t, err)
		require.Contains(t, strings.ToLower(err.Error()), "parse")
	})
}
