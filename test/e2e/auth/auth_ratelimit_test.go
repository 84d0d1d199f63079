package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin verifies the login endpoint is rate limited per IP and
// email (strict limit: 5 req/min).
func TestRateLimitLogin(t *testing.T) {
	client := authsdk.NewSDKClient(setupContainer(t, true))
	ctx := t.Context()

	internal, err := client.InternalClient(ctx)
	require.NoError(t, err)

	id, err := client.StartAuthorization(ctx, internal.ClientID, internal.RedirectURI, "", []string{"openid"})
	require.NoError(t, err)

	for i := range 5 {
		err := client.Login(ctx, id, "nobody@example.com", "wrong")
		assertOAuth2Error(t, err, http.StatusUnauthorized)
		t.Logf("attempt %d rejected as expected", i+1)
	}

	err = client.Login(ctx, id, "nobody@example.com", "wrong")
	assertOAuth2Error(t, err, http.StatusTooManyRequests)
}
