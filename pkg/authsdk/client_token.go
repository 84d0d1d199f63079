package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Paths of the token endpoints.
const (
	PathToken     = "/v1/oauth/token"
	PathTokenInfo = "/v1/oauth/token-info"
)

// ExchangeAuthorizationCode redeems an authorization code for an access
// token. redirectURI must be exactly the one the authorization used.
func (c *SDKClient) ExchangeAuthorizationCode(
	ctx context.Context,
	clientID, code, redirectURI string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
		"client_id":    {clientID},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, PathToken, strings.NewReader(data.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// TokenInfo introspects an access token. Unknown and expired tokens are
// reported as inactive rather than as an error.
func (c *SDKClient) TokenInfo(ctx context.Context, accessToken string) (*TokenInfoResponse, error) {
	resp, err := c.doBearerRequest(ctx, http.MethodGet, PathTokenInfo, accessToken)
	if err != nil {
		return nil, err
	}

	var info TokenInfoResponse
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}
