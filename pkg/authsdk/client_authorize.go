package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Paths of the authorization endpoints.
const (
	PathAuthorize         = "/v1/oauth/authorize"
	PathAuthorizationInfo = "/v1/oauth/authorization-info"
	PathLogin             = "/v1/oauth/login"
	PathAuthorization     = "/v1/oauth/authorization"
)

// AuthorizationResult is the outcome of a completed authorization, as
// delivered to the client's redirect URI.
type AuthorizationResult struct {
	Code  string
	State string
}

// BuildAuthorizeURL constructs an OAuth2 authorization URL for the authorization code flow.
// This URL should be used to redirect the user's browser to begin the authorization flow.
//
// Example:
//
//	url := client.BuildAuthorizeURL("3f0c...", "https://app.example.com/callback", "random-state", []string{"openid", "profile"})
//	// Redirect user's browser to url
func (c *SDKClient) BuildAuthorizeURL(clientID, redirectURI, state string, scopes []string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)

	if state != "" {
		params.Set("state", state)
	}

	if len(scopes) > 0 {
		params.Set("scope", strings.Join(scopes, " "))
	}

	return fmt.Sprintf("%s%s?%s", c.BaseURL, PathAuthorize, params.Encode())
}

// StartAuthorization opens an authorization request and returns the
// pending authorization id the login page is redirected with.
func (c *SDKClient) StartAuthorization(
	ctx context.Context,
	clientID, redirectURI, state string,
	scopes []string,
) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildAuthorizeURL(clientID, redirectURI, state, scopes), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	loc, err := readRedirect(resp)
	if err != nil {
		return "", err
	}

	id := loc.Query().Get("authorization")
	if id == "" {
		return "", fmt.Errorf("login redirect missing authorization id")
	}
	return id, nil
}

// GetAuthorizationInfo describes a pending authorization for display on
// the login page.
func (c *SDKClient) GetAuthorizationInfo(ctx context.Context, authorizationID string) (*AuthorizationInfoResponse, error) {
	path := PathAuthorizationInfo + "?" + url.Values{"id": {authorizationID}}.Encode()
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var info AuthorizationInfoResponse
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}

// Login submits the user's credentials against a pending authorization.
func (c *SDKClient) Login(ctx context.Context, authorizationID, email, password string) error {
	body, err := json.Marshal(LoginRequest{
		Authorization: authorizationID,
		Email:         email,
		Password:      password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, PathLogin, bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}
	if !out.Status {
		return ErrServerError
	}
	return nil
}

// CompleteAuthorization exchanges a logged-in pending authorization for an
// authorization code. Rejections redirected to the client come back as
// *OAuth2Error.
func (c *SDKClient) CompleteAuthorization(ctx context.Context, authorizationID string) (*AuthorizationResult, error) {
	path := PathAuthorization + "?" + url.Values{"id": {authorizationID}}.Encode()
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	loc, err := readRedirect(resp)
	if err != nil {
		return nil, err
	}

	code, state, err := ParseAuthorizationCallback(loc.String())
	if err != nil {
		return nil, err
	}
	return &AuthorizationResult{Code: code, State: state}, nil
}

// AuthorizeWithPassword drives the whole browser flow on behalf of a user:
// start, login, then code issuance.
func (c *SDKClient) AuthorizeWithPassword(
	ctx context.Context,
	clientID, redirectURI, state string,
	scopes []string,
	email, password string,
) (*AuthorizationResult, error) {
	id, err := c.StartAuthorization(ctx, clientID, redirectURI, state, scopes)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx, id, email, password); err != nil {
		return nil, err
	}
	return c.CompleteAuthorization(ctx, id)
}

// ParseAuthorizationCallback extracts the authorization code and state from
// the callback URL. Error callbacks are returned as *OAuth2Error.
//
// Example:
//
//	code, state, err := authsdk.ParseAuthorizationCallback("https://localhost/callback?code=xyz&state=abc")
//	if err != nil {
//	    // Handle error (e.g., user denied authorization)
//	}
//	// Verify state matches what you sent
func ParseAuthorizationCallback(callbackURL string) (code, state string, err error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse callback URL: %w", err)
	}

	query := u.Query()

	if errorCode := query.Get("error"); errorCode != "" {
		return "", query.Get("state"), &OAuth2Error{
			StatusCode:  http.StatusSeeOther,
			Code:        errorCode,
			Description: query.Get("error_description"),
		}
	}

	code = query.Get("code")
	if code == "" {
		return "", "", fmt.Errorf("callback missing authorization code")
	}

	state = query.Get("state")

	return code, state, nil
}
