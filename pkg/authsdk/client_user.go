package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Paths of the user and client endpoints.
const (
	PathRegister       = "/v1/user/register"
	PathUserInfo       = "/v1/user/info"
	PathInternalClient = "/v1/clients/internal"
)

// Register creates a user account with a password.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, PathRegister, bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserInfo returns the token owner's profile. Requires the 'profile' scope.
func (c *SDKClient) UserInfo(ctx context.Context, accessToken string) (*UserInfoResponse, error) {
	resp, err := c.doBearerRequest(ctx, http.MethodGet, PathUserInfo, accessToken)
	if err != nil {
		return nil, err
	}

	var out UserInfoResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// InternalClient returns the first-party client the login UI uses.
func (c *SDKClient) InternalClient(ctx context.Context) (*InternalClientResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, PathInternalClient, nil, nil)
	if err != nil {
		return nil, err
	}

	var out InternalClientResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
