package service

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/miniboss/pkg/httpx"
)

// TokenValidator is the read path protected routes use to resolve bearer
// tokens.
type TokenValidator struct {
	Grants *GrantService
}

// Validate returns the token's grant, or ErrUnauthorized when the token is
// unknown or expired.
func (v *TokenValidator) Validate(ctx context.Context, token string) (TokenInfo, error) {
	info, err := v.Grants.Introspect(ctx, token)
	if err != nil {
		return TokenInfo{}, err
	}
	if !info.Active {
		return TokenInfo{}, ErrUnauthorized
	}
	return info, nil
}

// RequireScope reports whether token is active and carries scope.
func (v *TokenValidator) RequireScope(ctx context.Context, token, scope string) (bool, error) {
	info, err := v.Validate(ctx, token)
	if err != nil {
		return false, err
	}
	return slices.Contains(info.Scopes, scope), nil
}

// Authenticate adapts Validate to httpx.RequireBearer.
func (v *TokenValidator) Authenticate(ctx context.Context, token string) (httpx.Principal, error) {
	info, err := v.Validate(ctx, token)
	if err != nil {
		return httpx.Principal{}, err
	}
	return httpx.Principal{UserID: info.UserID, ClientID: info.ClientID, Scopes: info.Scopes}, nil
}
