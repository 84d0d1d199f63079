package domain

import "time"

// AccessToken is an opaque bearer token record. Tokens are never mutated
// after issuance.
type AccessToken struct {
	ID        string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	ClientID  string
	UserID    string
	Scopes    []string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Active reports whether the token is still usable at now.
func (t AccessToken) Active(now time.Time) bool { return now.Before(t.ExpiresAt) }

// TokenResponse is what the token endpoint hands back to the client.
type TokenResponse struct {
	AccessToken string
	TokenType   string // always "Bearer"
	ExpiresIn   time.Duration
	Scopes      []string
}
