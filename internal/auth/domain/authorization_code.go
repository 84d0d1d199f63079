package domain

import "time"

// AuthorizationCode is a single-use credential issued from a bound
// PendingAuthorization. Only the fingerprint of the code is stored.
type AuthorizationCode struct {
	ID          string
	CodeHash    string
	ClientID    string
	UserID      string
	RedirectURI string
	Scopes      []string
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}
