package domain

import "time"

// PendingAuthorization is a grant attempt awaiting user login. UserID is
// empty until the login step binds it, after which it never changes.
type PendingAuthorization struct {
	ID          string
	ClientID    string
	RedirectURI string
	Scopes      []string
	State       string
	UserID      string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Bound reports whether a user has logged in against this authorization.
func (p PendingAuthorization) Bound() bool { return p.UserID != "" }

// Expired reports whether the authorization is past its window at now.
func (p PendingAuthorization) Expired(now time.Time) bool { return !now.Before(p.ExpiresAt) }
