package domain

import "time"

// Client is a registered OAuth2 client. RedirectURI is compared by exact
// string equality. Exactly one client per deployment is internal: the
// first-party login UI.
type Client struct {
	ID          string
	Name        string
	RedirectURI string
	IsInternal  bool
	CreatedAt   time.Time
}
