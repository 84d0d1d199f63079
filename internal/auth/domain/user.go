package domain

import "time"

// User is an end user of the authorization server. The first user ever
// registered is the admin.
type User struct {
	ID        string // 32 alphanumeric characters
	Name      string
	Email     string // normalized: trimmed and lower-cased
	IsAdmin   bool
	CreatedAt time.Time
}

// Credential is the stored password material for a user. A user without a
// Credential cannot log in.
type Credential struct {
	UserID       string
	PasswordHash string // bcrypt modular-crypt form
	Salt         []byte // 16 raw bytes, also embedded in PasswordHash
	UpdatedAt    time.Time
}
