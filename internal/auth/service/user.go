package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/pkg/cryptox"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"
)

const userIDLength = 32

// dummyHash is verified against when the email is unknown or the user has
// no password, so the response time does not reveal either.
var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.Derive("miniboss-dummy-password", make([]byte, cryptox.SaltSize), "")
	if err != nil {
		panic(err)
	}
	return h
})

// UserService is the user directory: accounts, password credentials and
// per-user scope permissions.
type UserService struct {
	Store store.Store

	// Pepper is mixed into every password hash. It must stay stable for the
	// lifetime of the database.
	Pepper string
}

// NormalizeEmail trims and lower-cases an address. Stored emails are
// always normalized.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. The first user ever registered is made admin
// regardless of isAdmin. A taken email is ErrConflict.
func (s *UserService) Register(ctx context.Context, name, email string, isAdmin bool) (domain.User, error) {
	u, err := newUser(name, email, isAdmin)
	if err != nil {
		return domain.User{}, err
	}

	u, err = createUser(ctx, s.Store, u)
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.String("user_id", u.ID),
		slog.Bool("admin", u.IsAdmin),
	)
	return u, nil
}

// RegisterWithPassword creates a user and its password credential in one
// transaction. Either both rows exist afterwards or neither does.
func (s *UserService) RegisterWithPassword(ctx context.Context, name, email, password string, isAdmin bool) (domain.User, error) {
	if password == "" {
		return domain.User{}, ErrInvalidRequest
	}
	u, err := newUser(name, email, isAdmin)
	if err != nil {
		return domain.User{}, err
	}
	cred, err := s.newCredential(u.ID, password)
	if err != nil {
		return domain.User{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		created, err := createUser(ctx, tx, u)
		if err != nil {
			return err
		}
		if err := tx.Credentials().CreateCredential(ctx, cred); err != nil {
			return storageErr("create credential", err)
		}
		u = created
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.String("user_id", u.ID),
		slog.Bool("admin", u.IsAdmin),
	)
	return u, nil
}

func newUser(name, email string, isAdmin bool) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidRequest
	}

	id, err := cryptox.GenerateString(userIDLength)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:        id,
		Name:      name,
		Email:     email,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func createUser(ctx context.Context, st store.Store, u domain.User) (domain.User, error) {
	created, err := st.Users().CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, storageErr("create user", err)
	}
	return created, nil
}

func (s *UserService) newCredential(userID, plaintext string) (domain.Credential, error) {
	salt, err := cryptox.NewSalt()
	if err != nil {
		return domain.Credential{}, err
	}
	hash, err := cryptox.Derive(plaintext, salt, s.Pepper)
	if err != nil {
		return domain.Credential{}, err
	}
	return domain.Credential{
		UserID:       userID,
		PasswordHash: hash,
		Salt:         salt,
		UpdatedAt:    time.Now().UTC(),
	}, nil
}

// SetPassword replaces the user's password with a freshly salted hash.
func (s *UserService) SetPassword(ctx context.Context, userID, plaintext string) error {
	if plaintext == "" {
		return ErrInvalidRequest
	}

	cred, err := s.newCredential(userID, plaintext)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return storageErr("get user", err)
		}

		_, err := tx.Credentials().GetCredential(ctx, userID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			err = tx.Credentials().CreateCredential(ctx, cred)
		case err == nil:
			err = tx.Credentials().UpdateCredential(ctx, cred)
		}
		if err != nil {
			return storageErr("store credential", err)
		}
		return nil
	})
}

// VerifyPassword checks plaintext against the stored credential. A user
// without a password never verifies, but still pays for a hash.
func (s *UserService) VerifyPassword(ctx context.Context, userID, plaintext string) (bool, error) {
	cred, err := s.Store.Credentials().GetCredential(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_, _ = cryptox.Verify(dummyHash(), plaintext, s.Pepper)
			return false, nil
		}
		return false, storageErr("get credential", err)
	}
	return cryptox.Verify(cred.PasswordHash, plaintext, s.Pepper)
}

// Authenticate resolves email and password to a user. Unknown emails and
// wrong passwords both return ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_, _ = cryptox.Verify(dummyHash(), password, s.Pepper)
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, err
	}

	ok, err := s.VerifyPassword(ctx, u.ID, password)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrUnauthorized
	}
	return u, nil
}

func (s *UserService) LookupByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, storageErr("get user", err)
	}
	return u, nil
}

func (s *UserService) LookupByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, storageErr("get user", err)
	}
	return u, nil
}

// ListPermittedScopes returns the scopes explicitly granted to the user,
// not counting the baseline OpenID scopes.
func (s *UserService) ListPermittedScopes(ctx context.Context, userID string) ([]string, error) {
	scopes, err := s.Store.PermittedScopes().ListScopes(ctx, userID)
	if err != nil {
		return nil, storageErr("list scopes", err)
	}
	return scopes, nil
}

// GrantScope permits the user to request scope. Granting twice is a no-op.
func (s *UserService) GrantScope(ctx context.Context, userID, scope string) error {
	if !domain.ValidScopeToken(scope) {
		return ErrInvalidScope
	}
	if _, err := s.LookupByID(ctx, userID); err != nil {
		return err
	}
	if err := s.Store.PermittedScopes().GrantScope(ctx, userID, scope, time.Now().UTC()); err != nil {
		return storageErr("grant scope", err)
	}
	return nil
}

// RevokeScope removes a permission. Revoking an absent scope is a no-op.
func (s *UserService) RevokeScope(ctx context.Context, userID, scope string) error {
	if err := s.Store.PermittedScopes().RevokeScope(ctx, userID, scope); err != nil {
		return storageErr("revoke scope", err)
	}
	return nil
}
