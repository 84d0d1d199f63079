package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidGrant            = errors.New("invalid_grant")
	ErrInvalidScope            = errors.New("invalid_scope")
	ErrInvalidRequest          = errors.New("invalid_request")
	ErrUnauthorizedClient      = errors.New("unauthorized_client")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrConflict                = errors.New("conflict")

	// ErrInvariantViolation reports a misconfigured deployment (e.g. no
	// internal client). It should stop startup rather than fail a request.
	ErrInvariantViolation = errors.New("invariant violation")

	ErrStorage = errors.New("storage failure")
)

// GrantError is a grant rejection that knows where to send the user agent.
// RedirectURI is empty when the redirect target could not be trusted, in
// which case the error must be rendered directly.
type GrantError struct {
	Err         error
	RedirectURI string
	State       string
}

func (e *GrantError) Error() string { return e.Err.Error() }
func (e *GrantError) Unwrap() error { return e.Err }

func rejectPending(err error, p domain.PendingAuthorization) error {
	return &GrantError{Err: err, RedirectURI: p.RedirectURI, State: p.State}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// OAuth2Code maps a service error onto the RFC 6749 error vocabulary.
// Unknown errors are server_error.
func OAuth2Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		return authsdk.ErrorCodeAccessDenied
	case errors.Is(err, ErrInvalidGrant):
		return authsdk.ErrorCodeInvalidGrant
	case errors.Is(err, ErrInvalidScope):
		return authsdk.ErrorCodeInvalidScope
	case errors.Is(err, ErrUnauthorizedClient):
		return authsdk.ErrorCodeUnauthorizedClient
	case errors.Is(err, ErrUnsupportedResponseType):
		return authsdk.ErrorCodeUnsupportedResponseType
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return authsdk.ErrorCodeInvalidRequest
	default:
		return authsdk.ErrorCodeServerError
	}
}
