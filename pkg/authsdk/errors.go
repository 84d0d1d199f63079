package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/miniboss/pkg/httpx"
)

// ============================================================================
// OAuth2 Error Codes (RFC 6749)
// ============================================================================

const (
	// OAuth2 error codes per RFC 6749
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeInvalidGrant            = "invalid_grant"
	ErrorCodeUnauthorizedClient      = "unauthorized_client"
	ErrorCodeUnsupportedGrantType    = "unsupported_grant_type"
	ErrorCodeInvalidScope            = "invalid_scope"
	ErrorCodeServerError             = "server_error"
	ErrorCodeInvalidToken            = "invalid_token"
	ErrorCodeInsufficientScope       = "insufficient_scope"
	ErrorCodeAccessDenied            = "access_denied"
	ErrorCodeUnsupportedResponseType = "unsupported_response_type"
)

// ============================================================================
// OAuth2Error - Standard OAuth2 error type
// ============================================================================

// OAuth2Error represents a standard OAuth2 error response per RFC 6749.
// It implements the error interface and can be used both by the server
// (to write HTTP responses) and by the SDK client (to represent errors).
type OAuth2Error struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this OAuth2Error to an HTTP response writer.
// This is used by HTTP handlers to return OAuth2-compliant error responses.
func (e *OAuth2Error) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// ============================================================================
// Predefined OAuth2 Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned when the request is missing a required parameter,
	// includes an invalid parameter value, includes a parameter more than once,
	// or is otherwise malformed.
	ErrInvalidRequest = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidGrant is returned when the authorization code is invalid,
	// expired, already redeemed, or was issued to another client or
	// redirect URI.
	ErrInvalidGrant = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidGrant,
		Description: "the authorization code is invalid or expired",
	}

	// ErrUnauthorizedClient is returned when the client is unknown or not
	// authorized to request an authorization code.
	ErrUnauthorizedClient = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnauthorizedClient,
		Description: "the client is not authorized to request an authorization code",
	}

	// ErrUnsupportedGrantType is returned when the authorization grant type
	// is not supported by the authorization server.
	ErrUnsupportedGrantType = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnsupportedGrantType,
		Description: "grant type not supported",
	}

	// ErrInvalidScope is returned when the requested scope is invalid, unknown,
	// malformed, or exceeds the scope granted by the resource owner.
	ErrInvalidScope = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidScope,
		Description: "requested scope is invalid",
	}

	// ErrServerError is returned when the authorization server encountered an
	// unexpected condition that prevented it from fulfilling the request.
	ErrServerError = &OAuth2Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	// ErrInvalidContentType is returned when the Content-Type header is not
	// application/x-www-form-urlencoded as required by RFC 6749.
	ErrInvalidContentType = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "content-type must be application/x-www-form-urlencoded",
	}

	// ErrInvalidFormBody is returned when the form body cannot be parsed.
	ErrInvalidFormBody = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid form body",
	}

	// ErrInvalidToken is returned when the access token is missing, invalid or expired.
	ErrInvalidToken = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid or expired",
	}

	// ErrAccessDenied is returned when the resource owner or authorization server denied the request.
	ErrAccessDenied = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	// ErrUnsupportedResponseType is returned when the authorization server does not support
	// obtaining an authorization code using this method.
	ErrUnsupportedResponseType = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnsupportedResponseType,
		Description: "response type not supported",
	}
)

// NewOAuth2Error creates a new OAuth2Error with the given status code, error code, and description.
// This is useful when you need to create custom error messages while maintaining OAuth2 compliance.
func NewOAuth2Error(statusCode int, code, description string) *OAuth2Error {
	return &OAuth2Error{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Login Errors
// ============================================================================

var (
	// ErrInvalidCredentials is returned by the login endpoint for an unknown
	// email or a wrong password; the two are indistinguishable.
	ErrInvalidCredentials = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeAccessDenied,
		Description: "invalid email or password",
	}

	// ErrAuthorizationNotFound is returned when a pending authorization is
	// unknown or has expired.
	ErrAuthorizationNotFound = &OAuth2Error{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeInvalidRequest,
		Description: "authorization not found or expired",
	}

	// ErrAuthorizationBound is returned when a user has already logged in
	// against the authorization.
	ErrAuthorizationBound = &OAuth2Error{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeInvalidRequest,
		Description: "authorization already completed",
	}

	// ErrEmailTaken is returned at registration when the email is in use.
	ErrEmailTaken = &OAuth2Error{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeInvalidRequest,
		Description: "email already registered",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse attempts to parse an HTTP error response into a typed error.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	// Success responses
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Try parsing as standard OAuth2 error
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &OAuth2Error{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Fallback: create generic error from status code
	return &OAuth2Error{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
