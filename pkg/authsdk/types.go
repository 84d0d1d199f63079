package authsdk

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// This is used internally for parsing HTTP error responses.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Authorization Types
// ============================================================================

// AuthorizationInfoResponse describes a pending authorization to the login
// UI. Returned from GET /v1/oauth/authorization-info.
type AuthorizationInfoResponse struct {
	// ID is the pending authorization handle passed to the login endpoint
	ID string `json:"id"`

	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`

	// Scope is the space-delimited list of requested scopes
	Scope string `json:"scope"`

	// ExpiresAt is the epoch time in seconds after which the authorization
	// can no longer be completed
	ExpiresAt int64 `json:"expires_at"`
}

// LoginRequest is the JSON body of POST /v1/oauth/login. Form posts use the
// same field names.
type LoginRequest struct {
	Authorization string `json:"authorization"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

// LoginResponse is returned to JSON callers of the login endpoint.
type LoginResponse struct {
	Status bool `json:"status"`

	// Next is where the user agent should go to receive its authorization code
	Next string `json:"next"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the OAuth2 token endpoint response per RFC 6749.
// Returned from POST /v1/oauth/token.
type TokenResponse struct {
	// AccessToken is the opaque bearer token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer" per RFC 6749
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// TokenInfoResponse is the introspection view of a bearer token.
// When a token is inactive, only the Active field is set.
type TokenInfoResponse struct {
	Active bool `json:"active"`

	// Optional fields (only present when active=true)
	Sub      string `json:"sub,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Scope    string `json:"scope,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
}

// ============================================================================
// User Types
// ============================================================================

// RegisterRequest is the body of POST /v1/user/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the new user's id.
type RegisterResponse struct {
	ID string `json:"id"`
}

// UserInfoResponse is returned from GET /v1/user/info. Requires the
// 'profile' scope.
type UserInfoResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt int64  `json:"created_at"`
}

// ============================================================================
// Client Types
// ============================================================================

// InternalClientResponse identifies the first-party client the login UI
// authorizes itself as. Returned from GET /v1/clients/internal.
type InternalClientResponse struct {
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// InternalClient reports whether exactly one internal client exists
	InternalClient string `json:"internal_client"`
}
