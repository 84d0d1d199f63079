package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/miniboss/pkg/slogx"
)

// AuthorizationCookie is the cookie the first-party login UI stores its
// access token in. Its value carries the same "Bearer " prefix as the header.
const AuthorizationCookie = "Authorization"

const bearerPrefix = "Bearer "

// Authenticator resolves a raw bearer token. Any error rejects the request.
type Authenticator func(ctx context.Context, token string) (Principal, error)

// ExtractBearer returns the token from the Authorization header, falling back
// to the Authorization cookie.
func ExtractBearer(r *http.Request) (string, bool) {
	if token, ok := trimBearer(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if c, err := r.Cookie(AuthorizationCookie); err == nil {
		return trimBearer(c.Value)
	}
	return "", false
}

func trimBearer(v string) (string, bool) {
	if len(v) < len(bearerPrefix) || !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(v[len(bearerPrefix):])
	return token, token != ""
}

// RequireBearer rejects requests without a valid bearer token and injects the
// resolved principal into the request context.
func RequireBearer(authn Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := ExtractBearer(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			p, err := authn(ctx, token)
			if err != nil {
				slogx.FromContext(ctx).Debug("bearer rejected", "error", err)
				writeBearerError(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithPrincipal(ctx, token, p)))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
