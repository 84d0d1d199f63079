package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"
)

// oauth2Error maps a service error to its wire form.
func oauth2Error(err error) *authsdk.OAuth2Error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return authsdk.ErrAuthorizationNotFound
	case errors.Is(err, service.ErrConflict):
		return authsdk.ErrAuthorizationBound
	case errors.Is(err, service.ErrUnauthorized):
		return authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrForbidden):
		return authsdk.ErrAccessDenied
	case errors.Is(err, service.ErrInvalidGrant):
		return authsdk.ErrInvalidGrant
	case errors.Is(err, service.ErrInvalidScope):
		return authsdk.ErrInvalidScope
	case errors.Is(err, service.ErrUnauthorizedClient):
		return authsdk.ErrUnauthorizedClient
	case errors.Is(err, service.ErrUnsupportedResponseType):
		return authsdk.ErrUnsupportedResponseType
	case errors.Is(err, service.ErrInvalidRequest):
		return authsdk.ErrInvalidRequest
	default:
		return authsdk.ErrServerError
	}
}

// writeGrantError renders a grant rejection. When the service vouched for
// the redirect URI the user agent is sent back to the client with error
// and state; otherwise the error is rendered as JSON.
func writeGrantError(w http.ResponseWriter, r *http.Request, err error) {
	var ge *service.GrantError
	if !errors.As(err, &ge) || ge.RedirectURI == "" {
		writeError(w, r, err)
		return
	}

	target, perr := url.Parse(ge.RedirectURI)
	if perr != nil {
		writeError(w, r, err)
		return
	}

	oauthErr := oauth2Error(err)
	if oauthErr == authsdk.ErrServerError {
		slogx.FromContext(r.Context()).Error("grant request failed", "error", err)
	}

	q := target.Query()
	q.Set("error", service.OAuth2Code(err))
	q.Set("error_description", oauthErr.Description)
	if ge.State != "" {
		q.Set("state", ge.State)
	}
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

// writeError renders err as a JSON OAuth2 error, logging anything that
// maps to server_error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	oauthErr := oauth2Error(err)
	if oauthErr == authsdk.ErrServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}
	oauthErr.WriteError(w)
}
