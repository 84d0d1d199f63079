package http

import (
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/miniboss/internal/auth/service"
)

// AuthorizeHandler serves GET /v1/oauth/authorize.
type AuthorizeHandler struct {
	Grants *service.GrantService

	// LoginURL is the login UI page. It receives the pending authorization
	// id in the "authorization" query parameter.
	LoginURL string
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 authorization endpoint
//	@Description	Starts the authorization code flow (RFC 6749 section 4.1.1) and redirects the user agent to the login page.
//	@Description
//	@Description	**Response:**
//	@Description	- Success: 303 redirect to the login page with an `authorization` query parameter
//	@Description	- Error with a verified redirect_uri: 303 redirect to redirect_uri with error and state
//	@Description	- Unknown client or redirect_uri mismatch: JSON error, the user agent is not redirected
//	@Tags			OAuth2
//	@Produce		json
//	@Param			response_type	query		string					true	"Must be 'code'"	default(code)
//	@Param			client_id		query		string					true	"OAuth2 client identifier"
//	@Param			redirect_uri	query		string					false	"Callback URI, must exactly match the registered one"
//	@Param			scope			query		string					false	"Space-delimited list of scopes"	example(openid profile)
//	@Param			state			query		string					false	"Opaque value returned unchanged to the client"
//	@Success		303				{string}	string					"Redirect to the login page"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/oauth/authorize [get]
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	p, err := h.Grants.StartAuthorization(r.Context(), service.AuthorizationRequest{
		ClientID:     q.Get("client_id"),
		RedirectURI:  q.Get("redirect_uri"),
		ResponseType: q.Get("response_type"),
		Scope:        q.Get("scope"),
		State:        q.Get("state"),
	})
	if err != nil {
		writeGrantError(w, r, err)
		return
	}

	http.Redirect(w, r, withQuery(h.LoginURL, "authorization", p.ID), http.StatusSeeOther)
}

// withQuery sets key=value on base, preserving any existing query.
func withQuery(base, key, value string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + url.Values{key: {value}}.Encode()
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
