package http

import (
	"net/http"

	"github.com/aussiebroadwan/miniboss/internal/auth/service"
)

// AuthorizationHandler serves GET /v1/oauth/authorization.
type AuthorizationHandler struct {
	Grants *service.GrantService
}

// ServeHTTP godoc
//
//	@Summary		Issue the authorization code
//	@Description	Consumes a logged-in pending authorization and redirects the user agent to the client with a single-use code.
//	@Tags			OAuth2
//	@Param			id	query		string					true	"Pending authorization id"
//	@Success		303	{string}	string					"Redirect to redirect_uri with code and state"
//	@Failure		404	{object}	authsdk.ErrorResponse	"unknown or expired authorization"
//	@Router			/v1/oauth/authorization [get]
func (h *AuthorizationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	issued, err := h.Grants.IssueCode(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeGrantError(w, r, err)
		return
	}

	target := withQuery(issued.RedirectURI, "code", issued.Code)
	if issued.State != "" {
		target = withQuery(target, "state", issued.State)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
