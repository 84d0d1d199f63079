package http

import (
	"net/http"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
)

// AuthorizationInfoHandler serves GET /v1/oauth/authorization-info.
type AuthorizationInfoHandler struct {
	Grants *service.GrantService
}

// ServeHTTP godoc
//
//	@Summary		Describe a pending authorization
//	@Description	Returns the requesting client and scopes of a pending authorization so the login UI can show them.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			id	query		string								true	"Pending authorization id"
//	@Success		200	{object}	authsdk.AuthorizationInfoResponse	"client and requested scopes"
//	@Failure		404	{object}	authsdk.ErrorResponse				"unknown or expired authorization"
//	@Router			/v1/oauth/authorization-info [get]
func (h *AuthorizationInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	view, err := h.Grants.GetAuthorization(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeGrantError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthorizationInfoResponse{
		ID:         view.ID,
		ClientID:   view.ClientID,
		ClientName: view.ClientName,
		Scope:      domain.JoinScopes(view.Scopes),
		ExpiresAt:  view.ExpiresAt.Unix(),
	})
}
