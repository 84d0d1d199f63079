package http

import (
	"net/http"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
)

// TokenInfoHandler serves GET /v1/oauth/token-info. Resource servers
// present the bearer token they were given and learn whether it is active.
type TokenInfoHandler struct {
	Grants *service.GrantService
}

// ServeHTTP godoc
//
//	@Summary		Token introspection
//	@Description	Reports whether the presented bearer token is active. Unknown and expired tokens only return `{"active": false}`.
//	@Tags			OAuth2
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.TokenInfoResponse	"active, sub, client_id, scope, exp"
//	@Failure		500	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Header			200	{string}	Cache-Control				"no-store"
//	@Router			/v1/oauth/token-info [get]
func (h *TokenInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.ExtractBearer(r)
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, authsdk.TokenInfoResponse{Active: false})
		return
	}

	info, err := h.Grants.Introspect(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !info.Active {
		httpx.WriteJSON(w, http.StatusOK, authsdk.TokenInfoResponse{Active: false})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenInfoResponse{
		Active:   true,
		Sub:      info.UserID,
		ClientID: info.ClientID,
		Scope:    domain.JoinScopes(info.Scopes),
		Exp:      info.ExpiresAt.Unix(),
	})
}
