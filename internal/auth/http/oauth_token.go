package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
)

const grantTypeAuthorizationCode = "authorization_code"

// TokenHandler serves POST /v1/oauth/token.
// Accepts application/x-www-form-urlencoded per RFC 6749.
type TokenHandler struct {
	Grants *service.GrantService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 token endpoint
//	@Description	Exchanges an authorization code for an opaque bearer token. Each code can be redeemed once.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(authorization_code)
//	@Param			code			formData	string					true	"Authorization code"
//	@Param			redirect_uri	formData	string					true	"Redirect URI the code was issued to"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, token_type, expires_in, scope"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/v1/oauth/token [post]
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	if r.PostForm.Get("grant_type") != grantTypeAuthorizationCode {
		authsdk.ErrUnsupportedGrantType.WriteError(w)
		return
	}

	resp, err := h.Grants.Exchange(r.Context(),
		r.PostForm.Get("code"),
		r.PostForm.Get("redirect_uri"),
		r.PostForm.Get("client_id"),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresIn:   int(resp.ExpiresIn.Seconds()),
		Scope:       domain.JoinScopes(resp.Scopes),
	})
}
