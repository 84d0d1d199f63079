package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
)

const maxBodyBytes = 1 << 16

// LoginHandler serves POST /v1/oauth/login.
type LoginHandler struct {
	Grants *service.GrantService
}

// ServeHTTP godoc
//
//	@Summary		Log in against a pending authorization
//	@Description	Authenticates the user and binds them to the pending authorization. Accepts JSON or a form post.
//	@Description
//	@Description	**Response:**
//	@Description	- JSON request: 200 with `next`, the URL that issues the authorization code
//	@Description	- Form request: 303 redirect to that URL
//	@Description	- Requested scopes the user does not hold: form requests are redirected to the client with `access_denied` and state
//	@Tags			OAuth2
//	@Accept			json,application/x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"authorization id and credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"status, next"
//	@Success		303		{string}	string					"Redirect to the authorization endpoint"
//	@Failure		400		{object}	authsdk.ErrorResponse	"malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid email or password"
//	@Failure		403		{object}	authsdk.ErrorResponse	"requested scopes not permitted"
//	@Failure		404		{object}	authsdk.ErrorResponse	"unknown or expired authorization"
//	@Failure		409		{object}	authsdk.ErrorResponse	"authorization already completed"
//	@Router			/v1/oauth/login [post]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	isJSON := httpx.IsJSON(r)

	req, ok := decodeLogin(w, r, isJSON)
	if !ok {
		return
	}

	p, err := h.Grants.BindUser(r.Context(), req.Authorization, req.Email, req.Password)
	if err != nil {
		if !isJSON && errors.Is(err, service.ErrForbidden) {
			writeGrantError(w, r, err)
			return
		}
		writeError(w, r, err)
		return
	}

	next := withQuery(authsdk.PathAuthorization, "id", p.ID)
	if isJSON {
		httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{Status: true, Next: next})
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func decodeLogin(w http.ResponseWriter, r *http.Request, isJSON bool) (authsdk.LoginRequest, bool) {
	var req authsdk.LoginRequest
	if isJSON {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			authsdk.ErrInvalidRequest.WriteError(w)
			return req, false
		}
		return req, true
	}

	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return req, false
	}
	req.Authorization = r.PostForm.Get("authorization")
	req.Email = r.PostForm.Get("email")
	req.Password = r.PostForm.Get("password")
	return req, true
}
