package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
)

// RegisterHandler serves POST /v1/user/register.
type RegisterHandler struct {
	Users *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Register a user
//	@Description	Creates a user with a password. The first user registered becomes the admin.
//	@Tags			Users
//	@Accept			json,application/x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"name, email, password"
//	@Success		201		{object}	authsdk.RegisterResponse	"id"
//	@Failure		400		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	authsdk.ErrorResponse		"email already registered"
//	@Failure		500		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/user/register [post]
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.RegisterRequest
	if httpx.IsJSON(r) {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			authsdk.ErrInvalidRequest.WriteError(w)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			authsdk.ErrInvalidFormBody.WriteError(w)
			return
		}
		req.Name = r.PostForm.Get("name")
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
	}

	if req.Password == "" {
		authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "password is required").WriteError(w)
		return
	}

	user, err := h.Users.RegisterWithPassword(ctx, req.Name, req.Email, req.Password, false)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			authsdk.ErrEmailTaken.WriteError(w)
			return
		}
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{ID: user.ID})
}
