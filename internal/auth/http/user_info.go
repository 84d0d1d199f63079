package http

import (
	"errors"
	"net/http"
	"slices"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"
)

type UserInfoHandler struct {
	Users *service.UserService
}

// ServeHTTP handles the user info endpoint.
//
//	@Summary		Get user information
//	@Description	Returns the user the bearer token was issued for. Requires the 'profile' scope; the email is only included with the 'email' scope.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserInfoResponse	"id, name, email, is_admin, created_at"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"Missing 'profile' scope"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/user/info [get]
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.Users.LookupByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}
		log.Warn("failed to load user", "user_id", userID, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	resp := authsdk.UserInfoResponse{
		ID:        user.ID,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt.Unix(),
	}
	if slices.Contains(httpx.ScopesFromContext(ctx), domain.ScopeEmail) {
		resp.Email = user.Email
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
