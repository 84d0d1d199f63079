package http

import (
	"net/http"

	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"
)

// InternalClientHandler serves GET /v1/clients/internal, which the login
// UI uses to find the client id it authorizes itself as.
type InternalClientHandler struct {
	Clients *service.ClientService
}

// ServeHTTP godoc
//
//	@Summary		Get the internal client
//	@Description	Returns the first-party client registered for the login UI.
//	@Tags			Clients
//	@Produce		json
//	@Success		200	{object}	authsdk.InternalClientResponse	"client_id, redirect_uri"
//	@Failure		500	{object}	authsdk.ErrorResponse			"no internal client, or more than one"
//	@Router			/v1/clients/internal [get]
func (h *InternalClientHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.Clients.LookupInternalClient(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("internal client lookup failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.InternalClientResponse{
		ClientID:    c.ID,
		RedirectURI: c.RedirectURI,
	})
}
