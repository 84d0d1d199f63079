package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  statusOK,
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Checks the database connection and that exactly one internal client is registered
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	clients *service.ClientService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database:       statusOK,
			InternalClient: statusOK,
		}
		overallStatus := statusOK
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = statusDegraded
			statusCode = http.StatusServiceUnavailable
		}

		if _, err := clients.LookupInternalClient(r.Context()); err != nil {
			checks.InternalClient = "error: " + err.Error()
			overallStatus = statusDegraded
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
