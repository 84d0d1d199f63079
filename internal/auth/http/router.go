package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
	"github.com/aussiebroadwan/miniboss/internal/auth/metrics"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/internal/auth/store"
	"github.com/aussiebroadwan/miniboss/pkg/authsdk"
	"github.com/aussiebroadwan/miniboss/pkg/httpx"
	"github.com/aussiebroadwan/miniboss/pkg/slogx"

	_ "github.com/aussiebroadwan/miniboss/api/miniboss" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits are the rate limit profiles applied per endpoint class.
type Limits struct {
	Disabled bool

	Credentials httpx.RateLimitConfig // login and registration
	Token       httpx.RateLimitConfig // token endpoint
	Public      httpx.RateLimitConfig // everything else
}

// DefaultLimits returns the production rate limit profiles.
func DefaultLimits() Limits {
	return Limits{
		Credentials: httpx.StrictLimit,
		Token:       httpx.ModerateLimit,
		Public:      httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      *metrics.Metrics

	// LoginURL is where the authorize endpoint sends the user agent.
	LoginURL string
	Limits   Limits

	UserService    *service.UserService
	ClientService  *service.ClientService
	GrantService   *service.GrantService
	TokenValidator *service.TokenValidator
}

func NewRouter(
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		metrics:      m,
		Limits:       DefaultLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth()
	r.registerUsers()
	r.registerClients()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Miniboss Authorization Server API
//	@version		0.1.0
//	@description	Small OAuth2 authorization server implementing the authorization code grant with opaque bearer tokens.
//	@description
//	@description				Access tokens are random 256-bit values; resource servers check them with the token-info endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/miniboss
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// byIP limits by client IP unless rate limiting is disabled.
func (r *Router) byIP(cfg httpx.RateLimitConfig) httpx.Middleware {
	if r.Limits.Disabled {
		return passThrough
	}
	return httpx.RateLimitByIP(cfg)
}

func (r *Router) byIPAndField(cfg httpx.RateLimitConfig, field string) httpx.Middleware {
	if r.Limits.Disabled {
		return passThrough
	}
	return httpx.RateLimitByIPAndFormField(cfg, field)
}

func passThrough(next http.Handler) http.Handler { return next }

// handle registers h under pattern, timed under the route label.
func (r *Router) handle(pattern, route string, h http.Handler, mws ...httpx.Middleware) {
	r.Mux.Handle(pattern, r.metrics.InstrumentHandler(route, httpx.Chain(h, mws...)))
}

func (r *Router) registerOAuth() {
	r.handle("GET "+authsdk.PathAuthorize, authsdk.PathAuthorize,
		&AuthorizeHandler{Grants: r.GrantService, LoginURL: r.LoginURL},
		r.byIP(r.Limits.Public),
	)

	r.handle("GET "+authsdk.PathAuthorizationInfo, authsdk.PathAuthorizationInfo,
		&AuthorizationInfoHandler{Grants: r.GrantService},
		r.byIP(r.Limits.Public),
	)

	// Rate limited by IP + email to slow down guessing one account's password
	r.handle("POST "+authsdk.PathLogin, authsdk.PathLogin,
		&LoginHandler{Grants: r.GrantService},
		r.byIPAndField(r.Limits.Credentials, "email"),
	)

	r.handle("GET "+authsdk.PathAuthorization, authsdk.PathAuthorization,
		&AuthorizationHandler{Grants: r.GrantService},
		r.byIP(r.Limits.Public),
	)

	r.handle("POST "+authsdk.PathToken, authsdk.PathToken,
		&TokenHandler{Grants: r.GrantService},
		r.byIP(r.Limits.Token),
	)

	r.handle("GET "+authsdk.PathTokenInfo, authsdk.PathTokenInfo,
		&TokenInfoHandler{Grants: r.GrantService},
		r.byIP(r.Limits.Public),
	)
}

func (r *Router) registerUsers() {
	r.handle("POST "+authsdk.PathRegister, authsdk.PathRegister,
		&RegisterHandler{Users: r.UserService},
		r.byIP(r.Limits.Credentials),
	)

	r.handle("GET "+authsdk.PathUserInfo, authsdk.PathUserInfo,
		&UserInfoHandler{Users: r.UserService},
		httpx.RequireBearer(r.TokenValidator.Authenticate),
		httpx.RequireAnyScope(domain.ScopeProfile),
		r.byIP(r.Limits.Public),
	)
}

func (r *Router) registerClients() {
	r.handle("GET "+authsdk.PathInternalClient, authsdk.PathInternalClient,
		&InternalClientHandler{Clients: r.ClientService},
		r.byIP(r.Limits.Public),
	)
}

func (r *Router) registerSystem() {
	r.handle("GET /livez", "/livez", LivezHandler(r.startTime, r.buildVersion))
	r.handle("GET /readyz", "/readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.ClientService))

	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
