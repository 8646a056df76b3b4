// Package http is the transport boundary: routing, request decoding,
// bearer authentication, and mapping service errors onto statuses.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/service"
	"github.com/habitloop/habitloop/internal/auth/store"
	"github.com/habitloop/habitloop/pkg/httpx"
	"github.com/habitloop/habitloop/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	TokenService     *service.TokenService
	AuthService      *service.AuthService
	PrincipalService *service.PrincipalService
}

func NewRouter(
	buildVersion string,
	corsOrigins []string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Global chain: request logging first, CORS inside it.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth(domain.DomainUser, "/v1/auth")
	r.registerAuth(domain.DomainAdmin, "/v1/admin/auth")
	r.registerUsers()
	r.registerAdminUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// registerAuth mounts the login and refresh endpoints of one principal
// domain under its prefix. The handler set is identical; only the domain
// differs.
func (r *Router) registerAuth(d domain.Domain, prefix string) {
	login := &LoginHandler{AuthService: r.AuthService, Domain: d}
	refresh := &RefreshHandler{TokenService: r.TokenService, Domain: d}

	// Credential endpoint: strict limit per IP + presented identifier so
	// one address can't brute-force many accounts in parallel.
	r.Mux.Handle("POST "+prefix+"/token",
		httpx.Chain(login,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	r.Mux.Handle("POST "+prefix+"/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	register := &RegisterHandler{PrincipalService: r.PrincipalService}
	me := &MeHandler{PrincipalService: r.PrincipalService, Domain: domain.DomainUser}

	// Public signup: strict limit by IP.
	r.Mux.Handle("POST /v1/users/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(http.HandlerFunc(me.HandleGet),
			RequireAuth(r.TokenService, domain.DomainUser),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PATCH /v1/users/me",
		httpx.Chain(http.HandlerFunc(me.HandlePatch),
			RequireAuth(r.TokenService, domain.DomainUser),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdminUsers() {
	h := &AdminUsersHandler{PrincipalService: r.PrincipalService}

	// All management routes require an admin-domain bearer token; the
	// privilege and freshness gates live inside the handlers.
	secured := func(handler http.Handler, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(handler,
			RequireAuth(r.TokenService, domain.DomainAdmin),
			httpx.RateLimitBySubject(limit),
		)
	}

	r.Mux.Handle("GET /v1/admin/users",
		secured(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/admin/users",
		secured(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/admin/users/{id}",
		secured(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/admin/users/{id}",
		secured(http.HandlerFunc(h.HandlePatch), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/admin/users/{id}",
		secured(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/admin/users/{id}/activate",
		secured(http.HandlerFunc(h.HandleActivate), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/admin/users/{id}/deactivate",
		secured(http.HandlerFunc(h.HandleDeactivate), httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	// Monitoring may poll these frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
