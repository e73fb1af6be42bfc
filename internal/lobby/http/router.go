package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/service"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
	"github.com/aussiebroadwan/breakroom/pkg/httpx"
	"github.com/aussiebroadwan/breakroom/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/breakroom/api/lobby" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       httpx.RateLimits

	store       store.Store
	Coordinator *service.Coordinator
	Hub         *Hub
	Gatherer    prometheus.Gatherer // Optional: /metrics is only served when set
}

func NewRouter(
	buildVersion string,
	st store.Store,
	limits httpx.RateLimits,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limits:       limits,
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSocket()
	r.registerLobby()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpx.Chain(httpSwagger.Handler(),
		httpx.RateLimitByIP(r.limits.Probe),
	))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Breakroom Lobby Service API
//	@version		0.1.0
//	@description	Presence and invitation lobby. Clients connect to /ws, identify with a display name,
//	@description	see who else is in the lobby and exchange invitations. The REST endpoints are read-only views.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/breakroom
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:3001
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSocket() {
	// GET /ws - each upgrade admits a long-lived session, so keep it tight
	r.Mux.Handle("GET /ws",
		httpx.Chain(&SocketHandler{Hub: r.Hub, Coordinator: r.Coordinator},
			httpx.RateLimitByIP(r.limits.Upgrade),
		),
	)
}

func (r *Router) registerLobby() {
	r.Mux.Handle("GET /v1/lobby",
		httpx.Chain(&LobbyHandler{Coordinator: r.Coordinator},
			httpx.RateLimitByIP(r.limits.API),
		),
	)
	r.Mux.Handle("GET /v1/invites/{id}",
		httpx.Chain(&InviteHandler{Coordinator: r.Coordinator},
			httpx.RateLimitByIP(r.limits.API),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Probe),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Probe),
		),
	)

	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{}),
				httpx.RateLimitByIP(r.limits.Probe),
			),
		)
	}
}
