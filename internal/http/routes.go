package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/caregate/internal/app"
	"github.com/dropDatabas3/caregate/internal/authz"
	"github.com/dropDatabas3/caregate/internal/http/handlers"
	"github.com/dropDatabas3/caregate/internal/http/middlewares"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
)

// NewRouter arma el router con toda la cadena de middlewares y rutas.
func NewRouter(c *app.Container) stdhttp.Handler {
	r := chi.NewRouter()

	metricsHandler, err := middlewares.RegisterMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logger.L().Warn("metrics registration failed", logger.Err(err))
	}

	// ===========================================================================
	// STACK GLOBAL (orden importa: request id primero, recover antes de todo
	// lo que pueda panickear)
	// ===========================================================================
	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithAuditMeta())
	r.Use(middlewares.WithRecover())
	r.Use(middlewares.WithLogging())
	r.Use(middlewares.WithMetrics())
	r.Use(middlewares.WithPrincipal(c.Resolver))

	// ===========================================================================
	// OPS
	// ===========================================================================
	r.Get("/healthz", handlers.NewHealthzHandler())
	r.Get("/readyz", handlers.NewReadyzHandler(c))
	if metricsHandler != nil {
		r.Method(stdhttp.MethodGet, "/metrics", metricsHandler)
	}

	// ===========================================================================
	// API
	// ===========================================================================
	r.Route("/api", func(api chi.Router) {
		api.Use(middlewares.WithRateLimit(c.Limiter, int64(c.Cfg.Rate.Max), middlewares.IPKey("api")))

		// Directorio de providers: público, la visibilidad la decide el filtro.
		api.Get("/providers/{providerId}", handlers.NewProviderProfileHandler(c))

		// Impersonación: solo superadmin, rate limit sensible por principal.
		api.Route("/admin/impersonate", func(ar chi.Router) {
			ar.Use(middlewares.WithRateLimit(c.SensitiveLimiter, int64(c.Cfg.Rate.Sensitive.Max), middlewares.PrincipalKey("impersonate")))
			ar.Use(middlewares.RequireCapability(authz.CapPlatformAdmin))
			ar.Post("/", handlers.NewImpersonateStartHandler(c))
			ar.Delete("/", handlers.NewImpersonateStopHandler(c))
		})

		// Support access: crear/listar es de superadmin; aprobar/denegar lo
		// hace el usuario objetivo (el chequeo fino vive en el servicio).
		api.Route("/superadmin/support-access", func(sr chi.Router) {
			sr.Use(middlewares.WithRateLimit(c.SensitiveLimiter, int64(c.Cfg.Rate.Sensitive.Max), middlewares.PrincipalKey("support")))

			sr.With(middlewares.RequireCapability(authz.CapPlatformAdmin)).
				Post("/", handlers.NewSupportAccessCreateHandler(c))
			sr.With(middlewares.RequireCapability(authz.CapPlatformAdmin)).
				Get("/", handlers.NewSupportAccessListHandler(c))

			sr.With(middlewares.RequireRoles()).
				Post("/{requestId}/approve", handlers.NewSupportAccessApproveHandler(c))
			sr.With(middlewares.RequireRoles()).
				Post("/{requestId}/deny", handlers.NewSupportAccessDenyHandler(c))
		})
	})

	return r
}
