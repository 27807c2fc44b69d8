package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DelphiTri/website/internal/api"
	"github.com/DelphiTri/website/internal/logging"
	"github.com/DelphiTri/website/internal/middleware"
)

// RegisterRoutes builds the HTTP handler. gatherer backs /metrics and must be
// the registry deps.Metrics was registered on.
func RegisterRoutes(deps *api.Dependencies, gatherer prometheus.Gatherer, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(deps.SQL, deps.Redis, upSince))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handlers := api.NewHandlers(deps)
	RegisterAdminRoutes(r, deps, handlers)

	logging.Info("Router initialized", "admin_routes", len(AdminRoutes(handlers)))
	return r
}
