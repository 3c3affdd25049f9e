package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Fantasim/sazonframe/internal/api/handlers"
	"github.com/Fantasim/sazonframe/internal/api/middleware"
	"github.com/Fantasim/sazonframe/internal/chain"
	"github.com/Fantasim/sazonframe/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(cfg *config.Config, frames *handlers.FrameDeps, endpoints []chain.EndpointCheck) chi.Router {
	r := chi.NewRouter()

	// Middleware stack (order matters)
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)
	r.Use(middleware.BodyLimit(config.MaxRequestBodyBytes))

	slog.Info("router initialized",
		"middleware", []string{"requestID", "requestLogging", "recoverer", "cors", "bodyLimit"},
	)

	r.Route(config.BasePath, func(r chi.Router) {
		r.Get("/", handlers.InitialHandler(frames))
		r.Post("/", handlers.InitialHandler(frames))
		r.Get("/check", handlers.CheckHandler(frames))
		r.Post("/check", handlers.CheckHandler(frames))

		r.Get("/health", handlers.HealthHandler(cfg, Version))
		r.Get("/health/providers", handlers.GetProviderHealth(endpoints))
	})

	return r
}
