package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"censusqc/internal/config"
	apierrors "censusqc/internal/errors"
	"censusqc/internal/services"
)

// NewRouter assembles the API router: table lifecycle, validation and
// fix routes under /api/tables, plus health and metrics endpoints.
func NewRouter(cfg *config.Config, manager *services.Manager, registry *prometheus.Registry, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apierrors.Recoverer(logger))
	r.Use(apierrors.RequestLogger(logger))
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	if cfg.Security.RateLimit.Enabled {
		r.Use(RateLimit(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst))
	}

	tables := NewTableHandler(manager, logger, cfg.Server.MaxUploadBytes)
	validation := NewValidationHandler(logger)
	fixesHandler := NewFixHandler(logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/tables", tables.Routes(func(r chi.Router) {
			validation.Routes(r)
			fixesHandler.Routes(r)
		}))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "healthy"})
	})
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return r
}
