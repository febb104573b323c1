package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mawbaudit/internal/config"
	apierrors "mawbaudit/internal/errors"
	custommiddleware "mawbaudit/internal/middleware"
	"mawbaudit/internal/services"
	"mawbaudit/internal/validation"
)

// NewRouter builds the API router with the full middleware chain.
func NewRouter(cfg *config.Config, service *services.AuditService, logger *slog.Logger, version string) chi.Router {
	errorHandler := apierrors.NewErrorHandler(logger)
	validator := validation.NewRequestValidator(logger, cfg.Audit.MaxUploadBytes)

	auditHandler := NewAuditHandler(service, validator, errorHandler, logger)
	healthHandler := NewHealthHandler(logger, version)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := custommiddleware.NewHTTPMetrics(registry)

	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.StructuredLogger(logger))
	r.Use(custommiddleware.Recoverer(logger))
	r.Use(metrics.Handler)
	if cfg.Server.RateLimitRPS > 0 {
		r.Use(custommiddleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger).Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/health", healthHandler.HealthCheck)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/version", healthHandler.Version)
		r.Post("/audit", auditHandler.RunAudit)
	})

	r.Method("GET", "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}
