// Package http exposes the panel over HTTP.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/internal/interfaces/http/handlers"
	"github.com/turtacn/facetmap/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree. Nil
// members are skipped.
type RouterConfig struct {
	PanelHandler  *handlers.PanelHandler
	FilterHandler *handlers.FilterHandler
	HealthHandler *handlers.HealthHandler

	CORS          *middleware.CORSConfig
	Logger        logging.Logger
	LoggingConfig middleware.LoggingConfig

	HTTPRecorder   middleware.HTTPRecorder
	InFlight       middleware.InFlightGauge
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter constructs the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.LoggingConfig))
	}
	if cfg.HTTPRecorder != nil {
		r.Use(middleware.Metrics(cfg.HTTPRecorder, cfg.InFlight))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerPanelRoutes(api, cfg.PanelHandler)
		registerFilterRoutes(api, cfg.FilterHandler)
	})

	return r
}

// registerPanelRoutes mounts the inspector, refresh, counts and click endpoints.
func registerPanelRoutes(r chi.Router, h *handlers.PanelHandler) {
	if h == nil {
		return
	}
	r.Route("/panel", func(pr chi.Router) {
		pr.Get("/query", h.Query)
		pr.Post("/refresh", h.Refresh)
		pr.Get("/counts", h.Counts)
		pr.Post("/click", h.Click)
	})
}

// registerFilterRoutes mounts the shared filter store endpoints.
func registerFilterRoutes(r chi.Router, h *handlers.FilterHandler) {
	if h == nil {
		return
	}
	r.Route("/filters", func(fr chi.Router) {
		fr.Get("/", h.List)
		fr.Post("/", h.Append)
		fr.Delete("/", h.Clear)
		fr.Put("/time", h.SetTimeRange)
	})
}

//Personal.AI order the ending
