// Package router sets up all HTTP routes and middleware chains for the
// BadgePress API. Routes live under /api/v1; health and metrics sit at
// the root for probes and scrapers.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"badgepress/internal/handlers"
	"badgepress/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The rate limiter guards the two expensive
// surfaces: asset uploads and batch generation.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", api.TemplatesList)
			r.Post("/", api.TemplateCreate)
			r.Get("/{id}", api.TemplateGet)
			r.Put("/{id}", api.TemplateUpdate)
			r.Delete("/{id}", api.TemplateDelete)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Get("/", api.AssetsList)
			r.Post("/", api.AssetUpload)
			r.Get("/{id}", api.AssetServe)
			r.Delete("/{id}", api.AssetDelete)
		})

		r.Route("/designer/sessions", func(r chi.Router) {
			r.Post("/", api.SessionCreate)
			r.Get("/{id}", api.SessionState)
			r.Post("/{id}/ops", api.SessionOps)
			r.Get("/{id}/preview.png", api.SessionPreview)
			r.Post("/{id}/save", api.SessionSave)
			r.Delete("/{id}", api.SessionDelete)
		})

		r.Route("/badges", func(r chi.Router) {
			r.With(limiter.Middleware).Post("/generate", api.BadgesGenerate)
			r.Get("/preview.png", api.BadgePreview)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", api.EventsList)
			r.Get("/{id}", api.EventGet)
			r.Get("/{id}/ticket-types", api.EventTicketTypes)
			r.Get("/{id}/registrants", api.EventRegistrants)
			r.Get("/{id}/print-logs", api.EventPrintLogs)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
