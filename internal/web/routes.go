package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-stamper/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	runsHandler := handlers.NewRunsHandler(s.config, s.runner, s.jobManager)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Stamping runs (long-running operations)
		r.Get("/runs", runsHandler.List)
		r.Post("/runs", runsHandler.Start)
		r.Get("/runs/{runId}", runsHandler.Get)
		r.Get("/runs/{runId}/events", runsHandler.Events)
	})
}
