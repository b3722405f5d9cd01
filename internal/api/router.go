package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pable/go-tennis-metrics/internal/api/response"
)

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.limit)

		r.Get("/players", s.players)
		r.Route("/player/{name}", func(r chi.Router) {
			r.Get("/coverage", s.coverage)
			r.Get("/patterns", s.patterns)
			r.Get("/serve", s.serve)
			r.Get("/serve-plus-one", s.servePlusOne)
			r.Get("/direction-patterns", s.directionPatterns)
			r.Get("/compare", s.compare)
			r.Get("/insights", s.insights)
			r.Get("/pattern-inference", s.patternInference)
			r.Get("/report", s.report)
			r.Get("/radar", s.radar)
			r.Get("/card", s.card)
		})
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]any{
		"status":        "ok",
		"radar_enabled": s.analyzer.RadarModel() != nil && s.analyzer.RadarModel().Dist != nil,
	})
}
