// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the router. Health and metrics are public; everything under
// /api/v1 requires the API token.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(securityHeaders)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(s.cfg.APILimitPerMin, time.Minute))
		r.Use(s.authMiddleware)

		r.With(rateLimit(s.cfg.SendLimitPerMin, time.Minute)).
			Post("/messages", s.handleSend)
		r.Get("/messages/{key}", s.handleGet)
		r.Post("/messages/{key}/result", s.handleResult)
	})

	return r
}
