package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aetheris-health/aetheris/internal/api/alerts"
	"github.com/aetheris-health/aetheris/internal/api/middleware"
	"github.com/aetheris-health/aetheris/internal/api/patients"
	"github.com/aetheris-health/aetheris/internal/api/postop"
	"github.com/aetheris-health/aetheris/internal/api/procedure"
	"github.com/aetheris-health/aetheris/internal/api/preop"
	reportsapi "github.com/aetheris-health/aetheris/internal/api/reports"
	vitalsapi "github.com/aetheris-health/aetheris/internal/api/vitals"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	ipLimiter := middleware.NewRateLimiter(s.config.RateLimitPerIP)

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.Recoverer)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(ipLimiter))

		r.Route("/patients", func(r chi.Router) {
			patientHandler := patients.NewHandler(s.storage, s.config.QueryTimeout)

			r.Get("/", patientHandler.List)
			r.Post("/", patientHandler.Create)
			r.Get("/{id}", patientHandler.GetByID)
		})

		r.Route("/alerts", func(r chi.Router) {
			alertHandler := alerts.NewHandler(s.storage, s.config.QueryTimeout)

			r.Get("/", alertHandler.List)
			r.Post("/", alertHandler.Create)
			r.Patch("/{id}/acknowledge", alertHandler.Acknowledge)
			r.Post("/acknowledge-all", alertHandler.AcknowledgeAll)
		})

		r.Route("/vitals", func(r chi.Router) {
			vitalsHandler := vitalsapi.NewHandler(vitalsapi.HandlerConfig{
				Storage:      s.storage,
				History:      s.history,
				Streams:      s.streams,
				Profiles:     s.profiles,
				QueryTimeout: s.config.QueryTimeout,
				HistoryLimit: s.config.HistoryLimit,
			})

			r.Post("/anomaly-check", vitalsHandler.AnomalyCheck)
			r.Post("/log", vitalsHandler.Log)
			r.Get("/{patientID}/history", vitalsHandler.History)
			r.Get("/stream/{patientID}", vitalsHandler.Stream)
		})

		r.Route("/preop", func(r chi.Router) {
			preopHandler := preop.NewHandler(s.storage, s.checker, s.config.QueryTimeout)

			r.Post("/assess", preopHandler.Assess)
			r.Get("/checklist/templates", preopHandler.ChecklistTemplates)
		})

		r.Route("/postop", func(r chi.Router) {
			postopHandler := postop.NewHandler(s.storage, s.config.QueryTimeout)

			r.Post("/complication-risk", postopHandler.ComplicationRisk)
		})

		r.Route("/procedure", func(r chi.Router) {
			procedureHandler := procedure.NewHandler()

			r.Patch("/step", procedureHandler.UpdateStep)
			r.Get("/steps", procedureHandler.ListSteps)
		})

		r.Route("/reports", func(r chi.Router) {
			reportHandler := reportsapi.NewHandler(s.storage, s.generator, s.config.QueryTimeout)

			r.Get("/", reportHandler.List)
			r.Post("/generate", reportHandler.Generate)
			r.Get("/types", reportHandler.Types)
			r.Get("/{id}", reportHandler.GetByID)
			r.Post("/{id}/send-to-ehr", reportHandler.SendToEHR)
		})
	})

	// Health checks (public, no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		OK(w, map[string]string{"status": "ok"})
	})
	r.Get("/health/live", s.healthHandler.Live)
	r.Get("/health/ready", s.healthHandler.Ready)

	return r
}
