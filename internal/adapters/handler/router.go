package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/AchilleasB/pet-care/console-service/internal/adapters/middleware"
	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

type RouterConfig struct {
	Session      *SessionHandler
	Views        *ViewHandler
	Appointments *AppointmentHandler
	Records      *RecordHandler
	Health       *HealthHandler
	Guard        *middleware.SessionGuard
	// Metrics serves /metrics when set.
	Metrics     http.Handler
	CORSOrigins []string
	Logger      zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Health endpoints (OpenShift compatible)
	r.Get("/health", cfg.Health.Health)
	r.Get("/health/ready", cfg.Health.Ready)
	r.Get("/health/live", cfg.Health.Live)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		r.Post("/session/login", cfg.Session.Login)
		r.Post("/session/logout", cfg.Session.Logout)
		r.Get("/session", cfg.Session.Get)
		r.Put("/session/view", cfg.Session.SetView)
		r.Get("/views/{viewID}", cfg.Views.View)
		r.Get("/capabilities", cfg.Views.Capabilities)
		r.Post("/validate", Validate)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Guard.RequireSession())

			r.Get("/appointments", cfg.Appointments.List)
			r.Post("/appointments/{id}/transition", cfg.Appointments.Transition)

			r.Get("/prescriptions/{id}", cfg.Records.GetPrescription)
			r.Post("/prescriptions/{id}/transition", cfg.Records.TransitionPrescription)
			r.Post("/prescriptions/{id}/reconcile", cfg.Records.ReconcilePrescription)

			r.Get("/vaccinations/{id}", cfg.Records.GetVaccination)
			r.Post("/vaccinations/{id}/transition", cfg.Records.TransitionVaccination)
		})

		r.With(cfg.Guard.RequireSession(domain.RoleVeterinarian, domain.RoleAdmin)).
			Put("/vaccinations/{id}/due-date", cfg.Records.RescheduleVaccination)
	})

	return r
}
