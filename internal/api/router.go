package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/consult"
	"github.com/ruthwik162/OTSchedular-Backend/internal/report"
)

type RouterConfig struct {
	Booking  *booking.Service
	Consults *consult.Service
	Reports  *report.Service // nil when object storage is not configured
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Log      *zap.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/ot", func(r chi.Router) {
		r.Post("/assign/{email}", bookAppointmentHandler(cfg.Booking))
		r.Get("/appointments", listAppointmentsHandler(cfg.Booking))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
		r.Put("/appointments/{id}", updateAppointmentStatusHandler(cfg.Booking))
		r.Get("/doctor/{email}", listDoctorAppointmentsHandler(cfg.Booking))
	})

	r.Route("/consults", func(r chi.Router) {
		r.Post("/", createConsultHandler(cfg.Consults))
		r.Get("/patient/{email}", listPatientConsultsHandler(cfg.Consults))
		r.Get("/doctor/{email}", listDoctorConsultsHandler(cfg.Consults))
		r.Get("/{id}", getConsultHandler(cfg.Consults))
		r.Put("/{id}/status", updateConsultStatusHandler(cfg.Consults))
	})

	if cfg.Reports != nil {
		r.Route("/patients/{email}/reports", func(r chi.Router) {
			r.Post("/", uploadReportHandler(cfg.Reports))
			r.Get("/", listReportsHandler(cfg.Reports))
		})
	}

	return r
}
