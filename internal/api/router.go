package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studyhub/sessionview/internal/api/handlers"
	"github.com/studyhub/sessionview/internal/config"
	"github.com/studyhub/sessionview/internal/logger"
	"github.com/studyhub/sessionview/internal/session"
	"github.com/studyhub/sessionview/internal/tracing"
	"github.com/studyhub/sessionview/middleware"
)

type Deps struct {
	Config    *config.Config
	Views     handlers.Views
	Parser    *session.Parser
	Readiness []handlers.ReadinessChecker
	// RateLimiter is the shared Redis limiter; nil falls back to an
	// in-process per-IP limiter.
	RateLimiter *middleware.RedisRateLimiter
	Now         func() time.Time
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	if cfg.TracingEnabled {
		r.Use(middleware.Tracing(tracing.ServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Authenticate(d.Parser))
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderXRequestID},
		ExposedHeaders:   []string{middleware.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	ready := handlers.NewReadinessHandler(d.Readiness...)
	r.Get("/api/healthz", ready.Healthz)
	r.Get("/api/readyz", ready.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	calendar := handlers.NewCalendarHandler(d.Views, d.Now)
	notifications := handlers.NewNotificationHandler(d.Views, d.Now)
	views := handlers.NewViewsHandler(d.Views)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		if cfg.RLEnabled {
			r.Use(rateLimit(d.RateLimiter, cfg.RLLimit, cfg.RLWindow))
		}

		r.Route("/api/calendar", func(r chi.Router) {
			r.Get("/view", calendar.View)
			r.Get("/export.ics", calendar.ExportICS)
			r.Post("/sessions", calendar.CreateSession)
			r.Delete("/sessions/{id}", calendar.DeleteSession)
		})

		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", notifications.List)
			r.Post("/read-all", notifications.MarkAllRead)
			r.Post("/{id}/read", notifications.MarkRead)
		})

		r.Delete("/api/views", views.Drop)
	})

	return r
}

func rateLimit(rl *middleware.RedisRateLimiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	if rl != nil {
		return rl.Middleware(middleware.RateLimitConfig{
			Limit:  limit,
			Window: window,
			KeyFn:  middleware.KeyByUser,
		})
	}
	return httprate.LimitByIP(limit, window)
}
