package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/studyhub/sessionview/internal/session"
)

var (
	viewRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sessionview",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests by view scope, route pattern and status.",
		},
		[]string{"scope", "method", "route", "status"},
	)

	viewLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sessionview",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency by view scope. Cold views include the backend fetch.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"scope", "method"},
	)

	viewRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sessionview",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		},
	)

	anonymousRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sessionview",
			Subsystem: "http",
			Name:      "unauthenticated_total",
			Help:      "Requests to view routes answered 401.",
		},
		[]string{"scope"},
	)
)

// viewScope buckets a route pattern into the view it serves. Unmatched paths
// share one bucket so label cardinality stays bounded.
func viewScope(route string) string {
	switch {
	case route == "":
		return "unmatched"
	case strings.HasPrefix(route, "/api/calendar"):
		return "calendar"
	case strings.HasPrefix(route, "/api/notifications"):
		return "notifications"
	case strings.HasPrefix(route, "/api/views"):
		return "views"
	default:
		return "ops"
	}
}

// Metrics records per-scope request counts and latency.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		viewRequestsInFlight.Inc()
		defer viewRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		var route string
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		scope := viewScope(route)
		if route == "" {
			route = "unmatched"
		}

		viewRequests.WithLabelValues(scope, r.Method, route, strconv.Itoa(status)).Inc()
		viewLatency.WithLabelValues(scope, r.Method).Observe(time.Since(start).Seconds())
		if status == http.StatusUnauthorized {
			if _, ok := session.FromContext(r.Context()); !ok {
				anonymousRejected.WithLabelValues(scope).Inc()
			}
		}
	})
}
