// Package monitoring exposes Prometheus metrics for the API.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recipesCreatedTotal  prometheus.Counter
	usersRegisteredTotal prometheus.Counter
	loginsTotal          *prometheus.CounterVec

	aiRequestsTotal   *prometheus.CounterVec
	aiRequestDuration *prometheus.HistogramVec
	aiFallbacksTotal  *prometheus.CounterVec

	tokensRevokedTotal prometheus.Counter
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		recipesCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "recipes_created_total",
				Help: "Total number of recipes created",
			},
		),
		usersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "users_registered_total",
				Help: "Total number of users registered",
			},
		),
		loginsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"},
		),
		aiRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Total number of AI proxy requests",
			},
			[]string{"feature", "status"},
		),
		aiRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_request_duration_seconds",
				Help:    "AI proxy request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"feature"},
		),
		aiFallbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_fallbacks_total",
				Help: "Total number of AI requests answered by fallback",
			},
			[]string{"feature"},
		),
		tokensRevokedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tokens_revoked_total",
				Help: "Total number of revoked tokens",
			},
		),
	}
}

// Middleware records per-request metrics. The route pattern is used
// instead of the raw path to keep label cardinality bounded.
func (m *MetricsCollector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
			m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the Prometheus scrape endpoint.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRecipeCreated increments the recipe creation counter.
func (m *MetricsCollector) RecordRecipeCreated() {
	m.recipesCreatedTotal.Inc()
}

// RecordUserRegistered increments the registration counter.
func (m *MetricsCollector) RecordUserRegistered() {
	m.usersRegisteredTotal.Inc()
}

// RecordLogin tracks a login attempt outcome.
func (m *MetricsCollector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.loginsTotal.WithLabelValues(result).Inc()
}

// RecordAIRequest tracks a proxied AI request.
func (m *MetricsCollector) RecordAIRequest(feature string, fellBack bool, duration time.Duration) {
	status := "ok"
	if fellBack {
		status = "fallback"
		m.aiFallbacksTotal.WithLabelValues(feature).Inc()
	}
	m.aiRequestsTotal.WithLabelValues(feature, status).Inc()
	m.aiRequestDuration.WithLabelValues(feature).Observe(duration.Seconds())
}

// RecordTokenRevoked increments the revocation counter.
func (m *MetricsCollector) RecordTokenRevoked() {
	m.tokensRevokedTotal.Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
