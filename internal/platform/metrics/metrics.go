package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP holds transport-level Prometheus metrics shared by every route.
type HTTP struct {
	EndpointLatency *prometheus.HistogramVec
	Responses       *prometheus.CounterVec
}

// NewHTTP creates and registers the HTTP metrics.
func NewHTTP() *HTTP {
	return &HTTP{
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bridgeid_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Responses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bridgeid_http_responses_total",
			Help: "HTTP responses by route pattern and status class",
		}, []string{"method", "route", "class"}),
	}
}

// Middleware records latency and status class labelled by the chi route pattern,
// which keeps correlation IDs out of label values.
func (m *HTTP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.EndpointLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.Responses.WithLabelValues(r.Method, route, statusClass(sw.status)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
