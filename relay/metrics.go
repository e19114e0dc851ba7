package relay

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "Total number of HTTP requests handled by the relay",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	bridgeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_bridge_connections",
			Help: "Number of live WebSocket bridge connections",
		},
	)

	framesForwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_frames_forwarded_total",
			Help: "Total number of ratchet frames forwarded or queued",
		},
		[]string{"delivery"}, // live, queued
	)

	oneTimePrekeysRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_one_time_prekeys_remaining",
			Help: "Number of unused one-time prekeys remaining per identity",
		},
		[]string{"identity"},
	)
)

// metricsMiddleware wraps a handler with request-count and latency metrics.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
