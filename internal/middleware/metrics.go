package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_http_requests_total",
			Help: "Total HTTP requests by method and status.",
		},
		[]string{"method", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_job_runs_total",
			Help: "Total background job executions by job and outcome.",
		},
		[]string{"job", "outcome"},
	)
	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_job_duration_seconds",
			Help:    "Background job execution duration.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

// Metrics records request counters and durations for every handler.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
		requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveJob records one background job execution.
func ObserveJob(job string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	jobRunsTotal.WithLabelValues(job, outcome).Inc()
	jobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}

// PrometheusHandler exposes the default registry.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
