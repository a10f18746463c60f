// Package telemetry provides application-level observability for the cookbook
// backend.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<CBK_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format and is intended to be scraped by a Prometheus server every 15–60 seconds.
// It is NOT served by the Gin router.
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/recipes/:id)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as recipe IDs.
//
// # Usage
//
// Import the package directly and use an exported var:
//
//	telemetry.ModerationTransitionsTotal.WithLabelValues("publish").Inc()
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cookbook/cookbook-backend/internal/safego"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template (e.g. /api/v1/recipes/:id),
// NOT the raw URL, to prevent unbounded cardinality.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and exponential-ish
// buckets from 5 ms to 30 s.  Use histogram_quantile to compute latency percentiles.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Authentication metrics.
//
// SessionsIssuedTotal counts successful public logins; SessionsRevokedTotal
// counts logouts.  TokenValidationFailuresTotal is a CounterVec with labels
// {kind, reason} where kind is "static" or "session" and reason names the
// rejection cause ("unknown", "invalid", "malformed", "expired").
//
// Example PromQL queries:
//   - Login rate:            rate(sessions_issued_total[1h])
//   - Rejection breakdown:   sum by (kind, reason) (rate(token_validation_failures_total[1h]))
var (
	SessionsIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_issued_total",
			Help: "Total number of session tokens issued on successful login.",
		},
	)

	SessionsRevokedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_revoked_total",
			Help: "Total number of session tokens revoked on logout.",
		},
	)

	TokenValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_validation_failures_total",
			Help: "Total number of rejected credentials, by token kind and rejection reason.",
		},
		[]string{"kind", "reason"},
	)
)

// Content metrics.
//
// ModerationTransitionsTotal is a CounterVec with label {action} incremented
// on every successful publication state change ("submit", "withdraw",
// "publish", "unpublish").  A sudden spike in "submit" with no matching
// "publish" indicates a review backlog.
//
// ImageUploadsTotal is a CounterVec with label {content_type} incremented
// per accepted image upload; ImageUploadBytes is a Histogram of accepted
// upload sizes, useful for tuning the upload ceiling.
var (
	ModerationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_transitions_total",
			Help: "Total number of recipe publication state changes, by action.",
		},
		[]string{"action"},
	)

	ImageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Total number of accepted recipe image uploads, by content type.",
		},
		[]string{"content_type"},
	)

	ImageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_upload_bytes",
			Help:    "Histogram of accepted image upload sizes in bytes.",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
	)
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	safego.Go(func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	})
}
