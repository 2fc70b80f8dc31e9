// Package metrics holds the Prometheus instruments exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline outcomes
const (
	OutcomeRendered = "rendered"
	OutcomeFallback = "fallback"
)

var (
	// Pipeline Metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadenza_pipeline_runs_total",
			Help: "Total number of panel pipeline runs by outcome",
		},
		[]string{"panel", "outcome"},
	)

	PipelineStale = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadenza_pipeline_stale_total",
			Help: "Total number of pipeline results dropped because a newer request was issued",
		},
		[]string{"panel"},
	)

	PipelineFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadenza_pipeline_fetch_seconds",
			Help:    "Duration of the upstream fetch of a pipeline run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"panel"},
	)

	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadenza_http_requests_total",
			Help: "Total number of console HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadenza_http_request_duration_seconds",
			Help:    "Duration of console HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadenza_websocket_connections",
			Help: "Current number of connected websocket clients",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadenza_websocket_messages_sent_total",
			Help: "Total number of websocket messages sent by type",
		},
		[]string{"type"},
	)

	// Notification Metrics
	NotificationsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadenza_notifications_total",
			Help: "Total number of notifications raised by severity",
		},
		[]string{"severity"},
	)
)

// RecordPipelineRun records one pipeline run and how long its fetch took
func RecordPipelineRun(panel string, fallback bool, fetch time.Duration) {
	outcome := OutcomeRendered
	if fallback {
		outcome = OutcomeFallback
	}
	PipelineRuns.WithLabelValues(panel, outcome).Inc()
	PipelineFetchDuration.WithLabelValues(panel).Observe(fetch.Seconds())
}

// RecordStale records a result dropped in favour of a newer request
func RecordStale(panel string) {
	PipelineStale.WithLabelValues(panel).Inc()
}

// RecordHTTPRequest records a served console request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordNotification counts a raised notification
func RecordNotification(severity string) {
	NotificationsRaised.WithLabelValues(severity).Inc()
}
