// Package metrics provides Prometheus metrics for the trends pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "kcal_trends"
)

// Pipeline metrics
var (
	// PipelineRequestsTotal counts issued requests by range and metric.
	PipelineRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Total number of aggregation requests issued",
		},
		[]string{"range", "metric"},
	)

	// PipelineResultsTotal counts finished requests by outcome.
	PipelineResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "results_total",
			Help:      "Aggregation results by outcome",
		},
		[]string{"outcome"},
	)

	// PipelineDuration tracks end-to-end request latency.
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Aggregation request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Source metrics
var (
	// SourceFetchTotal counts log fetches by source and status.
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_total",
			Help:      "Log source fetch attempts by source and status",
		},
		[]string{"source", "status"},
	)

	// SourceEntriesFetched counts log entries returned by sources.
	SourceEntriesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "entries_total",
			Help:      "Log entries returned by each source",
		},
		[]string{"source"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts served requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Outcome labels for PipelineResultsTotal.
const (
	OutcomeCommitted   = "committed"
	OutcomeStale       = "stale"
	OutcomeUnavailable = "unavailable"
	OutcomeAbandoned   = "abandoned"
)

// Status labels for SourceFetchTotal.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
