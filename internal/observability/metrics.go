// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Aggregation metrics
	SnapshotsComputed   prometheus.Counter
	HeadlinesScored     prometheus.Counter
	SymbolsAggregated   prometheus.Gauge
	AggregationDuration prometheus.Histogram

	// Persistence metrics
	HistoryEntriesUpserted prometheus.Counter
	MessagesArchived       prometheus.Counter
	PersistenceErrors      *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec
	WSClientsConnected  prometheus.Gauge
	WSSnapshotsPushed   prometheus.Counter

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "market_mood"
	}

	return &Metrics{
		// Aggregation metrics
		SnapshotsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "snapshots_computed_total",
			Help:      "Total number of top-movers snapshots computed",
		}),
		HeadlinesScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "headlines_scored_total",
			Help:      "Total number of headlines scored and weighted",
		}),
		SymbolsAggregated: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "symbols_aggregated",
			Help:      "Number of distinct symbols in the most recent run",
		}),
		AggregationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Aggregation run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Persistence metrics
		HistoryEntriesUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persistence",
			Name:      "history_entries_upserted_total",
			Help:      "Total number of daily mood history entries upserted",
		}),
		MessagesArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persistence",
			Name:      "messages_archived_total",
			Help:      "Total number of scored messages archived",
		}),
		PersistenceErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persistence",
			Name:      "errors_total",
			Help:      "Total number of persistence failures by store",
		}, []string{"store"}),

		// HTTP metrics
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "ws_clients_connected",
			Help:      "Number of currently connected WebSocket clients",
		}),
		WSSnapshotsPushed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "ws_snapshots_pushed_total",
			Help:      "Total number of snapshots pushed to WebSocket clients",
		}),

		// Health metrics
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful aggregation run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")
