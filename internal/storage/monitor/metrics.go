package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store metrics
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_session_operations_total",
		Help: "Total number of session store operations",
	}, []string{"store", "operation", "status"})

	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_session_latency_seconds",
		Help:    "Latency of session store operations",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"store", "operation"})

	StoreSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storage_sessions",
		Help: "Current number of sessions held by the store",
	}, []string{"store"})

	StoreEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_session_evictions_total",
		Help: "Total number of sessions evicted by size or age",
	}, []string{"store"})

	StoreSnapshotBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_snapshot_bytes",
		Help:    "Encoded size of stored session snapshots",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8), // From 256B to ~4MB
	}, []string{"store", "compressed"})

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_errors_total",
		Help: "Total number of storage errors",
	}, []string{"store", "operation", "error_type"})
)

// Observe records the outcome and latency of one store operation.
// Not-found results count as "miss", not as errors.
func Observe(store, operation string, start time.Time, err error, notFound bool) {
	StoreLatency.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())

	switch {
	case notFound:
		StoreOperations.WithLabelValues(store, operation, "miss").Inc()
	case err != nil:
		StoreOperations.WithLabelValues(store, operation, "error").Inc()
		ErrorsTotal.WithLabelValues(store, operation, "backend").Inc()
	default:
		StoreOperations.WithLabelValues(store, operation, "ok").Inc()
	}
}
