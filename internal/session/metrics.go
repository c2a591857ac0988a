package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts session operations by outcome
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kmeans_session_operations_total",
			Help: "The total number of session operations",
		},
		[]string{"operation", "status"},
	)

	// InitializationsTotal counts successful initializations per strategy
	InitializationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kmeans_initializations_total",
			Help: "The total number of centroid initializations",
		},
		[]string{"strategy"},
	)

	// StepDuration tracks the time spent in a single step
	StepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kmeans_step_duration_seconds",
			Help:    "The duration of k-means steps in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15), // From 10µs to ~160ms
		},
	)

	// IterationsToConvergence tracks the iteration count at which sessions converge
	IterationsToConvergence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kmeans_iterations_to_convergence",
			Help:    "The iteration at which a session converged",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	// CentroidsDropped counts centroids lost to empty clusters during recomputation
	CentroidsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kmeans_centroids_dropped_total",
			Help: "The total number of centroids dropped because their cluster was empty",
		},
	)
)

func observeOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	OperationsTotal.WithLabelValues(op, status).Inc()
}
