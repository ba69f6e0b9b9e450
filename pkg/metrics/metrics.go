package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. Poses Processed (Counter)
	// Counts localization samples consumed by session loops.
	PosesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wayfarer_poses_processed_total",
			Help: "Total number of pose updates processed by navigation sessions",
		},
	)

	// 2. Guidance Events (Counter)
	// Labeled by event kind (turn, distance, arrived, off_route).
	GuidanceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfarer_guidance_events_total",
			Help: "Total number of guidance events emitted",
		},
		[]string{"kind"},
	)

	// 3. Replans (Counter)
	// Labeled by outcome so dashboards separate recoveries from stale-route
	// fallbacks.
	Replans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfarer_replans_total",
			Help: "Total number of route replanning attempts",
		},
		[]string{"outcome"},
	)

	// 4. Plan Duration (Histogram)
	// Route computation time. Buckets cover tiny indoor maps up to large
	// multi-floor graphs.
	PlanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wayfarer_plan_duration_seconds",
			Help:    "Duration of A* route computations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// 5. Active Sessions (Gauge)
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wayfarer_active_sessions",
			Help: "Number of navigation sessions currently running",
		},
	)
)
