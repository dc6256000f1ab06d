// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DetectionRunsTotal tracks detection runs per table and outcome
	DetectionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "detection",
			Name:      "runs_total",
			Help:      "Total number of duplicate detection runs by entity table and status",
		},
		[]string{"entity_table", "status"},
	)

	// DetectionDuration tracks how long a detection pass takes
	DetectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "detection",
			Name:      "duration_seconds",
			Help:      "Duration of duplicate detection runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"entity_table"},
	)

	// ComparisonsTotal tracks pairwise comparisons performed
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "detection",
			Name:      "comparisons_total",
			Help:      "Total number of pairwise record comparisons",
		},
		[]string{"entity_table"},
	)

	// CandidatesFoundTotal tracks new duplicate candidates recorded
	CandidatesFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "detection",
			Name:      "candidates_found_total",
			Help:      "Total number of new duplicate candidates recorded",
		},
		[]string{"entity_table"},
	)

	// CandidatesResolvedTotal tracks review resolutions
	CandidatesResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "review",
			Name:      "candidates_resolved_total",
			Help:      "Total number of duplicate candidates resolved by resolution",
		},
		[]string{"entity_table", "resolution"},
	)
)
