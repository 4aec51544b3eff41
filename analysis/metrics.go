package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus-Metriken
// =============================================================================

var (
	// makeTotal zaehlt Make-Aufrufe je Knotenart
	makeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tensat_analysis_make_total",
		Help: "Total metadata computations by node kind",
	}, []string{"op"})

	// makeDuration misst die Dauer eines Make-Aufrufs inklusive Backend
	makeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tensat_analysis_make_duration_seconds",
		Help:    "Metadata computation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
	}, []string{"op"})

	// mergeTotal zaehlt Merge-Aufrufe nach Ergebnis
	mergeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tensat_analysis_merge_total",
		Help: "Total class merges by result",
	}, []string{"result"})
)
