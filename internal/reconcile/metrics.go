package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconciledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_statuses_reconciled_total",
			Help: "Connector statuses mapped to canonical statuses, by connector, lifecycle and outcome.",
		},
		[]string{"connector", "lifecycle", "canonical_status"},
	)

	monotonicityViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_status_monotonicity_violations_total",
			Help: "Observations that attempted to downgrade a terminal canonical status.",
		},
		[]string{"lifecycle"},
	)
)

// GetReconciledTotal exposes the reconciliation counter for tests.
func GetReconciledTotal() *prometheus.CounterVec { return reconciledTotal }

// GetMonotonicityViolationsTotal exposes the violation counter for tests.
func GetMonotonicityViolationsTotal() *prometheus.CounterVec { return monotonicityViolationsTotal }
