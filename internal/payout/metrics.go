package payout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	flowTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_flow_transitions_total",
			Help: "Payout flow state transitions, by from and to state.",
		},
		[]string{"from", "to"},
	)

	stepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_steps_total",
			Help: "Payout engine step executions, by connector, step and outcome.",
		},
		[]string{"connector", "step", "outcome"},
	)
)

// GetFlowTransitionsTotal exposes the transition counter for tests.
func GetFlowTransitionsTotal() *prometheus.CounterVec { return flowTransitionsTotal }

// GetStepsTotal exposes the step counter for tests.
func GetStepsTotal() *prometheus.CounterVec { return stepsTotal }
