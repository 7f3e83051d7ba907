package errclass

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RetryTable is an immutable code→retryability lookup for one connector.
// Built once at startup from connector defaults merged with operator
// config; never mutated afterwards, so concurrent reads need no locking.
type RetryTable struct {
	codes map[string]bool
}

// NewRetryTable builds a table from connector defaults and operator
// overrides. Overrides win on conflict.
func NewRetryTable(defaults map[string]bool, overrides map[string]bool) *RetryTable {
	codes := make(map[string]bool, len(defaults)+len(overrides))
	for code, retryable := range defaults {
		codes[code] = retryable
	}
	for code, retryable := range overrides {
		codes[code] = retryable
	}
	return &RetryTable{codes: codes}
}

// Retryable reports the hint for a classified code. Unknown codes are
// never retryable: retry safety is opt-in per code, not assumed.
func (t *RetryTable) Retryable(code string) bool {
	return t.codes[code]
}

var classifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "connector_errors_classified_total",
		Help: "Connector error payloads classified, by connector and retryability.",
	},
	[]string{"connector", "retryable"},
)

// GetClassifiedTotal exposes the classification counter for tests.
func GetClassifiedTotal() *prometheus.CounterVec { return classifiedTotal }
