// Package reporting summarizes connector call logs for retrospectives:
// which connectors were hit, how statuses reconciled, which error codes
// dominated and how many of them were retryable.
package reporting

import (
	"time"
)

// CallEntry is one logged connector call after reconciliation and
// classification.
type CallEntry struct {
	Timestamp       time.Time
	TransactionID   string
	Connector       string
	Operation       string // e.g. "recipient", "fulfill", "refund"
	CanonicalStatus string
	Amount          int64
	Currency        string
	ErrorCode       string
	ErrorRetryable  bool
}

// RetrospectiveReport aggregates a slice of call entries.
type RetrospectiveReport struct {
	TotalCalls       int
	StatusBreakdown  map[string]int
	ErrorBreakdown   map[string]int
	RetryableErrors  int
	ConnectorUsage   map[string]int
	AmountByCurrency map[string]int64
	DateFrom         time.Time
	DateTo           time.Time
	CoveredDuration  time.Duration
}

// RetrospectiveReporter generates reports from call entries.
type RetrospectiveReporter struct{}

// NewRetrospectiveReporter creates a reporter.
func NewRetrospectiveReporter() *RetrospectiveReporter {
	return &RetrospectiveReporter{}
}

// GenerateRetrospective aggregates the entries. Amounts are summed only
// for calls whose canonical status is a success-side terminal.
func (rr *RetrospectiveReporter) GenerateRetrospective(entries []CallEntry) (*RetrospectiveReport, error) {
	report := &RetrospectiveReport{
		StatusBreakdown:  make(map[string]int),
		ErrorBreakdown:   make(map[string]int),
		ConnectorUsage:   make(map[string]int),
		AmountByCurrency: make(map[string]int64),
	}
	if len(entries) == 0 {
		return report, nil
	}

	report.DateFrom = entries[0].Timestamp
	report.DateTo = entries[0].Timestamp
	for _, entry := range entries {
		report.TotalCalls++
		if entry.Timestamp.Before(report.DateFrom) {
			report.DateFrom = entry.Timestamp
		}
		if entry.Timestamp.After(report.DateTo) {
			report.DateTo = entry.Timestamp
		}
		if entry.Connector != "" {
			report.ConnectorUsage[entry.Connector]++
		}
		if entry.CanonicalStatus != "" {
			report.StatusBreakdown[entry.CanonicalStatus]++
			if entry.CanonicalStatus == "success" || entry.CanonicalStatus == "charged" {
				report.AmountByCurrency[entry.Currency] += entry.Amount
			}
		}
		if entry.ErrorCode != "" {
			report.ErrorBreakdown[entry.ErrorCode]++
			if entry.ErrorRetryable {
				report.RetryableErrors++
			}
		}
	}
	report.CoveredDuration = report.DateTo.Sub(report.DateFrom)
	return report, nil
}
