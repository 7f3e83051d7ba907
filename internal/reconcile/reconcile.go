// Package reconcile collapses connector-specific status enumerations into
// the canonical lifecycle sets. Each connector declares its full status
// vocabulary and an explicit mapping table; totality is enforced when the
// table is built, so Map never hits an unmapped declared variant at
// runtime. Tables are immutable after construction and safe for
// unsynchronized concurrent reads.
package reconcile

import (
	"fmt"

	"github.com/yourorg/payment-router/internal/domain"
)

// ErrUnmappedStatus is wrapped by Map errors for inputs outside the
// connector's declared vocabulary. Deserialization is expected to have
// normalized case and synonyms before this layer.
var ErrUnmappedStatus = fmt.Errorf("reconcile: unmapped connector status")

func checkTotality(connectorName string, variants []string, mapped map[string]bool) error {
	declared := make(map[string]bool, len(variants))
	for _, v := range variants {
		declared[v] = true
		if !mapped[v] {
			return fmt.Errorf("reconcile: %s: declared status %q has no canonical mapping", connectorName, v)
		}
	}
	for v := range mapped {
		if !declared[v] {
			return fmt.Errorf("reconcile: %s: mapping contains undeclared status %q", connectorName, v)
		}
	}
	return nil
}

// PayoutStatusTable maps one connector's payout statuses onto
// domain.PayoutStatus.
type PayoutStatusTable struct {
	connector string
	mapping   map[string]domain.PayoutStatus
}

// NewPayoutStatusTable builds a table after verifying the mapping is total
// over variants and contains no undeclared keys.
func NewPayoutStatusTable(connectorName string, variants []string, mapping map[string]domain.PayoutStatus) (*PayoutStatusTable, error) {
	mapped := make(map[string]bool, len(mapping))
	for v := range mapping {
		mapped[v] = true
	}
	if err := checkTotality(connectorName, variants, mapped); err != nil {
		return nil, err
	}
	m := make(map[string]domain.PayoutStatus, len(mapping))
	for k, v := range mapping {
		m[k] = v
	}
	return &PayoutStatusTable{connector: connectorName, mapping: m}, nil
}

// Map translates a deserialized connector status variant. Pure and
// deterministic; inputs outside the declared vocabulary error rather than
// defaulting.
func (t *PayoutStatusTable) Map(variant string) (domain.PayoutStatus, error) {
	s, ok := t.mapping[variant]
	if !ok {
		reconciledTotal.WithLabelValues(t.connector, "payout", "unmapped").Inc()
		return 0, fmt.Errorf("%w: %s payout status %q", ErrUnmappedStatus, t.connector, variant)
	}
	reconciledTotal.WithLabelValues(t.connector, "payout", s.String()).Inc()
	return s, nil
}

// PaymentStatusTable maps one connector's payment statuses onto
// domain.PaymentStatus.
type PaymentStatusTable struct {
	connector string
	mapping   map[string]domain.PaymentStatus
}

// NewPaymentStatusTable builds a totality-checked payment status table.
func NewPaymentStatusTable(connectorName string, variants []string, mapping map[string]domain.PaymentStatus) (*PaymentStatusTable, error) {
	mapped := make(map[string]bool, len(mapping))
	for v := range mapping {
		mapped[v] = true
	}
	if err := checkTotality(connectorName, variants, mapped); err != nil {
		return nil, err
	}
	m := make(map[string]domain.PaymentStatus, len(mapping))
	for k, v := range mapping {
		m[k] = v
	}
	return &PaymentStatusTable{connector: connectorName, mapping: m}, nil
}

// Map translates a deserialized connector payment status variant.
func (t *PaymentStatusTable) Map(variant string) (domain.PaymentStatus, error) {
	s, ok := t.mapping[variant]
	if !ok {
		reconciledTotal.WithLabelValues(t.connector, "payment", "unmapped").Inc()
		return 0, fmt.Errorf("%w: %s payment status %q", ErrUnmappedStatus, t.connector, variant)
	}
	reconciledTotal.WithLabelValues(t.connector, "payment", s.String()).Inc()
	return s, nil
}

// RefundStatusTable maps one connector's refund statuses onto
// domain.RefundStatus.
type RefundStatusTable struct {
	connector string
	mapping   map[string]domain.RefundStatus
}

// NewRefundStatusTable builds a totality-checked refund status table.
func NewRefundStatusTable(connectorName string, variants []string, mapping map[string]domain.RefundStatus) (*RefundStatusTable, error) {
	mapped := make(map[string]bool, len(mapping))
	for v := range mapping {
		mapped[v] = true
	}
	if err := checkTotality(connectorName, variants, mapped); err != nil {
		return nil, err
	}
	m := make(map[string]domain.RefundStatus, len(mapping))
	for k, v := range mapping {
		m[k] = v
	}
	return &RefundStatusTable{connector: connectorName, mapping: m}, nil
}

// Map translates a deserialized connector refund status variant.
func (t *RefundStatusTable) Map(variant string) (domain.RefundStatus, error) {
	s, ok := t.mapping[variant]
	if !ok {
		reconciledTotal.WithLabelValues(t.connector, "refund", "unmapped").Inc()
		return 0, fmt.Errorf("%w: %s refund status %q", ErrUnmappedStatus, t.connector, variant)
	}
	reconciledTotal.WithLabelValues(t.connector, "refund", s.String()).Inc()
	return s, nil
}
