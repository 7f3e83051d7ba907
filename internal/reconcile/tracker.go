package reconcile

import (
	"fmt"
	"sync"

	"github.com/yourorg/payment-router/internal/domain"
)

// ErrTerminalDowngrade is wrapped when an observation would move a
// transaction's canonical status from a terminal value back to a
// non-terminal one.
var ErrTerminalDowngrade = fmt.Errorf("reconcile: terminal status cannot be downgraded")

// Tracker enforces monotonicity across a single transaction's observed
// status history: once a canonical status reaches a terminal value, a
// later connector report cannot pull it back to a non-terminal one. The
// pure mapping tables stay stateless; callers feed each mapped observation
// through the tracker. Safe for concurrent use across transaction ids.
type Tracker struct {
	mu       sync.Mutex
	payments map[string]domain.PaymentStatus
	payouts  map[string]domain.PayoutStatus
	refunds  map[string]domain.RefundStatus
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		payments: make(map[string]domain.PaymentStatus),
		payouts:  make(map[string]domain.PayoutStatus),
		refunds:  make(map[string]domain.RefundStatus),
	}
}

// ObservePayment records a mapped payment status for txnID and returns
// the effective status. Terminal payment statuses (Charged, Voided,
// Failed) follow the same rule as payouts: a later report cannot move a
// settled payment to any other status.
func (t *Tracker) ObservePayment(txnID string, s domain.PaymentStatus) (domain.PaymentStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, seen := t.payments[txnID]
	if seen && prev.Terminal() && s != prev {
		monotonicityViolationsTotal.WithLabelValues("payment").Inc()
		return prev, fmt.Errorf("%w: payment %s is %s, observed %s", ErrTerminalDowngrade, txnID, prev, s)
	}
	t.payments[txnID] = s
	return s, nil
}

// ObservePayout records a mapped payout status for txnID and returns the
// effective status. A terminal-to-nonterminal downgrade is rejected: the
// stored terminal status is returned alongside the error. Observing a
// different terminal status after one is recorded is also rejected, since
// a settled payout cannot both succeed and fail.
func (t *Tracker) ObservePayout(txnID string, s domain.PayoutStatus) (domain.PayoutStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, seen := t.payouts[txnID]
	if seen && prev.Terminal() && s != prev {
		monotonicityViolationsTotal.WithLabelValues("payout").Inc()
		return prev, fmt.Errorf("%w: payout %s is %s, observed %s", ErrTerminalDowngrade, txnID, prev, s)
	}
	t.payouts[txnID] = s
	return s, nil
}

// ObserveRefund records a mapped refund status for refundID under the same
// monotonicity rule.
func (t *Tracker) ObserveRefund(refundID string, s domain.RefundStatus) (domain.RefundStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, seen := t.refunds[refundID]
	if seen && prev.Terminal() && s != prev {
		monotonicityViolationsTotal.WithLabelValues("refund").Inc()
		return prev, fmt.Errorf("%w: refund %s is %s, observed %s", ErrTerminalDowngrade, refundID, prev, s)
	}
	t.refunds[refundID] = s
	return s, nil
}

// Forget drops tracked state for an archived transaction.
func (t *Tracker) Forget(txnID string) {
	t.mu.Lock()
	delete(t.payments, txnID)
	delete(t.payouts, txnID)
	delete(t.refunds, txnID)
	t.mu.Unlock()
}
