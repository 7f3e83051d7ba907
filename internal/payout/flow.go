// Package payout drives the multi-step payout flow: recipient creation,
// quoting, transfer creation, fulfillment. Payout connectors need several
// round trips before money moves, unlike single-call payment
// authorization, so the mandatory ordering lives here as an explicit
// state machine. Each step is one connector call and one-shot; retry is
// the caller's decision, informed by the policy engine.
package payout

import (
	"fmt"
	"sync"

	"github.com/yourorg/payment-router/internal/domain"
)

// FlowState is the position of a payout inside the multi-step flow.
type FlowState int

const (
	RecipientPending FlowState = iota
	RecipientCreated
	QuotePending
	QuoteCreated
	TransferPending
	TransferCreated
	FulfillmentPending
	Fulfilled
	FlowFailed
)

var flowStateNames = map[FlowState]string{
	RecipientPending:   "recipient_pending",
	RecipientCreated:   "recipient_created",
	QuotePending:       "quote_pending",
	QuoteCreated:       "quote_created",
	TransferPending:    "transfer_pending",
	TransferCreated:    "transfer_created",
	FulfillmentPending: "fulfillment_pending",
	Fulfilled:          "fulfilled",
	FlowFailed:         "failed",
}

func (s FlowState) String() string {
	if name, ok := flowStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("flow_state(%d)", int(s))
}

// Terminal reports whether the flow is finished.
func (s FlowState) Terminal() bool {
	return s == Fulfilled || s == FlowFailed
}

// allowedTransitions is the full transition table. FlowFailed is reachable
// from every non-terminal state; terminal states allow nothing.
var allowedTransitions = map[FlowState][]FlowState{
	RecipientPending:   {RecipientCreated, FlowFailed},
	RecipientCreated:   {QuotePending, FlowFailed},
	QuotePending:       {QuoteCreated, FlowFailed},
	QuoteCreated:       {TransferPending, FlowFailed},
	TransferPending:    {TransferCreated, FlowFailed},
	TransferCreated:    {FulfillmentPending, FlowFailed},
	FulfillmentPending: {Fulfilled, FlowFailed},
	Fulfilled:          {},
	FlowFailed:         {},
}

// ErrFlowTerminal is wrapped when a transition is attempted out of a
// terminal state. That is a logic error in the caller and must not be a
// silent no-op.
var ErrFlowTerminal = fmt.Errorf("payout: flow already terminal")

// ErrInvalidTransition is wrapped for transitions the table forbids.
var ErrInvalidTransition = fmt.Errorf("payout: invalid flow transition")

// CanTransition reports whether the table allows from→to.
func CanTransition(from, to FlowState) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition errors when from→to is not allowed, distinguishing
// the terminal case so callers can fail loudly on it.
func ValidateTransition(from, to FlowState) error {
	if from.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrFlowTerminal, from, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Flow is the mutable per-payout record. Distinct flows share no mutable
// state and advance fully in parallel; within one flow a mutex keeps the
// strictly sequential contract honest even against a confused caller.
type Flow struct {
	mu sync.Mutex

	PayoutID string
	state    FlowState

	// Connector-assigned identifiers accumulated as steps complete.
	recipientID string
	quoteID     string
	transferID  string

	// lastStatus is the most recent canonical payout status reported by
	// the connector for this flow.
	lastStatus domain.PayoutStatus

	attempts map[Step]int
}

// NewFlow opens a flow for a received payout request.
func NewFlow(payoutID string) *Flow {
	return &Flow{
		PayoutID:   payoutID,
		state:      RecipientPending,
		lastStatus: domain.PayoutRequiresCreation,
		attempts:   make(map[Step]int),
	}
}

// RecipientID returns the connector-assigned recipient identifier, empty
// until the recipient step completes.
func (f *Flow) RecipientID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipientID
}

func (f *Flow) setRecipientID(id string) {
	f.mu.Lock()
	f.recipientID = id
	f.mu.Unlock()
}

// QuoteID returns the connector-assigned quote identifier, empty until
// the quote step completes.
func (f *Flow) QuoteID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quoteID
}

func (f *Flow) setQuoteID(id string) {
	f.mu.Lock()
	f.quoteID = id
	f.mu.Unlock()
}

// TransferID returns the connector-assigned transfer identifier, empty
// until the transfer step completes.
func (f *Flow) TransferID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transferID
}

func (f *Flow) setTransferID(id string) {
	f.mu.Lock()
	f.transferID = id
	f.mu.Unlock()
}

// LastStatus returns the most recent canonical payout status the
// connector reported for this flow.
func (f *Flow) LastStatus() domain.PayoutStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastStatus
}

func (f *Flow) setLastStatus(s domain.PayoutStatus) {
	f.mu.Lock()
	f.lastStatus = s
	f.mu.Unlock()
}

// nextAttempt counts invocations of a step for this flow, for policy
// rules keyed on attempt_number.
func (f *Flow) nextAttempt(step Step) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[step]++
	return f.attempts[step]
}

// State returns the current flow state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// transition applies a validated state change under the flow lock.
func (f *Flow) transition(to FlowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ValidateTransition(f.state, to); err != nil {
		return err
	}
	flowTransitionsTotal.WithLabelValues(f.state.String(), to.String()).Inc()
	f.state = to
	return nil
}

// enterPending moves the flow into a step's pending state. Re-entering
// the same pending state is allowed: a failed one-shot step left there
// may be re-invoked by the caller.
func (f *Flow) enterPending(to FlowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == to {
		return nil
	}
	if err := ValidateTransition(f.state, to); err != nil {
		return err
	}
	flowTransitionsTotal.WithLabelValues(f.state.String(), to.String()).Inc()
	f.state = to
	return nil
}

// Fail moves the flow to FlowFailed. Failing an already-terminal flow is a
// caller logic error.
func (f *Flow) Fail() error {
	return f.transition(FlowFailed)
}
