// Package domain holds the router's canonical payment vocabulary: the
// lifecycle states a payment, payout, or refund can occupy, the canonical
// request/response structs exchanged with connector adapters, and the
// credential variants a connector may accept. Everything here is
// connector-independent; per-connector vocabulary lives with each adapter.
package domain

import "fmt"

// PaymentStatus is the canonical lifecycle state of a payment attempt.
type PaymentStatus int

const (
	PaymentRequiresCreation PaymentStatus = iota
	PaymentRequiresConfirmation
	PaymentAuthorized
	PaymentCharged
	PaymentVoided
	PaymentFailed
	PaymentPending
)

var paymentStatusNames = map[PaymentStatus]string{
	PaymentRequiresCreation:     "requires_creation",
	PaymentRequiresConfirmation: "requires_confirmation",
	PaymentAuthorized:           "authorized",
	PaymentCharged:              "charged",
	PaymentVoided:               "voided",
	PaymentFailed:               "failed",
	PaymentPending:              "pending",
}

func (s PaymentStatus) String() string {
	if name, ok := paymentStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("payment_status(%d)", int(s))
}

// Terminal reports whether no further status change is expected for the
// attempt. Authorized is not terminal: it still awaits capture or void.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentCharged, PaymentVoided, PaymentFailed:
		return true
	}
	return false
}

// PayoutStatus is the canonical lifecycle state of a payout.
type PayoutStatus int

const (
	PayoutRequiresCreation PayoutStatus = iota
	PayoutRequiresFulfillment
	PayoutSuccess
	PayoutFailed
	PayoutPending
)

var payoutStatusNames = map[PayoutStatus]string{
	PayoutRequiresCreation:    "requires_creation",
	PayoutRequiresFulfillment: "requires_fulfillment",
	PayoutSuccess:             "success",
	PayoutFailed:              "failed",
	PayoutPending:             "pending",
}

func (s PayoutStatus) String() string {
	if name, ok := payoutStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("payout_status(%d)", int(s))
}

// Terminal reports whether the payout has reached Success or Failed.
func (s PayoutStatus) Terminal() bool {
	return s == PayoutSuccess || s == PayoutFailed
}

// RefundStatus is the canonical lifecycle state of a refund.
type RefundStatus int

const (
	RefundPending RefundStatus = iota
	RefundSuccess
	RefundFailure
)

var refundStatusNames = map[RefundStatus]string{
	RefundPending: "pending",
	RefundSuccess: "success",
	RefundFailure: "failure",
}

func (s RefundStatus) String() string {
	if name, ok := refundStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("refund_status(%d)", int(s))
}

// Terminal reports whether the refund has settled either way.
func (s RefundStatus) Terminal() bool {
	return s == RefundSuccess || s == RefundFailure
}

// PayoutType is the funding rail requested for a payout.
type PayoutType int

const (
	PayoutTypeBank PayoutType = iota
	PayoutTypeCard
)

func (t PayoutType) String() string {
	if t == PayoutTypeCard {
		return "card"
	}
	return "bank"
}

// EntityType classifies the payout recipient as declared by the merchant.
type EntityType int

const (
	EntityIndividual EntityType = iota
	EntityPersonal
	EntityNonProfit
	EntityCompany
	EntityPublicSector
	EntityBusiness
)

// LegalType is the two-valued legal classification most payout rails
// actually distinguish.
type LegalType int

const (
	LegalPrivate LegalType = iota
	LegalBusiness
)

func (l LegalType) String() string {
	if l == LegalBusiness {
		return "BUSINESS"
	}
	return "PRIVATE"
}

// LegalTypeFor collapses the merchant-facing entity taxonomy into the
// legal classification. Total over EntityType; unknown values classify as
// Private, the conservative default for natural persons.
func LegalTypeFor(e EntityType) LegalType {
	switch e {
	case EntityCompany, EntityPublicSector, EntityBusiness:
		return LegalBusiness
	default:
		return LegalPrivate
	}
}
