package domain

// PaymentsResponseData is the canonical result of a payment-side
// connector call.
type PaymentsResponseData struct {
	Status                 PaymentStatus
	ConnectorTransactionID string
	Metadata               map[string]string
}

// PayoutsResponseData is the canonical result of a payout-side connector
// call. PayoutEligible is connector-supplied eligibility metadata; nil
// when the connector does not report it.
type PayoutsResponseData struct {
	Status            PayoutStatus
	ConnectorPayoutID string
	PayoutEligible    *bool
	Metadata          map[string]string
}

// RefundsResponseData is the canonical result of a refund connector call.
type RefundsResponseData struct {
	Status            RefundStatus
	ConnectorRefundID string
}
