package domain

// Address is the canonical billing address. All fields are optional at
// this layer; connectors that require one reject with a field-specific
// validation error at request-build time.
type Address struct {
	Country  string
	Line1    string
	City     string
	State    string
	PostCode string
}

// CustomerDetails carries the customer identity fields connectors may
// require for recipient creation.
type CustomerDetails struct {
	Name  string
	Email string
	Phone string
}

// BankDetails is a tagged union over the bank account shapes the router
// accepts. Exactly one variant should be populated; Variant reports which.
type BankDetails struct {
	// IBAN variant.
	IBAN string
	BIC  string
	// UK sort-code variant.
	SortCode      string
	AccountNumber string
	// SWIFT variant.
	SwiftCode     string
	RoutingNumber string
}

// BankDetailVariant identifies which account shape a BankDetails carries.
type BankDetailVariant int

const (
	BankDetailNone BankDetailVariant = iota
	BankDetailIBAN
	BankDetailSortCode
	BankDetailSwift
)

// Variant inspects the populated fields. IBAN wins over sort code wins
// over SWIFT when a caller sloppily fills more than one.
func (b BankDetails) Variant() BankDetailVariant {
	switch {
	case b.IBAN != "":
		return BankDetailIBAN
	case b.SortCode != "":
		return BankDetailSortCode
	case b.SwiftCode != "":
		return BankDetailSwift
	}
	return BankDetailNone
}

// CardDetails is the card shape for card-rail payouts. Few payout
// connectors support it; the capability check happens before any request
// is built.
type CardDetails struct {
	CardNumber  string
	ExpiryMonth string
	ExpiryYear  string
}

// PayoutMethodData is a tagged union over the payout destination.
type PayoutMethodData struct {
	Bank *BankDetails
	Card *CardDetails
}

// PayoutsRequest is the canonical payout request handed to a payout
// adapter. Optional fields are pointers and are never silently defaulted:
// a connector that needs one and finds nil fails with the field name.
type PayoutsRequest struct {
	PayoutID            string
	Amount              int64 // minor units
	SourceCurrency      string
	DestinationCurrency string
	PayoutType          PayoutType
	EntityType          EntityType
	QuoteID             *string
	ConnectorCustomerID *string
	ConnectorPayoutID   *string
	CustomerDetails     *CustomerDetails
	BillingAddress      *Address
	PayoutMethodData    *PayoutMethodData
}

// PaymentsAuthorizeRequest is the canonical single-call payment
// authorization request.
type PaymentsAuthorizeRequest struct {
	PaymentID        string
	Amount           int64 // minor units
	Currency         string
	CaptureAutomatic bool
	CustomerDetails  *CustomerDetails
	BillingAddress   *Address
	CardDetails      *CardDetails
}

// PaymentsCaptureRequest captures a previously authorized payment.
// AmountToCapture nil means capture the full authorized amount.
type PaymentsCaptureRequest struct {
	ConnectorTransactionID string
	AmountToCapture        *int64
	Currency               string
}

// PaymentsVoidRequest cancels an authorization before capture.
type PaymentsVoidRequest struct {
	ConnectorTransactionID string
}

// RefundsRequest is the canonical refund request. CapturedAmount is the
// amount the connector actually charged; connectors reject refunds
// exceeding it.
type RefundsRequest struct {
	RefundID               string
	ConnectorTransactionID string
	RefundAmount           int64
	CapturedAmount         int64
	Currency               string
}
