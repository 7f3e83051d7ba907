package paypal

import (
	"fmt"

	"github.com/yourorg/payment-router/internal/domain"
	"github.com/yourorg/payment-router/internal/errclass"
	"github.com/yourorg/payment-router/internal/reconcile"
)

// Wire shapes for the PayPal orders/payments API.

type amountValue struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type cardSource struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
}

type paymentSource struct {
	Card *cardSource `json:"card,omitempty"`
}

type purchaseUnit struct {
	Amount amountValue `json:"amount"`
}

type orderCreateRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
	PaymentSource *paymentSource `json:"payment_source,omitempty"`
}

type authorizationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type captureRequest struct {
	Amount *amountValue `json:"amount,omitempty"`
}

type refundRequest struct {
	Amount    amountValue `json:"amount"`
	InvoiceID string      `json:"invoice_id,omitempty"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// errorResponse is the connector's error envelope: a name/message pair
// plus a detail list with per-field issues.
type errorResponse struct {
	Name    string        `json:"name"`
	Message string        `json:"message"`
	DebugID string        `json:"debug_id"`
	Details []errorDetail `json:"details"`
}

type errorDetail struct {
	Field       string `json:"field,omitempty"`
	Issue       string `json:"issue"`
	Description string `json:"description"`
}

// toPayload converts the connector envelope into the classifier's shape,
// preserving detail order.
func (e errorResponse) toPayload() errclass.Payload {
	p := errclass.Payload{Error: e.Name, Message: e.Message}
	for _, d := range e.Details {
		p.Errors = append(p.Errors, errclass.SubError{
			Code:    d.Issue,
			Message: d.Description,
			Field:   d.Field,
		})
	}
	return p
}

// paymentStatusVariants is the connector's full authorization/capture
// status vocabulary.
var paymentStatusVariants = []string{
	"CREATED",
	"PAYER_ACTION_REQUIRED",
	"PENDING",
	"CAPTURED",
	"PARTIALLY_CAPTURED",
	"COMPLETED",
	"DENIED",
	"EXPIRED",
	"VOIDED",
}

var paymentStatusMapping = map[string]domain.PaymentStatus{
	"CREATED":               domain.PaymentAuthorized,
	"PAYER_ACTION_REQUIRED": domain.PaymentRequiresConfirmation,
	"PENDING":               domain.PaymentPending,
	"CAPTURED":              domain.PaymentCharged,
	"PARTIALLY_CAPTURED":    domain.PaymentCharged,
	"COMPLETED":             domain.PaymentCharged,
	"DENIED":                domain.PaymentFailed,
	"EXPIRED":               domain.PaymentFailed,
	"VOIDED":                domain.PaymentVoided,
}

var refundStatusVariants = []string{
	"PENDING",
	"COMPLETED",
	"CANCELLED",
	"FAILED",
}

var refundStatusMapping = map[string]domain.RefundStatus{
	"PENDING":   domain.RefundPending,
	"COMPLETED": domain.RefundSuccess,
	"CANCELLED": domain.RefundFailure,
	"FAILED":    domain.RefundFailure,
}

// PaymentStatusTable builds the totality-checked payment table.
func PaymentStatusTable() (*reconcile.PaymentStatusTable, error) {
	return reconcile.NewPaymentStatusTable(ConnectorName, paymentStatusVariants, paymentStatusMapping)
}

// RefundStatusTable builds the totality-checked refund table.
func RefundStatusTable() (*reconcile.RefundStatusTable, error) {
	return reconcile.NewRefundStatusTable(ConnectorName, refundStatusVariants, refundStatusMapping)
}

// minorToDecimal renders a minor-unit amount as the two-exponent decimal
// string the remote API expects. Zero-exponent currencies are not routed
// to this connector. Builders reject non-positive amounts before calling
// this; the sign is still handled so a negative input cannot render as
// two separately-signed components.
func minorToDecimal(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
