// Package paypal integrates the PayPal payments API: authorize, capture,
// void and refund over the orders/payments endpoints. Like every adapter
// it is a pure transformer over already (de)serialized payloads.
package paypal

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yourorg/payment-router/internal/connector"
	"github.com/yourorg/payment-router/internal/domain"
	"github.com/yourorg/payment-router/internal/errclass"
	"github.com/yourorg/payment-router/internal/reconcile"
)

// ConnectorName is the registry key for this adapter.
const ConnectorName = "paypal"

var defaultRetryable = map[string]bool{
	"INTERNAL_SERVICE_ERROR":     true,
	"RATE_LIMIT_REACHED":         true,
	"TRANSACTION_REFUSED":        false,
	"MAX_REFUND_AMOUNT_EXCEEDED": false,
}

// Adapter implements connector.PaymentAdapter for PayPal.
type Adapter struct {
	payments *reconcile.PaymentStatusTable
	refunds  *reconcile.RefundStatusTable
	retry    *errclass.RetryTable
}

// NewAdapter builds the adapter and its totality-checked status tables.
func NewAdapter(retryOverrides map[string]bool) (*Adapter, error) {
	payments, err := PaymentStatusTable()
	if err != nil {
		return nil, fmt.Errorf("paypal: %w", err)
	}
	refunds, err := RefundStatusTable()
	if err != nil {
		return nil, fmt.Errorf("paypal: %w", err)
	}
	return &Adapter{
		payments: payments,
		refunds:  refunds,
		retry:    errclass.NewRetryTable(defaultRetryable, retryOverrides),
	}, nil
}

// Name implements connector.PaymentAdapter.
func (a *Adapter) Name() string { return ConnectorName }

// Capabilities: payment rails plus refunds; no payouts.
func (a *Adapter) Capabilities() connector.Capabilities {
	return connector.Capabilities{Refunds: true}
}

// BuildAuth accepts only the OAuth token credential variant.
func (a *Adapter) BuildAuth(cred domain.AuthCredential) (connector.AuthContext, error) {
	if cred.Kind != domain.AuthOAuthToken {
		return connector.AuthContext{}, connector.NewAuthError(ConnectorName,
			fmt.Sprintf("expected %s credential, got %s", domain.AuthOAuthToken, cred.Kind))
	}
	return connector.AuthContext{
		Headers: map[string]string{
			"Authorization": "Bearer " + cred.Token,
			"Content-Type":  "application/json",
		},
	}, nil
}

// BuildAuthorizeRequest creates an order with AUTHORIZE intent, or
// CAPTURE when the caller asked for automatic capture.
func (a *Adapter) BuildAuthorizeRequest(auth connector.AuthContext, req *domain.PaymentsAuthorizeRequest) (*connector.Request, error) {
	if req.Amount <= 0 {
		return nil, connector.NewMissingFieldError(ConnectorName, "amount")
	}
	if req.Currency == "" {
		return nil, connector.NewMissingFieldError(ConnectorName, "currency")
	}
	if req.CardDetails == nil {
		return nil, connector.NewMissingFieldError(ConnectorName, "payment_method_data.card")
	}
	intent := "AUTHORIZE"
	if req.CaptureAutomatic {
		intent = "CAPTURE"
	}
	body := orderCreateRequest{
		Intent: intent,
		PurchaseUnits: []purchaseUnit{{
			Amount: amountValue{CurrencyCode: req.Currency, Value: minorToDecimal(req.Amount)},
		}},
		PaymentSource: &paymentSource{Card: &cardSource{
			Number: req.CardDetails.CardNumber,
			Expiry: fmt.Sprintf("%s-%s", req.CardDetails.ExpiryYear, req.CardDetails.ExpiryMonth),
		}},
	}
	return a.jsonRequest(http.MethodPost, "/v2/checkout/orders", auth, body)
}

// ParseAuthorizeResponse reconciles the order status.
func (a *Adapter) ParseAuthorizeResponse(raw []byte) (*domain.PaymentsResponseData, error) {
	return a.parsePayment(raw, "authorize response")
}

// BuildCaptureRequest captures a previous authorization.
func (a *Adapter) BuildCaptureRequest(auth connector.AuthContext, req *domain.PaymentsCaptureRequest) (*connector.Request, error) {
	if req.ConnectorTransactionID == "" {
		return nil, connector.NewMissingFieldError(ConnectorName, "connector_transaction_id")
	}
	body := captureRequest{}
	if req.AmountToCapture != nil {
		if *req.AmountToCapture <= 0 {
			return nil, connector.NewMissingFieldError(ConnectorName, "amount_to_capture")
		}
		body.Amount = &amountValue{CurrencyCode: req.Currency, Value: minorToDecimal(*req.AmountToCapture)}
	}
	path := fmt.Sprintf("/v2/payments/authorizations/%s/capture", req.ConnectorTransactionID)
	return a.jsonRequest(http.MethodPost, path, auth, body)
}

// ParseCaptureResponse reconciles the capture status.
func (a *Adapter) ParseCaptureResponse(raw []byte) (*domain.PaymentsResponseData, error) {
	return a.parsePayment(raw, "capture response")
}

// BuildVoidRequest cancels an authorization before capture.
func (a *Adapter) BuildVoidRequest(auth connector.AuthContext, req *domain.PaymentsVoidRequest) (*connector.Request, error) {
	if req.ConnectorTransactionID == "" {
		return nil, connector.NewMissingFieldError(ConnectorName, "connector_transaction_id")
	}
	path := fmt.Sprintf("/v2/payments/authorizations/%s/void", req.ConnectorTransactionID)
	return a.jsonRequest(http.MethodPost, path, auth, struct{}{})
}

// ParseVoidResponse handles the empty-body success the void endpoint
// returns as well as the enveloped form.
func (a *Adapter) ParseVoidResponse(raw []byte) (*domain.PaymentsResponseData, error) {
	if len(raw) == 0 {
		return &domain.PaymentsResponseData{Status: domain.PaymentVoided}, nil
	}
	return a.parsePayment(raw, "void response")
}

// BuildRefundRequest refunds a captured payment. The connector itself is
// the authority on whether the amount is refundable; over-refunds come
// back as a classified connector error.
func (a *Adapter) BuildRefundRequest(auth connector.AuthContext, req *domain.RefundsRequest) (*connector.Request, error) {
	if req.ConnectorTransactionID == "" {
		return nil, connector.NewMissingFieldError(ConnectorName, "connector_transaction_id")
	}
	if req.Currency == "" {
		return nil, connector.NewMissingFieldError(ConnectorName, "currency")
	}
	if req.RefundAmount <= 0 {
		return nil, connector.NewMissingFieldError(ConnectorName, "refund_amount")
	}
	body := refundRequest{
		Amount:    amountValue{CurrencyCode: req.Currency, Value: minorToDecimal(req.RefundAmount)},
		InvoiceID: req.RefundID,
	}
	path := fmt.Sprintf("/v2/payments/captures/%s/refund", req.ConnectorTransactionID)
	return a.jsonRequest(http.MethodPost, path, auth, body)
}

// ParseRefundResponse reconciles the refund status.
func (a *Adapter) ParseRefundResponse(raw []byte) (*domain.RefundsResponseData, error) {
	var resp refundResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, connector.NewParseError(ConnectorName, "refund response", err)
	}
	status, err := a.refunds.Map(resp.Status)
	if err != nil {
		return nil, connector.NewParseError(ConnectorName,
			fmt.Sprintf("unrecognized refund status %q", resp.Status), err)
	}
	return &domain.RefundsResponseData{Status: status, ConnectorRefundID: resp.ID}, nil
}

// ParseError classifies the connector's error envelope.
func (a *Adapter) ParseError(statusCode int, raw []byte) connector.NormalizedError {
	var envelope errorResponse
	_ = json.Unmarshal(raw, &envelope)
	return errclass.Classify(ConnectorName, envelope.toPayload(), statusCode, raw, a.retry)
}

func (a *Adapter) parsePayment(raw []byte, what string) (*domain.PaymentsResponseData, error) {
	var resp authorizationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, connector.NewParseError(ConnectorName, what, err)
	}
	status, err := a.payments.Map(resp.Status)
	if err != nil {
		return nil, connector.NewParseError(ConnectorName,
			fmt.Sprintf("unrecognized payment status %q", resp.Status), err)
	}
	return &domain.PaymentsResponseData{
		Status:                 status,
		ConnectorTransactionID: resp.ID,
	}, nil
}

func (a *Adapter) jsonRequest(method, path string, auth connector.AuthContext, body interface{}) (*connector.Request, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, connector.NewParseError(ConnectorName, "encoding request body", err)
	}
	headers := make(map[string]string, len(auth.Headers))
	for k, v := range auth.Headers {
		headers[k] = v
	}
	return &connector.Request{Method: method, Path: path, Headers: headers, Body: encoded}, nil
}
