package wise

import (
	"github.com/yourorg/payment-router/internal/domain"
	"github.com/yourorg/payment-router/internal/reconcile"
)

// Wire shapes for the Wise payout API. Field names follow the remote
// contract, not the canonical model.

type recipientCreateRequest struct {
	Currency          string      `json:"currency"`
	RecipientType     string      `json:"type"`
	Profile           string      `json:"profile"`
	AccountHolderName string      `json:"accountHolderName"`
	Details           bankDetails `json:"details"`
}

type bankDetails struct {
	LegalType         string          `json:"legalType"`
	Address           *addressDetails `json:"address,omitempty"`
	AccountHolderName string          `json:"accountHolderName,omitempty"`
	Email             string          `json:"email,omitempty"`
	AccountNumber     string          `json:"accountNumber,omitempty"`
	SortCode          string          `json:"sortCode,omitempty"`
	IBAN              string          `json:"iban,omitempty"`
	BIC               string          `json:"bic,omitempty"`
	RoutingNumber     string          `json:"routingNumber,omitempty"`
	SwiftCode         string          `json:"swiftCode,omitempty"`
}

type addressDetails struct {
	Country   string `json:"country,omitempty"`
	FirstLine string `json:"firstLine,omitempty"`
	PostCode  string `json:"postCode,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
}

type recipientCreateResponse struct {
	ID                int64  `json:"id"`
	Profile           int64  `json:"profile"`
	AccountHolderName string `json:"accountHolderName"`
	Currency          string `json:"currency"`
	Country           string `json:"country"`
	RequestType       string `json:"type"`
}

type quoteCreateRequest struct {
	SourceCurrency string `json:"sourceCurrency"`
	TargetCurrency string `json:"targetCurrency"`
	SourceAmount   *int64 `json:"sourceAmount,omitempty"`
	TargetAmount   *int64 `json:"targetAmount,omitempty"`
	PayOut         string `json:"payOut"`
}

type quoteCreateResponse struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	SourceAmount   float64 `json:"sourceAmount"`
	SourceCurrency string  `json:"sourceCurrency"`
	TargetCurrency string  `json:"targetCurrency"`
	RateType       string  `json:"rateType"`
	PayOut         string  `json:"payOut"`
}

type transferCreateRequest struct {
	TargetAccount         int64           `json:"targetAccount"`
	QuoteUUID             string          `json:"quoteUuid"`
	CustomerTransactionID string          `json:"customerTransactionId"`
	Details               transferDetails `json:"details"`
}

type transferDetails struct {
	TransferPurpose string `json:"transferPurpose,omitempty"`
	SourceOfFunds   string `json:"sourceOfFunds,omitempty"`
}

type transferCreateResponse struct {
	ID                    int64  `json:"id"`
	TargetAccount         int64  `json:"targetAccount"`
	QuoteUUID             string `json:"quoteUuid"`
	Status                string `json:"status"`
	Reference             string `json:"reference"`
	CustomerTransactionID string `json:"customerTransactionId"`
	HasActiveIssues       bool   `json:"hasActiveIssues"`
}

type fulfillRequest struct {
	// Only balance funding is supported by the remote API.
	FundType string `json:"type"`
}

type fulfillResponse struct {
	Status               string  `json:"status"`
	ErrorCode            *string `json:"errorCode"`
	ErrorMessage         *string `json:"errorMessage"`
	BalanceTransactionID *int64  `json:"balanceTransactionId"`
}

// statusVariants is the connector's full payout status vocabulary as
// deserialized. Adding a remote status without extending the mapping
// below fails table construction in init.
var statusVariants = []string{
	"COMPLETED",
	"PENDING",
	"REJECTED",
	"processing",
	"incoming_payment_waiting",
}

// statusMapping is the explicit reconciliation table. Intermediate
// statuses map to Pending: the engine never claims success or failure
// ahead of the connector's own confirmation.
var statusMapping = map[string]domain.PayoutStatus{
	"COMPLETED":                domain.PayoutSuccess,
	"REJECTED":                 domain.PayoutFailed,
	"PENDING":                  domain.PayoutPending,
	"processing":               domain.PayoutPending,
	"incoming_payment_waiting": domain.PayoutPending,
}

// StatusTable builds the connector's totality-checked status table.
func StatusTable() (*reconcile.PayoutStatusTable, error) {
	return reconcile.NewPayoutStatusTable(ConnectorName, statusVariants, statusMapping)
}

// recipientTypeFor maps the canonical bank-detail variant onto the
// recipient type the remote API expects.
func recipientTypeFor(v domain.BankDetailVariant) (string, bool) {
	switch v {
	case domain.BankDetailIBAN:
		return "iban", true
	case domain.BankDetailSortCode:
		return "sort_code", true
	case domain.BankDetailSwift:
		return "swift_code", true
	}
	return "", false
}
