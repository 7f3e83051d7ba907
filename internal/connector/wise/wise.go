// Package wise integrates the Wise payout API: bank-rail payouts over a
// recipient → quote → transfer → fulfill sequence. The adapter is a pure
// transformer; it builds requests and parses already-fetched responses,
// never touching the network.
package wise

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yourorg/payment-router/internal/connector"
	"github.com/yourorg/payment-router/internal/domain"
	"github.com/yourorg/payment-router/internal/errclass"
	"github.com/yourorg/payment-router/internal/reconcile"
)

// ConnectorName is the registry key for this adapter.
const ConnectorName = "wise"

// defaultRetryable is the built-in code→retryability table. Operator
// config may override entries; unknown codes stay non-retryable.
var defaultRetryable = map[string]bool{
	"too.many.requests":          true,
	"internal.server.error":      true,
	"balance.insufficient-funds": false,
	"transfer.duplicate":         false,
}

// Adapter implements connector.PayoutAdapter for Wise.
type Adapter struct {
	statuses *reconcile.PayoutStatusTable
	retry    *errclass.RetryTable
}

// NewAdapter builds the adapter, its totality-checked status table, and
// its retryability table merged with operator overrides.
func NewAdapter(retryOverrides map[string]bool) (*Adapter, error) {
	table, err := StatusTable()
	if err != nil {
		return nil, fmt.Errorf("wise: %w", err)
	}
	return &Adapter{
		statuses: table,
		retry:    errclass.NewRetryTable(defaultRetryable, retryOverrides),
	}, nil
}

// Name implements connector.PayoutAdapter.
func (a *Adapter) Name() string { return ConnectorName }

// Capabilities: bank transfers only. Card payouts are rejected before any
// request is built.
func (a *Adapter) Capabilities() connector.Capabilities {
	return connector.Capabilities{PayoutTypes: []domain.PayoutType{domain.PayoutTypeBank}}
}

// BuildAuth accepts only the api-key-plus-profile credential variant.
func (a *Adapter) BuildAuth(cred domain.AuthCredential) (connector.AuthContext, error) {
	if cred.Kind != domain.AuthApiKeyPlusProfile {
		return connector.AuthContext{}, connector.NewAuthError(ConnectorName,
			fmt.Sprintf("expected %s credential, got %s", domain.AuthApiKeyPlusProfile, cred.Kind))
	}
	return connector.AuthContext{
		Headers: map[string]string{
			"Authorization": "Bearer " + cred.APIKey,
			"Content-Type":  "application/json",
		},
		ProfileID: cred.ProfileID,
	}, nil
}

func (a *Adapter) rejectCardPayout(req *domain.PayoutsRequest) error {
	if req.PayoutType == domain.PayoutTypeCard {
		return connector.NewNotSupportedError(ConnectorName, "card payout creation is not supported", "")
	}
	return nil
}

// BuildRecipientRequest builds the recipient-creation call. Every field
// the remote API mandates is checked here with its canonical name.
func (a *Adapter) BuildRecipientRequest(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error) {
	if err := a.rejectCardPayout(req); err != nil {
		return nil, err
	}
	if req.CustomerDetails == nil {
		return nil, connector.NewMissingFieldError(ConnectorName, "customer_details")
	}
	if req.CustomerDetails.Name == "" {
		return nil, connector.NewMissingFieldError(ConnectorName, "customer_details.name")
	}
	if req.BillingAddress == nil {
		return nil, connector.NewMissingFieldError(ConnectorName, "address")
	}
	if req.PayoutMethodData == nil || req.PayoutMethodData.Bank == nil {
		return nil, connector.NewMissingFieldError(ConnectorName, "payout_method_data")
	}
	bank := req.PayoutMethodData.Bank
	recipientType, ok := recipientTypeFor(bank.Variant())
	if !ok {
		return nil, connector.NewMissingFieldError(ConnectorName, "bank_details")
	}

	body := recipientCreateRequest{
		Currency:          req.DestinationCurrency,
		RecipientType:     recipientType,
		Profile:           auth.ProfileID,
		AccountHolderName: req.CustomerDetails.Name,
		Details: bankDetails{
			LegalType: domain.LegalTypeFor(req.EntityType).String(),
			Address: &addressDetails{
				Country:   req.BillingAddress.Country,
				FirstLine: req.BillingAddress.Line1,
				PostCode:  req.BillingAddress.PostCode,
				City:      req.BillingAddress.City,
				State:     req.BillingAddress.State,
			},
			AccountNumber: bank.AccountNumber,
			SortCode:      bank.SortCode,
			IBAN:          bank.IBAN,
			BIC:           bank.BIC,
			RoutingNumber: bank.RoutingNumber,
			SwiftCode:     bank.SwiftCode,
		},
	}
	return a.jsonRequest(http.MethodPost, "/v1/accounts", auth, body)
}

// ParseRecipientResponse maps a created recipient. The payout itself is
// still unfunded, so the canonical status stays RequiresCreation.
func (a *Adapter) ParseRecipientResponse(raw []byte) (*domain.PayoutsResponseData, error) {
	var resp recipientCreateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, connector.NewParseError(ConnectorName, "recipient create response", err)
	}
	return &domain.PayoutsResponseData{
		Status:            domain.PayoutRequiresCreation,
		ConnectorPayoutID: strconv.FormatInt(resp.ID, 10),
	}, nil
}

// BuildQuoteRequest builds the quoting call.
func (a *Adapter) BuildQuoteRequest(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error) {
	if err := a.rejectCardPayout(req); err != nil {
		return nil, err
	}
	amount := req.Amount
	body := quoteCreateRequest{
		SourceCurrency: req.SourceCurrency,
		TargetCurrency: req.DestinationCurrency,
		SourceAmount:   &amount,
		PayOut:         "BANK_TRANSFER",
	}
	return a.jsonRequest(http.MethodPost, "/v2/quotes", auth, body)
}

// ParseQuoteResponse maps a created quote; still RequiresCreation.
func (a *Adapter) ParseQuoteResponse(raw []byte) (*domain.PayoutsResponseData, error) {
	var resp quoteCreateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, connector.NewParseError(ConnectorName, "quote create response", err)
	}
	return &domain.PayoutsResponseData{
		Status:            domain.PayoutRequiresCreation,
		ConnectorPayoutID: resp.ID,
	}, nil
}

// BuildTransferRequest builds the transfer-creation call. Needs the quote
// id from the quoting step and the connector-side customer account.
func (a *Adapter) BuildTransferRequest(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error) {
	if err := a.rejectCardPayout(req); err != nil {
		return nil, err
	}
	if req.QuoteID == nil || *req.QuoteID == "" {
		return nil, connector.NewMissingFieldError(ConnectorName, "quote_id")
	}
	if req.ConnectorCustomerID == nil {
		return nil, connector.NewMissingFieldError(ConnectorName, "connector_customer_id")
	}
	targetAccount, err := strconv.ParseInt(*req.ConnectorCustomerID, 10, 64)
	if err != nil {
		return nil, connector.NewMissingFieldError(ConnectorName, "connector_customer_id")
	}
	body := transferCreateRequest{
		TargetAccount:         targetAccount,
		QuoteUUID:             *req.QuoteID,
		CustomerTransactionID: req.PayoutID,
		Details:               transferDetails{},
	}
	return a.jsonRequest(http.MethodPost, "/v1/transfers", auth, body)
}

// ParseTransferResponse maps a created transfer: money is committed but
// not yet moved, so the canonical status is RequiresFulfillment.
func (a *Adapter) ParseTransferResponse(raw []byte) (*domain.PayoutsResponseData, error) {
	var resp transferCreateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, connector.NewParseError(ConnectorName, "transfer create response", err)
	}
	return &domain.PayoutsResponseData{
		Status:            domain.PayoutRequiresFulfillment,
		ConnectorPayoutID: strconv.FormatInt(resp.ID, 10),
	}, nil
}

// BuildFulfillRequest builds the funding call for a created transfer.
func (a *Adapter) BuildFulfillRequest(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error) {
	if err := a.rejectCardPayout(req); err != nil {
		return nil, err
	}
	if req.ConnectorPayoutID == nil || *req.ConnectorPayoutID == "" {
		return nil, connector.NewMissingFieldError(ConnectorName, "connector_payout_id")
	}
	path := fmt.Sprintf("/v3/profiles/%s/transfers/%s/payments", auth.ProfileID, *req.ConnectorPayoutID)
	return a.jsonRequest(http.MethodPost, path, auth, fulfillRequest{FundType: "BALANCE"})
}

// ParseFulfillResponse reconciles the connector's authoritative status
// report through the totality-checked table.
func (a *Adapter) ParseFulfillResponse(raw []byte) (*domain.PayoutsResponseData, error) {
	var resp fulfillResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, connector.NewParseError(ConnectorName, "fulfill response", err)
	}
	status, err := a.statuses.Map(resp.Status)
	if err != nil {
		return nil, connector.NewParseError(ConnectorName,
			fmt.Sprintf("unrecognized payout status %q", resp.Status), err)
	}
	out := &domain.PayoutsResponseData{Status: status}
	if resp.BalanceTransactionID != nil {
		out.ConnectorPayoutID = strconv.FormatInt(*resp.BalanceTransactionID, 10)
	}
	return out, nil
}

// ParseError classifies the connector's error payload. Wise returns
// either a structured sub-error list or flat error/description fields.
func (a *Adapter) ParseError(statusCode int, raw []byte) connector.NormalizedError {
	var payload errclass.Payload
	// A body that is not even JSON still classifies: the synthesized
	// HTTP-status message path covers it.
	_ = json.Unmarshal(raw, &payload)
	return errclass.Classify(ConnectorName, payload, statusCode, raw, a.retry)
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
