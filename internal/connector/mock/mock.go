// Package mock provides a scriptable payout adapter and transport for
// tests and the demo server.
package mock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourorg/payment-router/internal/connector"
	"github.com/yourorg/payment-router/internal/domain"
)

// Adapter is a configurable connector.PayoutAdapter. Any Build*/Parse*
// func left nil falls back to a permissive default.
type Adapter struct {
	AdapterName  string
	PayoutTypes  []domain.PayoutType
	AcceptedAuth domain.AuthCredentialKind

	BuildRecipientFunc func(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error)
	ParseRecipientFunc func(raw []byte) (*domain.PayoutsResponseData, error)
	BuildQuoteFunc     func(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error)
	ParseQuoteFunc     func(raw []byte) (*domain.PayoutsResponseData, error)
	BuildTransferFunc  func(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error)
	ParseTransferFunc  func(raw []byte) (*domain.PayoutsResponseData, error)
	BuildFulfillFunc   func(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error)
	ParseFulfillFunc   func(raw []byte) (*domain.PayoutsResponseData, error)
	ParseErrorFunc     func(statusCode int, raw []byte) connector.NormalizedError
}

// NewAdapter creates a bank-only mock accepting api-key credentials.
func NewAdapter(name string) *Adapter {
	return &Adapter{
		AdapterName:  name,
		PayoutTypes:  []domain.PayoutType{domain.PayoutTypeBank},
		AcceptedAuth: domain.AuthApiKeyOnly,
	}
}

// Name implements connector.PayoutAdapter.
func (m *Adapter) Name() string { return m.AdapterName }

// Capabilities implements connector.PayoutAdapter.
func (m *Adapter) Capabilities() connector.Capabilities {
	return connector.Capabilities{PayoutTypes: m.PayoutTypes}
}

// BuildAuth rejects any credential kind other than AcceptedAuth.
func (m *Adapter) BuildAuth(cred domain.AuthCredential) (connector.AuthContext, error) {
	if cred.Kind != m.AcceptedAuth {
		return connector.AuthContext{}, connector.NewAuthError(m.AdapterName,
			fmt.Sprintf("expected %s credential, got %s", m.AcceptedAuth, cred.Kind))
	}
	return connector.AuthContext{Headers: map[string]string{"Authorization": "Bearer mock"}}, nil
}

func defaultBuild(step string) *connector.Request {
	return &connector.Request{Method: "POST", Path: "/mock/" + step, Body: []byte("{}")}
}

func defaultParse(status domain.PayoutStatus) *domain.PayoutsResponseData {
	return &domain.PayoutsResponseData{Status: status, ConnectorPayoutID: uuid.NewString()}
}

// BuildRecipientRequest implements connector.PayoutAdapter.
func (m *Adapter) BuildRecipientRequest(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error) {
	if m.BuildRecipientFunc != nil {
		return m.BuildRecipientFunc(auth, req)
	}
	return defaultBuild("recipient"), nil
}

// ParseRecipientResponse implements connector.PayoutAdapter.
func (m *Adapter) ParseRecipientResponse(raw []byte) (*domain.PayoutsResponseData, error) {
	if m.ParseRecipientFunc != nil {
		return m.ParseRecipientFunc(raw)
	}
	return defaultParse(domain.PayoutRequiresCreation), nil
}

// BuildQuoteRequest implements connector.PayoutAdapter.
func (m *Adapter) BuildQuoteRequest(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error) {
	if m.BuildQuoteFunc != nil {
		return m.BuildQuoteFunc(auth, req)
	}
	return defaultBuild("quote"), nil
}

// ParseQuoteResponse implements connector.PayoutAdapter.
func (m *Adapter) ParseQuoteResponse(raw []byte) (*domain.PayoutsResponseData, error) {
	if m.ParseQuoteFunc != nil {
		return m.ParseQuoteFunc(raw)
	}
	return defaultParse(domain.PayoutRequiresCreation), nil
}

// BuildTransferRequest implements connector.PayoutAdapter.
func (m *Adapter) BuildTransferRequest(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error) {
	if m.BuildTransferFunc != nil {
		return m.BuildTransferFunc(auth, req)
	}
	if req.QuoteID == nil || *req.QuoteID == "" {
		return nil, connector.NewMissingFieldError(m.AdapterName, "quote_id")
	}
	return defaultBuild("transfer"), nil
}

// ParseTransferResponse implements connector.PayoutAdapter.
func (m *Adapter) ParseTransferResponse(raw []byte) (*domain.PayoutsResponseData, error) {
	if m.ParseTransferFunc != nil {
		return m.ParseTransferFunc(raw)
	}
	return defaultParse(domain.PayoutRequiresFulfillment), nil
}

// BuildFulfillRequest implements connector.PayoutAdapter.
func (m *Adapter) BuildFulfillRequest(auth connector.AuthContext, req *domain.PayoutsRequest) (*connector.Request, error) {
	if m.BuildFulfillFunc != nil {
		return m.BuildFulfillFunc(auth, req)
	}
	return defaultBuild("fulfill"), nil
}

// ParseFulfillResponse implements connector.PayoutAdapter.
func (m *Adapter) ParseFulfillResponse(raw []byte) (*domain.PayoutsResponseData, error) {
	if m.ParseFulfillFunc != nil {
		return m.ParseFulfillFunc(raw)
	}
	return &domain.PayoutsResponseData{Status: domain.PayoutSuccess}, nil
}

// ParseError implements connector.PayoutAdapter.
func (m *Adapter) ParseError(statusCode int, raw []byte) connector.NormalizedError {
	if m.ParseErrorFunc != nil {
		return m.ParseErrorFunc(statusCode, raw)
	}
	return connector.NormalizedError{
		Code:    fmt.Sprintf("HTTP_%d", statusCode),
		Message: fmt.Sprintf("mock connector returned HTTP %d", statusCode),
		Raw:     raw,
	}
}

// Exchange is one scripted transport interaction.
type Exchange struct {
	StatusCode int
	Body       []byte
	Err        error
}

// Transport replays scripted exchanges in order and records every request
// it sees. When the script runs out it keeps serving the last exchange.
type Transport struct {
	Script   []Exchange
	Requests []*connector.Request
}

// Do implements connector.Transport.
func (t *Transport) Do(_ context.Context, req *connector.Request) (*connector.Response, error) {
	t.Requests = append(t.Requests, req)
	if len(t.Script) == 0 {
		return &connector.Response{StatusCode: 200, Body: []byte(`{}`)}, nil
	}
	idx := len(t.Requests) - 1
	if idx >= len(t.Script) {
		idx = len(t.Script) - 1
	}
	ex := t.Script[idx]
	if ex.Err != nil {
		return nil, ex.Err
	}
	return &connector.Response{StatusCode: ex.StatusCode, Body: ex.Body}, nil
}
