package payout_test

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-router/internal/connector"
	"github.com/yourorg/payment-router/internal/connector/mock"
	"github.com/yourorg/payment-router/internal/domain"
	"github.com/yourorg/payment-router/internal/monitor"
	"github.com/yourorg/payment-router/internal/payout"
	"github.com/yourorg/payment-router/internal/policy"
	"github.com/yourorg/payment-router/internal/reconcile"
)

func bankPayoutRequest(payoutID string) *domain.PayoutsRequest {
	return &domain.PayoutsRequest{
		PayoutID:            payoutID,
		Amount:              10000,
		SourceCurrency:      "GBP",
		DestinationCurrency: "GBP",
		PayoutType:          domain.PayoutTypeBank,
		EntityType:          domain.EntityIndividual,
	}
}

func newTestEngine(t *testing.T, adapter *mock.Adapter, transport *mock.Transport, opts ...payout.EngineOption) *payout.Engine {
	t.Helper()
	engine, err := payout.NewEngine(adapter, transport,
		domain.ApiKeyCredential("test-key"), reconcile.NewTracker(), nil, opts...)
	require.NoError(t, err)
	return engine
}

func stepCounterValue(t *testing.T, connectorName, step, outcome string) float64 {
	t.Helper()
	counter, err := payout.GetStepsTotal().GetMetricWithLabelValues(connectorName, step, outcome)
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, counter.Write(&m))
	return m.GetCounter().GetValue()
}

func TestEngine_HappyFlow(t *testing.T) {
	transport := &mock.Transport{}
	engine := newTestEngine(t, mock.NewAdapter("mock"), transport)
	flow := payout.NewFlow("po_happy")
	req := bankPayoutRequest("po_happy")
	ctx := context.Background()

	successBefore := stepCounterValue(t, "mock", "fulfill", "success")

	res, err := engine.CreateRecipient(ctx, flow, req)
	require.NoError(t, err)
	assert.Equal(t, payout.RecipientCreated, flow.State())
	assert.NotEmpty(t, flow.RecipientID())
	assert.Equal(t, 1, res.Attempt)

	_, err = engine.CreateQuote(ctx, flow, req)
	require.NoError(t, err)
	assert.Equal(t, payout.QuoteCreated, flow.State())
	assert.NotEmpty(t, flow.QuoteID())

	_, err = engine.CreateTransfer(ctx, flow, req)
	require.NoError(t, err)
	assert.Equal(t, payout.TransferCreated, flow.State())
	assert.NotEmpty(t, flow.TransferID())

	res, err = engine.Fulfill(ctx, flow, req)
	require.NoError(t, err)
	assert.Equal(t, payout.Fulfilled, flow.State())
	assert.Equal(t, domain.PayoutSuccess, res.Response.Status)
	assert.Equal(t, domain.PayoutSuccess, flow.LastStatus())

	// Four wire calls, one per step.
	assert.Len(t, transport.Requests, 4)

	assert.Equal(t, successBefore+1, stepCounterValue(t, "mock", "fulfill", "success"))
}

func TestEngine_CardPayoutRejectedBeforeWire(t *testing.T) {
	transport := &mock.Transport{}
	engine := newTestEngine(t, mock.NewAdapter("mock"), transport)
	flow := payout.NewFlow("po_card")
	req := bankPayoutRequest("po_card")
	req.PayoutType = domain.PayoutTypeCard

	_, err := engine.CreateRecipient(context.Background(), flow, req)
	require.Error(t, err)
	assert.True(t, connector.IsKind(err, connector.ErrUnsupportedCapability))
	assert.Contains(t, err.Error(), "not supported")
	// The capability check fires before any request is built or sent.
	assert.Empty(t, transport.Requests)
}

func TestEngine_RecipientRequiresInitialState(t *testing.T) {
	engine := newTestEngine(t, mock.NewAdapter("mock"), &mock.Transport{})
	flow := payout.NewFlow("po_state")
	req := bankPayoutRequest("po_state")
	ctx := context.Background()

	_, err := engine.CreateRecipient(ctx, flow, req)
	require.NoError(t, err)
	_, err = engine.CreateRecipient(ctx, flow, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient creation requires state")
}

func TestEngine_TransferWithoutQuote(t *testing.T) {
	transport := &mock.Transport{}
	engine := newTestEngine(t, mock.NewAdapter("mock"), transport)
	flow := payout.NewFlow("po_noquote")
	req := bankPayoutRequest("po_noquote")
	ctx := context.Background()

	_, err := engine.CreateRecipient(ctx, flow, req)
	require.NoError(t, err)

	// Jumping straight to transfer: no quote id on the request, none on
	// the flow.
	_, err = engine.CreateTransfer(ctx, flow, req)
	require.Error(t, err)
	ce, ok := connector.AsError(err)
	require.True(t, ok)
	assert.Equal(t, connector.ErrValidation, ce.Kind)
	assert.Equal(t, "quote_id", ce.FieldName)
	// Validation failed before the wire and before any state change.
	assert.Len(t, transport.Requests, 1)
	assert.Equal(t, payout.RecipientCreated, flow.State())
}

func TestEngine_TransferBackfillsQuoteIDFromFlow(t *testing.T) {
	engine := newTestEngine(t, mock.NewAdapter("mock"), &mock.Transport{})
	flow := payout.NewFlow("po_backfill")
	req := bankPayoutRequest("po_backfill")
	ctx := context.Background()

	_, err := engine.CreateRecipient(ctx, flow, req)
	require.NoError(t, err)
	_, err = engine.CreateQuote(ctx, flow, req)
	require.NoError(t, err)

	require.Nil(t, req.QuoteID)
	_, err = engine.CreateTransfer(ctx, flow, req)
	require.NoError(t, err)
	require.NotNil(t, req.QuoteID)
	assert.Equal(t, flow.QuoteID(), *req.QuoteID)
}

func TestEngine_RetryableConnectorErrorLeavesFlowPending(t *testing.T) {
	adapter := mock.NewAdapter("mock")
	adapter.ParseErrorFunc = func(statusCode int, raw []byte) connector.NormalizedError {
		return connector.NormalizedError{Code: "too.many.requests", Message: "slow down", Retryable: true, Raw: raw}
	}
	transport := &mock.Transport{Script: []mock.Exchange{
		{StatusCode: 200, Body: []byte(`{}`)},                  // recipient
		{StatusCode: 429, Body: []byte(`{"error":"limited"}`)}, // quote, first try
		{StatusCode: 200, Body: []byte(`{}`)},                  // quote, retry
	}}
	engine := newTestEngine(t, adapter, transport)
	flow := payout.NewFlow("po_retry")
	req := bankPayoutRequest("po_retry")
	ctx := context.Background()

	_, err := engine.CreateRecipient(ctx, flow, req)
	require.NoError(t, err)

	res, err := engine.CreateQuote(ctx, flow, req)
	require.Error(t, err)
	ce, ok := connector.AsError(err)
	require.True(t, ok)
	assert.Equal(t, connector.ErrConnectorResponse, ce.Kind)
	assert.Equal(t, "too.many.requests", ce.Normalized.Code)
	assert.True(t, res.Decision.AllowRetry)
	assert.Equal(t, 1, res.Attempt)

	// Retryable failure leaves the flow where it was; the same step can
	// be invoked again and succeed.
	assert.Equal(t, payout.QuotePending, flow.State())
	res, err = engine.CreateQuote(ctx, flow, req)
	require.NoError(t, err)
	assert.Equal(t, payout.QuoteCreated, flow.State())
	assert.Equal(t, 2, res.Attempt)
}

func TestEngine_NonRetryableConnectorErrorFailsFlow(t *testing.T) {
	adapter := mock.NewAdapter("mock")
	adapter.ParseErrorFunc = func(statusCode int, raw []byte) connector.NormalizedError {
		return connector.NormalizedError{Code: "balance.insufficient-funds", Message: "not enough money", Raw: raw}
	}
	transport := &mock.Transport{Script: []mock.Exchange{
		{StatusCode: 200, Body: []byte(`{}`)},
		{StatusCode: 422, Body: []byte(`{"error":"broke"}`)},
	}}
	engine := newTestEngine(t, adapter, transport)
	flow := payout.NewFlow("po_fatal")
	req := bankPayoutRequest("po_fatal")
	ctx := context.Background()

	_, err := engine.CreateRecipient(ctx, flow, req)
	require.NoError(t, err)

	res, err := engine.CreateQuote(ctx, flow, req)
	require.Error(t, err)
	assert.False(t, res.Decision.AllowRetry)
	assert.Equal(t, payout.FlowFailed, flow.State())
}

func TestEngine_PolicyOverridesClassifierHint(t *testing.T) {
	adapter := mock.NewAdapter("mock")
	adapter.ParseErrorFunc = func(statusCode int, raw []byte) connector.NormalizedError {
		return connector.NormalizedError{Code: "too.many.requests", Retryable: true, Raw: raw}
	}
	enforcer, err := policy.NewEnforcer([]policy.Rule{{
		ID:         "no_retries_ever",
		Expression: "error_code == 'too.many.requests'",
		Decision:   policy.Decision{AllowRetry: false, EscalateManual: true},
	}})
	require.NoError(t, err)

	transport := &mock.Transport{Script: []mock.Exchange{
		{StatusCode: 200, Body: []byte(`{}`)},
		{StatusCode: 429, Body: []byte(`{}`)},
	}}
	engine, err := payout.NewEngine(adapter, transport,
		domain.ApiKeyCredential("test-key"), reconcile.NewTracker(), enforcer)
	require.NoError(t, err)

	flow := payout.NewFlow("po_policy")
	req := bankPayoutRequest("po_policy")
	ctx := context.Background()

	_, err = engine.CreateRecipient(ctx, flow, req)
	require.NoError(t, err)

	res, err := engine.CreateQuote(ctx, flow, req)
	require.Error(t, err)
	// The classifier said retryable; the policy rule wins.
	assert.False(t, res.Decision.AllowRetry)
	assert.True(t, res.Decision.EscalateManual)
	assert.Equal(t, payout.FlowFailed, flow.State())
}

func TestEngine_FulfillPendingStaysPending(t *testing.T) {
	adapter := mock.NewAdapter("mock")
	adapter.ParseFulfillFunc = func(raw []byte) (*domain.PayoutsResponseData, error) {
		return &domain.PayoutsResponseData{Status: domain.PayoutPending}, nil
	}
	engine := newTestEngine(t, adapter, &mock.Transport{})
	flow := payout.NewFlow("po_slow")
	req := bankPayoutRequest("po_slow")
	ctx := context.Background()

	_, err := engine.CreateRecipient(ctx, flow, req)
	require.NoError(t, err)
	_, err = engine.CreateQuote(ctx, flow, req)
	require.NoError(t, err)
	_, err = engine.CreateTransfer(ctx, flow, req)
	require.NoError(t, err)

	res, err := engine.Fulfill(ctx, flow, req)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutPending, res.Response.Status)
	// Settlement has not been confirmed; a later sync finishes the flow.
	assert.Equal(t, payout.FulfillmentPending, flow.State())

	adapter.ParseFulfillFunc = nil
	_, err = engine.Fulfill(ctx, flow, req)
	require.NoError(t, err)
	assert.Equal(t, payout.Fulfilled, flow.State())
}

func TestEngine_FulfillRequiresTransfer(t *testing.T) {
	engine := newTestEngine(t, mock.NewAdapter("mock"), &mock.Transport{})
	flow := payout.NewFlow("po_notransfer")
	req := bankPayoutRequest("po_notransfer")

	_, err := engine.Fulfill(context.Background(), flow, req)
	require.Error(t, err)
	ce, ok := connector.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "transfer_id", ce.FieldName)
}

func TestEngine_TransportFailureDoesNotFailFlow(t *testing.T) {
	transport := &mock.Transport{Script: []mock.Exchange{
		{Err: errors.New("connection reset")},
	}}
	engine := newTestEngine(t, mock.NewAdapter("mock"), transport)
	flow := payout.NewFlow("po_net")
	req := bankPayoutRequest("po_net")

	_, err := engine.CreateRecipient(context.Background(), flow, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport failure")
	// Network trouble is not a connector verdict; the flow stays live.
	assert.Equal(t, payout.RecipientPending, flow.State())
}

func TestEngine_ParseErrorFailsFlow(t *testing.T) {
	adapter := mock.NewAdapter("mock")
	adapter.ParseRecipientFunc = func(raw []byte) (*domain.PayoutsResponseData, error) {
		return nil, connector.NewParseError("mock", "unexpected shape", nil)
	}
	engine := newTestEngine(t, adapter, &mock.Transport{})
	flow := payout.NewFlow("po_parse")

	_, err := engine.CreateRecipient(context.Background(), flow, bankPayoutRequest("po_parse"))
	require.Error(t, err)
	assert.True(t, connector.IsKind(err, connector.ErrParse))
	assert.Equal(t, payout.FlowFailed, flow.State())
}

func TestEngine_ContractMonitorBlocksBadPayload(t *testing.T) {
	cm, err := monitor.NewContractMonitor("mock", `{
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer"}}
	}`)
	require.NoError(t, err)

	transport := &mock.Transport{Script: []mock.Exchange{
		{StatusCode: 200, Body: []byte(`{"unexpected": true}`)},
	}}
	engine := newTestEngine(t, mock.NewAdapter("mock"), transport,
		payout.WithMonitor(payout.StepRecipient, cm))
	flow := payout.NewFlow("po_contract")

	_, err = engine.CreateRecipient(context.Background(), flow, bankPayoutRequest("po_contract"))
	require.Error(t, err)
	assert.True(t, connector.IsKind(err, connector.ErrParse))
	assert.Contains(t, err.Error(), "schema violations")
	assert.Equal(t, payout.FlowFailed, flow.State())
}

func TestEngine_AuthMismatchAtConstruction(t *testing.T) {
	_, err := payout.NewEngine(mock.NewAdapter("mock"), &mock.Transport{},
		domain.OAuthCredential("tok"), nil, nil)
	require.Error(t, err)
	assert.True(t, connector.IsKind(err, connector.ErrAuthConfiguration))
}
