package payout

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"

	"github.com/yourorg/payment-router/internal/connector"
	"github.com/yourorg/payment-router/internal/domain"
	"github.com/yourorg/payment-router/internal/monitor"
	"github.com/yourorg/payment-router/internal/policy"
	"github.com/yourorg/payment-router/internal/reconcile"
)

// Step names the four connector calls of the payout flow.
type Step string

const (
	StepRecipient Step = "recipient"
	StepQuote     Step = "quote"
	StepTransfer  Step = "transfer"
	StepFulfill   Step = "fulfill"
)

// StepResult is what one engine step hands back to the caller: the
// canonical response on success, and on failure the policy decision that
// accompanies the returned error.
type StepResult struct {
	Response *domain.PayoutsResponseData
	Decision policy.Decision
	Attempt  int
}

// Engine executes payout flow steps against one connector. It holds no
// connection state: each step builds a request, hands it to the transport
// collaborator, and reconciles the already-fetched response. Construction
// fails immediately on a credential variant the connector rejects.
type Engine struct {
	adapter   connector.PayoutAdapter
	transport connector.Transport
	auth      connector.AuthContext
	tracker   *reconcile.Tracker
	enforcer  *policy.Enforcer
	monitors  map[Step]*monitor.ContractMonitor
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithMonitor attaches a response contract monitor to one step.
func WithMonitor(step Step, cm *monitor.ContractMonitor) EngineOption {
	return func(e *Engine) { e.monitors[step] = cm }
}

// NewEngine materializes the connector auth context and wires the engine.
// An incompatible credential variant surfaces here, not mid-flow.
func NewEngine(
	adapter connector.PayoutAdapter,
	transport connector.Transport,
	cred domain.AuthCredential,
	tracker *reconcile.Tracker,
	enforcer *policy.Enforcer,
	opts ...EngineOption,
) (*Engine, error) {
	if adapter == nil {
		return nil, fmt.Errorf("payout: adapter cannot be nil")
	}
	if transport == nil {
		return nil, fmt.Errorf("payout: transport cannot be nil")
	}
	if tracker == nil {
		tracker = reconcile.NewTracker()
	}
	auth, err := adapter.BuildAuth(cred)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		adapter:   adapter,
		transport: transport,
		auth:      auth,
		tracker:   tracker,
		enforcer:  enforcer,
		monitors:  make(map[Step]*monitor.ContractMonitor),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CreateRecipient runs the first flow step. The static capability check
// happens before any request is built: a card payout against a bank-only
// connector never reaches the wire.
func (e *Engine) CreateRecipient(ctx context.Context, flow *Flow, req *domain.PayoutsRequest) (*StepResult, error) {
	if !e.adapter.Capabilities().SupportsPayoutType(req.PayoutType) {
		err := connector.NewNotSupportedError(
			e.adapter.Name(),
			fmt.Sprintf("%s payout creation is not supported", req.PayoutType),
			"",
		)
		stepsTotal.WithLabelValues(e.adapter.Name(), string(StepRecipient), "unsupported").Inc()
		return nil, err
	}
	if flow.State() != RecipientPending {
		return nil, fmt.Errorf("payout: recipient creation requires state %s, flow %s is %s",
			RecipientPending, flow.PayoutID, flow.State())
	}

	result, err := e.runStep(ctx, flow, StepRecipient, req,
		e.adapter.BuildRecipientRequest, e.adapter.ParseRecipientResponse)
	if err != nil {
		return result, err
	}
	if terr := flow.transition(RecipientCreated); terr != nil {
		return result, terr
	}
	flow.setRecipientID(result.Response.ConnectorPayoutID)
	return result, nil
}

// CreateQuote runs the quoting step. Requires a created recipient.
func (e *Engine) CreateQuote(ctx context.Context, flow *Flow, req *domain.PayoutsRequest) (*StepResult, error) {
	if err := flow.enterPending(QuotePending); err != nil {
		return nil, err
	}
	result, err := e.runStep(ctx, flow, StepQuote, req,
		e.adapter.BuildQuoteRequest, e.adapter.ParseQuoteResponse)
	if err != nil {
		return result, err
	}
	if terr := flow.transition(QuoteCreated); terr != nil {
		return result, terr
	}
	flow.setQuoteID(result.Response.ConnectorPayoutID)
	return result, nil
}

// CreateTransfer runs the transfer-creation step. Requires a quote id:
// absent one, this is a validation failure before any request is built.
func (e *Engine) CreateTransfer(ctx context.Context, flow *Flow, req *domain.PayoutsRequest) (*StepResult, error) {
	if req.QuoteID == nil {
		if quoteID := flow.QuoteID(); quoteID != "" {
			req.QuoteID = &quoteID
		}
	}
	if req.QuoteID == nil || *req.QuoteID == "" {
		return nil, connector.NewMissingFieldError(e.adapter.Name(), "quote_id")
	}
	if err := flow.enterPending(TransferPending); err != nil {
		return nil, err
	}
	result, err := e.runStep(ctx, flow, StepTransfer, req,
		e.adapter.BuildTransferRequest, e.adapter.ParseTransferResponse)
	if err != nil {
		return result, err
	}
	if terr := flow.transition(TransferCreated); terr != nil {
		return result, terr
	}
	flow.setTransferID(result.Response.ConnectorPayoutID)
	return result, nil
}

// Fulfill runs the final step. Requires a created transfer; the flow only
// reaches Fulfilled once the connector itself reports Success. A Pending
// report leaves the flow in FulfillmentPending for a later sync.
func (e *Engine) Fulfill(ctx context.Context, flow *Flow, req *domain.PayoutsRequest) (*StepResult, error) {
	transferID := flow.TransferID()
	if transferID == "" {
		return nil, connector.NewMissingFieldError(e.adapter.Name(), "transfer_id")
	}
	if req.ConnectorPayoutID == nil {
		req.ConnectorPayoutID = &transferID
	}
	if err := flow.enterPending(FulfillmentPending); err != nil {
		return nil, err
	}
	result, err := e.runStep(ctx, flow, StepFulfill, req,
		e.adapter.BuildFulfillRequest, e.adapter.ParseFulfillResponse)
	if err != nil {
		return result, err
	}
	switch result.Response.Status {
	case domain.PayoutSuccess:
		if terr := flow.transition(Fulfilled); terr != nil {
			return result, terr
		}
	case domain.PayoutFailed:
		if terr := flow.Fail(); terr != nil {
			return result, terr
		}
	}
	return result, nil
}

// runStep executes one build→send→validate→parse→reconcile pipeline.
func (e *Engine) runStep(
	ctx context.Context,
	flow *Flow,
	step Step,
	req *domain.PayoutsRequest,
	build func(connector.AuthContext, *domain.PayoutsRequest) (*connector.Request, error),
	parse func([]byte) (*domain.PayoutsResponseData, error),
) (*StepResult, error) {
	tracer := otel.Tracer("payout-engine")
	ctx, span := tracer.Start(ctx, "PayoutEngine."+string(step))
	defer span.End()

	attempt := flow.nextAttempt(step)
	result := &StepResult{Attempt: attempt}

	outReq, err := build(e.auth, req)
	if err != nil {
		span.RecordError(err)
		stepsTotal.WithLabelValues(e.adapter.Name(), string(step), "build_error").Inc()
		e.failFlowFatal(flow, step, err)
		return result, err
	}

	resp, err := e.transport.Do(ctx, outReq)
	if err != nil {
		span.RecordError(err)
		stepsTotal.WithLabelValues(e.adapter.Name(), string(step), "transport_error").Inc()
		return result, fmt.Errorf("payout: transport failure on %s step: %w", step, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		normalized := e.adapter.ParseError(resp.StatusCode, resp.Body)
		cerr := connector.NewResponseError(e.adapter.Name(), normalized)
		span.RecordError(cerr)
		stepsTotal.WithLabelValues(e.adapter.Name(), string(step), "connector_error").Inc()
		result.Decision = e.decide(flow, step, cerr, resp.StatusCode, req.Amount, attempt)
		return result, cerr
	}

	if cm, ok := e.monitors[step]; ok {
		if verr := cm.Validate(resp.Body); verr != nil {
			span.RecordError(verr)
			stepsTotal.WithLabelValues(e.adapter.Name(), string(step), "contract_violation").Inc()
			e.failFlowFatal(flow, step, verr)
			return result, verr
		}
	}

	parsed, err := parse(resp.Body)
	if err != nil {
		span.RecordError(err)
		stepsTotal.WithLabelValues(e.adapter.Name(), string(step), "parse_error").Inc()
		e.failFlowFatal(flow, step, err)
		return result, err
	}

	if _, err := e.tracker.ObservePayout(flow.PayoutID, parsed.Status); err != nil {
		span.RecordError(err)
		stepsTotal.WithLabelValues(e.adapter.Name(), string(step), "monotonicity_violation").Inc()
		return result, err
	}

	flow.setLastStatus(parsed.Status)

	stepsTotal.WithLabelValues(e.adapter.Name(), string(step), "success").Inc()
	result.Response = parsed
	return result, nil
}

// decide consults the policy engine for a classified connector failure and
// fails the flow when retry is not allowed. The engine never retries by
// itself; a retryable decision leaves the flow where it was.
func (e *Engine) decide(flow *Flow, step Step, cerr *connector.Error, httpStatus int, amount int64, attempt int) policy.Decision {
	in := policy.Input{
		Connector:     e.adapter.Name(),
		ErrorKind:     cerr.Kind,
		Retryable:     cerr.Retryable(),
		HTTPStatus:    httpStatus,
		AttemptNumber: attempt,
		AmountMinor:   amount,
	}
	if cerr.Normalized != nil {
		in.ErrorCode = cerr.Normalized.Code
	}

	decision := policy.Decision{AllowRetry: in.Retryable}
	if e.enforcer != nil {
		d, err := e.enforcer.Evaluate(in)
		if err != nil {
			log.Printf("payout: policy evaluation failed for flow %s step %s: %v", flow.PayoutID, step, err)
		} else {
			decision = d
		}
	}
	if !decision.AllowRetry {
		if ferr := flow.Fail(); ferr != nil {
			log.Printf("payout: could not fail flow %s after %s step: %v", flow.PayoutID, step, ferr)
		}
	}
	return decision
}

// failFlowFatal marks the flow failed for error kinds that retry cannot
// fix (validation, capability, parse).
func (e *Engine) failFlowFatal(flow *Flow, step Step, err error) {
	if ferr := flow.Fail(); ferr != nil {
		log.Printf("payout: could not fail flow %s after %s step error %v: %v", flow.PayoutID, step, err, ferr)
	}
}
