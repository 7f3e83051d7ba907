// Package connector defines the capability contract every connector
// integration must satisfy: auth materialization, outbound request
// construction, inbound response and error parsing. Adapters are pure
// transformers over already (de)serialized payloads; the HTTP transport,
// request signing, and retry/backoff live behind the Transport interface
// and are owned elsewhere.
package connector

import (
	"context"

	"github.com/yourorg/payment-router/internal/domain"
)

// Request is an outbound connector request, fully built and serialized but
// not yet sent.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Response is the already-fetched connector response an adapter parses.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport executes a built Request against the remote processor. It is
// an external collaborator: implementations own timeouts, signing, and
// transport-level retry. Adapters never call the network themselves.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// AuthContext is the materialized auth state an adapter attaches to
// outbound requests.
type AuthContext struct {
	Headers map[string]string
	// ProfileID is the connector-side account identifier for connectors
	// whose credential carries one.
	ProfileID string
}

// Capabilities is the static, enumerable set of operations a connector
// supports. Capability misses are rejected before any request is built.
type Capabilities struct {
	PayoutTypes []domain.PayoutType
	Refunds     bool
}

// SupportsPayoutType reports whether the connector can move money over the
// given rail.
func (c Capabilities) SupportsPayoutType(t domain.PayoutType) bool {
	for _, pt := range c.PayoutTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// PayoutAdapter is implemented by payout connector integrations. Builders
// fail with a Validation error naming the missing canonical field, or an
// UnsupportedCapability error for operations outside Capabilities.
// Parsers never panic: a malformed payload is a classified Parse error.
type PayoutAdapter interface {
	Name() string
	Capabilities() Capabilities

	BuildAuth(cred domain.AuthCredential) (AuthContext, error)

	BuildRecipientRequest(auth AuthContext, req *domain.PayoutsRequest) (*Request, error)
	ParseRecipientResponse(raw []byte) (*domain.PayoutsResponseData, error)

	BuildQuoteRequest(auth AuthContext, req *domain.PayoutsRequest) (*Request, error)
	ParseQuoteResponse(raw []byte) (*domain.PayoutsResponseData, error)

	BuildTransferRequest(auth AuthContext, req *domain.PayoutsRequest) (*Request, error)
	ParseTransferResponse(raw []byte) (*domain.PayoutsResponseData, error)

	BuildFulfillRequest(auth AuthContext, req *domain.PayoutsRequest) (*Request, error)
	ParseFulfillResponse(raw []byte) (*domain.PayoutsResponseData, error)

	// ParseError classifies a non-2xx connector response.
	ParseError(statusCode int, raw []byte) NormalizedError
}

// PaymentAdapter is implemented by payment connector integrations.
type PaymentAdapter interface {
	Name() string
	Capabilities() Capabilities

	BuildAuth(cred domain.AuthCredential) (AuthContext, error)

	BuildAuthorizeRequest(auth AuthContext, req *domain.PaymentsAuthorizeRequest) (*Request, error)
	ParseAuthorizeResponse(raw []byte) (*domain.PaymentsResponseData, error)

	BuildCaptureRequest(auth AuthContext, req *domain.PaymentsCaptureRequest) (*Request, error)
	ParseCaptureResponse(raw []byte) (*domain.PaymentsResponseData, error)

	BuildVoidRequest(auth AuthContext, req *domain.PaymentsVoidRequest) (*Request, error)
	ParseVoidResponse(raw []byte) (*domain.PaymentsResponseData, error)

	BuildRefundRequest(auth AuthContext, req *domain.RefundsRequest) (*Request, error)
	ParseRefundResponse(raw []byte) (*domain.RefundsResponseData, error)

	ParseError(statusCode int, raw []byte) NormalizedError
}
