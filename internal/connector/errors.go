package connector

import (
	"errors"
	"fmt"
)

// ErrorKind partitions every failure a connector adapter can surface.
// Nothing crosses the adapter boundary as raw connector JSON or as an
// unclassified error.
type ErrorKind int

const (
	// ErrAuthConfiguration: the supplied credential variant is not one the
	// connector accepts. Fatal, never retried.
	ErrAuthConfiguration ErrorKind = iota
	// ErrValidation: a canonical field the connector requires is absent.
	// Fatal for this attempt; the caller can correct and resubmit.
	ErrValidation
	// ErrUnsupportedCapability: the connector does not support the
	// requested operation at all. Checked before any network call.
	ErrUnsupportedCapability
	// ErrConnectorResponse: the remote processor returned an error; it has
	// been classified and carries a retryability hint.
	ErrConnectorResponse
	// ErrParse: the response shape did not match expectations.
	// Non-retryable: a malformed response usually signals a contract
	// change that blind retry cannot fix.
	ErrParse
)

var errorKindNames = map[ErrorKind]string{
	ErrAuthConfiguration:     "auth_configuration",
	ErrValidation:            "validation",
	ErrUnsupportedCapability: "unsupported_capability",
	ErrConnectorResponse:     "connector_response",
	ErrParse:                 "parse",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// NormalizedError is the canonical shape of a classified connector error.
type NormalizedError struct {
	Code      string
	Message   string
	Retryable bool
	// Raw keeps the connector payload for audit and debugging; downstream
	// decisions never depend on it.
	Raw []byte
}

// Error is the single tagged error type crossing the adapter boundary.
type Error struct {
	Kind      ErrorKind
	Connector string

	// FieldName is set for ErrValidation.
	FieldName string
	// Message and PaymentExperience are set for ErrUnsupportedCapability.
	Message           string
	PaymentExperience string
	// Normalized is set for ErrConnectorResponse.
	Normalized *NormalizedError

	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrAuthConfiguration:
		return fmt.Sprintf("%s: failed to obtain auth type: %s", e.Connector, e.Message)
	case ErrValidation:
		return fmt.Sprintf("%s: missing required field %q", e.Connector, e.FieldName)
	case ErrUnsupportedCapability:
		return fmt.Sprintf("%s: not supported: %s", e.Connector, e.Message)
	case ErrConnectorResponse:
		if e.Normalized != nil {
			return fmt.Sprintf("%s: connector error %s: %s", e.Connector, e.Normalized.Code, e.Normalized.Message)
		}
		return fmt.Sprintf("%s: connector error", e.Connector)
	case ErrParse:
		return fmt.Sprintf("%s: failed to parse connector response: %s", e.Connector, e.Message)
	}
	return fmt.Sprintf("%s: connector failure", e.Connector)
}

func (e *Error) Unwrap() error { return e.cause }

// Retryable reports the classified retryability hint. Only classified
// connector responses can ever be retryable; every other kind fails closed.
func (e *Error) Retryable() bool {
	return e.Kind == ErrConnectorResponse && e.Normalized != nil && e.Normalized.Retryable
}

// NewAuthError reports an incompatible credential variant.
func NewAuthError(connectorName, message string) *Error {
	return &Error{Kind: ErrAuthConfiguration, Connector: connectorName, Message: message}
}

// NewMissingFieldError reports an absent canonical field.
func NewMissingFieldError(connectorName, fieldName string) *Error {
	return &Error{Kind: ErrValidation, Connector: connectorName, FieldName: fieldName}
}

// NewNotSupportedError reports a capability the connector does not offer.
func NewNotSupportedError(connectorName, message, paymentExperience string) *Error {
	return &Error{
		Kind:              ErrUnsupportedCapability,
		Connector:         connectorName,
		Message:           message,
		PaymentExperience: paymentExperience,
	}
}

// NewResponseError wraps a classified connector error payload.
func NewResponseError(connectorName string, normalized NormalizedError) *Error {
	return &Error{Kind: ErrConnectorResponse, Connector: connectorName, Normalized: &normalized}
}

// NewParseError reports an unparseable or schema-violating response.
func NewParseError(connectorName, message string, cause error) *Error {
	return &Error{Kind: ErrParse, Connector: connectorName, Message: message, cause: cause}
}

// AsError extracts the tagged connector error from an error chain.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind reports whether err carries a connector error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ce, ok := AsError(err)
	return ok && ce.Kind == kind
}
