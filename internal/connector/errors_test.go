package connector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("MissingField", func(t *testing.T) {
		err := NewMissingFieldError("wise", "quote_id")
		assert.True(t, IsKind(err, ErrValidation))
		assert.Contains(t, err.Error(), `"quote_id"`)
		ce, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, "quote_id", ce.FieldName)
		assert.False(t, ce.Retryable())
	})

	t.Run("NotSupported", func(t *testing.T) {
		err := NewNotSupportedError("wise", "card payout creation is not supported", "")
		assert.True(t, IsKind(err, ErrUnsupportedCapability))
		assert.False(t, IsKind(err, ErrValidation))
		assert.Contains(t, err.Error(), "not supported")
	})

	t.Run("AuthConfiguration", func(t *testing.T) {
		err := NewAuthError("wise", "expected api_key_plus_profile credential, got api_key_only")
		assert.True(t, IsKind(err, ErrAuthConfiguration))
		assert.False(t, err.Retryable())
	})

	t.Run("ConnectorResponse_CarriesRetryability", func(t *testing.T) {
		err := NewResponseError("wise", NormalizedError{Code: "too.many.requests", Message: "slow down", Retryable: true})
		assert.True(t, IsKind(err, ErrConnectorResponse))
		assert.True(t, err.Retryable())
		assert.Contains(t, err.Error(), "too.many.requests")
	})

	t.Run("Parse_WrapsCause", func(t *testing.T) {
		cause := fmt.Errorf("unexpected end of JSON input")
		err := NewParseError("wise", "fulfill response", cause)
		assert.True(t, IsKind(err, ErrParse))
		assert.ErrorIs(t, err, cause)
		assert.False(t, err.Retryable())
	})

	t.Run("WrappedErrorsStillClassify", func(t *testing.T) {
		inner := NewMissingFieldError("wise", "address")
		wrapped := fmt.Errorf("building recipient request: %w", inner)
		assert.True(t, IsKind(wrapped, ErrValidation))
		ce, ok := AsError(wrapped)
		require.True(t, ok)
		assert.Equal(t, "address", ce.FieldName)
	})
}
