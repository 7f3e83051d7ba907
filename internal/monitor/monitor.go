// Package monitor validates raw connector response bodies against each
// connector's declared JSON schema before parsing. A payload that fails
// its schema becomes a classified parse error instead of a surprise deep
// inside a transformer.
package monitor

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/yourorg/payment-router/internal/connector"
)

// ContractMonitor validates connector payloads against a JSON schema.
type ContractMonitor struct {
	connectorName string
	schema        *gojsonschema.Schema
}

// NewContractMonitor compiles the schema document. Schemas ship with each
// connector as string literals, so a bad schema fails at startup.
func NewContractMonitor(connectorName, schemaJSON string) (*ContractMonitor, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("error compiling schema for connector %s: %w", connectorName, err)
	}
	return &ContractMonitor{connectorName: connectorName, schema: schema}, nil
}

// Validate checks the raw body against the schema. A shape mismatch or an
// unparseable document comes back as a connector Parse error.
func (cm *ContractMonitor) Validate(body []byte) error {
	result, err := cm.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return connector.NewParseError(cm.connectorName, "response body is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}
	var descriptions []string
	for _, desc := range result.Errors() {
		descriptions = append(descriptions, desc.String())
	}
	return connector.NewParseError(cm.connectorName, FormatErrors(descriptions), nil)
}

// FormatErrors joins schema violation descriptions into one message.
func FormatErrors(validationErrors []string) string {
	if len(validationErrors) == 0 {
		return ""
	}
	return "schema violations: " + strings.Join(validationErrors, "; ")
}
