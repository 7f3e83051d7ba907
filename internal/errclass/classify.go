// Package errclass normalizes heterogeneous connector error payloads into
// the router's canonical error shape. Connectors disagree about almost
// everything here: some return a flat error/description pair, some a list
// of structured sub-errors with field paths, some nothing but an HTTP
// status. Classification prefers the most specific information available
// and fails closed on retryability.
package errclass

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/yourorg/payment-router/internal/connector"
)

// SubError is one entry of a structured error list.
type SubError struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Path      string   `json:"path,omitempty"`
	Field     string   `json:"field,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
}

// Payload is the superset of error shapes seen across connectors. A
// connector's own error struct deserializes into whichever fields it has;
// absent fields stay zero.
type Payload struct {
	Errors           []SubError `json:"errors,omitempty"`
	Error            string     `json:"error,omitempty"`
	ErrorDescription string     `json:"error_description,omitempty"`
	Message          string     `json:"message,omitempty"`
	Timestamp        string     `json:"timestamp,omitempty"`
	Path             string     `json:"path,omitempty"`
	Status           int        `json:"status,omitempty"`
}

const noCodeFallback = "UNCLASSIFIED"

// Classify builds a NormalizedError from whatever the connector supplied.
//
// Message preference, most specific first: sub-error messages joined in
// original order, then error_description, then message, then error, then
// a synthesized message from the HTTP status. The result is never empty.
// Code comes from the first sub-error carrying one, else the flat error
// field, else a synthesized HTTP code. Retryability is looked up in the
// connector's table; unknown codes are non-retryable.
func Classify(connectorName string, p Payload, httpStatus int, raw []byte, retry *RetryTable) connector.NormalizedError {
	code := noCodeFallback
	message := ""

	if len(p.Errors) > 0 {
		parts := make([]string, 0, len(p.Errors))
		for _, sub := range p.Errors {
			text := sub.Message
			if sub.Field != "" {
				text = fmt.Sprintf("%s: %s", sub.Field, sub.Message)
			}
			parts = append(parts, text)
			if code == noCodeFallback && sub.Code != "" {
				code = sub.Code
			}
		}
		message = strings.Join(parts, "; ")
	}

	if message == "" {
		switch {
		case p.ErrorDescription != "":
			message = p.ErrorDescription
		case p.Message != "":
			message = p.Message
		case p.Error != "":
			message = p.Error
		}
	}
	if code == noCodeFallback && p.Error != "" {
		code = p.Error
	}

	if message == "" {
		if httpStatus == 0 && p.Status != 0 {
			httpStatus = p.Status
		}
		statusText := http.StatusText(httpStatus)
		if statusText == "" {
			statusText = "unknown status"
		}
		message = fmt.Sprintf("connector returned HTTP %d (%s) with no error details", httpStatus, statusText)
		if code == noCodeFallback {
			code = fmt.Sprintf("HTTP_%d", httpStatus)
		}
	}

	retryable := false
	if retry != nil {
		retryable = retry.Retryable(code)
	}

	classifiedTotal.WithLabelValues(connectorName, fmt.Sprintf("%t", retryable)).Inc()

	return connector.NormalizedError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Raw:       raw,
	}
}
