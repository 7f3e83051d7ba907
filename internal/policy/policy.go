// Package policy decides what the router does with a classified connector
// failure: whether the attempt may be retried, whether fallback routing
// should be skipped, whether a human needs to look. The engines below it
// only attach the retryable hint; acting on it is a business decision
// expressed here as ordered govaluate rules.
package policy

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/yourorg/payment-router/internal/connector"
)

// Decision is the outcome of evaluating the rule set against one failure.
type Decision struct {
	AllowRetry     bool
	SkipFallback   bool
	EscalateManual bool
	Reason         string
}

// Rule pairs a govaluate expression with the decision to apply when it
// matches. Rules are evaluated in slice order; the first match wins.
type Rule struct {
	ID         string
	Expression string
	Decision   Decision
}

// Input is the variable set rules can reference.
type Input struct {
	Connector     string
	ErrorCode     string
	ErrorKind     connector.ErrorKind
	Retryable     bool
	HTTPStatus    int
	AttemptNumber int
	AmountMinor   int64
}

// Enforcer evaluates compiled rules. Immutable after construction.
type Enforcer struct {
	rules    []Rule
	compiled []*govaluate.EvaluableExpression
}

// NewEnforcer compiles every rule expression up front so malformed rules
// fail at startup rather than mid-payment.
func NewEnforcer(rules []Rule) (*Enforcer, error) {
	e := &Enforcer{rules: rules}
	for _, rule := range rules {
		if rule.Expression == "" {
			return nil, fmt.Errorf("policy rule ID %q has an empty expression", rule.ID)
		}
		expr, err := govaluate.NewEvaluableExpression(rule.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule ID %q: %w", rule.ID, err)
		}
		e.compiled = append(e.compiled, expr)
	}
	return e, nil
}

// defaultDecision applies when no rule matches: follow the classifier's
// retryable hint, keep fallback available, no escalation.
func defaultDecision(in Input) Decision {
	return Decision{
		AllowRetry: in.Retryable,
		Reason:     "no policy rule matched; following classifier hint",
	}
}

// Evaluate runs the rules in order against the failure input.
func (e *Enforcer) Evaluate(in Input) (Decision, error) {
	params := map[string]interface{}{
		"connector":      in.Connector,
		"error_code":     in.ErrorCode,
		"error_kind":     in.ErrorKind.String(),
		"retryable":      in.Retryable,
		"http_status":    in.HTTPStatus,
		"attempt_number": in.AttemptNumber,
		"amount":         in.AmountMinor,
	}

	for i, expr := range e.compiled {
		result, err := expr.Evaluate(params)
		if err != nil {
			return Decision{}, fmt.Errorf("policy rule ID %q evaluation failed: %w", e.rules[i].ID, err)
		}
		matched, ok := result.(bool)
		if !ok {
			return Decision{}, fmt.Errorf("policy rule ID %q did not evaluate to a boolean", e.rules[i].ID)
		}
		if matched {
			decision := e.rules[i].Decision
			if decision.Reason == "" {
				decision.Reason = fmt.Sprintf("matched rule %q", e.rules[i].ID)
			}
			return decision, nil
		}
	}
	return defaultDecision(in), nil
}
