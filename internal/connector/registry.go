package connector

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the connector adapters selected at startup, keyed by
// connector name. Registration happens during initialization; after Seal
// the registry is read-only. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sealed   bool
	payouts  map[string]PayoutAdapter
	payments map[string]PaymentAdapter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		payouts:  make(map[string]PayoutAdapter),
		payments: make(map[string]PaymentAdapter),
	}
}

// RegisterPayout adds a payout adapter. Duplicate names and registration
// after Seal are configuration errors.
func (r *Registry) RegisterPayout(a PayoutAdapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("registry: cannot register payout adapter %q after seal", a.Name())
	}
	if _, exists := r.payouts[a.Name()]; exists {
		return fmt.Errorf("registry: payout adapter %q already registered", a.Name())
	}
	r.payouts[a.Name()] = a
	return nil
}

// RegisterPayment adds a payment adapter under the same rules.
func (r *Registry) RegisterPayment(a PaymentAdapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("registry: cannot register payment adapter %q after seal", a.Name())
	}
	if _, exists := r.payments[a.Name()]; exists {
		return fmt.Errorf("registry: payment adapter %q already registered", a.Name())
	}
	r.payments[a.Name()] = a
	return nil
}

// Seal freezes the registry. Lookups before Seal are allowed but the
// expected lifecycle is register-everything, seal, serve.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Payout returns the payout adapter registered under name.
func (r *Registry) Payout(name string) (PayoutAdapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.payouts[name]
	if !ok {
		return nil, fmt.Errorf("registry: no payout adapter registered for connector %q", name)
	}
	return a, nil
}

// Payment returns the payment adapter registered under name.
func (r *Registry) Payment(name string) (PaymentAdapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.payments[name]
	if !ok {
		return nil, fmt.Errorf("registry: no payment adapter registered for connector %q", name)
	}
	return a, nil
}

// PayoutNames lists registered payout connectors in sorted order.
func (r *Registry) PayoutNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.payouts))
	for name := range r.payouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
