package handler

import "fmt"

/* Registry maps (provider, event type) to a handler.
 * Registration order is significant: the first exact match wins, then the
 * first wildcard. The registry is populated during startup and treated as
 * immutable once workers are running.
 */
type Registry struct {
	registrations []Registration
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler for a provider and event type pattern.
// Registering a duplicate exact pattern is allowed; the first stays
// authoritative.
func (r *Registry) Register(providerName, eventType string, h Handler, opts ...Option) error {
	if providerName == "" {
		return fmt.Errorf("handler registration requires a provider name")
	}
	if eventType == "" {
		return fmt.Errorf("handler registration requires an event type or %q", Wildcard)
	}
	if h == nil {
		return fmt.Errorf("handler for (%s, %s) cannot be nil", providerName, eventType)
	}

	reg := Registration{
		Provider:  providerName,
		EventType: eventType,
		Handler:   h,
	}
	for _, opt := range opts {
		opt(&reg)
	}
	if reg.Retry != nil && reg.Retry.Delay != nil {
		if err := reg.Retry.Delay.Validate(); err != nil {
			return fmt.Errorf("handler for (%s, %s): %w", providerName, eventType, err)
		}
	}
	if reg.Retry != nil && reg.Retry.MaxRetries != nil && *reg.Retry.MaxRetries < 0 {
		return fmt.Errorf("handler for (%s, %s): max retries cannot be negative", providerName, eventType)
	}

	r.registrations = append(r.registrations, reg)
	return nil
}

// MustRegister is Register for wiring code where a bad registration is a
// programming error
func (r *Registry) MustRegister(providerName, eventType string, h Handler, opts ...Option) {
	if err := r.Register(providerName, eventType, h, opts...); err != nil {
		panic(err)
	}
}

/* Resolve finds the handler for a delivery. Exact event type matches
 * strictly outrank wildcard registrations regardless of order; among
 * duplicates, first-registered wins.
 */
func (r *Registry) Resolve(providerName, eventType string) (Registration, bool) {
	for _, reg := range r.registrations {
		if reg.EventType != Wildcard && reg.Matches(providerName, eventType) {
			return reg, true
		}
	}
	for _, reg := range r.registrations {
		if reg.EventType == Wildcard && reg.Matches(providerName, eventType) {
			return reg, true
		}
	}
	return Registration{}, false
}

// Option customizes a registration
type Option func(*Registration)

// WithRetryOverride attaches per-handler retry settings
func WithRetryOverride(override RetryOverride) Option {
	return func(reg *Registration) {
		reg.Retry = &override
	}
}
