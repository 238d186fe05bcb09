package handler

import (
	"context"

	"github.com/hookline/hookline/provider"
	"github.com/hookline/hookline/webhook"
)

// Wildcard matches every event type of a provider, used only when no exact
// registration matches
const Wildcard = "*"

/* Handler is the application-supplied logic invoked for one delivery.
 * Implementations must tolerate at-least-once invocation: the pipeline
 * guarantees a single active execution per record, not a single execution
 * ever.
 */
type Handler interface {
	Handle(ctx context.Context, wh webhook.Webhook) error
}

// Func adapts a plain function to the Handler interface
type Func func(ctx context.Context, wh webhook.Webhook) error

func (f Func) Handle(ctx context.Context, wh webhook.Webhook) error {
	return f(ctx, wh)
}

/* RetryOverride carries per-handler retry settings. Nil fields fall through
 * to the provider's retry defaults.
 */
type RetryOverride struct {
	Enabled    *bool
	MaxRetries *int
	Delay      *provider.DelayPolicy
}

// Registration binds an event type pattern to a handler for one provider
type Registration struct {
	Provider  string
	EventType string
	Handler   Handler
	Retry     *RetryOverride
}

// Matches reports whether this registration serves the given delivery
func (r Registration) Matches(providerName, eventType string) bool {
	if r.Provider != providerName {
		return false
	}
	return r.EventType == Wildcard || r.EventType == eventType
}

/* EffectivePolicy resolves the retry policy for this registration:
 * handler-level override > provider defaults > global defaults
 */
func (r Registration) EffectivePolicy(defaults provider.RetryPolicy) provider.RetryPolicy {
	policy := defaults
	if policy == (provider.RetryPolicy{}) {
		policy = provider.DefaultRetryPolicy()
	}
	if r.Retry == nil {
		return policy
	}
	if r.Retry.Enabled != nil {
		policy.Enabled = *r.Retry.Enabled
	}
	if r.Retry.MaxRetries != nil {
		policy.MaxRetries = *r.Retry.MaxRetries
	}
	if r.Retry.Delay != nil {
		policy.Delay = *r.Retry.Delay
	}
	return policy
}
