package provider

import (
	"fmt"
	"strings"
	"time"
)

/* Provider represents the configuration for one external webhook source
 * Uses value semantics as it represents data, not behavior
 */
type Provider struct {
	Name string

	// Signature authentication (skipped entirely when unconfigured)
	SignatureHeader    string
	SignatureAlgorithm string
	SignatureFormat    SignatureFormat
	Secrets            []string // multiple secrets support rotation

	// API key authentication (skipped entirely when unconfigured)
	APIKeyHeader string
	APIKeys      []string

	// EventTypeKey is a dot-separated path into the parsed payload
	// used to extract the event type (e.g. "event.type")
	EventTypeKey string

	Retry RetryPolicy
}

// SignatureFormat determines how the signature is extracted from the header
type SignatureFormat string

const (
	// FormatSimple is a raw hex signature, optionally prefixed like "sha256="
	FormatSimple SignatureFormat = "simple"
	// FormatTimestamped is a Stripe-style "t=<ts>,v1=<hex>" header
	FormatTimestamped SignatureFormat = "timestamped"
)

// Validate checks if the signature format is valid
func (f SignatureFormat) Validate() error {
	if f != FormatSimple && f != FormatTimestamped {
		return fmt.Errorf("invalid signature format: %q", string(f))
	}
	return nil
}

// DelayKind selects how retry delays grow across attempts
type DelayKind string

const (
	DelayExponential DelayKind = "exponential"
	DelayFixed       DelayKind = "fixed"
)

// baseDelaySeconds is the exponential backoff base: 5s, 10s, 20s, 40s...
const baseDelaySeconds = 5

// DelayPolicy computes the wait before a retry attempt
type DelayPolicy struct {
	Kind         DelayKind
	FixedSeconds int
}

// Delay returns the wait before re-dispatching, where attempt is the
// retry count before it is incremented (first retry is attempt 0)
func (d DelayPolicy) Delay(attempt int) time.Duration {
	switch d.Kind {
	case DelayFixed:
		return time.Duration(d.FixedSeconds) * time.Second
	default:
		return time.Duration(baseDelaySeconds<<attempt) * time.Second
	}
}

// Validate checks if the delay policy is valid
func (d DelayPolicy) Validate() error {
	switch d.Kind {
	case DelayExponential:
		return nil
	case DelayFixed:
		if d.FixedSeconds <= 0 {
			return fmt.Errorf("fixed retry delay requires a positive number of seconds")
		}
		return nil
	default:
		return fmt.Errorf("invalid retry delay kind: %q", string(d.Kind))
	}
}

// RetryPolicy controls whether and how failed handler invocations are retried
type RetryPolicy struct {
	Enabled    bool
	MaxRetries int
	Delay      DelayPolicy
}

// DefaultRetryPolicy returns the global retry defaults applied when neither
// the handler nor the provider overrides them
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Enabled:    true,
		MaxRetries: 3,
		Delay:      DelayPolicy{Kind: DelayExponential},
	}
}

// Validate checks if the retry policy is valid
func (r RetryPolicy) Validate() error {
	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	return r.Delay.Validate()
}

// supported HMAC algorithms
var validAlgorithms = map[string]bool{
	"sha1":   true,
	"sha256": true,
	"sha512": true,
}

/* Validate checks the provider configuration at registration time.
 * Partial auth configuration (a header without a secret, or vice versa) is
 * rejected rather than silently skipped: proceeding would mask a missing
 * security check.
 */
func (p Provider) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if !validAlgorithms[p.SignatureAlgorithm] {
		return fmt.Errorf("unsupported signature algorithm %q for provider %s", p.SignatureAlgorithm, p.Name)
	}
	if err := p.SignatureFormat.Validate(); err != nil {
		return fmt.Errorf("provider %s: %w", p.Name, err)
	}
	if p.SignatureHeader != "" && len(p.Secrets) == 0 {
		return fmt.Errorf("provider %s has a signature_header but no secrets", p.Name)
	}
	if p.SignatureHeader == "" && len(p.Secrets) > 0 {
		return fmt.Errorf("provider %s has secrets but no signature_header", p.Name)
	}
	for i, s := range p.Secrets {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("provider %s has an empty secret at position %d", p.Name, i)
		}
	}
	if p.APIKeyHeader != "" && len(p.APIKeys) == 0 {
		return fmt.Errorf("provider %s has an api_key_header but no api_keys", p.Name)
	}
	if p.APIKeyHeader == "" && len(p.APIKeys) > 0 {
		return fmt.Errorf("provider %s has api_keys but no api_key_header", p.Name)
	}
	for i, k := range p.APIKeys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("provider %s has an empty api key at position %d", p.Name, i)
		}
	}
	if err := p.Retry.Validate(); err != nil {
		return fmt.Errorf("provider %s: %w", p.Name, err)
	}
	return nil
}

// EventTypePath returns the configured payload path for the event type,
// split on dots, defaulting to the top-level "type" field
func (p Provider) EventTypePath() []string {
	key := p.EventTypeKey
	if key == "" {
		key = "type"
	}
	return strings.Split(key, ".")
}

// applyDefaults fills in the documented defaults on zero-valued fields
func (p Provider) applyDefaults() Provider {
	if p.SignatureAlgorithm == "" {
		p.SignatureAlgorithm = "sha256"
	}
	if p.SignatureFormat == "" {
		p.SignatureFormat = FormatSimple
	}
	if p.Retry == (RetryPolicy{}) {
		p.Retry = DefaultRetryPolicy()
	}
	if p.Retry.Delay.Kind == "" {
		p.Retry.Delay.Kind = DelayExponential
	}
	return p
}
