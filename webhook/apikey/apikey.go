package apikey

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/hookline/hookline/provider"
)

// ValidationError reports why an API key was rejected. The reason is safe
// to surface to the caller in a 401 response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validator checks deliveries against one provider's API key configuration
type Validator struct {
	header string
	keys   []string
}

// NewValidator creates a validator for a provider's configuration
func NewValidator(p provider.Provider) *Validator {
	return &Validator{
		header: p.APIKeyHeader,
		keys:   p.APIKeys,
	}
}

/* Validate checks the shared-secret header on the request.
 * It is a no-op when the provider has no API key configuration.
 * Any configured key matching is a success (key rotation).
 */
func (v *Validator) Validate(headers http.Header) error {
	if v.header == "" || len(v.keys) == 0 {
		return nil
	}

	provided := strings.TrimSpace(headers.Get(v.header))
	if provided == "" {
		return &ValidationError{Reason: "Missing API key"}
	}

	for _, key := range v.keys {
		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(key), []byte(provided)) == 1 {
			return nil
		}
	}

	return &ValidationError{Reason: "Invalid API key"}
}
