package webhook

import (
	"encoding/json"
	"fmt"
	"time"
)

/* Webhook represents one accepted delivery from a provider
 * Uses value semantics as it represents data, not behavior
 */
type Webhook struct {
	ID       string
	Provider string

	// EventType is extracted from the payload via the provider's configured
	// path, "unknown" when absent
	EventType string

	// ProviderEventID is the provider-supplied correlation id, empty when the
	// payload carries none. (Provider, ProviderEventID) is the idempotency key.
	ProviderEventID string

	// Payload is the parsed JSON body; opaque beyond event-type/id extraction
	Payload json.RawMessage

	// Headers is an allow-listed snapshot of the request headers
	Headers   map[string]string
	IPAddress string

	Status      Status
	RetryCount  int
	LastError   *ProcessingError
	ProcessedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

/* ProcessingError is the structured record of a handler failure:
 * a message plus the origin trace, persisted for operator visibility
 */
type ProcessingError struct {
	Message   string
	Backtrace string
}

func (e ProcessingError) Error() string {
	return e.Message
}

// Validate enforces the fields that must be present on every record
func (w Webhook) Validate() error {
	if w.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if w.EventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if len(w.Payload) == 0 {
		return fmt.Errorf("payload cannot be empty")
	}
	if err := w.Status.Validate(); err != nil {
		return err
	}
	if w.RetryCount < 0 {
		return fmt.Errorf("retry count cannot be negative")
	}
	return nil
}
