package webhook

import (
	"context"
	"errors"
	"time"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// ErrNotFound is returned when a webhook id does not resolve to a record
var ErrNotFound = errors.New("webhook not found")

// ErrDuplicateEvent is returned when an insert violates the
// (provider, provider_event_id) uniqueness constraint
var ErrDuplicateEvent = errors.New("duplicate provider event")

// Ordering selects how listed webhooks are sorted
type Ordering int

const (
	// RecentlyProcessed orders by processing time, newest first
	RecentlyProcessed Ordering = iota
	// RecentlyCreated orders by creation time, newest first
	RecentlyCreated
)

// Filter narrows and pages webhook listings for the admin read surface
type Filter struct {
	Provider      string
	Statuses      []Status
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	ProcessedFrom *time.Time
	ProcessedTo   *time.Time
	OrderBy       Ordering
	Limit         int
	Offset        int
}

// Reader provides read operations for webhooks
type Reader interface {
	/* Context is always the first parameter in functions that do I/O
	 * This allows for cancellation, timeouts, and shared values
	 */
	Get(ctx context.Context, id string) (Webhook, error)
	/* Exists reports whether a record already exists for the idempotency key
	 * (provider, providerEventID)
	 */
	Exists(ctx context.Context, provider, providerEventID string) (bool, error)
	// List returns a filtered page of webhooks plus the total match count
	List(ctx context.Context, filter Filter) ([]Webhook, int, error)
	// CountByStatus returns record counts keyed by status name
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Writer provides write operations for webhooks
type Writer interface {
	// Create persists a new record; returns ErrDuplicateEvent on an
	// idempotency-key collision
	Create(ctx context.Context, webhook Webhook) (string, error)
	/* Claim atomically transitions the record from a claimable state
	 * (pending, retrying) to processing with a single conditional update at
	 * the storage layer. It returns claimed=false, without error, when the
	 * record is absent, already claimed, or terminal. This is the sole
	 * serialization point between concurrent workers.
	 */
	Claim(ctx context.Context, id string) (Webhook, bool, error)
	// MarkProcessed records a successful handler run, stamping processed_at
	MarkProcessed(ctx context.Context, id string) error
	// MarkUnhandled records that no handler is registered for the event
	MarkUnhandled(ctx context.Context, id string) error
	// MarkRetrying increments the retry count and stores the failure
	MarkRetrying(ctx context.Context, id string, procErr ProcessingError) error
	// MarkFailed records a terminal handler failure
	MarkFailed(ctx context.Context, id string, procErr ProcessingError) error
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Repository interface {
	Reader
	Writer
	Close() error
}
