package webhook

import "fmt"

/* Status represents the processing state of a received webhook
 * Follows the lifecycle: Pending -> Processing -> Processed/Retrying/Unhandled/Failed
 * Retrying returns to Processing on the next claim
 */
type Status int

const (
	Pending Status = iota + 1
	Processing
	Processed
	Retrying
	Failed
	Unhandled
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Processing:
		return "processing"
	case Processed:
		return "processed"
	case Retrying:
		return "retrying"
	case Failed:
		return "failed"
	case Unhandled:
		return "unhandled"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "pending":
		return Pending
	case "processing":
		return Processing
	case "processed":
		return Processed
	case "retrying":
		return Retrying
	case "failed":
		return Failed
	case "unhandled":
		return Unhandled
	default:
		return Pending
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Pending || s > Unhandled {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Processed || s == Failed || s == Unhandled
}

// IsClaimable returns true if a worker may claim the webhook for processing
func (s Status) IsClaimable() bool {
	return s == Pending || s == Retrying
}
