package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the ingestion system.
type Metrics struct {
	// StatusCounts maps status name to count of webhooks in that status
	StatusCounts map[string]int64 `json:"status_counts"`

	// QueueDepth is the number of scheduled processing jobs, due or not
	QueueDepth int64 `json:"queue_depth"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the system.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetStatusCounts returns the count of webhooks by status
	GetStatusCounts(ctx context.Context) (map[string]int64, error)

	// GetQueueDepth returns the number of scheduled processing jobs
	GetQueueDepth(ctx context.Context) (int64, error)
}
