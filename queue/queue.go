package queue

import (
	"context"
	"time"
)

/* The job queue collaborator: re-enqueue-with-delay is the only scheduling
 * primitive the processing pipeline requires. Delivery is at-least-once; the
 * storage-layer claim is what makes duplicate dispatch harmless.
 */

// Enqueuer schedules webhook processing jobs
type Enqueuer interface {
	// Enqueue schedules a webhook for immediate processing
	Enqueue(ctx context.Context, webhookID string) error
	// EnqueueAfter schedules a webhook for processing once delay has elapsed
	EnqueueAfter(ctx context.Context, webhookID string, delay time.Duration) error
}

// Consumer pulls due jobs for workers
type Consumer interface {
	/* Dequeue blocks until a job is due or the context is cancelled.
	 * A job may be delivered more than once.
	 */
	Dequeue(ctx context.Context) (string, error)
}

// Queue combines the producer and consumer sides
type Queue interface {
	Enqueuer
	Consumer
	// Depth returns the number of scheduled jobs, due or not
	Depth(ctx context.Context) (int64, error)
	Close() error
}
