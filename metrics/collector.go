package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/hookline/hookline/webhook"
)

// DepthReader reports the number of scheduled jobs in the queue
type DepthReader interface {
	Depth(ctx context.Context) (int64, error)
}

// StoreCollector implements Collector over the webhook store and the job queue
type StoreCollector struct {
	reader webhook.Reader
	queue  DepthReader
}

// NewStoreCollector creates a collector reading from the given store and queue
func NewStoreCollector(reader webhook.Reader, queue DepthReader) *StoreCollector {
	return &StoreCollector{
		reader: reader,
		queue:  queue,
	}
}

// Collect gathers all metrics
func (c *StoreCollector) Collect(ctx context.Context) (Metrics, error) {
	statusCounts, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting status counts: %w", err)
	}

	queueDepth, err := c.GetQueueDepth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue depth: %w", err)
	}

	return Metrics{
		StatusCounts: statusCounts,
		QueueDepth:   queueDepth,
		Timestamp:    time.Now(),
	}, nil
}

// GetStatusCounts returns the count of webhooks by status
func (c *StoreCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	return c.reader.CountByStatus(ctx)
}

// GetQueueDepth returns the number of scheduled processing jobs
func (c *StoreCollector) GetQueueDepth(ctx context.Context) (int64, error) {
	return c.queue.Depth(ctx)
}
