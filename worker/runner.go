package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hookline/hookline/queue"
)

/* Runner fans Process out over a pool of consumer goroutines.
 * Concurrency here is safe by construction: the repository claim serializes
 * access per record, so two consumers dequeuing the same id is harmless.
 */
type Runner struct {
	Consumer    queue.Consumer
	Processor   *Processor
	Concurrency int
	Logger      *slog.Logger
}

// NewRunner creates a runner with the given consumer pool size
func NewRunner(consumer queue.Consumer, processor *Processor, concurrency int, logger *slog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		Consumer:    consumer,
		Processor:   processor,
		Concurrency: concurrency,
		Logger:      logger.With("component", "runner"),
	}
}

// Run consumes jobs until the context is cancelled
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.consume(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (r *Runner) consume(ctx context.Context, workerID int) {
	logger := r.Logger.With("worker_id", workerID)
	logger.InfoContext(ctx, "worker started")

	for {
		webhookID, err := r.Consumer.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.InfoContext(ctx, "worker stopped")
				return
			}
			logger.ErrorContext(ctx, "dequeue failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := r.Processor.Process(ctx, webhookID); err != nil {
			// Infrastructure errors only; handler failures are absorbed by
			// the processor's state transitions
			logger.ErrorContext(ctx, "processing failed", "webhook_id", webhookID, "error", err)
		}
	}
}
