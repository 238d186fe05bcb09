package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/hookline/hookline/handler"
	"github.com/hookline/hookline/provider"
	"github.com/hookline/hookline/queue"
	"github.com/hookline/hookline/webhook"
)

/* Processor drives one webhook through the state machine:
 * claim -> resolve -> invoke -> processed/retrying/failed/unhandled
 */
type Processor struct {
	Repo      webhook.Repository
	Handlers  *handler.Registry
	Providers *provider.Registry
	Queue     queue.Enqueuer
	Logger    *slog.Logger
}

// NewProcessor creates a processor with dependency injection
func NewProcessor(repo webhook.Repository, handlers *handler.Registry, providers *provider.Registry, q queue.Enqueuer, logger *slog.Logger) *Processor {
	return &Processor{
		Repo:      repo,
		Handlers:  handlers,
		Providers: providers,
		Queue:     q,
		Logger:    logger.With("component", "processor"),
	}
}

/* Process claims and handles one webhook. Failing to obtain the claim is a
 * silent no-op: the record is gone, already being processed, or terminal.
 * Duplicate job deliveries land here and fall out harmlessly.
 */
func (p *Processor) Process(ctx context.Context, webhookID string) error {
	wh, claimed, err := p.Repo.Claim(ctx, webhookID)
	if err != nil {
		return fmt.Errorf("claiming webhook %s: %w", webhookID, err)
	}
	if !claimed {
		return nil
	}

	reg, found := p.Handlers.Resolve(wh.Provider, wh.EventType)
	if !found {
		p.Logger.WarnContext(ctx, "no handler registered",
			"provider", wh.Provider, "event_type", wh.EventType, "webhook_id", wh.ID)
		if err := p.Repo.MarkUnhandled(ctx, wh.ID); err != nil {
			return fmt.Errorf("marking webhook %s unhandled: %w", wh.ID, err)
		}
		return nil
	}

	handlerErr := p.invoke(ctx, reg, wh)
	if handlerErr == nil {
		if err := p.Repo.MarkProcessed(ctx, wh.ID); err != nil {
			return fmt.Errorf("marking webhook %s processed: %w", wh.ID, err)
		}
		p.Logger.InfoContext(ctx, "processed webhook",
			"provider", wh.Provider, "event_type", wh.EventType, "webhook_id", wh.ID)
		return nil
	}

	return p.handleFailure(ctx, wh, reg, handlerErr)
}

// invoke runs the handler, converting a panic into an error so a misbehaving
// handler never takes the worker down
func (p *Processor) invoke(ctx context.Context, reg handler.Registration, wh webhook.Webhook) (err *webhook.ProcessingError) {
	defer func() {
		if r := recover(); r != nil {
			err = &webhook.ProcessingError{
				Message:   fmt.Sprintf("handler panic: %v", r),
				Backtrace: string(debug.Stack()),
			}
		}
	}()

	if handleErr := reg.Handler.Handle(ctx, wh); handleErr != nil {
		return &webhook.ProcessingError{
			Message:   handleErr.Error(),
			Backtrace: string(debug.Stack()),
		}
	}
	return nil
}

// handleFailure applies the effective retry policy after a handler error
func (p *Processor) handleFailure(ctx context.Context, wh webhook.Webhook, reg handler.Registration, procErr *webhook.ProcessingError) error {
	policy := p.effectivePolicy(reg, wh.Provider)

	if policy.Enabled && wh.RetryCount < policy.MaxRetries {
		// Delay grows from the attempt number before this increment
		delay := policy.Delay.Delay(wh.RetryCount)

		if err := p.Repo.MarkRetrying(ctx, wh.ID, *procErr); err != nil {
			return fmt.Errorf("marking webhook %s retrying: %w", wh.ID, err)
		}
		if err := p.Queue.EnqueueAfter(ctx, wh.ID, delay); err != nil {
			return fmt.Errorf("re-enqueuing webhook %s: %w", wh.ID, err)
		}

		p.Logger.WarnContext(ctx, "handler failed, retry scheduled",
			"provider", wh.Provider, "webhook_id", wh.ID,
			"retry_count", wh.RetryCount+1, "delay", delay, "error", procErr.Message)
		return nil
	}

	if err := p.Repo.MarkFailed(ctx, wh.ID, *procErr); err != nil {
		return fmt.Errorf("marking webhook %s failed: %w", wh.ID, err)
	}

	p.Logger.ErrorContext(ctx, "handler failed permanently",
		"provider", wh.Provider, "webhook_id", wh.ID,
		"retry_count", wh.RetryCount, "error", procErr.Message)
	return nil
}

func (p *Processor) effectivePolicy(reg handler.Registration, providerName string) provider.RetryPolicy {
	defaults := provider.DefaultRetryPolicy()
	if prov, ok := p.Providers.Get(providerName); ok {
		defaults = prov.Retry
	}
	return reg.EffectivePolicy(defaults)
}
