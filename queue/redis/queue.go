package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

/* Redis sorted-set implementation of queue.Queue
 * Jobs are members of a single ZSET scored by their ready time, so
 * EnqueueAfter is just a future score. Workers poll for due members and pop
 * with ZRem; a racing pop loses (ZRem returns 0) and tries again.
 *
 * A job popped by a worker that crashes before claiming is lost here; the
 * processing claim in the webhook repository is what dedups the normal
 * redelivery cases (duplicate enqueue, concurrent workers).
 */

const scheduleKey = "hookline:schedule"

// DefaultPollInterval is how long Dequeue sleeps when nothing is due
const DefaultPollInterval = 250 * time.Millisecond

type Queue struct {
	client       *redis.Client
	pollInterval time.Duration
}

// NewQueue creates a Redis-backed job queue
func NewQueue(addr, password string, db int) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Queue{
		client:       client,
		pollInterval: DefaultPollInterval,
	}, nil
}

// NewQueueWithClient wraps an existing client, mainly for tests
func NewQueueWithClient(client *redis.Client, pollInterval time.Duration) *Queue {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Queue{client: client, pollInterval: pollInterval}
}

// Enqueue schedules a webhook for immediate processing
func (q *Queue) Enqueue(ctx context.Context, webhookID string) error {
	return q.EnqueueAfter(ctx, webhookID, 0)
}

// EnqueueAfter schedules a webhook for processing once delay has elapsed
func (q *Queue) EnqueueAfter(ctx context.Context, webhookID string, delay time.Duration) error {
	readyAt := time.Now().Add(delay)

	err := q.client.ZAdd(ctx, scheduleKey, redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: webhookID,
	}).Err()
	if err != nil {
		return fmt.Errorf("scheduling webhook %s: %w", webhookID, err)
	}
	return nil
}

// Dequeue blocks until a due job can be popped or the context is cancelled
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		id, ok, err := q.tryPop(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return id, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// tryPop pops the oldest due member, if any
func (q *Queue) tryPop(ctx context.Context) (string, bool, error) {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())

	ids, err := q.client.ZRangeByScore(ctx, scheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: 1,
	}).Result()
	if err != nil {
		return "", false, fmt.Errorf("reading schedule: %w", err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}

	// ZRem is the pop: only one of several racing workers removes the member
	removed, err := q.client.ZRem(ctx, scheduleKey, ids[0]).Result()
	if err != nil {
		return "", false, fmt.Errorf("popping webhook %s: %w", ids[0], err)
	}
	if removed == 0 {
		// Lost the race; caller loops
		return "", false, nil
	}

	return ids[0], true, nil
}

// Depth returns the number of scheduled jobs, due or not
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	depth, err := q.client.ZCard(ctx, scheduleKey).Result()
	if err != nil {
		return 0, fmt.Errorf("reading schedule depth: %w", err)
	}
	return depth, nil
}

// Close releases the Redis connection
func (q *Queue) Close() error {
	return q.client.Close()
}
