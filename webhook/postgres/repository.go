package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hookline/hookline/webhook"
	"github.com/lib/pq"
)

/* PostgreSQL implementation of webhook.Repository
 *
 * The claim transition is a single conditional UPDATE: Postgres guarantees
 * that exactly one of any number of concurrent claimers sees a row move from
 * a claimable status to processing. No application-level locking exists
 * anywhere in the pipeline.
 */

// uniqueViolation is the Postgres error code for constraint collisions
const uniqueViolation = "23505"

type Repository struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewRepository opens a connection pool and ensures the schema exists
func NewRepository(ctx context.Context, logger *slog.Logger, databaseURL string) (*Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	r := &Repository{
		DB:     db,
		logger: logger.With("component", "webhook_postgres"),
	}

	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("running webhook migrations: %w", err)
	}

	r.logger.InfoContext(ctx, "webhook postgres repository initialized")
	return r, nil
}

// migrate creates the webhooks table and its indexes if missing
func (r *Repository) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS webhooks (
			id UUID PRIMARY KEY,
			provider TEXT NOT NULL,
			event_type TEXT NOT NULL,
			provider_event_id TEXT,
			payload JSONB NOT NULL,
			headers JSONB,
			ip_address TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			retry_count INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			error_backtrace TEXT,
			processed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_webhooks_provider_event
			ON webhooks (provider, provider_event_id)
			WHERE provider_event_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_webhooks_provider ON webhooks (provider)`,
		`CREATE INDEX IF NOT EXISTS idx_webhooks_event_type ON webhooks (event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_webhooks_provider_event_type ON webhooks (provider, event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_webhooks_status ON webhooks (status)`,
		`CREATE INDEX IF NOT EXISTS idx_webhooks_status_created_at ON webhooks (status, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

const webhookColumns = `id, provider, event_type, provider_event_id, payload, headers,
	ip_address, status, retry_count, error_message, error_backtrace,
	processed_at, created_at, updated_at`

// Create persists a new record in state pending
func (r *Repository) Create(ctx context.Context, wh webhook.Webhook) (string, error) {
	headersJSON, err := json.Marshal(wh.Headers)
	if err != nil {
		return "", fmt.Errorf("marshaling headers: %w", err)
	}

	query := `
		INSERT INTO webhooks (
			id, provider, event_type, provider_event_id, payload, headers,
			ip_address, status, retry_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.DB.ExecContext(ctx, query,
		wh.ID,
		wh.Provider,
		wh.EventType,
		nullString(wh.ProviderEventID),
		[]byte(wh.Payload),
		headersJSON,
		nullString(wh.IPAddress),
		wh.Status.String(),
		wh.RetryCount,
		wh.CreatedAt,
		wh.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", webhook.ErrDuplicateEvent
		}
		return "", fmt.Errorf("inserting webhook: %w", err)
	}

	return wh.ID, nil
}

/* Claim moves the record from {pending, retrying} to processing in one
 * conditional UPDATE, returning the claimed row. claimed=false means the
 * record is absent, concurrently claimed, or terminal; none of those is an
 * error for the caller.
 */
func (r *Repository) Claim(ctx context.Context, id string) (webhook.Webhook, bool, error) {
	query := fmt.Sprintf(`
		UPDATE webhooks
		SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'retrying')
		RETURNING %s`, webhookColumns)

	wh, err := r.scanWebhook(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webhook.Webhook{}, false, nil
		}
		return webhook.Webhook{}, false, fmt.Errorf("claiming webhook: %w", err)
	}

	return wh, true, nil
}

// Get retrieves a webhook by id
func (r *Repository) Get(ctx context.Context, id string) (webhook.Webhook, error) {
	query := fmt.Sprintf(`SELECT %s FROM webhooks WHERE id = $1`, webhookColumns)

	wh, err := r.scanWebhook(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webhook.Webhook{}, webhook.ErrNotFound
		}
		return webhook.Webhook{}, fmt.Errorf("getting webhook: %w", err)
	}
	return wh, nil
}

// Exists reports whether the idempotency key has been seen before
func (r *Repository) Exists(ctx context.Context, provider, providerEventID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM webhooks WHERE provider = $1 AND provider_event_id = $2)`,
		provider, providerEventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking webhook existence: %w", err)
	}
	return exists, nil
}

// MarkProcessed records a successful handler run
func (r *Repository) MarkProcessed(ctx context.Context, id string) error {
	return r.exec(ctx, "marking processed",
		`UPDATE webhooks SET status = 'processed', processed_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
}

// MarkUnhandled records a delivery with no registered handler
func (r *Repository) MarkUnhandled(ctx context.Context, id string) error {
	return r.exec(ctx, "marking unhandled",
		`UPDATE webhooks SET status = 'unhandled', updated_at = NOW() WHERE id = $1`, id)
}

// MarkRetrying stores the failure and increments the retry count
func (r *Repository) MarkRetrying(ctx context.Context, id string, procErr webhook.ProcessingError) error {
	return r.exec(ctx, "marking retrying",
		`UPDATE webhooks
		SET status = 'retrying', retry_count = retry_count + 1,
			error_message = $2, error_backtrace = $3, updated_at = NOW()
		WHERE id = $1`,
		id, procErr.Message, procErr.Backtrace)
}

// MarkFailed records a terminal handler failure
func (r *Repository) MarkFailed(ctx context.Context, id string, procErr webhook.ProcessingError) error {
	return r.exec(ctx, "marking failed",
		`UPDATE webhooks
		SET status = 'failed', error_message = $2, error_backtrace = $3, updated_at = NOW()
		WHERE id = $1`,
		id, procErr.Message, procErr.Backtrace)
}

// List returns a filtered page plus the total match count
func (r *Repository) List(ctx context.Context, filter webhook.Filter) ([]webhook.Webhook, int, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM webhooks` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting webhooks: %w", err)
	}

	orderBy := "processed_at DESC NULLS LAST"
	if filter.OrderBy == webhook.RecentlyCreated {
		orderBy = "created_at DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 25
	}

	query := fmt.Sprintf(`SELECT %s FROM webhooks%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		webhookColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []webhook.Webhook
	for rows.Next() {
		wh, err := r.scanWebhook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning webhook row: %w", err)
		}
		webhooks = append(webhooks, wh)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating webhook rows: %w", err)
	}

	return webhooks, total, nil
}

// CountByStatus returns record counts keyed by status name
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM webhooks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting webhooks by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Close releases the connection pool
func (r *Repository) Close() error {
	return r.DB.Close()
}

func (r *Repository) exec(ctx context.Context, action, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if affected == 0 {
		return webhook.ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanWebhook(row scanner) (webhook.Webhook, error) {
	var (
		wh              webhook.Webhook
		providerEventID sql.NullString
		headersJSON     []byte
		ipAddress       sql.NullString
		status          string
		errorMessage    sql.NullString
		errorBacktrace  sql.NullString
		processedAt     sql.NullTime
		payload         []byte
	)

	err := row.Scan(
		&wh.ID, &wh.Provider, &wh.EventType, &providerEventID, &payload, &headersJSON,
		&ipAddress, &status, &wh.RetryCount, &errorMessage, &errorBacktrace,
		&processedAt, &wh.CreatedAt, &wh.UpdatedAt,
	)
	if err != nil {
		return webhook.Webhook{}, err
	}

	wh.ProviderEventID = providerEventID.String
	wh.Payload = json.RawMessage(payload)
	wh.IPAddress = ipAddress.String
	wh.Status = webhook.NewStatus(status)

	if len(headersJSON) > 0 {
		if err := json.Unmarshal(headersJSON, &wh.Headers); err != nil {
			return webhook.Webhook{}, fmt.Errorf("unmarshaling headers: %w", err)
		}
	}
	if errorMessage.Valid {
		wh.LastError = &webhook.ProcessingError{
			Message:   errorMessage.String,
			Backtrace: errorBacktrace.String,
		}
	}
	if processedAt.Valid {
		t := processedAt.Time
		wh.ProcessedAt = &t
	}

	return wh, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func buildWhere(filter webhook.Filter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.Provider != "" {
		add("provider = $%d", filter.Provider)
	}
	if len(filter.Statuses) > 0 {
		names := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			names[i] = s.String()
		}
		add("status = ANY($%d)", pq.Array(names))
	}
	if filter.CreatedFrom != nil {
		add("created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		add("created_at <= $%d", *filter.CreatedTo)
	}
	if filter.ProcessedFrom != nil {
		add("processed_at >= $%d", *filter.ProcessedFrom)
	}
	if filter.ProcessedTo != nil {
		add("processed_at <= $%d", *filter.ProcessedTo)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
