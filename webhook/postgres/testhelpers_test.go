//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hookline/hookline/webhook"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabase = "hookline_test"
	testUser     = "hookline"
	testPassword = "hookline"
)

// PostgresContainer bundles the container with a direct DB handle for assertions
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
	ConnStr   string
}

// SetupPostgresContainer starts a disposable Postgres for one test
func SetupPostgresContainer(t *testing.T, ctx context.Context) (*PostgresContainer, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDatabase),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))

	cleanup := func() {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return &PostgresContainer{Container: pgContainer, DB: db, ConnStr: connStr}, cleanup
}

// CreateTestRepository opens a repository against the container, running migrations
func CreateTestRepository(t *testing.T, ctx context.Context, connStr string) *Repository {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := NewRepository(ctx, logger, connStr)
	require.NoError(t, err)

	return repo
}

// NewTestWebhook builds a valid pending record with a fresh id
func NewTestWebhook(provider, eventType string) webhook.Webhook {
	now := time.Now().UTC()
	return webhook.Webhook{
		ID:        uuid.New().String(),
		Provider:  provider,
		EventType: eventType,
		Payload:   []byte(`{"type":"` + eventType + `"}`),
		Headers:   map[string]string{"Content-Type": "application/json"},
		IPAddress: "203.0.113.9",
		Status:    webhook.Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AssertStatus reads the stored status straight from the table
func AssertStatus(t *testing.T, ctx context.Context, db *sql.DB, id, expected string) {
	t.Helper()

	var status string
	err := db.QueryRowContext(ctx, "SELECT status FROM webhooks WHERE id = $1", id).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expected, status)
}
