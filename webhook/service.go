package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hookline/hookline/provider"
	"github.com/hookline/hookline/queue"
	"github.com/hookline/hookline/webhook/apikey"
	"github.com/hookline/hookline/webhook/signature"
)

/* Service represents the ingestion pipeline:
 * auth -> parse -> dedup -> persist -> enqueue
 * Uses pointer semantics as it's an API, not data
 */

// Outcome classifies the result of an ingestion attempt
type Outcome int

const (
	Accepted Outcome = iota + 1
	Unauthorized
	NotFound
	Invalid
)

// Result describes what happened to a delivery
type Result struct {
	Outcome   Outcome
	WebhookID string
	// Duplicate is set when the delivery was already seen and no new record
	// was created
	Duplicate bool
	// Reason carries the user-visible message for Unauthorized results
	Reason string
}

// storedHeaders is the allow-list of request headers snapshotted onto records
var storedHeaders = []string{"Content-Type", "User-Agent", "X-Request-Id"}

// UseCase defines the business operations for webhook ingestion
type UseCase interface {
	Ingest(ctx context.Context, providerName string, rawBody []byte, headers http.Header, remoteIP string) (Result, error)
}

type Service struct {
	Providers *provider.Registry
	Repo      Repository
	Queue     queue.Enqueuer
	Logger    *slog.Logger
}

// NewService creates a new ingestion service with dependency injection
func NewService(providers *provider.Registry, repo Repository, q queue.Enqueuer, logger *slog.Logger) *Service {
	return &Service{
		Providers: providers,
		Repo:      repo,
		Queue:     q,
		Logger:    logger.With("component", "ingest"),
	}
}

/* Ingest authenticates, records, and enqueues one delivery.
 * rawBody must be the bytes read from the wire: signatures are computed over
 * them verbatim.
 */
func (s *Service) Ingest(ctx context.Context, providerName string, rawBody []byte, headers http.Header, remoteIP string) (Result, error) {
	prov, ok := s.Providers.Get(providerName)
	if !ok {
		return Result{Outcome: NotFound}, nil
	}

	if err := s.authenticate(prov, rawBody, headers); err != nil {
		s.Logger.WarnContext(ctx, "rejected delivery",
			"provider", providerName, "reason", err.Error(), "ip", remoteIP)
		return Result{Outcome: Unauthorized, Reason: err.Error()}, nil
	}

	// A malformed body is not fatal: record the delivery with an empty payload
	payload := parsePayload(rawBody)

	wh := Webhook{
		ID:              uuid.New().String(),
		Provider:        providerName,
		EventType:       extractEventType(payload, prov.EventTypePath()),
		ProviderEventID: extractProviderEventID(payload),
		Payload:         payload,
		Headers:         snapshotHeaders(headers, prov.SignatureHeader),
		IPAddress:       remoteIP,
		Status:          Pending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if wh.ProviderEventID != "" {
		seen, err := s.Repo.Exists(ctx, wh.Provider, wh.ProviderEventID)
		if err != nil {
			return Result{}, fmt.Errorf("checking for duplicate delivery: %w", err)
		}
		if seen {
			return Result{Outcome: Accepted, Duplicate: true}, nil
		}
	}

	if err := wh.Validate(); err != nil {
		return Result{Outcome: Invalid}, nil
	}

	id, err := s.Repo.Create(ctx, wh)
	if err != nil {
		/* A concurrent duplicate POST can slip past the Exists check and trip
		 * the uniqueness constraint instead. Same delivery, same answer. */
		if errors.Is(err, ErrDuplicateEvent) {
			return Result{Outcome: Accepted, Duplicate: true}, nil
		}
		return Result{}, fmt.Errorf("storing webhook: %w", err)
	}

	if err := s.Queue.Enqueue(ctx, id); err != nil {
		return Result{}, fmt.Errorf("enqueuing webhook %s: %w", id, err)
	}

	s.Logger.InfoContext(ctx, "accepted delivery",
		"provider", providerName, "event_type", wh.EventType, "webhook_id", id)

	return Result{Outcome: Accepted, WebhookID: id}, nil
}

// authenticate runs the signature check then the API key check; both are
// no-ops when unconfigured for the provider
func (s *Service) authenticate(prov provider.Provider, rawBody []byte, headers http.Header) error {
	if err := signature.NewVerifier(prov).Verify(rawBody, headers); err != nil {
		return err
	}
	return apikey.NewValidator(prov).Validate(headers)
}

func parsePayload(rawBody []byte) json.RawMessage {
	if !json.Valid(rawBody) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(rawBody)
}

// extractEventType digs the configured path into the payload, defaulting to
// "unknown" when the path is missing or not a string
func extractEventType(payload json.RawMessage, path []string) string {
	var parsed map[string]any
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "unknown"
	}

	var current any = parsed
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return "unknown"
		}
		current, ok = obj[key]
		if !ok {
			return "unknown"
		}
	}

	eventType, ok := current.(string)
	if !ok || eventType == "" {
		return "unknown"
	}
	return eventType
}

// extractProviderEventID reads the top-level "id" field, if it is a string
func extractProviderEventID(payload json.RawMessage) string {
	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return ""
	}
	return parsed.ID
}

// snapshotHeaders keeps the allow-listed headers plus the provider's
// signature header, dropping everything else
func snapshotHeaders(headers http.Header, signatureHeader string) map[string]string {
	keep := storedHeaders
	if signatureHeader != "" {
		keep = append(append([]string{}, storedHeaders...), signatureHeader)
	}

	snapshot := make(map[string]string, len(keep))
	for _, name := range keep {
		if value := headers.Get(name); value != "" {
			snapshot[name] = value
		}
	}
	return snapshot
}
