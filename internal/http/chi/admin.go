package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hookline/hookline/webhook"
)

/* Read-only admin surface over webhook records.
 * Exposes filters and pagination, no write operations.
 */

const pageSize = 25

// datePresets are the supported relative windows for date filters
var datePresets = map[string]time.Duration{
	"2h":  2 * time.Hour,
	"12h": 12 * time.Hour,
	"24h": 24 * time.Hour,
	"3d":  3 * 24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// webhookResponse represents a webhook record in the admin API
type webhookResponse struct {
	ID              string            `json:"id"`
	Provider        string            `json:"provider"`
	EventType       string            `json:"event_type"`
	ProviderEventID string            `json:"provider_event_id,omitempty"`
	Payload         json.RawMessage   `json:"payload"`
	Headers         map[string]string `json:"headers,omitempty"`
	IPAddress       string            `json:"ip_address,omitempty"`
	Status          string            `json:"status"`
	RetryCount      int               `json:"retry_count"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	ErrorBacktrace  string            `json:"error_backtrace,omitempty"`
	ProcessedAt     *time.Time        `json:"processed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// listResponse pages webhook records
type listResponse struct {
	Webhooks []webhookResponse `json:"webhooks"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
}

// listWebhooks handles GET /admin/webhooks
func listWebhooks(reader webhook.Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter, page, err := parseFilter(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		webhooks, total, err := reader.List(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := listResponse{
			Webhooks: make([]webhookResponse, 0, len(webhooks)),
			Total:    total,
			Page:     page,
			PerPage:  pageSize,
		}
		for _, wh := range webhooks {
			resp.Webhooks = append(resp.Webhooks, toWebhookResponse(wh))
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// getWebhook handles GET /admin/webhooks/{id}
func getWebhook(reader webhook.Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		wh, err := reader.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, webhook.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toWebhookResponse(wh))
	})
}

func parseFilter(r *http.Request) (webhook.Filter, int, error) {
	q := r.URL.Query()

	filter := webhook.Filter{
		Provider: q.Get("provider"),
		Limit:    pageSize,
	}

	for _, name := range q["statuses"] {
		status := webhook.NewStatus(name)
		if status.String() != name {
			return webhook.Filter{}, 0, errors.New("unknown status: " + name)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	var err error
	filter.CreatedFrom, filter.CreatedTo, err = parseDateFilter(q, "created_at")
	if err != nil {
		return webhook.Filter{}, 0, err
	}
	filter.ProcessedFrom, filter.ProcessedTo, err = parseDateFilter(q, "processed_at")
	if err != nil {
		return webhook.Filter{}, 0, err
	}

	if q.Get("order") == "recently_created" {
		filter.OrderBy = webhook.RecentlyCreated
	}

	page := 1
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return webhook.Filter{}, 0, errors.New("page must be a positive integer")
		}
	}
	filter.Offset = (page - 1) * pageSize

	return filter, page, nil
}

/* parseDateFilter supports both relative presets (field_preset=2h) and
 * explicit bounds (field_from / field_to, RFC 3339). A preset wins when both
 * are supplied.
 */
func parseDateFilter(q map[string][]string, field string) (*time.Time, *time.Time, error) {
	get := func(key string) string {
		if values := q[key]; len(values) > 0 {
			return values[0]
		}
		return ""
	}

	if preset := get(field + "_preset"); preset != "" {
		window, ok := datePresets[preset]
		if !ok {
			return nil, nil, errors.New("unknown date preset: " + preset)
		}
		from := time.Now().Add(-window)
		return &from, nil, nil
	}

	var from, to *time.Time
	if raw := get(field + "_from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, errors.New(field + "_from must be RFC 3339")
		}
		from = &parsed
	}
	if raw := get(field + "_to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, errors.New(field + "_to must be RFC 3339")
		}
		to = &parsed
	}
	return from, to, nil
}

func toWebhookResponse(wh webhook.Webhook) webhookResponse {
	resp := webhookResponse{
		ID:              wh.ID,
		Provider:        wh.Provider,
		EventType:       wh.EventType,
		ProviderEventID: wh.ProviderEventID,
		Payload:         wh.Payload,
		Headers:         wh.Headers,
		IPAddress:       wh.IPAddress,
		Status:          wh.Status.String(),
		RetryCount:      wh.RetryCount,
		ProcessedAt:     wh.ProcessedAt,
		CreatedAt:       wh.CreatedAt,
		UpdatedAt:       wh.UpdatedAt,
	}
	if wh.LastError != nil {
		resp.ErrorMessage = wh.LastError.Message
		resp.ErrorBacktrace = wh.LastError.Backtrace
	}
	return resp
}
