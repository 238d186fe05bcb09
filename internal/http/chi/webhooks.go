package chi

import (
	"encoding/json"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hookline/hookline/webhook"
)

/* HTTP layer DTOs for the ingress API
 * Separate from domain entities to avoid leaking internal structure
 */

// acceptedResponse is returned for every accepted delivery, duplicates included
type acceptedResponse struct {
	WebhookID string `json:"webhook_id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// errorResponse carries the user-visible reason for a rejection
type errorResponse struct {
	Error string `json:"error"`
}

// postWebhook handles POST /{provider}
func postWebhook(ingestService webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerName := chi.URLParam(r, "provider")

		// Read the body once; signature verification needs the wire bytes
		rawBody, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		result, err := ingestService.Ingest(r.Context(), providerName, rawBody, r.Header, remoteIP(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		switch result.Outcome {
		case webhook.Accepted:
			writeJSON(w, http.StatusOK, acceptedResponse{
				WebhookID: result.WebhookID,
				Duplicate: result.Duplicate,
			})
		case webhook.Unauthorized:
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: result.Reason})
		case webhook.NotFound:
			w.WriteHeader(http.StatusNotFound)
		case webhook.Invalid:
			w.WriteHeader(http.StatusUnprocessableEntity)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
