package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/hookline/hookline/webhook"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers sets up the full HTTP surface: ingress, admin reads, health,
// and Prometheus metrics
func Handlers(ingestService webhook.UseCase, reader webhook.Reader) *chi.Mux {
	logger := httplog.NewLogger("hookline", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Read-only admin surface
	r.Route("/admin", func(r chi.Router) {
		r.Get("/webhooks", listWebhooks(reader).ServeHTTP)
		r.Get("/webhooks/{id}", getWebhook(reader).ServeHTTP)
	})

	// Provider ingress; registered last so fixed routes take precedence
	r.Post("/{provider}", postWebhook(ingestService).ServeHTTP)

	return r
}
