package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lberndt/sprachcoach/internal/health"
	"github.com/lberndt/sprachcoach/internal/observe"
)

// NewRouter assembles the service router: probe endpoints, the Prometheus
// scrape endpoint, and the /api surface wrapped in the observability
// middleware.
func NewRouter(h *Handler, m *observe.Metrics, probes *health.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if probes != nil {
		probes.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if m != nil {
			r.Use(observe.Middleware(m))
		}

		r.Post("/tutor/session", h.StartSession)
		r.Post("/tutor/chat", h.Chat)
		r.Get("/tutor/ws", h.ChatSocket)
		r.Post("/tutor-correct", h.Correct)

		r.Post("/transcribe", h.Transcribe)
		r.Post("/translate", h.Translate)
		r.Post("/text-to-speech", h.Synthesize)

		r.Get("/history", h.History)
		r.Post("/history/clear", h.ClearHistory)
	})

	return r
}
