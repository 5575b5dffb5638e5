// Package httpapi exposes the tutoring service over HTTP.
//
// Callers identify themselves with the opaque X-User-ID header; there is no
// authentication layer. All request and response bodies are JSON except the
// audio endpoints, which exchange raw encoded bytes. Errors are returned as
// {"error": "..."} objects with an appropriate status code.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lberndt/sprachcoach/internal/store"
	"github.com/lberndt/sprachcoach/internal/tutor"
	"github.com/lberndt/sprachcoach/internal/verify"
	"github.com/lberndt/sprachcoach/pkg/provider/stt"
	"github.com/lberndt/sprachcoach/pkg/provider/translate"
	"github.com/lberndt/sprachcoach/pkg/provider/tts"
)

// userIDHeader carries the opaque caller identity.
const userIDHeader = "X-User-ID"

// maxBodyBytes bounds JSON request bodies. Audio uploads use
// maxAudioBytes instead.
const (
	maxBodyBytes  = 64 << 10
	maxAudioBytes = 10 << 20
)

// Handler bundles the service dependencies behind the HTTP surface.
// The speech and translation providers are optional; endpoints backed by a
// nil provider return 503.
type Handler struct {
	engine     *tutor.Engine
	checker    *verify.Checker
	transcribe stt.Provider
	synthesize tts.Provider
	translator translate.Provider
	history    store.HistoryStore
	log        *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithSTT enables the transcription endpoint.
func WithSTT(p stt.Provider) Option {
	return func(h *Handler) { h.transcribe = p }
}

// WithTTS enables the speech synthesis endpoint.
func WithTTS(p tts.Provider) Option {
	return func(h *Handler) { h.synthesize = p }
}

// WithTranslate enables the translation endpoint.
func WithTranslate(p translate.Provider) Option {
	return func(h *Handler) { h.translator = p }
}

// WithLogger sets the handler logger. A nil logger discards output.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// NewHandler creates a Handler. engine and checker are required; history
// backs the translation history endpoints.
func NewHandler(engine *tutor.Engine, checker *verify.Checker, history store.HistoryStore, opts ...Option) *Handler {
	h := &Handler{
		engine:  engine,
		checker: checker,
		history: history,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = slog.New(slog.DiscardHandler)
	}
	return h
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError writes a JSON error object with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// userID extracts the caller identity from the X-User-ID header. When the
// header is missing it writes a 401 response and returns false.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return "", false
	}
	return id, true
}

// decodeJSON decodes the request body into v, rejecting unknown fields and
// oversized bodies. On failure it writes a 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
