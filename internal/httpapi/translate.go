package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/lberndt/sprachcoach/internal/store"
)

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
}

// Translate converts text between languages and records the result in the
// caller's translation history. A history write failure does not fail the
// translation.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if h.translator == nil {
		writeError(w, http.StatusServiceUnavailable, "translation not configured")
		return
	}

	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	if req.SourceLang == "" {
		req.SourceLang = "en"
	}
	if req.TargetLang == "" {
		req.TargetLang = "de"
	}

	translated, err := h.translator.Translate(r.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		h.log.Error("translation failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "translation failed")
		return
	}

	if h.history != nil {
		entry := &store.HistoryEntry{
			UserID:         uid,
			SourceLang:     req.SourceLang,
			TargetLang:     req.TargetLang,
			OriginalText:   req.Text,
			TranslatedText: translated,
		}
		if err := h.history.AddEntry(r.Context(), entry); err != nil {
			h.log.Warn("history write failed", "error", err, "user_id", uid)
		}
	}

	writeJSON(w, http.StatusOK, translateResponse{
		TranslatedText: translated,
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
	})
}

type historyEntry struct {
	ID             string    `json:"id"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	OriginalText   string    `json:"original_text"`
	TranslatedText string    `json:"translated_text"`
	CreatedAt      time.Time `json:"created_at"`
}

// History returns the caller's translation history, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	entries, err := h.history.ListEntries(r.Context(), uid)
	if err != nil {
		h.log.Error("history list failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			ID:             e.ID,
			SourceLang:     e.SourceLang,
			TargetLang:     e.TargetLang,
			OriginalText:   e.OriginalText,
			TranslatedText: e.TranslatedText,
			CreatedAt:      e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

// ClearHistory deletes the caller's entire translation history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.history.ClearEntries(r.Context(), uid); err != nil {
		h.log.Error("history clear failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not clear history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
