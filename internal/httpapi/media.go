package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/lberndt/sprachcoach/pkg/provider/stt"
)

// Transcribe converts uploaded audio to text. The audio arrives either as a
// multipart form file named "audio" (with an optional "language" field) or as
// the raw request body (with an optional "language" query parameter).
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}
	if h.transcribe == nil {
		writeError(w, http.StatusServiceUnavailable, "transcription not configured")
		return
	}

	audio, lang, ok := readAudio(w, r)
	if !ok {
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "no audio data")
		return
	}

	text, err := h.transcribe.Transcribe(r.Context(), audio, lang)
	if err != nil {
		if errors.Is(err, stt.ErrNoSpeech) {
			writeError(w, http.StatusBadRequest, "could not understand audio")
			return
		}
		h.log.Error("transcription failed", "error", err)
		writeError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// readAudio extracts the audio payload and language tag from the request. On
// failure it writes a 400 response and returns ok=false.
func readAudio(w http.ResponseWriter, r *http.Request) (audio []byte, lang string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("audio")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing audio file")
			return nil, "", false
		}
		defer file.Close()

		audio, err = io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read audio file")
			return nil, "", false
		}
		return audio, r.FormValue("language"), true
	}

	audio, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return nil, "", false
	}
	return audio, r.URL.Query().Get("language"), true
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Synthesize renders text as speech and streams the encoded audio back.
func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}
	if h.synthesize == nil {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis not configured")
		return
	}

	var req synthesizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	if req.Language == "" {
		req.Language = "de"
	}

	audio, mimeType, err := h.synthesize.Synthesize(r.Context(), req.Text, req.Language)
	if err != nil {
		h.log.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		h.log.Debug("audio write failed", "error", err)
	}
}
