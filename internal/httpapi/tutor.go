package httpapi

import (
	"errors"
	"net/http"

	"github.com/lberndt/sprachcoach/internal/store"
	"github.com/lberndt/sprachcoach/internal/tutor"
	"github.com/lberndt/sprachcoach/internal/verify"
)

type sessionRequest struct {
	TaskType string `json:"task_type"`
}

type sessionResponse struct {
	SessionID  string   `json:"session_id"`
	TaskType   string   `json:"task_type"`
	Level      string   `json:"level"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

// StartSession resumes the caller's active session or creates a new one.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TaskType == "" {
		req.TaskType = store.TaskTypeFreeChat
	}

	start, err := h.engine.ResumeOrCreate(r.Context(), uid, req.TaskType)
	if err != nil {
		h.log.Error("session start failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not start session")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:  start.Session.ID,
		TaskType:   start.Session.TaskType,
		Level:      start.Profile.Level,
		Weaknesses: start.Profile.Weaknesses,
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID   string `json:"session_id"`
	Reply       string `json:"reply"`
	Translation string `json:"translation"`
	HasError    bool   `json:"has_error"`
	Explanation string `json:"explanation,omitempty"`
}

// Chat submits one learner turn to the tutor engine. An empty session_id
// resumes the caller's active session or starts a new one.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.engine.SubmitTurn(r.Context(), uid, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, tutor.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message must not be empty")
			return
		}
		h.log.Error("turn failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not process message")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:   res.SessionID,
		Reply:       res.Reply,
		Translation: res.Translation,
		HasError:    res.HasError,
		Explanation: res.Explanation,
	})
}

type correctRequest struct {
	Text    string `json:"text"`
	Meaning string `json:"meaning"`
}

type correctResponse struct {
	HasError    bool   `json:"has_error"`
	Reply       string `json:"reply"`
	Translation string `json:"translation"`
	Explanation string `json:"explanation,omitempty"`
}

// Correct runs the standalone two-step grammar check on a single utterance,
// outside any tutor session.
func (h *Handler) Correct(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}

	var req correctRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	verdict, err := h.checker.CheckUtterance(r.Context(), req.Text, req.Meaning)
	if err != nil {
		if errors.Is(err, verify.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, "text must not be empty")
			return
		}
		h.log.Error("correction check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not check text")
		return
	}

	writeJSON(w, http.StatusOK, correctResponse{
		HasError:    verdict.HasError,
		Reply:       verdict.Reply,
		Translation: verdict.Translation,
		Explanation: verdict.Explanation,
	})
}
