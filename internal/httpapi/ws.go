package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lberndt/sprachcoach/internal/tutor"
)

// wsError is an error frame sent to the client without closing the channel.
type wsError struct {
	Error string `json:"error"`
}

// ChatSocket upgrades the connection to a WebSocket practice channel. The
// client sends chat requests as JSON frames and receives one verdict frame
// per turn. Validation errors are reported as error frames; the channel
// stays open until the client disconnects or the turn pipeline fails.
func (h *Handler) ChatSocket(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn("websocket accept failed", "error", err, "user_id", uid)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	conn.SetReadLimit(maxBodyBytes)

	ctx := r.Context()
	for {
		var req chatRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			h.log.Debug("websocket read failed", "error", err, "user_id", uid)
			return
		}

		res, err := h.engine.SubmitTurn(ctx, uid, req.SessionID, req.Message)
		if err != nil {
			if errors.Is(err, tutor.ErrEmptyMessage) {
				if err := wsjson.Write(ctx, conn, wsError{Error: "message must not be empty"}); err != nil {
					return
				}
				continue
			}
			h.log.Error("websocket turn failed", "error", err, "user_id", uid)
			conn.Close(websocket.StatusInternalError, "turn failed")
			return
		}

		if err := writeTurn(ctx, conn, res); err != nil {
			h.log.Debug("websocket write failed", "error", err, "user_id", uid)
			return
		}
	}
}

func writeTurn(ctx context.Context, conn *websocket.Conn, res *tutor.TurnResult) error {
	return wsjson.Write(ctx, conn, chatResponse{
		SessionID:   res.SessionID,
		Reply:       res.Reply,
		Translation: res.Translation,
		HasError:    res.HasError,
		Explanation: res.Explanation,
	})
}
