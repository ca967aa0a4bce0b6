package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"BukuBot/internal/session"
)

// handleWS serves the live chat transport. Each incoming frame is one user
// message and each reply frame is the blocking assistant response, so a
// frame round trip has the same semantics as POST /api/chat. The websocket
// connection owns its session; session lifetime equals connection lifetime.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess := session.New(uuid.NewString())
	s.logger.Info("websocket session started", "session_id", sess.ID)

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "session_id", sess.ID, "error", err)
			}
			return
		}

		if strings.TrimSpace(req.Message) == "" {
			if err := conn.WriteJSON(chatResponse{Error: "message must not be empty", Orders: sess.Orders}); err != nil {
				return
			}
			continue
		}

		reply, err := s.bot.Turn(r.Context(), sess, req.Message)
		if err != nil {
			if werr := conn.WriteJSON(chatResponse{Error: err.Error(), Orders: sess.Orders}); werr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(chatResponse{Reply: reply, Orders: sess.Orders}); err != nil {
			return
		}
	}
}
