package api

import (
	"encoding/json"
	"fmt"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/matheodrd/httphelper/handler"
	"net/http"
	"presence-relay/internal/presence"
)

type rosterResponse struct {
	Count    int                    `json:"count"`
	Sessions []presence.RosterEntry `json:"sessions"`
}

func (s *Server) wsHandler() http.HandlerFunc {
	return handler.Handler(func(w http.ResponseWriter, r *http.Request) error {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: s.Config.AllowedOrigins,
		})
		if err != nil {
			return handler.NewErrWithStatus(http.StatusInternalServerError, fmt.Errorf("websocket accept: %w", err))
		}

		s.WebsocketManager.HandleNewConnection(uuid.NewString(), conn)
		return nil
	})
}

func (s *Server) rosterHandler() http.HandlerFunc {
	return handler.Handler(func(w http.ResponseWriter, r *http.Request) error {
		roster := s.Roster.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rosterResponse{Count: len(roster), Sessions: roster}); err != nil {
			return handler.NewErrWithStatus(http.StatusInternalServerError, fmt.Errorf("encoding roster: %w", err))
		}
		return nil
	})
}
