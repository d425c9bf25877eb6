package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleSessionSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := s.projector.WatchSession(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected session_id=%d remote=%s", id, r.RemoteAddr)
	go readUntilClose(conn, cancel)
	writeUpdates(conn, updates)
	log.Printf("ws closed session_id=%d remote=%s", id, r.RemoteAddr)
}

func (s *Server) handleStatsSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := s.projector.WatchStats(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected stats game_id=%d remote=%s", id, r.RemoteAddr)
	go readUntilClose(conn, cancel)
	writeUpdates(conn, updates)
	log.Printf("ws closed stats game_id=%d remote=%s", id, r.RemoteAddr)
}

// readUntilClose drains inbound frames so the peer's close handshake is
// noticed, then cancels the watch.
func readUntilClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeUpdates pushes every projected value to the connection until the
// watch channel closes. The channel closes when the watched entity is
// deleted or the context is cancelled.
func writeUpdates[T any](conn *websocket.Conn, updates <-chan T) {
	defer conn.Close()
	for value := range updates {
		data, err := json.Marshal(value)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
