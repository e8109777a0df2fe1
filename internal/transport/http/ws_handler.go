package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"finquiz-service/internal/app"
	"finquiz-service/internal/domain"
)

// WSHandler serves the leaderboard over a websocket for clients that prefer
// it to SSE. The feed is one-way: inbound messages are discarded and only a
// close ends the subscription.
type WSHandler struct {
	service  *app.LeaderboardService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.LeaderboardService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type wsFrame struct {
	Type    string                    `json:"type"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// ServeWS upgrades the connection and pumps leaderboard snapshots until the
// client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	updates, cancel, err := h.service.Subscribe(r.Context())
	if err != nil {
		writeError(w, err, "Failed to open leaderboard stream.")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		slog.Error("ws upgrade failed", "error", err)
		return
	}

	done := make(chan struct{})

	// Reader only drains control frames and detects disconnect; all writes
	// happen on this goroutine's sibling below so the connection never sees
	// concurrent writers.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		cancel()
		conn.Close()
	}()

	for {
		select {
		case lb, open := <-updates:
			if !open {
				return
			}
			if err := conn.WriteJSON(wsFrame{Type: "leaderboard", Entries: lb.Entries}); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
