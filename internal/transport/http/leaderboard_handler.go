package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"finquiz-service/internal/app"
	"finquiz-service/internal/domain"
)

// LeaderboardHandler serves ranked reads and the live SSE stream.
type LeaderboardHandler struct {
	service *app.LeaderboardService
}

func NewLeaderboardHandler(service *app.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

type leaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.service.List(r.Context(), limit)
	if err != nil {
		writeError(w, err, "Failed to fetch leaderboard.")
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}

// Stream pushes leaderboard snapshots as server-sent events. The current
// snapshot goes out immediately on connect; every scored submit pushes a new
// frame. The subscription ends with the client connection.
func (h *LeaderboardHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context())
	if err != nil {
		writeError(w, err, "Failed to open leaderboard stream.")
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case lb, open := <-updates:
			if !open {
				return
			}
			raw, err := json.Marshal(leaderboardResponse{Entries: lb.Entries})
			if err != nil {
				slog.Error("marshal leaderboard frame", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", raw); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
