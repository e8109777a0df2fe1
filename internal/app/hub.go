package app

import (
	"sync"

	"finquiz-service/internal/domain"
)

// hub is the in-process publish/subscribe registry for leaderboard fan-out.
// Delivery favors freshness over completeness: a subscriber whose buffer is
// full has its oldest snapshot dropped so the latest state always lands.
type hub struct {
	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func newHub() *hub {
	return &hub{subscribers: make(map[chan domain.Leaderboard]struct{})}
}

func (h *hub) add() (chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// broadcast requires the owning service to serialize all channel sends, so
// the refill below always finds the slot freed by the drain.
func (h *hub) broadcast(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: evict the stale snapshot so the fresh one fits.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
