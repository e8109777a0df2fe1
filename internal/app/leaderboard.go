package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finquiz-service/internal/domain"
)

// DefaultLeaderboardLimit is used when a caller passes no (or an invalid) limit.
const DefaultLeaderboardLimit = 20

// LeaderboardService ranks finalized submissions and fans live snapshots out
// to subscribers. It never writes submissions or players.
type LeaderboardService struct {
	submissions SubmissionRepository
	players     PlayerRepository
	now         func() time.Time

	// mu serializes Subscribe against Publish: a subscriber registers in the
	// same critical section that read its initial snapshot, so no publish can
	// land between the read and the registration.
	mu  sync.Mutex
	hub *hub
}

func NewLeaderboardService(submissions SubmissionRepository, players PlayerRepository) *LeaderboardService {
	return &LeaderboardService{
		submissions: submissions,
		players:     players,
		now:         time.Now,
		hub:         newHub(),
	}
}

// WithClock overrides the time source for deterministic tests.
func (s *LeaderboardService) WithClock(now func() time.Time) *LeaderboardService {
	s.now = now
	return s
}

// List returns at most limit entries ordered by score descending, elapsed
// time ascending, submission time ascending, each joined to its player name.
func (s *LeaderboardService) List(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	subs, err := s.submissions.ListTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	playerIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		playerIDs = append(playerIDs, sub.PlayerID)
	}
	players, err := s.players.FindByIDs(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(subs))
	for _, sub := range subs {
		entries = append(entries, domain.LeaderboardEntry{
			SessionID:      sub.SessionID,
			PlayerName:     players[sub.PlayerID].Name,
			Score:          sub.Score,
			TotalQuestions: sub.TotalQuestions,
			TimeTakenMs:    sub.TimeTakenMs,
			SubmittedAt:    sub.SubmittedAt,
		})
	}
	return entries, nil
}

// Subscribe registers a live subscriber. The current snapshot is delivered as
// the first event, and any publish that overlaps the registration reaches the
// subscriber as a later event. The caller must invoke the returned cancel
// function to avoid leaks; cancellation never disturbs other subscribers.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	initial, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.add()
	// ch is fresh and buffered, so this send cannot block.
	ch <- initial
	return ch, cancel, nil
}

// Publish recomputes the top entries and pushes the snapshot to every active
// subscriber. Called after each successful submit.
func (s *LeaderboardService) Publish(ctx context.Context) (domain.Leaderboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, err := s.snapshot(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	s.hub.broadcast(lb)
	return lb, nil
}

func (s *LeaderboardService) snapshot(ctx context.Context) (domain.Leaderboard, error) {
	entries, err := s.List(ctx, DefaultLeaderboardLimit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}
