// Package memory provides in-process repository implementations. They back
// the server when no postgres URL is configured and every unit test that
// doesn't need a real store.
package memory

import (
	"context"
	"sort"
	"sync"

	"finquiz-service/internal/domain"
)

// QuestionRepo is an in-memory question bank preserving insertion order.
type QuestionRepo struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Question
}

func NewQuestionRepo() *QuestionRepo {
	return &QuestionRepo{byID: make(map[string]domain.Question)}
}

func (r *QuestionRepo) FindEligible(_ context.Context) ([]domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Question, 0, len(r.order))
	for _, id := range r.order {
		if q := r.byID[id]; q.AdminCreated {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *QuestionRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := r.byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *QuestionRepo) Create(_ context.Context, q domain.Question) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[q.ID]; !ok {
		r.order = append(r.order, q.ID)
	}
	r.byID[q.ID] = q
	return q, nil
}

func (r *QuestionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return nil
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// PlayerRepo stores one player record per attempt.
type PlayerRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Player
}

func NewPlayerRepo() *PlayerRepo {
	return &PlayerRepo{byID: make(map[string]domain.Player)}
}

func (r *PlayerRepo) Create(_ context.Context, p domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

func (r *PlayerRepo) FindByIDs(_ context.Context, ids []string) (map[string]domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.Player, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// SessionRepo stores quiz sessions. Complete is a check-and-set under the
// repo lock, so concurrent submits for one session serialize here.
type SessionRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.QuizSession
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{byID: make(map[string]domain.QuizSession)}
}

func (r *SessionRepo) Create(_ context.Context, s domain.QuizSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.SessionID] = s
	return nil
}

func (r *SessionRepo) Find(_ context.Context, sessionID string) (domain.QuizSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[sessionID]
	if !ok {
		return domain.QuizSession{}, domain.ErrNotFound
	}
	return s, nil
}

func (r *SessionRepo) Complete(_ context.Context, sessionID string, c domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.Completion != nil {
		return domain.ErrAlreadySubmitted
	}
	s.Completion = &c
	r.byID[sessionID] = s
	return nil
}

// SubmissionRepo stores append-only submissions, unique per session.
type SubmissionRepo struct {
	mu          sync.RWMutex
	bySessionID map[string]domain.Submission
}

func NewSubmissionRepo() *SubmissionRepo {
	return &SubmissionRepo{bySessionID: make(map[string]domain.Submission)}
}

func (r *SubmissionRepo) Create(_ context.Context, sub domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySessionID[sub.SessionID]; ok {
		return domain.ErrAlreadySubmitted
	}
	r.bySessionID[sub.SessionID] = sub
	return nil
}

func (r *SubmissionRepo) ListTop(_ context.Context, limit int) ([]domain.Submission, error) {
	r.mu.RLock()
	subs := make([]domain.Submission, 0, len(r.bySessionID))
	for _, sub := range r.bySessionID {
		subs = append(subs, sub)
	}
	r.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Score != subs[j].Score {
			return subs[i].Score > subs[j].Score
		}
		if subs[i].TimeTakenMs != subs[j].TimeTakenMs {
			return subs[i].TimeTakenMs < subs[j].TimeTakenMs
		}
		return subs[i].SubmittedAt.Before(subs[j].SubmittedAt)
	})
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

// Count reports how many submissions exist; used by tests asserting the
// at-most-once scoring guarantee.
func (r *SubmissionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySessionID)
}

// SettingsRepo holds the quiz configuration singleton, lazily created with
// the provided defaults.
type SettingsRepo struct {
	mu       sync.Mutex
	defaults domain.QuizSettings
	current  *domain.QuizSettings
}

func NewSettingsRepo(defaults domain.QuizSettings) *SettingsRepo {
	return &SettingsRepo{defaults: defaults}
}

func (r *SettingsRepo) GetOrCreateDefault(_ context.Context) (domain.QuizSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		s := r.defaults
		r.current = &s
	}
	return *r.current, nil
}

func (r *SettingsRepo) Update(_ context.Context, patch domain.SettingsPatch) (domain.QuizSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		s := r.defaults
		r.current = &s
	}
	if patch.QuestionCount != nil {
		r.current.QuestionCount = *patch.QuestionCount
	}
	if patch.DurationMs != nil {
		r.current.DurationMs = *patch.DurationMs
	}
	return *r.current, nil
}
