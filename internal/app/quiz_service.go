package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"finquiz-service/internal/domain"
	"finquiz-service/internal/shuffle"
)

// QuizService owns the quiz-session lifecycle: start, fetch, submit. Timing
// is server-authoritative and a session is scored at most once.
type QuizService struct {
	questions   QuestionReader
	players     PlayerRepository
	sessions    SessionRepository
	submissions SubmissionRepository
	settings    SettingsRepository
	leaderboard *LeaderboardService
	now         func() time.Time
}

func NewQuizService(
	questions QuestionReader,
	players PlayerRepository,
	sessions SessionRepository,
	submissions SubmissionRepository,
	settings SettingsRepository,
	leaderboard *LeaderboardService,
) *QuizService {
	return &QuizService{
		questions:   questions,
		players:     players,
		sessions:    sessions,
		submissions: submissions,
		settings:    settings,
		leaderboard: leaderboard,
		now:         time.Now,
	}
}

// WithClock overrides the time source for deterministic tests.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// StartInput carries the player details for a new attempt.
type StartInput struct {
	Name         string
	Email        string
	Organization string
}

// StartResult is the payload returned to a freshly started session.
type StartResult struct {
	SessionID  string
	Player     domain.Player
	Questions  []domain.SanitizedQuestion
	StartedAt  time.Time
	ExpiresAt  time.Time
	DurationMs int64
	ServerTime time.Time
}

// Start creates a player and a new timed session over a freshly shuffled
// question subset. The returned questions withhold the answer key.
func (s *QuizService) Start(ctx context.Context, in StartInput) (StartResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return StartResult{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	settings, err := s.settings.GetOrCreateDefault(ctx)
	if err != nil {
		return StartResult{}, fmt.Errorf("load settings: %w", err)
	}

	eligible, err := s.questions.FindEligible(ctx)
	if err != nil {
		return StartResult{}, fmt.Errorf("load question bank: %w", err)
	}
	if len(eligible) < settings.QuestionCount {
		return StartResult{}, domain.ErrInsufficientQuestions
	}

	shuffled, err := shuffle.Secure(eligible)
	if err != nil {
		return StartResult{}, err
	}
	selected := shuffled[:settings.QuestionCount]

	startedAt := s.now()
	player := domain.Player{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.TrimSpace(in.Email),
		Organization: strings.TrimSpace(in.Organization),
		CreatedAt:    startedAt,
	}
	if err := s.players.Create(ctx, player); err != nil {
		return StartResult{}, fmt.Errorf("create player: %w", err)
	}

	session := domain.QuizSession{
		SessionID:   uuid.NewString(),
		PlayerID:    player.ID,
		QuestionIDs: questionIDs(selected),
		StartedAt:   startedAt,
		ExpiresAt:   startedAt.Add(time.Duration(settings.DurationMs) * time.Millisecond),
		DurationMs:  settings.DurationMs,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return StartResult{}, fmt.Errorf("create session: %w", err)
	}

	return StartResult{
		SessionID:  session.SessionID,
		Player:     player,
		Questions:  sanitize(selected),
		StartedAt:  session.StartedAt,
		ExpiresAt:  session.ExpiresAt,
		DurationMs: session.DurationMs,
		ServerTime: s.now(),
	}, nil
}

// SessionView is an active session as returned to a polling client.
type SessionView struct {
	SessionID  string
	Questions  []domain.SanitizedQuestion
	StartedAt  time.Time
	ExpiresAt  time.Time
	DurationMs int64
	ServerTime time.Time
}

// Get returns an active session with its questions in the stored order.
// Submitted sessions fail with ErrAlreadySubmitted, past-deadline ones with
// ErrExpired.
func (s *QuizService) Get(ctx context.Context, sessionID string) (SessionView, error) {
	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	if session.Submitted() {
		return SessionView{}, domain.ErrAlreadySubmitted
	}
	if session.Expired(s.now()) {
		return SessionView{}, domain.ErrExpired
	}

	questions, err := s.questionsInSessionOrder(ctx, session)
	if err != nil {
		return SessionView{}, err
	}

	return SessionView{
		SessionID:  session.SessionID,
		Questions:  sanitize(questions),
		StartedAt:  session.StartedAt,
		ExpiresAt:  session.ExpiresAt,
		DurationMs: session.DurationMs,
		ServerTime: s.now(),
	}, nil
}

// SubmitResult is the outcome of a scored attempt.
type SubmitResult struct {
	SessionID      string
	SubmissionID   string
	Score          int
	TotalQuestions int
	TimeTakenMs    int64
	Leaderboard    domain.Leaderboard
}

// Submit scores the answers against the session's fixed question set, writes
// the submission and completion record, and fans the updated leaderboard out
// to stream subscribers. A session is scored at most once: the submission
// insert is unique per session and the completion write is a conditional
// check-and-set, so concurrent duplicates fail with ErrAlreadySubmitted.
func (s *QuizService) Submit(ctx context.Context, sessionID string, answers []domain.AnswerInput) (SubmitResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return SubmitResult{}, fmt.Errorf("%w: session id is required", domain.ErrValidation)
	}

	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	if session.Submitted() {
		return SubmitResult{}, domain.ErrAlreadySubmitted
	}
	now := s.now()
	if session.Expired(now) {
		return SubmitResult{}, domain.ErrExpired
	}

	questions, err := s.questionsInSessionOrder(ctx, session)
	if err != nil {
		return SubmitResult{}, err
	}

	details, score := scoreAnswers(questions, answers)

	timeTaken := now.Sub(session.StartedAt).Milliseconds()
	if timeTaken > session.DurationMs {
		timeTaken = session.DurationMs
	}

	submission := domain.Submission{
		ID:             uuid.NewString(),
		SessionID:      session.SessionID,
		PlayerID:       session.PlayerID,
		Answers:        details,
		Score:          score,
		TotalQuestions: len(session.QuestionIDs),
		TimeTakenMs:    timeTaken,
		SubmittedAt:    now,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return SubmitResult{}, err
	}
	if err := s.sessions.Complete(ctx, session.SessionID, domain.Completion{
		SubmittedAt: now,
		Score:       score,
		TimeTakenMs: timeTaken,
	}); err != nil {
		return SubmitResult{}, err
	}

	lb, err := s.leaderboard.Publish(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("refresh leaderboard: %w", err)
	}

	return SubmitResult{
		SessionID:      session.SessionID,
		SubmissionID:   submission.ID,
		Score:          score,
		TotalQuestions: len(session.QuestionIDs),
		TimeTakenMs:    timeTaken,
		Leaderboard:    lb,
	}, nil
}

// questionsInSessionOrder re-materializes session questions in the order
// fixed at start time. Questions deleted from the bank mid-session are
// dropped rather than failing the whole read.
func (s *QuizService) questionsInSessionOrder(ctx context.Context, session domain.QuizSession) ([]domain.Question, error) {
	found, err := s.questions.FindByIDs(ctx, session.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load session questions: %w", err)
	}
	byID := make(map[string]domain.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	ordered := make([]domain.Question, 0, len(session.QuestionIDs))
	for _, id := range session.QuestionIDs {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// scoreAnswers grades answers against the session's question set. It is pure
// and deterministic: same questions and answers, bit-identical result.
// Answers referencing questions outside the set are dropped.
func scoreAnswers(questions []domain.Question, answers []domain.AnswerInput) ([]domain.AnswerDetail, int) {
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	details := make([]domain.AnswerDetail, 0, len(answers))
	score := 0
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		correct := a.OptionIndex == q.CorrectIndex
		if correct {
			score++
		}
		details = append(details, domain.AnswerDetail{
			QuestionID:  q.ID,
			OptionIndex: a.OptionIndex,
			Correct:     correct,
		})
	}
	return details, score
}

func questionIDs(questions []domain.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func sanitize(questions []domain.Question) []domain.SanitizedQuestion {
	out := make([]domain.SanitizedQuestion, len(questions))
	for i, q := range questions {
		out[i] = q.Sanitized()
	}
	return out
}
