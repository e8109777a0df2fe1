package app

import (
	"context"

	"finquiz-service/internal/domain"
)

// QuestionReader is the read side of the question bank. Caching layers
// implement it on top of a backing QuestionBank.
type QuestionReader interface {
	// FindEligible returns every question currently eligible for selection.
	FindEligible(ctx context.Context) ([]domain.Question, error)
	// FindByIDs returns the questions matching ids; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error)
}

// QuestionBank is the full question-bank contract including admin writes.
type QuestionBank interface {
	QuestionReader
	Create(ctx context.Context, q domain.Question) (domain.Question, error)
	Delete(ctx context.Context, id string) error
}

// PlayerRepository stores one player record per quiz attempt.
type PlayerRepository interface {
	Create(ctx context.Context, p domain.Player) error
	// FindByIDs returns the players matching ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Player, error)
}

// SessionRepository stores quiz sessions keyed by their opaque token.
type SessionRepository interface {
	Create(ctx context.Context, s domain.QuizSession) error
	// Find returns domain.ErrNotFound for unknown session ids.
	Find(ctx context.Context, sessionID string) (domain.QuizSession, error)
	// Complete writes the completion record if and only if none exists yet.
	// The check-and-set is atomic per session: under concurrent calls exactly
	// one succeeds and the rest get domain.ErrAlreadySubmitted.
	Complete(ctx context.Context, sessionID string, c domain.Completion) error
}

// SubmissionRepository stores append-only completed attempts.
type SubmissionRepository interface {
	// Create fails with domain.ErrAlreadySubmitted when a submission for the
	// same session id already exists.
	Create(ctx context.Context, sub domain.Submission) error
	// ListTop returns at most limit submissions ordered by score descending,
	// elapsed time ascending, then submission time ascending.
	ListTop(ctx context.Context, limit int) ([]domain.Submission, error)
}

// SettingsRepository holds the store-wide quiz configuration singleton.
type SettingsRepository interface {
	GetOrCreateDefault(ctx context.Context) (domain.QuizSettings, error)
	Update(ctx context.Context, patch domain.SettingsPatch) (domain.QuizSettings, error)
}
