package domain

import "time"

// Question is one multiple-choice question from the bank. CorrectIndex is
// never serialized toward quiz takers; use Sanitized for client payloads.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Category     string   `json:"category"`
	Difficulty   string   `json:"difficulty,omitempty"`
	AdminCreated bool     `json:"adminCreated"`
}

// SanitizedQuestion is the client-facing view with the answer key withheld.
type SanitizedQuestion struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// Sanitized strips the correct-answer index from a question.
func (q Question) Sanitized() SanitizedQuestion {
	return SanitizedQuestion{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Options:    q.Options,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
}

// Player is created once per quiz attempt and never updated.
type Player struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Organization string    `json:"organization,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Completion is the terminal record on a session. Its presence makes the
// session immutable.
type Completion struct {
	SubmittedAt time.Time `json:"submittedAt"`
	Score       int       `json:"score"`
	TimeTakenMs int64     `json:"timeTakenMs"`
}

// QuizSession is one player's timed attempt at a fixed, ordered question
// subset. The session stores question identifiers only; content is always
// re-read from the bank so stale payloads cannot tamper with scoring.
type QuizSession struct {
	SessionID   string      `json:"sessionId"`
	PlayerID    string      `json:"playerId"`
	QuestionIDs []string    `json:"questionIds"`
	StartedAt   time.Time   `json:"startedAt"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	DurationMs  int64       `json:"durationMs"`
	Completion  *Completion `json:"completion,omitempty"`
}

// Submitted reports whether the session has reached its terminal state.
func (s QuizSession) Submitted() bool {
	return s.Completion != nil
}

// Expired reports whether the deadline has passed for an unsubmitted session.
func (s QuizSession) Expired(now time.Time) bool {
	return !s.Submitted() && now.After(s.ExpiresAt)
}

// AnswerInput is one submitted answer as received from the client.
type AnswerInput struct {
	QuestionID  string `json:"questionId"`
	OptionIndex int    `json:"optionIndex"`
}

// AnswerDetail records how one answer was graded.
type AnswerDetail struct {
	QuestionID  string `json:"questionId"`
	OptionIndex int    `json:"optionIndex"`
	Correct     bool   `json:"correct"`
}

// Submission is the append-only durable record of one completed attempt.
// SessionID is unique across submissions; the store enforces it.
type Submission struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"sessionId"`
	PlayerID       string         `json:"playerId"`
	Answers        []AnswerDetail `json:"answers"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	TimeTakenMs    int64          `json:"timeTakenMs"`
	SubmittedAt    time.Time      `json:"submittedAt"`
}

// QuizSettings is the store-wide configuration read at session start.
type QuizSettings struct {
	QuestionCount int   `json:"questionCount"`
	DurationMs    int64 `json:"durationMs"`
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	QuestionCount *int   `json:"questionCount,omitempty"`
	DurationMs    *int64 `json:"durationMs,omitempty"`
}

// LeaderboardEntry is one ranked submission joined to its player name.
type LeaderboardEntry struct {
	SessionID      string    `json:"sessionId"`
	PlayerName     string    `json:"playerName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	TimeTakenMs    int64     `json:"timeTakenMs"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Leaderboard is a snapshot pushed to stream subscribers.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
