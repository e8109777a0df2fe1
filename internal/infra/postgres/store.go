// Package postgres implements the repositories over a JSONB document store:
// one table per entity, an opaque key column plus a data document.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"finquiz-service/internal/domain"
)

const uniqueViolation = "23505"

// QuestionRepo is the durable question bank.
type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

func (r *QuestionRepo) FindEligible(ctx context.Context) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT data FROM questions WHERE (data->>'adminCreated')::boolean ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query eligible questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (r *QuestionRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT data FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query questions by id: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (r *QuestionRepo) Create(ctx context.Context, q domain.Question) (domain.Question, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal question: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO questions (id, data) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, q.ID, raw)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (r *QuestionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// ReplaceAll wipes the bank and inserts questions; used by the seeder.
func (r *QuestionRepo) ReplaceAll(ctx context.Context, questions []domain.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	for _, q := range questions {
		raw, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO questions (id, data) VALUES ($1, $2)`, q.ID, raw); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	var out []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// PlayerRepo stores player documents.
type PlayerRepo struct {
	pool *pgxpool.Pool
}

func NewPlayerRepo(pool *pgxpool.Pool) *PlayerRepo {
	return &PlayerRepo{pool: pool}
}

func (r *PlayerRepo) Create(ctx context.Context, p domain.Player) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal player: %w", err)
	}
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO players (id, data) VALUES ($1, $2)`, p.ID, raw); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (r *PlayerRepo) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Player, error) {
	out := make(map[string]domain.Player, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT data FROM players WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		var p domain.Player
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("unmarshal player: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// SessionRepo stores quiz sessions. Completion is written by a conditional
// update that only matches sessions without one, making the check-and-set
// atomic at the database.
type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s domain.QuizSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_sessions (session_id, data) VALUES ($1, $2)`, s.SessionID, raw); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Find(ctx context.Context, sessionID string) (domain.QuizSession, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM quiz_sessions WHERE session_id = $1`, sessionID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizSession{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.QuizSession{}, fmt.Errorf("query session: %w", err)
	}
	var s domain.QuizSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.QuizSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) Complete(ctx context.Context, sessionID string, c domain.Completion) error {
	patch, err := json.Marshal(map[string]domain.Completion{"completion": c})
	if err != nil {
		return fmt.Errorf("marshal completion: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE quiz_sessions SET data = data || $2
		 WHERE session_id = $1 AND data->'completion' IS NULL`, sessionID, patch)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Find(ctx, sessionID); err != nil {
			return err
		}
		return domain.ErrAlreadySubmitted
	}
	return nil
}

// SubmissionRepo stores append-only submissions. The primary key on
// session_id turns a duplicate submit into ErrAlreadySubmitted, which also
// covers retries of a submit that failed between its two writes.
type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) Create(ctx context.Context, sub domain.Submission) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO submissions (session_id, data) VALUES ($1, $2)`, sub.SessionID, raw)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrAlreadySubmitted
	}
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepo) ListTop(ctx context.Context, limit int) ([]domain.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT data FROM submissions
		 ORDER BY (data->>'score')::int DESC,
		          (data->>'timeTakenMs')::bigint ASC,
		          (data->>'submittedAt')::timestamptz ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		var sub domain.Submission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, fmt.Errorf("unmarshal submission: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// SettingsRepo stores the single quiz-settings document (row id 1).
type SettingsRepo struct {
	pool     *pgxpool.Pool
	defaults domain.QuizSettings
}

func NewSettingsRepo(pool *pgxpool.Pool, defaults domain.QuizSettings) *SettingsRepo {
	return &SettingsRepo{pool: pool, defaults: defaults}
}

func (r *SettingsRepo) GetOrCreateDefault(ctx context.Context) (domain.QuizSettings, error) {
	raw, err := json.Marshal(r.defaults)
	if err != nil {
		return domain.QuizSettings{}, fmt.Errorf("marshal default settings: %w", err)
	}
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_settings (id, data) VALUES (1, $1)
		 ON CONFLICT (id) DO NOTHING`, raw); err != nil {
		return domain.QuizSettings{}, fmt.Errorf("ensure settings: %w", err)
	}

	var current []byte
	if err := r.pool.QueryRow(ctx,
		`SELECT data FROM quiz_settings WHERE id = 1`).Scan(&current); err != nil {
		return domain.QuizSettings{}, fmt.Errorf("query settings: %w", err)
	}
	var settings domain.QuizSettings
	if err := json.Unmarshal(current, &settings); err != nil {
		return domain.QuizSettings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return settings, nil
}

func (r *SettingsRepo) Update(ctx context.Context, patch domain.SettingsPatch) (domain.QuizSettings, error) {
	if _, err := r.GetOrCreateDefault(ctx); err != nil {
		return domain.QuizSettings{}, err
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return domain.QuizSettings{}, fmt.Errorf("marshal settings patch: %w", err)
	}

	var updated []byte
	if err := r.pool.QueryRow(ctx,
		`UPDATE quiz_settings SET data = data || $1 WHERE id = 1 RETURNING data`, raw).Scan(&updated); err != nil {
		return domain.QuizSettings{}, fmt.Errorf("update settings: %w", err)
	}
	var settings domain.QuizSettings
	if err := json.Unmarshal(updated, &settings); err != nil {
		return domain.QuizSettings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return settings, nil
}
