package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"finquiz-service/internal/domain"
)

const (
	// OptionsPerQuestion is the fixed arity of the multiple-choice options.
	OptionsPerQuestion = 4

	defaultCategory = "Finance"

	minQuestionCount = 1
	maxQuestionCount = 100
	minDurationMs    = 30_000
)

// AdminService covers the question-bank and settings maintenance surface.
// Authorization happens at the transport boundary; this layer assumes the
// caller is already trusted.
type AdminService struct {
	questions QuestionBank
	settings  SettingsRepository
}

func NewAdminService(questions QuestionBank, settings SettingsRepository) *AdminService {
	return &AdminService{questions: questions, settings: settings}
}

// CreateQuestionInput carries an unvalidated admin question payload.
type CreateQuestionInput struct {
	Prompt       string
	Options      []string
	CorrectIndex *int
	Category     string
	Difficulty   string
}

// CreateQuestion validates and stores a new eligible question.
func (s *AdminService) CreateQuestion(ctx context.Context, in CreateQuestionInput) (domain.Question, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return domain.Question{}, fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}
	if len(in.Options) != OptionsPerQuestion {
		return domain.Question{}, fmt.Errorf("%w: exactly %d options required", domain.ErrValidation, OptionsPerQuestion)
	}
	if in.CorrectIndex == nil || *in.CorrectIndex < 0 || *in.CorrectIndex >= OptionsPerQuestion {
		return domain.Question{}, fmt.Errorf("%w: correct index out of range", domain.ErrValidation)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultCategory
	}

	question := domain.Question{
		ID:           uuid.NewString(),
		Prompt:       prompt,
		Options:      in.Options,
		CorrectIndex: *in.CorrectIndex,
		Category:     category,
		Difficulty:   strings.TrimSpace(in.Difficulty),
		AdminCreated: true,
	}
	created, err := s.questions.Create(ctx, question)
	if err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	return created, nil
}

// ListQuestions returns the full unsanitized bank plus current settings.
func (s *AdminService) ListQuestions(ctx context.Context) ([]domain.Question, domain.QuizSettings, error) {
	questions, err := s.questions.FindEligible(ctx)
	if err != nil {
		return nil, domain.QuizSettings{}, fmt.Errorf("load question bank: %w", err)
	}
	settings, err := s.settings.GetOrCreateDefault(ctx)
	if err != nil {
		return nil, domain.QuizSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return questions, settings, nil
}

// DeleteQuestion removes a question from the bank by id.
func (s *AdminService) DeleteQuestion(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: question id is required", domain.ErrValidation)
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// UpdateSettings applies a partial settings update with bounds checking.
func (s *AdminService) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (domain.QuizSettings, error) {
	if patch.QuestionCount != nil && (*patch.QuestionCount < minQuestionCount || *patch.QuestionCount > maxQuestionCount) {
		return domain.QuizSettings{}, fmt.Errorf("%w: question count must be between %d and %d",
			domain.ErrValidation, minQuestionCount, maxQuestionCount)
	}
	if patch.DurationMs != nil && *patch.DurationMs < minDurationMs {
		return domain.QuizSettings{}, fmt.Errorf("%w: duration must be at least %dms", domain.ErrValidation, minDurationMs)
	}

	settings, err := s.settings.Update(ctx, patch)
	if err != nil {
		return domain.QuizSettings{}, fmt.Errorf("update settings: %w", err)
	}
	return settings, nil
}
