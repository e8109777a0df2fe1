package app_test

import (
	"context"
	"errors"
	"testing"

	"finquiz-service/internal/app"
	"finquiz-service/internal/domain"
	"finquiz-service/internal/infra/memory"
)

func newAdminService() (*app.AdminService, *memory.QuestionRepo) {
	bank := memory.NewQuestionRepo()
	settings := memory.NewSettingsRepo(domain.QuizSettings{QuestionCount: 10, DurationMs: 300_000})
	return app.NewAdminService(bank, settings), bank
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestCreateQuestionValidation(t *testing.T) {
	service, _ := newAdminService()
	ctx := context.Background()

	cases := []struct {
		name  string
		input app.CreateQuestionInput
	}{
		{"empty prompt", app.CreateQuestionInput{Options: []string{"a", "b", "c", "d"}, CorrectIndex: intPtr(0)}},
		{"wrong arity", app.CreateQuestionInput{Prompt: "p", Options: []string{"a", "b"}, CorrectIndex: intPtr(0)}},
		{"missing correct index", app.CreateQuestionInput{Prompt: "p", Options: []string{"a", "b", "c", "d"}}},
		{"index out of range", app.CreateQuestionInput{Prompt: "p", Options: []string{"a", "b", "c", "d"}, CorrectIndex: intPtr(4)}},
	}
	for _, tc := range cases {
		if _, err := service.CreateQuestion(ctx, tc.input); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestCreateQuestionDefaultsCategory(t *testing.T) {
	service, bank := newAdminService()
	ctx := context.Background()

	created, err := service.CreateQuestion(ctx, app.CreateQuestionInput{
		Prompt:       "  What is diversification?  ",
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: intPtr(2),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Category != "Finance" {
		t.Fatalf("expected default category, got %q", created.Category)
	}
	if created.Prompt != "What is diversification?" {
		t.Fatalf("expected trimmed prompt, got %q", created.Prompt)
	}
	if !created.AdminCreated {
		t.Fatalf("created question must be eligible")
	}

	eligible, err := bank.FindEligible(ctx)
	if err != nil || len(eligible) != 1 {
		t.Fatalf("expected question persisted, got %v (%v)", eligible, err)
	}
}

func TestDeleteQuestion(t *testing.T) {
	service, bank := newAdminService()
	ctx := context.Background()

	created, err := service.CreateQuestion(ctx, app.CreateQuestionInput{
		Prompt:       "p",
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: intPtr(0),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := service.DeleteQuestion(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	eligible, _ := bank.FindEligible(ctx)
	if len(eligible) != 0 {
		t.Fatalf("expected empty bank, got %d", len(eligible))
	}

	if err := service.DeleteQuestion(ctx, " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
}

func TestUpdateSettingsBounds(t *testing.T) {
	service, _ := newAdminService()
	ctx := context.Background()

	if _, err := service.UpdateSettings(ctx, domain.SettingsPatch{QuestionCount: intPtr(0)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for count 0, got %v", err)
	}
	if _, err := service.UpdateSettings(ctx, domain.SettingsPatch{QuestionCount: intPtr(101)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for count 101, got %v", err)
	}
	if _, err := service.UpdateSettings(ctx, domain.SettingsPatch{DurationMs: int64Ptr(29_999)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for short duration, got %v", err)
	}

	updated, err := service.UpdateSettings(ctx, domain.SettingsPatch{QuestionCount: intPtr(25)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.QuestionCount != 25 {
		t.Fatalf("expected count 25, got %d", updated.QuestionCount)
	}
	if updated.DurationMs != 300_000 {
		t.Fatalf("partial update must keep duration, got %d", updated.DurationMs)
	}
}
