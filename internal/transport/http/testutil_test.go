package http

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"finquiz-service/internal/app"
	"finquiz-service/internal/auth"
	"finquiz-service/internal/domain"
	"finquiz-service/internal/infra/memory"
)

const testAdminToken = "test-admin-token"

type serverEnv struct {
	server      *httptest.Server
	quiz        *app.QuizService
	leaderboard *app.LeaderboardService
	submissions *memory.SubmissionRepo
	mu          sync.Mutex
	now         time.Time
}

func (e *serverEnv) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *serverEnv) advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()
	env := &serverEnv{
		submissions: memory.NewSubmissionRepo(),
		now:         time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	bank := memory.NewQuestionRepo()
	for i := 0; i < 10; i++ {
		_, err := bank.Create(context.Background(), domain.Question{
			ID:           fmt.Sprintf("q-%d", i),
			Prompt:       fmt.Sprintf("Question %d?", i),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
			Category:     "Finance",
			AdminCreated: true,
		})
		if err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}

	players := memory.NewPlayerRepo()
	sessions := memory.NewSessionRepo()
	settings := memory.NewSettingsRepo(domain.QuizSettings{QuestionCount: 3, DurationMs: 300_000})

	env.leaderboard = app.NewLeaderboardService(env.submissions, players).WithClock(env.clock)
	env.quiz = app.NewQuizService(bank, players, sessions, env.submissions, settings, env.leaderboard).WithClock(env.clock)
	admin := app.NewAdminService(bank, settings)

	router := NewRouter(
		NewQuizHandler(env.quiz),
		NewLeaderboardHandler(env.leaderboard),
		NewWSHandler(env.leaderboard),
		NewAdminHandler(admin, auth.NewAdminAuthorizer(testAdminToken)),
		RouterConfig{
			MaxBodyBytes:       1 << 20,
			RateLimitPerMinute: 10_000,
		},
	)

	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)
	return env
}
