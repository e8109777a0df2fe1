package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"finquiz-service/internal/app"
	"finquiz-service/internal/domain"
	"finquiz-service/internal/infra/postgres"
	pgmigrations "finquiz-service/internal/infra/postgres/migrations"
	infraredis "finquiz-service/internal/infra/redis"
)

func TestQuizFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	bank := postgres.NewQuestionRepo(pool)
	if err := bank.ReplaceAll(ctx, sampleQuestions()); err != nil {
		t.Fatalf("seed questions: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	cachedBank := infraredis.NewQuestionCache(redisClient, bank, 5*time.Minute)

	players := postgres.NewPlayerRepo(pool)
	sessions := postgres.NewSessionRepo(pool)
	submissions := postgres.NewSubmissionRepo(pool)
	settings := postgres.NewSettingsRepo(pool, domain.QuizSettings{QuestionCount: 3, DurationMs: 300_000})

	leaderboard := app.NewLeaderboardService(submissions, players)
	quiz := app.NewQuizService(cachedBank, players, sessions, submissions, settings, leaderboard)

	started, err := quiz.Start(ctx, app.StartInput{Name: "Alice"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(started.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(started.Questions))
	}

	view, err := quiz.Get(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i := range view.Questions {
		if view.Questions[i].ID != started.Questions[i].ID {
			t.Fatalf("question order changed between start and get")
		}
	}

	answers := make([]domain.AnswerInput, 0, len(started.Questions))
	for _, q := range started.Questions {
		answers = append(answers, domain.AnswerInput{QuestionID: q.ID, OptionIndex: correctIndexFor(t, q.ID)})
	}
	result, err := quiz.Submit(ctx, started.SessionID, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 3 || result.TotalQuestions != 3 {
		t.Fatalf("expected perfect score, got %d/%d", result.Score, result.TotalQuestions)
	}
	if len(result.Leaderboard.Entries) != 1 || result.Leaderboard.Entries[0].PlayerName != "Alice" {
		t.Fatalf("expected Alice on leaderboard, got %+v", result.Leaderboard.Entries)
	}

	if _, err := quiz.Submit(ctx, started.SessionID, nil); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected duplicate submit to conflict, got %v", err)
	}
	if _, err := quiz.Get(ctx, started.SessionID); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected get after submit to conflict, got %v", err)
	}

	// Second player lands below the perfect score.
	second, err := quiz.Start(ctx, app.StartInput{Name: "Bob"})
	if err != nil {
		t.Fatalf("start second: %v", err)
	}
	if _, err := quiz.Submit(ctx, second.SessionID, nil); err != nil {
		t.Fatalf("submit second: %v", err)
	}
	entries, err := leaderboard.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].PlayerName != "Alice" || entries[1].PlayerName != "Bob" {
		t.Fatalf("unexpected ranking: %+v", entries)
	}
}

func TestAdminLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	bank := postgres.NewQuestionRepo(pool)
	settings := postgres.NewSettingsRepo(pool, domain.QuizSettings{QuestionCount: 10, DurationMs: 300_000})
	admin := app.NewAdminService(bank, settings)

	idx := 2
	created, err := admin.CreateQuestion(ctx, app.CreateQuestionInput{
		Prompt:       "What does ETF stand for?",
		Options:      []string{"Equity Trade Fund", "Exchange Traded Fund", "Early Term Finance", "Excess Tax Fee"},
		CorrectIndex: &idx,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	questions, _, err := admin.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != created.ID {
		t.Fatalf("unexpected listing: %+v", questions)
	}

	updated, err := admin.UpdateSettings(ctx, domain.SettingsPatch{QuestionCount: intPtr(5)})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.QuestionCount != 5 {
		t.Fatalf("expected count 5, got %d", updated.QuestionCount)
	}
	// The patch must not clobber untouched fields.
	if updated.DurationMs != 300_000 {
		t.Fatalf("duration clobbered: %d", updated.DurationMs)
	}

	if err := admin.DeleteQuestion(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	questions, _, err = admin.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected empty bank, got %+v", questions)
	}
}

func intPtr(v int) *int { return &v }

// sampleQuestions uses ids that encode the correct option so shuffled draws
// stay scoreable.
func sampleQuestions() []domain.Question {
	questions := make([]domain.Question, 0, 5)
	for i := 0; i < 5; i++ {
		questions = append(questions, domain.Question{
			ID:           fmt.Sprintf("q-%d", i),
			Prompt:       fmt.Sprintf("Question %d?", i),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
			Category:     "Finance",
			AdminCreated: true,
		})
	}
	return questions
}

func correctIndexFor(t *testing.T, questionID string) int {
	t.Helper()
	idx, err := strconv.Atoi(strings.TrimPrefix(questionID, "q-"))
	if err != nil {
		t.Fatalf("unexpected question id %q", questionID)
	}
	return idx % 4
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
