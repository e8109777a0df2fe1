package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"finquiz-service/internal/app"
	"finquiz-service/internal/auth"
	"finquiz-service/internal/config"
	"finquiz-service/internal/infra/memory"
	"finquiz-service/internal/infra/postgres"
	redisinfra "finquiz-service/internal/infra/redis"
	transport "finquiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "4000"
	}

	var (
		questions   app.QuestionBank
		players     app.PlayerRepository
		sessions    app.SessionRepository
		submissions app.SubmissionRepository
		settings    app.SettingsRepository
	)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		questions = postgres.NewQuestionRepo(pool)
		players = postgres.NewPlayerRepo(pool)
		sessions = postgres.NewSessionRepo(pool)
		submissions = postgres.NewSubmissionRepo(pool)
		settings = postgres.NewSettingsRepo(pool, cfg.QuizDefaults())
	} else {
		log.Println("no postgres configured, using in-memory store with sample questions")
		bank := memory.NewQuestionRepo()
		for _, q := range seedQuestions() {
			if _, err := bank.Create(ctx, q); err != nil {
				return err
			}
		}
		questions = bank
		players = memory.NewPlayerRepo()
		sessions = memory.NewSessionRepo()
		submissions = memory.NewSubmissionRepo()
		settings = memory.NewSettingsRepo(cfg.QuizDefaults())
	}

	var cachedBank app.QuestionBank
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		cachedBank = redisinfra.NewQuestionCache(redisClient, questions, cfg.CacheTTL())
	} else {
		cachedBank = memory.NewQuestionCache(questions, cfg.CacheTTL())
	}

	leaderboard := app.NewLeaderboardService(submissions, players)
	quiz := app.NewQuizService(cachedBank, players, sessions, submissions, settings, leaderboard)
	admin := app.NewAdminService(cachedBank, settings)
	authorizer := auth.NewAdminAuthorizer(cfg.Admin.Token)

	router := transport.NewRouter(
		transport.NewQuizHandler(quiz),
		transport.NewLeaderboardHandler(leaderboard),
		transport.NewWSHandler(leaderboard),
		transport.NewAdminHandler(admin, authorizer),
		transport.RouterConfig{
			AllowedOrigins:     cfg.HTTP.AllowedOrigins,
			MaxBodyBytes:       cfg.HTTP.MaxBodyBytes,
			RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		},
	)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No write timeout: the leaderboard stream endpoints are long-lived.
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
