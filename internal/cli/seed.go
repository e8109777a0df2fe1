package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"finquiz-service/internal/config"
	"finquiz-service/internal/domain"
	"finquiz-service/internal/infra/postgres"
)

// NewSeedCmd replaces the question bank with the bundled finance set.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the question bank with the bundled finance questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	questions := seedQuestions()
	if err := postgres.NewQuestionRepo(pool).ReplaceAll(ctx, questions); err != nil {
		return err
	}
	log.Printf("seeded %d finance questions", len(questions))
	return nil
}

func seedQuestions() []domain.Question {
	data := []struct {
		prompt     string
		options    [4]string
		correct    int
		difficulty string
	}{
		{
			prompt:     "What does ROI stand for?",
			options:    [4]string{"Rate of Inflation", "Return on Investment", "Risk of Insolvency", "Revenue over Income"},
			correct:    1,
			difficulty: "easy",
		},
		{
			prompt:     "Which market index tracks 500 large-cap US companies?",
			options:    [4]string{"Dow Jones Industrial Average", "NASDAQ Composite", "S&P 500", "Russell 2000"},
			correct:    2,
			difficulty: "easy",
		},
		{
			prompt:     "What is a bull market?",
			options:    [4]string{"A market with falling prices", "A market with rising prices", "A market with flat prices", "A market closed for trading"},
			correct:    1,
			difficulty: "easy",
		},
		{
			prompt:     "Compound interest is interest earned on:",
			options:    [4]string{"Principal only", "Interest only", "Principal plus accumulated interest", "Dividends only"},
			correct:    2,
			difficulty: "easy",
		},
		{
			prompt:     "What does an IPO allow a company to do?",
			options:    [4]string{"Buy back its shares", "Issue bonds privately", "Sell shares to the public for the first time", "Merge with a competitor"},
			correct:    2,
			difficulty: "medium",
		},
		{
			prompt:     "Diversification primarily reduces which kind of risk?",
			options:    [4]string{"Systematic risk", "Unsystematic risk", "Inflation risk", "Currency risk"},
			correct:    1,
			difficulty: "medium",
		},
		{
			prompt:     "A bond's price moves in which direction when interest rates rise?",
			options:    [4]string{"Up", "Down", "Unchanged", "It depends on the issuer only"},
			correct:    1,
			difficulty: "medium",
		},
		{
			prompt:     "What is the P/E ratio a measure of?",
			options:    [4]string{"Debt relative to equity", "Price relative to earnings", "Profit relative to expenses", "Payout relative to earnings"},
			correct:    1,
			difficulty: "medium",
		},
		{
			prompt:     "Which institution sets the federal funds rate in the United States?",
			options:    [4]string{"The Treasury Department", "The Federal Reserve", "The SEC", "The World Bank"},
			correct:    1,
			difficulty: "medium",
		},
		{
			prompt:     "What does liquidity describe?",
			options:    [4]string{"How profitable an asset is", "How quickly an asset converts to cash", "How volatile an asset is", "How leveraged a position is"},
			correct:    1,
			difficulty: "easy",
		},
		{
			prompt:     "An ETF is best described as:",
			options:    [4]string{"A single company's stock", "A basket of assets traded on an exchange", "A fixed-term bank deposit", "A private equity fund"},
			correct:    1,
			difficulty: "easy",
		},
		{
			prompt:     "What is dollar-cost averaging?",
			options:    [4]string{"Buying only when prices fall", "Investing a fixed amount at regular intervals", "Converting assets to US dollars", "Averaging analyst price targets"},
			correct:    1,
			difficulty: "medium",
		},
	}

	questions := make([]domain.Question, 0, len(data))
	for _, d := range data {
		questions = append(questions, domain.Question{
			ID:           uuid.NewString(),
			Prompt:       d.prompt,
			Options:      d.options[:],
			CorrectIndex: d.correct,
			Category:     "Finance",
			Difficulty:   d.difficulty,
			AdminCreated: true,
		})
	}
	return questions
}
