package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"finquiz-service/internal/domain"
)

// Defaults applied when the config file leaves fields unset.
const (
	DefaultQuestionCount      = 10
	DefaultDuration           = 5 * time.Minute
	DefaultCacheTTL           = 10 * time.Minute
	DefaultMaxBodyBytes       = 1 << 20
	DefaultRateLimitPerMinute = 30
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Quiz struct {
		QuestionCount int    `yaml:"questionCount"`
		Duration      string `yaml:"duration"`
		CacheTTL      string `yaml:"cacheTTL"`
	} `yaml:"quiz"`
	Admin struct {
		Token string `yaml:"token"`
	} `yaml:"admin"`
	HTTP struct {
		AllowedOrigins     []string `yaml:"allowedOrigins"`
		MaxBodyBytes       int64    `yaml:"maxBodyBytes"`
		RateLimitPerMinute int      `yaml:"rateLimitPerMinute"`
	} `yaml:"http"`
}

// Load reads YAML config from path and applies environment overrides. A
// missing file yields the defaults so the server can run store-less in dev.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		cfg.Admin.Token = token
	}
	if url := os.Getenv("POSTGRES_URL"); url != "" {
		cfg.Postgres.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}

	if cfg.HTTP.MaxBodyBytes <= 0 {
		cfg.HTTP.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.HTTP.RateLimitPerMinute <= 0 {
		cfg.HTTP.RateLimitPerMinute = DefaultRateLimitPerMinute
	}
	return cfg, nil
}

// QuizDefaults converts the configured quiz section into the settings used
// when the store has no settings document yet.
func (c Config) QuizDefaults() domain.QuizSettings {
	count := c.Quiz.QuestionCount
	if count <= 0 {
		count = DefaultQuestionCount
	}
	return domain.QuizSettings{
		QuestionCount: count,
		DurationMs:    TTLDuration(c.Quiz.Duration, DefaultDuration).Milliseconds(),
	}
}

// CacheTTL returns the question-cache TTL.
func (c Config) CacheTTL() time.Duration {
	return TTLDuration(c.Quiz.CacheTTL, DefaultCacheTTL)
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
