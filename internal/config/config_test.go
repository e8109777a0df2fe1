package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaultsForMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("expected default body cap, got %d", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.HTTP.RateLimitPerMinute != DefaultRateLimitPerMinute {
		t.Fatalf("expected default rate limit, got %d", cfg.HTTP.RateLimitPerMinute)
	}

	defaults := cfg.QuizDefaults()
	if defaults.QuestionCount != DefaultQuestionCount {
		t.Fatalf("expected default question count, got %d", defaults.QuestionCount)
	}
	if defaults.DurationMs != DefaultDuration.Milliseconds() {
		t.Fatalf("expected default duration, got %d", defaults.DurationMs)
	}
}

func TestLoadParsesYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9999"
quiz:
  questionCount: 7
  duration: 90s
admin:
  token: from-file
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ADMIN_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9999" {
		t.Fatalf("expected port 9999, got %q", cfg.Server.Port)
	}
	if cfg.Admin.Token != "from-env" {
		t.Fatalf("expected env to win, got %q", cfg.Admin.Token)
	}

	defaults := cfg.QuizDefaults()
	if defaults.QuestionCount != 7 || defaults.DurationMs != 90_000 {
		t.Fatalf("unexpected quiz defaults: %+v", defaults)
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", d)
	}
	if d := TTLDuration("150ms", time.Minute); d != 150*time.Millisecond {
		t.Fatalf("expected parsed duration, got %v", d)
	}
	if d := TTLDuration("garbage", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for garbage, got %v", d)
	}
}
