package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-driven configuration for the improv engine
// binaries. Everything the voice pipeline owns (transport URLs, audio
// settings) stays out of here.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// ScenariosPath points at the JSON catalog of improv scenarios.
	ScenariosPath string `env:"SCENARIOS_PATH" envDefault:"data/scenarios.json"`

	// SessionsDir is the file store root for session snapshots. Used
	// when RedisURL is empty.
	SessionsDir string `env:"SESSIONS_DIR" envDefault:"data/sessions"`

	// RedisURL switches snapshot storage (and the event stream) to
	// Redis when set, e.g. "redis://localhost:6379".
	RedisURL string `env:"REDIS_URL"`

	// MaxRounds is the number of scenes per show.
	MaxRounds int `env:"MAX_ROUNDS" envDefault:"3"`

	// SelectionSeed pins scenario selection for reproducible shows.
	// Unset means a fresh seed per session.
	SelectionSeed *int64 `env:"SELECTION_SEED"`

	// Host persona LLM. The engine runs with canned host lines when no
	// key is configured.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	HostModel    string `env:"HOST_MODEL" envDefault:"gpt-4o-mini"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("MAX_ROUNDS must be positive, got %d", cfg.MaxRounds)
	}
	return cfg, nil
}

// SlogLevel maps the LOG_LEVEL string onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
