package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`

	// APIBase is the REST endpoint the client talks to, mirroring the
	// web UI's VITE_API_BASE.
	APIBase string `env:"CAREKEEP_API_BASE" envDefault:"http://localhost:5000/api" validate:"required,url"`

	// SocketURL is the realtime endpoint. Empty means "derive from APIBase".
	SocketURL string `env:"CAREKEEP_SOCKET_URL" validate:"omitempty,url"`

	// SessionFile overrides where the session slot is persisted.
	SessionFile string `env:"CAREKEEP_SESSION_FILE"`

	// MetricsPort is only bound by the long-running dashboard command.
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
}

func Load() (*Config, error) {
	// Best effort: a missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SessionPath resolves the session slot location, defaulting to
// <user config dir>/carekeep/session.json.
func (c *Config) SessionPath() (string, error) {
	if c.SessionFile != "" {
		return c.SessionFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "carekeep", "session.json"), nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
