package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	BotToken      string `env:"BOT_TOKEN"`
	ServerURL     string `env:"SERVER_URL"`
	RedisURL      string `env:"REDIS_URL"`
	GolikeBaseURL string `env:"GOLIKE_BASE_URL" default:"https://gateway.golike.net"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`

	// WorkersPerPlatform controls how many polling workers a session spawns per
	// enabled platform. The historical behaviour is exactly one.
	WorkersPerPlatform int `env:"WORKERS_PER_PLATFORM" default:"1"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"BOT_TOKEN": cfg.BotToken,
		"REDIS_URL": cfg.RedisURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.ServerURL != "" && !strings.HasPrefix(cfg.ServerURL, "https://") {
		return errors.New("SERVER_URL must be an https:// URL")
	}

	if cfg.WorkersPerPlatform < 1 {
		return fmt.Errorf("WORKERS_PER_PLATFORM must be at least 1, got %d", cfg.WorkersPerPlatform)
	}

	return nil
}
