package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	Timezone      string
}

// Load reads configuration from the environment with sane defaults.
// A .env file in the working directory is applied first when present.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Timezone:      strings.TrimSpace(os.Getenv("TIMEZONE")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskdesk.db"
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}
