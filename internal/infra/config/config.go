package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken         string
	DatabaseURL           string
	LogLevel              string
	Environment           string
	CronSpecDueCheck      string // On-time reminder sweep
	CronSpecOverdueCheck  string // Past-threshold nudge sweep
	CronSpecDailyRollover string // Cycle completion announcement
	DueWindowSeconds      int    // How long a due reminder stays eligible after pill time
	OverdueWindowSeconds  int    // How long an overdue nudge stays eligible after the threshold
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDueCheck = os.Getenv("CRON_SPEC_DUE_CHECK")
	if cfg.CronSpecDueCheck == "" {
		cfg.CronSpecDueCheck = "* * * * *" // Default: every minute
	}

	cfg.CronSpecOverdueCheck = os.Getenv("CRON_SPEC_OVERDUE_CHECK")
	if cfg.CronSpecOverdueCheck == "" {
		cfg.CronSpecOverdueCheck = "*/5 * * * *" // Default: every 5 minutes
	}

	cfg.CronSpecDailyRollover = os.Getenv("CRON_SPEC_DAILY_ROLLOVER")
	if cfg.CronSpecDailyRollover == "" {
		cfg.CronSpecDailyRollover = "0 9 * * *" // Default: 9 AM daily
	}

	cfg.DueWindowSeconds, err = intEnv("DUE_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.OverdueWindowSeconds, err = intEnv("OVERDUE_WINDOW_SECONDS", 300)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return value, nil
}
