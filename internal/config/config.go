package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sprintlens/internal/jira"
	"sprintlens/internal/query"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Jira             jira.Config
	SprintTTL        time.Duration
	ProjectTTL       time.Duration
	SprintFieldStyle query.SprintFieldStyle
}

// Load loads the configuration from .env files and environment
// variables. Log-sink paths are owned by logging.Init, which runs
// before this.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory first
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	style, err := parseSprintFieldStyle(getEnv("SPRINT_FIELD_STYLE", "auto"))
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:    getEnv("JIRA_URL", ""),
			Email:      getEnv("JIRA_EMAIL", ""),
			Token:      getEnv("JIRA_TOKEN", ""),
			PAT:        getEnv("JIRA_PAT", ""),
			Timeout:    time.Duration(getEnvInt("HTTP_TIMEOUT", 30)) * time.Second,
			PageSize:   getEnvInt("JIRA_PAGE_SIZE", 100),
			MaxResults: getEnvInt("JIRA_MAX_RESULTS", 1000),
			MaxPages:   getEnvInt("JIRA_MAX_PAGES", 20),
			Retry: jira.RetryPolicy{
				MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
				BaseDelay:   time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 300)) * time.Millisecond,
				Jitter:      getEnvFloat("RETRY_JITTER", 0.2),
			},
		},
		SprintTTL:        time.Duration(getEnvInt("CACHE_TTL_SPRINTS", 300)) * time.Second,
		ProjectTTL:       time.Duration(getEnvInt("CACHE_TTL_PROJECTS", 600)) * time.Second,
		SprintFieldStyle: style,
	}

	if cfg.Jira.BaseURL == "" {
		return nil, fmt.Errorf("JIRA_URL is not set")
	}
	if cfg.Jira.PAT == "" && (cfg.Jira.Email == "" || cfg.Jira.Token == "") {
		return nil, fmt.Errorf("set JIRA_PAT, or JIRA_EMAIL and JIRA_TOKEN")
	}

	return cfg, nil
}

func parseSprintFieldStyle(s string) (query.SprintFieldStyle, error) {
	switch s {
	case "auto", "":
		return query.StyleAuto, nil
	case "sprint":
		return query.StyleSprintField, nil
	case "customfield":
		return query.StyleCustomField, nil
	default:
		return query.StyleAuto, fmt.Errorf("invalid SPRINT_FIELD_STYLE %q (want auto, sprint or customfield)", s)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric environment value")
	}
	return fallback
}
