package config

import (
	"os"
	"strconv"
	"time"

	"cacamba_bot/internal/retry"

	"github.com/rs/zerolog/log"
)

type ResilienceConfig struct {
	SheetRead    retry.Config
	Notification retry.Config
}

// DefaultResilienceConfig reads the price sheet exactly once with no
// deadline. Operators opt into retries and timeouts through the environment.
var DefaultResilienceConfig = ResilienceConfig{
	SheetRead: retry.Config{
		MaxRetries: 0,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    0,
	},
	Notification: retry.Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    10 * time.Second,
	},
}

// LoadResilienceConfig overlays SHEETS_MAX_RETRIES, SHEETS_TIMEOUT and
// NTFY_MAX_RETRIES on top of DefaultResilienceConfig.
func LoadResilienceConfig() ResilienceConfig {
	cfg := DefaultResilienceConfig
	cfg.SheetRead.MaxRetries = envInt("SHEETS_MAX_RETRIES", cfg.SheetRead.MaxRetries)
	cfg.SheetRead.Timeout = envDuration("SHEETS_TIMEOUT", cfg.SheetRead.Timeout)
	cfg.Notification.MaxRetries = envInt("NTFY_MAX_RETRIES", cfg.Notification.MaxRetries)
	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Warn().Str("key", key).Str("value", raw).Int("default", fallback).Msg("Invalid integer in environment, using default")
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Warn().Str("key", key).Str("value", raw).Dur("default", fallback).Msg("Invalid duration in environment, using default")
		return fallback
	}
	return v
}
