package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth; when empty the API runs unauthenticated (local use).
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Generation history
	HistoryTTL time.Duration
	HistoryMax int

	// Default city for the legacy city-line rewrite.
	DefaultCity string
}

func Load() Config {
	cfg := Config{
		Port:           envOr("PORT", "8090"),
		APIKey:         os.Getenv("OFFERGEN_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 26214400), // 25MB
		HistoryTTL:     envDuration("HISTORY_TTL", 24*time.Hour),
		HistoryMax:     envInt("HISTORY_MAX", 100),
		DefaultCity:    envOr("DEFAULT_CITY", "Buenos Aires"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 26214400
	}
	if cfg.HistoryTTL <= 0 {
		cfg.HistoryTTL = 24 * time.Hour
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = 100
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.DefaultCity == "" {
		return fmt.Errorf("DEFAULT_CITY must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
