// Package config handles application configuration from environment variables
// and the rails file.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64
	RailsFile        string

	CheckInterval time.Duration
	RailCacheTTL  time.Duration

	ViewingCap     int
	AttributionCap int

	RecencyWindow int
	PenaltyCap    float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	var allowedUsers []int64
	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			allowedUsers = append(allowedUsers, uid)
		}
	}

	cfg := &Config{
		TelegramBotToken: token,
		DatabasePath:     envOr("DATABASE_PATH", "./data/ampere.db"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		AllowedUsers:     allowedUsers,
		RailsFile:        envOr("RAILS_FILE", "./rails.yaml"),
	}

	var err error
	if cfg.CheckInterval, err = durationEnv("CHECK_INTERVAL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RailCacheTTL, err = durationEnv("RAIL_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ViewingCap, err = intEnv("VIEWING_CAP", 300, 1); err != nil {
		return nil, err
	}
	if cfg.AttributionCap, err = intEnv("ATTRIBUTION_CAP", 600, 1); err != nil {
		return nil, err
	}
	if cfg.RecencyWindow, err = intEnv("RANK_RECENCY_WINDOW", 120, 0); err != nil {
		return nil, err
	}
	penaltyCap, err := intEnv("RANK_PENALTY_CAP", 6, 0)
	if err != nil {
		return nil, err
	}
	cfg.PenaltyCap = float64(penaltyCap)

	return cfg, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	return len(c.AllowedUsers) == 0 || slices.Contains(c.AllowedUsers, userID)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q in %s", raw, key)
	}
	return d, nil
}

func intEnv(key string, def, minimum int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("invalid integer %q in %s, must be at least %d", raw, key, minimum)
	}
	return n, nil
}
