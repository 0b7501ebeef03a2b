// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds settings shared by the gate and the control-plane
type Config struct {
	DBPath          string         // BUNDLEGATE_DB_PATH (default "bundlegate.sqlite")
	SessionDBPath   string         // BUNDLEGATE_SESSION_DB_PATH (default "bundlegate-sessions.db")
	ListenAddr      string         // BUNDLEGATE_LISTEN_ADDR (default ":9000")
	TelegramToken   string         // BUNDLEGATE_TELEGRAM_TOKEN (required by the server)
	JWTSecret       string         // BUNDLEGATE_JWT_SECRET (required by the server)
	JWTTTL          time.Duration  // BUNDLEGATE_JWT_TTL (default 24h)
	AppIDHeader     string         // BUNDLEGATE_APP_ID_HEADER (default "APP_ID")
	OKResponse      string         // BUNDLEGATE_OK_RESPONSE (default "OK")
	BlockedResponse string         // BUNDLEGATE_BLOCKED_RESPONSE (default "BLOCKED")
	AppsPerPage     int            // BUNDLEGATE_APPS_PER_PAGE (default 10)
	Location        *time.Location // BUNDLEGATE_TIMEZONE (default UTC)
}

// Load reads configuration from the environment and applies defaults
func Load() (*Config, error) {
	c := &Config{
		DBPath:          envOrDefault("BUNDLEGATE_DB_PATH", "bundlegate.sqlite"),
		SessionDBPath:   envOrDefault("BUNDLEGATE_SESSION_DB_PATH", "bundlegate-sessions.db"),
		ListenAddr:      envOrDefault("BUNDLEGATE_LISTEN_ADDR", ":9000"),
		TelegramToken:   os.Getenv("BUNDLEGATE_TELEGRAM_TOKEN"),
		JWTSecret:       os.Getenv("BUNDLEGATE_JWT_SECRET"),
		AppIDHeader:     envOrDefault("BUNDLEGATE_APP_ID_HEADER", "APP_ID"),
		OKResponse:      envOrDefault("BUNDLEGATE_OK_RESPONSE", "OK"),
		BlockedResponse: envOrDefault("BUNDLEGATE_BLOCKED_RESPONSE", "BLOCKED"),
	}

	ttl, err := time.ParseDuration(envOrDefault("BUNDLEGATE_JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid BUNDLEGATE_JWT_TTL: %w", err)
	}
	c.JWTTTL = ttl

	perPage, err := strconv.Atoi(envOrDefault("BUNDLEGATE_APPS_PER_PAGE", "10"))
	if err != nil || perPage < 1 {
		return nil, fmt.Errorf("invalid BUNDLEGATE_APPS_PER_PAGE: %q", os.Getenv("BUNDLEGATE_APPS_PER_PAGE"))
	}
	c.AppsPerPage = perPage

	loc, err := time.LoadLocation(envOrDefault("BUNDLEGATE_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid BUNDLEGATE_TIMEZONE: %w", err)
	}
	c.Location = loc

	return c, nil
}

// ValidateServer checks the fields the server cannot run without.
// Провижининг-CLI этим полям не пользуется и их не требует.
func (c *Config) ValidateServer() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("BUNDLEGATE_TELEGRAM_TOKEN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("BUNDLEGATE_JWT_SECRET is required")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
