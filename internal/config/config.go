// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the reminder engine timing knobs.
const (
	DefaultTickInterval        = time.Second
	DefaultAlarmRepeatInterval = 30 * time.Second
	DefaultTimezone            = "Asia/Colombo"
)

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken     string
	DatabaseURL          string
	GeminiAPIKey         string
	LogLevel             string
	WhitelistedUserIDs   []int64
	WhitelistedUsernames []string
	Timezone             string
	TickInterval         time.Duration
	AlarmRepeatInterval  time.Duration
	OTLPEndpoint         string
	TraceStdout          bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TraceStdout:      os.Getenv("TRACE_STDOUT") == "true",
	}

	cfg.Timezone = DefaultTimezone
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = tz
		}
	}

	cfg.TickInterval = DefaultTickInterval
	if s := os.Getenv("TICK_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			cfg.TickInterval = d
		}
	}

	cfg.AlarmRepeatInterval = DefaultAlarmRepeatInterval
	if s := os.Getenv("ALARM_REPEAT_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			cfg.AlarmRepeatInterval = d
		}
	}

	whitelistStr := os.Getenv("WHITELISTED_USER_IDS")
	if whitelistStr != "" {
		for idStr := range strings.SplitSeq(whitelistStr, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				continue
			}
			cfg.WhitelistedUserIDs = append(cfg.WhitelistedUserIDs, id)
		}
	}

	whitelistUsernames := os.Getenv("WHITELISTED_USERNAMES")
	if whitelistUsernames != "" {
		for username := range strings.SplitSeq(whitelistUsernames, ",") {
			username = strings.TrimSpace(username)
			if username == "" {
				continue
			}
			// Remove @ prefix if present
			username = strings.TrimPrefix(username, "@")
			cfg.WhitelistedUsernames = append(cfg.WhitelistedUsernames, username)
		}
	}

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if len(c.WhitelistedUserIDs) == 0 && len(c.WhitelistedUsernames) == 0 {
		errs = append(errs, "at least one whitelisted user (WHITELISTED_USER_IDS or WHITELISTED_USERNAMES) is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsUserWhitelisted checks if a Telegram user ID or username is in the whitelist.
// Returns true if either the user ID or username is whitelisted.
func (c *Config) IsUserWhitelisted(userID int64, username string) bool {
	// Check user ID whitelist
	if slices.Contains(c.WhitelistedUserIDs, userID) {
		return true
	}

	// Check username whitelist (case-insensitive)
	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, whitelisted := range c.WhitelistedUsernames {
			if strings.EqualFold(whitelisted, username) {
				return true
			}
		}
	}

	return false
}
