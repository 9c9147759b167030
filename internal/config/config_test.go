package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("WHITELISTED_USER_IDS", "123")
}

func TestLoad(t *testing.T) {
	t.Run("loads all config from env", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GEMINI_API_KEY", "test-gemini-key")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "test-token", cfg.TelegramBotToken)
		require.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		require.Equal(t, "test-gemini-key", cfg.GeminiAPIKey)
	})

	t.Run("parses whitelisted user IDs with whitespace", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("WHITELISTED_USER_IDS", " 123 , 456 ,invalid, 789 ,")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, []int64{123, 456, 789}, cfg.WhitelistedUserIDs)
	})

	t.Run("parses whitelisted usernames stripping @", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("WHITELISTED_USERNAMES", "@alice, bob ,")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, []string{"alice", "bob"}, cfg.WhitelistedUsernames)
	})

	t.Run("defaults the engine timing knobs", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, DefaultTickInterval, cfg.TickInterval)
		require.Equal(t, DefaultAlarmRepeatInterval, cfg.AlarmRepeatInterval)
		require.Equal(t, DefaultTimezone, cfg.Timezone)
	})

	t.Run("overrides timing knobs from env", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TICK_INTERVAL", "5s")
		t.Setenv("ALARM_REPEAT_INTERVAL", "1m")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 5*time.Second, cfg.TickInterval)
		require.Equal(t, time.Minute, cfg.AlarmRepeatInterval)
	})

	t.Run("ignores invalid tick intervals", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TICK_INTERVAL", "-3s")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, DefaultTickInterval, cfg.TickInterval)
	})

	t.Run("ignores unknown timezones", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TIMEZONE", "Mars/Olympus")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, DefaultTimezone, cfg.Timezone)
	})

	t.Run("fails without required values", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		t.Setenv("DATABASE_URL", "")
		t.Setenv("WHITELISTED_USER_IDS", "")
		t.Setenv("WHITELISTED_USERNAMES", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN is required")
		require.Contains(t, err.Error(), "DATABASE_URL is required")
		require.Contains(t, err.Error(), "whitelisted user")
	})
}

func TestLocation(t *testing.T) {
	t.Parallel()

	t.Run("returns the configured location", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Timezone: "Asia/Colombo"}
		require.Equal(t, "Asia/Colombo", cfg.Location().String())
	})

	t.Run("falls back to UTC", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Timezone: "bogus"}
		require.Equal(t, time.UTC, cfg.Location())
	})
}

func TestIsUserWhitelisted(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		WhitelistedUserIDs:   []int64{123},
		WhitelistedUsernames: []string{"alice"},
	}

	require.True(t, cfg.IsUserWhitelisted(123, ""))
	require.True(t, cfg.IsUserWhitelisted(0, "alice"))
	require.True(t, cfg.IsUserWhitelisted(0, "@Alice"))
	require.False(t, cfg.IsUserWhitelisted(456, "bob"))
	require.False(t, cfg.IsUserWhitelisted(0, ""))
}
