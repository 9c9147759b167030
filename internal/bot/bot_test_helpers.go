package bot

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billkeeper/internal/bot/mocks"
	"gitlab.com/yelinaung/billkeeper/internal/config"
	"gitlab.com/yelinaung/billkeeper/internal/database"
	"gitlab.com/yelinaung/billkeeper/internal/reminder"
	"gitlab.com/yelinaung/billkeeper/internal/repository"
)

// TestDB is a convenience wrapper around database.TestDB for bot tests.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool := database.TestDB(t)

	ctx := context.Background()
	if err := database.RunMigrations(ctx, pool); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if err := database.SeedCategories(ctx, pool); err != nil {
		t.Fatalf("failed to seed categories: %v", err)
	}

	t.Cleanup(func() {
		database.CleanupTables(t, pool)
	})

	return pool
}

// setupTestBot creates a Bot instance for testing with database.
//
//nolint:unused // Used in test files
func setupTestBot(t *testing.T, pool *pgxpool.Pool) (*Bot, *mocks.MockBot) {
	t.Helper()

	cfg := &config.Config{
		TelegramBotToken:    "test-token",
		DatabaseURL:         "test-url",
		WhitelistedUserIDs:  []int64{123456},
		Timezone:            "UTC",
		TickInterval:        time.Millisecond,
		AlarmRepeatInterval: time.Minute,
	}

	mockBot := mocks.NewMockBot()

	b := &Bot{
		cfg:            cfg,
		loc:            time.UTC,
		userRepo:       repository.NewUserRepository(pool),
		obligationRepo: repository.NewObligationRepository(pool),
		itemRepo:       repository.NewItemRepository(pool),
		geminiClient:   nil,
		messageSender:  mockBot,
	}

	registry := reminder.NewRegistry(
		newSounder(b, cfg.AlarmRepeatInterval),
		newNotifier(b),
		newAlerter(b),
	)
	b.engine = reminder.NewEngine(b.obligationRepo, registry, cfg.TickInterval, b.loc)

	return b, mockBot
}

// mustParseDecimal parses a decimal string or panics (for test data).
//
//nolint:unused // Used in test files
func mustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("invalid decimal in test: " + s)
	}
	return d
}
