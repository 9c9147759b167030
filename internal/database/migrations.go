package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS obligations (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			amount DECIMAL(12, 2) NOT NULL,
			category TEXT,
			due_date DATE,
			due_time TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'UnPaid',
			photo_file_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_obligations_user_id ON obligations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_obligations_status ON obligations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_obligations_due_date ON obligations(due_date)`,

		`CREATE TABLE IF NOT EXISTS items (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			price DECIMAL(12, 2) NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'InStock',
			photo_file_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_items_user_id ON items(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// SeedCategories inserts the default bill/utility categories.
func SeedCategories(ctx context.Context, pool *pgxpool.Pool) error {
	for _, cat := range models.DefaultCategories {
		_, err := pool.Exec(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			cat,
		)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", cat, err)
		}
	}

	return nil
}
