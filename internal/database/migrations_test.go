package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

func TestRunMigrations(t *testing.T) {
	pool := TestDB(t)
	ctx := context.Background()

	err := RunMigrations(ctx, pool)
	require.NoError(t, err)

	for _, table := range []string{"users", "categories", "obligations", "items"} {
		var exists bool
		err = pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_name = $1
			)
		`, table).Scan(&exists)
		require.NoError(t, err)
		require.True(t, exists, "table %s should exist", table)
	}

	// Migrations are idempotent.
	require.NoError(t, RunMigrations(ctx, pool))
}

func TestSeedCategories(t *testing.T) {
	pool := TestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, pool))
	require.NoError(t, SeedCategories(ctx, pool))

	var count int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)
	require.NoError(t, err)
	require.GreaterOrEqual(t, count, len(models.DefaultCategories))

	// Every default category must be present in the seeded table.
	for _, name := range models.DefaultCategories {
		var exists bool
		err = pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM categories WHERE name = $1)`, name).Scan(&exists)
		require.NoError(t, err)
		require.True(t, exists, "category %s should be seeded", name)
	}

	// Seeding twice does not duplicate.
	require.NoError(t, SeedCategories(ctx, pool))
	var recount int
	err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&recount)
	require.NoError(t, err)
	require.Equal(t, count, recount)
}
