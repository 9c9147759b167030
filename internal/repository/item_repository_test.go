package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billkeeper/internal/database"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

func setupItemTest(t *testing.T) (*ItemRepository, *UserRepository, context.Context) {
	t.Helper()

	pool := database.TestDB(t)
	ctx := context.Background()

	err := database.RunMigrations(ctx, pool)
	require.NoError(t, err)
	database.CleanupTables(t, pool)

	return NewItemRepository(pool), NewUserRepository(pool), ctx
}

func TestItemRepository_Create(t *testing.T) {
	itemRepo, userRepo, ctx := setupItemTest(t)
	seedUser(t, userRepo, ctx, 111)

	t.Run("creates an item with defaults", func(t *testing.T) {
		i := &models.Item{
			UserID:   111,
			Name:     "Dish Soap",
			Price:    decimal.RequireFromString("3.50"),
			Quantity: 2,
		}

		err := itemRepo.Create(ctx, i)
		require.NoError(t, err)
		require.NotZero(t, i.ID)
		require.False(t, i.CreatedAt.IsZero())
		require.Equal(t, models.ItemStatusInStock, i.Status)
	})

	t.Run("stores the photo file id", func(t *testing.T) {
		i := &models.Item{
			UserID:      111,
			Name:        "AA Batteries",
			Price:       decimal.RequireFromString("4.00"),
			Quantity:    6,
			PhotoFileID: "file-xyz",
		}

		require.NoError(t, itemRepo.Create(ctx, i))

		stored, err := itemRepo.GetByID(ctx, i.ID)
		require.NoError(t, err)
		require.Equal(t, "file-xyz", stored.PhotoFileID)
		require.Equal(t, 6, stored.Quantity)
		require.Equal(t, "4.00", stored.Price.StringFixed(2))
	})
}

func TestItemRepository_GetByUserID(t *testing.T) {
	itemRepo, userRepo, ctx := setupItemTest(t)
	seedUser(t, userRepo, ctx, 111)
	seedUser(t, userRepo, ctx, 222)

	soap := &models.Item{UserID: 111, Name: "Soap", Price: decimal.RequireFromString("2.00"), Quantity: 1}
	require.NoError(t, itemRepo.Create(ctx, soap))
	bulbs := &models.Item{UserID: 111, Name: "Light Bulbs", Price: decimal.RequireFromString("8.00"), Quantity: 4}
	require.NoError(t, itemRepo.Create(ctx, bulbs))
	other := &models.Item{UserID: 222, Name: "Sponges", Price: decimal.RequireFromString("1.50"), Quantity: 3}
	require.NoError(t, itemRepo.Create(ctx, other))

	require.NoError(t, itemRepo.SetStatus(ctx, soap.ID, models.ItemStatusConsumed))

	items, err := itemRepo.GetByUserID(ctx, 111)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// In-stock items come first, consumed ones after.
	require.Equal(t, "Light Bulbs", items[0].Name)
	require.True(t, items[0].InStock())
	require.Equal(t, "Soap", items[1].Name)
	require.False(t, items[1].InStock())
}

func TestItemRepository_SetStatus(t *testing.T) {
	itemRepo, userRepo, ctx := setupItemTest(t)
	seedUser(t, userRepo, ctx, 111)

	i := &models.Item{UserID: 111, Name: "Detergent", Price: decimal.RequireFromString("6.25"), Quantity: 1}
	require.NoError(t, itemRepo.Create(ctx, i))

	t.Run("toggles consumed and back", func(t *testing.T) {
		require.NoError(t, itemRepo.SetStatus(ctx, i.ID, models.ItemStatusConsumed))
		stored, err := itemRepo.GetByID(ctx, i.ID)
		require.NoError(t, err)
		require.Equal(t, models.ItemStatusConsumed, stored.Status)

		require.NoError(t, itemRepo.SetStatus(ctx, i.ID, models.ItemStatusInStock))
		stored, err = itemRepo.GetByID(ctx, i.ID)
		require.NoError(t, err)
		require.True(t, stored.InStock())
	})

	t.Run("errors on unknown id", func(t *testing.T) {
		err := itemRepo.SetStatus(ctx, 99999, models.ItemStatusConsumed)
		require.ErrorContains(t, err, "not found")
	})
}

func TestItemRepository_Update(t *testing.T) {
	itemRepo, userRepo, ctx := setupItemTest(t)
	seedUser(t, userRepo, ctx, 111)

	i := &models.Item{UserID: 111, Name: "Trash Bags", Price: decimal.RequireFromString("5.00"), Quantity: 1}
	require.NoError(t, itemRepo.Create(ctx, i))

	i.Name = "Bin Liners"
	i.Price = decimal.RequireFromString("5.50")
	i.Quantity = 2
	require.NoError(t, itemRepo.Update(ctx, i))

	stored, err := itemRepo.GetByID(ctx, i.ID)
	require.NoError(t, err)
	require.Equal(t, "Bin Liners", stored.Name)
	require.Equal(t, "5.50", stored.Price.StringFixed(2))
	require.Equal(t, 2, stored.Quantity)
}

func TestItemRepository_Delete(t *testing.T) {
	itemRepo, userRepo, ctx := setupItemTest(t)
	seedUser(t, userRepo, ctx, 111)

	i := &models.Item{UserID: 111, Name: "Candles", Price: decimal.RequireFromString("3.00"), Quantity: 5}
	require.NoError(t, itemRepo.Create(ctx, i))

	require.NoError(t, itemRepo.Delete(ctx, i.ID))

	_, err := itemRepo.GetByID(ctx, i.ID)
	require.Error(t, err)
}
