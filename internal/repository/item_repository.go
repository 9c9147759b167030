package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/billkeeper/internal/database"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// ItemRepository handles household item database operations.
type ItemRepository struct {
	db database.PGXDB
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(db database.PGXDB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, user_id, name, price, quantity, status, photo_file_id, created_at, updated_at`

// Create adds a new item. Status defaults to InStock.
func (r *ItemRepository) Create(ctx context.Context, i *models.Item) error {
	if i.Status == "" {
		i.Status = models.ItemStatusInStock
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO items (user_id, name, price, quantity, status, photo_file_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, i.UserID, i.Name, i.Price, i.Quantity, i.Status, i.PhotoFileID,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetByID retrieves an item by ID.
func (r *ItemRepository) GetByID(ctx context.Context, id int) (*models.Item, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM items WHERE id = $1
	`, id)
	i, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return i, nil
}

// GetByUserID retrieves all items for a user, in-stock first, newest first.
func (r *ItemRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE user_id = $1
		ORDER BY status = 'InStock' DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Update persists all mutable fields of an item.
func (r *ItemRepository) Update(ctx context.Context, i *models.Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE items
		SET name = $2, price = $3, quantity = $4, status = $5, photo_file_id = $6, updated_at = NOW()
		WHERE id = $1
	`, i.ID, i.Name, i.Price, i.Quantity, i.Status, i.PhotoFileID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d not found", i.ID)
	}
	return nil
}

// SetStatus updates only the stock status of an item.
func (r *ItemRepository) SetStatus(ctx context.Context, id int, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE items SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to set item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d not found", id)
	}
	return nil
}

// Delete removes an item by ID.
func (r *ItemRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func scanItem(row interface{ Scan(dest ...any) error }) (*models.Item, error) {
	var i models.Item
	if err := row.Scan(
		&i.ID, &i.UserID, &i.Name, &i.Price, &i.Quantity,
		&i.Status, &i.PhotoFileID, &i.CreatedAt, &i.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &i, nil
}

func scanItems(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.Item, error) {
	var items []models.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}
