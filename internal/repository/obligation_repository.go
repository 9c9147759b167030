package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billkeeper/internal/database"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// ObligationRepository handles obligation database operations.
type ObligationRepository struct {
	db database.PGXDB
}

// NewObligationRepository creates a new ObligationRepository.
func NewObligationRepository(db database.PGXDB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

const obligationColumns = `id, user_id, name, amount, category, due_date, due_time, status, photo_file_id, created_at, updated_at`

// Create adds a new obligation. Status defaults to UnPaid.
func (r *ObligationRepository) Create(ctx context.Context, o *models.Obligation) error {
	if o.Status == "" {
		o.Status = models.StatusUnPaid
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO obligations (user_id, name, amount, category, due_date, due_time, status, photo_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, o.UserID, o.Name, o.Amount, nullIfEmpty(o.Category), o.DueDate, o.DueTime, o.Status, o.PhotoFileID,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create obligation: %w", err)
	}
	return nil
}

// GetByID retrieves an obligation by ID.
func (r *ObligationRepository) GetByID(ctx context.Context, id int) (*models.Obligation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+obligationColumns+`
		FROM obligations WHERE id = $1
	`, id)
	o, err := scanObligation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	return o, nil
}

// GetByUserID retrieves all obligations for a user, soonest due first.
func (r *ObligationRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Obligation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+obligationColumns+`
		FROM obligations
		WHERE user_id = $1
		ORDER BY due_date ASC NULLS LAST, due_time ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	return scanObligations(rows)
}

// GetAll retrieves every obligation. Used to refresh the reminder cache.
func (r *ObligationRepository) GetAll(ctx context.Context) ([]models.Obligation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+obligationColumns+`
		FROM obligations
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	return scanObligations(rows)
}

// GetByUserIDAndDateRange retrieves a user's obligations due within [start, end).
func (r *ObligationRepository) GetByUserIDAndDateRange(
	ctx context.Context,
	userID int64,
	start, end time.Time,
) ([]models.Obligation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+obligationColumns+`
		FROM obligations
		WHERE user_id = $1 AND due_date IS NOT NULL AND due_date >= $2 AND due_date < $3
		ORDER BY due_date ASC, due_time ASC, id ASC
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations by date range: %w", err)
	}
	defer rows.Close()

	return scanObligations(rows)
}

// GetTotalByUserIDAndDateRange sums a user's obligation amounts due within [start, end).
func (r *ObligationRepository) GetTotalByUserIDAndDateRange(
	ctx context.Context,
	userID int64,
	start, end time.Time,
) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM obligations
		WHERE user_id = $1 AND due_date IS NOT NULL AND due_date >= $2 AND due_date < $3
	`, userID, start, end).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get total: %w", err)
	}
	return total, nil
}

// Update modifies an existing obligation.
func (r *ObligationRepository) Update(ctx context.Context, o *models.Obligation) error {
	_, err := r.db.Exec(ctx, `
		UPDATE obligations SET
			name = $2,
			amount = $3,
			category = $4,
			due_date = $5,
			due_time = $6,
			status = $7,
			photo_file_id = $8,
			updated_at = NOW()
		WHERE id = $1
	`, o.ID, o.Name, o.Amount, nullIfEmpty(o.Category), o.DueDate, o.DueTime, o.Status, o.PhotoFileID)
	if err != nil {
		return fmt.Errorf("failed to update obligation: %w", err)
	}
	return nil
}

// SetStatus updates only the payment status of an obligation.
func (r *ObligationRepository) SetStatus(ctx context.Context, id int, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE obligations SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to set obligation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("obligation %d not found", id)
	}
	return nil
}

// Delete removes an obligation by ID.
func (r *ObligationRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM obligations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanObligation(row interface{ Scan(dest ...any) error }) (*models.Obligation, error) {
	var o models.Obligation
	var category *string
	if err := row.Scan(
		&o.ID, &o.UserID, &o.Name, &o.Amount, &category, &o.DueDate, &o.DueTime,
		&o.Status, &o.PhotoFileID, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if category != nil {
		o.Category = *category
	}
	return &o, nil
}

// scanObligations is a helper to scan obligation rows.
func scanObligations(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.Obligation, error) {
	var obligations []models.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		obligations = append(obligations, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating obligations: %w", err)
	}
	return obligations, nil
}
