package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item statuses. An item cycles between being on hand and used up.
const (
	ItemStatusInStock  = "InStock"
	ItemStatusConsumed = "Consumed"
)

// MaxItemNameLength is the maximum allowed length for item names.
const MaxItemNameLength = 50

// Item is a tracked household supply with a purchase price and stock state.
type Item struct {
	ID          int
	UserID      int64
	Name        string
	Price       decimal.Decimal
	Quantity    int
	Status      string
	PhotoFileID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InStock reports whether the item is still on hand.
func (i *Item) InStock() bool {
	return i.Status == ItemStatusInStock
}
