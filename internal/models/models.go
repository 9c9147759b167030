// Package models defines the domain entities for the bill tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency used for all amounts.
const DefaultCurrency = "LKR"

// MaxObligationNameLength is the maximum allowed length for obligation names.
const MaxObligationNameLength = 25

// DueTimeLayout is the wire format for an obligation's due time-of-day.
const DueTimeLayout = "15:04"

// Obligation statuses.
const (
	StatusUnPaid = "UnPaid"
	StatusPaid   = "Paid"
)

// DefaultCategories lists the seeded utility/bill categories.
var DefaultCategories = []string{
	"Electricity",
	"Water",
	"Internet",
	"Gas",
	"Phone",
	"Rent",
	"Insurance",
	"Others",
}

// User represents a Telegram user.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Obligation is a trackable bill/utility with a due date and payment status.
type Obligation struct {
	ID          int
	UserID      int64
	Name        string
	Amount      decimal.Decimal
	Category    string
	DueDate     *time.Time // calendar date, time-of-day ignored
	DueTime     string     // "15:04", empty when the user set no time
	Status      string
	PhotoFileID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPaid reports whether the obligation has been settled.
func (o *Obligation) IsPaid() bool {
	return o.Status == StatusPaid
}

// DueAt combines DueDate and DueTime into an absolute due moment in loc.
// It returns ok=false when either part is missing or DueTime does not parse;
// such obligations are excluded from countdown tracking.
func (o *Obligation) DueAt(loc *time.Location) (time.Time, bool) {
	if o.DueDate == nil || o.DueTime == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DueTimeLayout, o.DueTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	d := o.DueDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}
