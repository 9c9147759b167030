package models

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors returned before an obligation is persisted.
var (
	ErrNameRequired      = errors.New("name is required")
	ErrNameTooLong       = fmt.Errorf("name must be at most %d characters", MaxObligationNameLength)
	ErrNameNotAlpha      = errors.New("name must contain only letters and spaces")
	ErrAmountInvalid     = errors.New("amount must be a number")
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrAmountPrecision   = errors.New("amount must have at most 2 decimal places")
	ErrDueDateInPast     = errors.New("due date must not be in the past")
	ErrPhotoFormat       = errors.New("photo must be a JPEG image")

	ErrItemNameRequired = errors.New("item name is required")
	ErrItemNameTooLong  = fmt.Errorf("item name must be at most %d characters", MaxItemNameLength)
	ErrQuantityInvalid  = errors.New("quantity must be a positive whole number")
)

var nameRegex = regexp.MustCompile(`^[A-Za-z]+(?: [A-Za-z]+)*$`)

// ValidateName checks that the obligation name is non-empty, alphabetic and
// within the length limit.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > MaxObligationNameLength {
		return ErrNameTooLong
	}
	if !nameRegex.MatchString(name) {
		return ErrNameNotAlpha
	}
	return nil
}

// ParseAmount parses and validates a monetary amount: positive, at most two
// fractional digits.
func ParseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero, ErrAmountInvalid
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ValidateAmount checks an already-parsed amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountNotPositive
	}
	if amount.Exponent() < -2 {
		return ErrAmountPrecision
	}
	return nil
}

// ValidateDueDate checks that the due date is today or later in loc.
// A due date of today is accepted even if the due time has passed.
func ValidateDueDate(dueDate time.Time, now time.Time, loc *time.Location) error {
	n := now.In(loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	d := dueDate.In(loc)
	due := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	if due.Before(today) {
		return ErrDueDateInPast
	}
	return nil
}

// ValidatePhotoName restricts bill photo attachments to a single image format.
func ValidatePhotoName(filename string) error {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return nil
	default:
		return ErrPhotoFormat
	}
}

// ValidateItem runs field validations before an item is persisted. Item names
// are free-form (brands and pack sizes carry digits), unlike bill names.
func ValidateItem(i *Item) error {
	name := strings.TrimSpace(i.Name)
	if name == "" {
		return ErrItemNameRequired
	}
	if len(name) > MaxItemNameLength {
		return ErrItemNameTooLong
	}
	if err := ValidateAmount(i.Price); err != nil {
		return err
	}
	if i.Quantity < 1 {
		return ErrQuantityInvalid
	}
	return nil
}

// ValidateObligation runs all field validations before create/update.
func ValidateObligation(o *Obligation, now time.Time, loc *time.Location) error {
	if err := ValidateName(o.Name); err != nil {
		return err
	}
	if err := ValidateAmount(o.Amount); err != nil {
		return err
	}
	if o.DueDate != nil {
		if err := ValidateDueDate(*o.DueDate, now, loc); err != nil {
			return err
		}
	}
	return nil
}
