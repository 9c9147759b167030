package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"single word", "Electricity", nil},
		{"two words", "Water Bill", nil},
		{"trims surrounding spaces", "  Internet  ", nil},
		{"empty", "", ErrNameRequired},
		{"only spaces", "   ", ErrNameRequired},
		{"digits rejected", "123Power", ErrNameNotAlpha},
		{"trailing digits rejected", "Netflix2", ErrNameNotAlpha},
		{"punctuation rejected", "Wi-Fi", ErrNameNotAlpha},
		{"double space rejected", "Water  Bill", ErrNameNotAlpha},
		{"at the limit", strings.Repeat("a", MaxObligationNameLength), nil},
		{"over the limit", strings.Repeat("a", MaxObligationNameLength+1), ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateName(tt.input)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	t.Run("accepts whole and two-decimal amounts", func(t *testing.T) {
		t.Parallel()
		for _, input := range []string{"45", "45.5", "45.00", "0.01", " 100 "} {
			amount, err := ParseAmount(input)
			require.NoError(t, err, "input %q", input)
			require.True(t, amount.IsPositive())
		}
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAmount("abc")
		require.ErrorIs(t, err, ErrAmountInvalid)
	})

	t.Run("rejects zero and negatives", func(t *testing.T) {
		t.Parallel()
		for _, input := range []string{"0", "-5", "-0.01"} {
			_, err := ParseAmount(input)
			require.ErrorIs(t, err, ErrAmountNotPositive, "input %q", input)
		}
	})

	t.Run("rejects more than two decimal places", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAmount("5.123")
		require.ErrorIs(t, err, ErrAmountPrecision)
	})
}

func TestValidateDueDate(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	now := time.Date(2026, 3, 15, 18, 30, 0, 0, loc)

	t.Run("accepts today even late in the day", func(t *testing.T) {
		t.Parallel()
		today := time.Date(2026, 3, 15, 0, 0, 0, 0, loc)
		require.NoError(t, ValidateDueDate(today, now, loc))
	})

	t.Run("accepts future dates", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, ValidateDueDate(now.AddDate(0, 1, 0), now, loc))
	})

	t.Run("rejects yesterday", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, ValidateDueDate(now.AddDate(0, 0, -1), now, loc), ErrDueDateInPast)
	})
}

func TestValidatePhotoName(t *testing.T) {
	t.Parallel()

	t.Run("accepts jpeg extensions", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"bill.jpg", "bill.jpeg", "BILL.JPG", "scan.Jpeg"} {
			require.NoError(t, ValidatePhotoName(name), "name %q", name)
		}
	})

	t.Run("rejects everything else", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"bill.png", "bill.gif", "bill.pdf", "bill", "bill.jpg.png"} {
			require.ErrorIs(t, ValidatePhotoName(name), ErrPhotoFormat, "name %q", name)
		}
	})
}

func TestValidateObligation(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, loc)

	valid := func() *Obligation {
		due := now.AddDate(0, 0, 7)
		return &Obligation{
			Name:    "Electricity",
			Amount:  decimal.RequireFromString("45.00"),
			DueDate: &due,
		}
	}

	t.Run("passes a well-formed obligation", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, ValidateObligation(valid(), now, loc))
	})

	t.Run("nil due date is allowed", func(t *testing.T) {
		t.Parallel()
		o := valid()
		o.DueDate = nil
		require.NoError(t, ValidateObligation(o, now, loc))
	})

	t.Run("bad name fails", func(t *testing.T) {
		t.Parallel()
		o := valid()
		o.Name = "Bill 42"
		require.ErrorIs(t, ValidateObligation(o, now, loc), ErrNameNotAlpha)
	})

	t.Run("bad amount fails", func(t *testing.T) {
		t.Parallel()
		o := valid()
		o.Amount = decimal.Zero
		require.ErrorIs(t, ValidateObligation(o, now, loc), ErrAmountNotPositive)
	})

	t.Run("past due date fails", func(t *testing.T) {
		t.Parallel()
		o := valid()
		past := now.AddDate(0, 0, -1)
		o.DueDate = &past
		require.ErrorIs(t, ValidateObligation(o, now, loc), ErrDueDateInPast)
	})
}

func TestValidateItem(t *testing.T) {
	t.Parallel()

	valid := func() *Item {
		return &Item{
			Name:     "Dish Soap",
			Price:    decimal.RequireFromString("3.50"),
			Quantity: 2,
		}
	}

	t.Run("accepts a valid item", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, ValidateItem(valid()))
	})

	t.Run("accepts digits in the name", func(t *testing.T) {
		t.Parallel()
		i := valid()
		i.Name = "AA Batteries 4pk"
		require.NoError(t, ValidateItem(i))
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		t.Parallel()
		i := valid()
		i.Name = "   "
		require.ErrorIs(t, ValidateItem(i), ErrItemNameRequired)
	})

	t.Run("rejects an overlong name", func(t *testing.T) {
		t.Parallel()
		i := valid()
		i.Name = strings.Repeat("a", MaxItemNameLength+1)
		require.ErrorIs(t, ValidateItem(i), ErrItemNameTooLong)
	})

	t.Run("rejects a non-positive price", func(t *testing.T) {
		t.Parallel()
		i := valid()
		i.Price = decimal.Zero
		require.ErrorIs(t, ValidateItem(i), ErrAmountNotPositive)
	})

	t.Run("rejects excess price precision", func(t *testing.T) {
		t.Parallel()
		i := valid()
		i.Price = decimal.RequireFromString("3.555")
		require.ErrorIs(t, ValidateItem(i), ErrAmountPrecision)
	})

	t.Run("rejects a zero quantity", func(t *testing.T) {
		t.Parallel()
		i := valid()
		i.Quantity = 0
		require.ErrorIs(t, ValidateItem(i), ErrQuantityInvalid)
	})
}
