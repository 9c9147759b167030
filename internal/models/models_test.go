package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObligationDueAt(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)

	date := time.Date(2026, 4, 10, 0, 0, 0, 0, loc)

	t.Run("combines date and time in location", func(t *testing.T) {
		t.Parallel()
		o := &Obligation{DueDate: &date, DueTime: "18:30"}
		due, ok := o.DueAt(loc)
		require.True(t, ok)
		require.Equal(t, time.Date(2026, 4, 10, 18, 30, 0, 0, loc), due)
	})

	t.Run("no due date means no due moment", func(t *testing.T) {
		t.Parallel()
		o := &Obligation{DueTime: "18:30"}
		_, ok := o.DueAt(loc)
		require.False(t, ok)
	})

	t.Run("no due time means no due moment", func(t *testing.T) {
		t.Parallel()
		o := &Obligation{DueDate: &date}
		_, ok := o.DueAt(loc)
		require.False(t, ok)
	})

	t.Run("malformed due time means no due moment", func(t *testing.T) {
		t.Parallel()
		o := &Obligation{DueDate: &date, DueTime: "6pm"}
		_, ok := o.DueAt(loc)
		require.False(t, ok)
	})
}

func TestObligationIsPaid(t *testing.T) {
	t.Parallel()

	require.True(t, (&Obligation{Status: StatusPaid}).IsPaid())
	require.False(t, (&Obligation{Status: StatusUnPaid}).IsPaid())
	require.False(t, (&Obligation{}).IsPaid())
}
