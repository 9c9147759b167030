// Package reminder implements the due-date reminder engine: a periodic
// countdown scheduler over tracked obligations and an idempotent per-obligation
// alarm registry.
package reminder

import (
	"fmt"
	"time"
)

// Countdown is the live time remaining until an obligation's due moment.
// It is derived state, recomputed from wall-clock time on every tick and
// never persisted.
type Countdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Expired bool
}

// Compute returns the countdown from now until due. A due moment at or before
// now yields a zeroed, expired countdown.
func Compute(now, due time.Time) Countdown {
	delta := due.Sub(now)
	if delta <= 0 {
		return Countdown{Expired: true}
	}
	secs := int(delta / time.Second)
	return Countdown{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}
}

// DueSoon classifies the countdown for urgency display: already expired, or
// due within the next 24 hours.
func (c Countdown) DueSoon() bool {
	return c.Expired || (c.Days == 0 && c.Hours < 24)
}

// String renders the countdown for the /due listing.
func (c Countdown) String() string {
	if c.Expired {
		return "overdue"
	}
	if c.Days > 0 {
		return fmt.Sprintf("%dd %02dh %02dm %02ds", c.Days, c.Hours, c.Minutes, c.Seconds)
	}
	return fmt.Sprintf("%02dh %02dm %02ds", c.Hours, c.Minutes, c.Seconds)
}
