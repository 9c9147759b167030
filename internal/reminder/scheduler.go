package reminder

import (
	"context"
	"maps"
	"sync"
	"time"

	"gitlab.com/yelinaung/billkeeper/internal/logger"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// ObligationSource supplies the obligation snapshot read on each tick.
// List must not block on I/O; the tick loop never awaits the store.
type ObligationSource interface {
	List() []models.Obligation
}

// Scheduler recomputes every obligation's countdown on a fixed tick and hands
// overdue unpaid obligations to the alarm registry. It owns its ticker; Run
// returns when ctx is cancelled.
type Scheduler struct {
	interval time.Duration
	loc      *time.Location
	source   ObligationSource
	alarms   *Registry

	mu       sync.RWMutex
	snapshot map[int]Countdown
}

// NewScheduler creates a Scheduler ticking at interval in loc.
func NewScheduler(interval time.Duration, loc *time.Location, source ObligationSource, alarms *Registry) *Scheduler {
	return &Scheduler{
		interval: interval,
		loc:      loc,
		source:   source,
		alarms:   alarms,
		snapshot: make(map[int]Countdown),
	}
}

// Run drives the tick loop until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Log.Info().Dur("interval", s.interval).Msg("Countdown scheduler started")

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Countdown scheduler stopped")
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

// tick recomputes the full countdown mapping from absolute wall-clock time.
// The mapping is replaced wholesale; readers never observe a partial update.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	obligations := s.source.List()
	next := make(map[int]Countdown, len(obligations))

	for _, o := range obligations {
		due, ok := o.DueAt(s.loc)
		if !ok {
			// Missing or malformed due date/time: skip, not an error.
			continue
		}

		cd := Compute(now, due)
		next[o.ID] = cd

		if cd.Expired && !o.IsPaid() {
			s.alarms.Trigger(ctx, o)
		}
	}

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()
}

// Snapshot returns a copy of the countdown mapping as of the most recent tick.
func (s *Scheduler) Snapshot() map[int]Countdown {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.snapshot)
}
