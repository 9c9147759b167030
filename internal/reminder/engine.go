package reminder

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/billkeeper/internal/logger"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// ObligationStore is the persistence surface the engine writes through.
// Implemented by repository.ObligationRepository.
type ObligationStore interface {
	Create(ctx context.Context, o *models.Obligation) error
	GetByID(ctx context.Context, id int) (*models.Obligation, error)
	GetAll(ctx context.Context) ([]models.Obligation, error)
	Update(ctx context.Context, o *models.Obligation) error
	SetStatus(ctx context.Context, id int, status string) error
	Delete(ctx context.Context, id int) error
}

// Engine wires the obligation store, the in-memory cache, the alarm registry
// and the countdown scheduler. Every mutation follows the same shape:
// validate, persist, adjust alarms, refresh the cache. Persistence failures
// are returned to the caller for a transient user message; in-memory state is
// not rolled back.
type Engine struct {
	store     ObligationStore
	cache     *Cache
	alarms    *Registry
	scheduler *Scheduler
	loc       *time.Location

	now func() time.Time
}

// NewEngine creates an Engine ticking at interval in loc.
func NewEngine(store ObligationStore, alarms *Registry, interval time.Duration, loc *time.Location) *Engine {
	cache := NewCache()
	return &Engine{
		store:     store,
		cache:     cache,
		alarms:    alarms,
		scheduler: NewScheduler(interval, loc, cache, alarms),
		loc:       loc,
		now:       time.Now,
	}
}

// Run loads the initial obligation snapshot and drives the scheduler until
// ctx is cancelled, then releases every active sound.
func (e *Engine) Run(ctx context.Context) {
	if err := e.Refresh(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Initial obligation load failed, starting with empty cache")
	}

	e.scheduler.Run(ctx)
	e.alarms.StopAll()
}

// Create validates and persists a new obligation, then refreshes the cache.
func (e *Engine) Create(ctx context.Context, o *models.Obligation) error {
	if err := models.ValidateObligation(o, e.now(), e.loc); err != nil {
		return err
	}
	o.Status = models.StatusUnPaid

	if err := e.store.Create(ctx, o); err != nil {
		return err
	}
	e.refreshAsync(ctx)
	return nil
}

// Update validates and persists changed fields. A transition to Paid stops
// any active alarm for the obligation.
func (e *Engine) Update(ctx context.Context, o *models.Obligation) error {
	if err := models.ValidateObligation(o, e.now(), e.loc); err != nil {
		return err
	}

	if err := e.store.Update(ctx, o); err != nil {
		return err
	}
	if o.IsPaid() {
		e.alarms.Stop(o.ID)
	}
	e.refreshAsync(ctx)
	return nil
}

// SetStatus toggles the payment status. Marking an obligation Paid always
// stops its alarm; while it remains Paid it cannot re-trigger.
func (e *Engine) SetStatus(ctx context.Context, id int, status string) error {
	if status != models.StatusPaid && status != models.StatusUnPaid {
		return fmt.Errorf("invalid status %q", status)
	}

	if err := e.store.SetStatus(ctx, id, status); err != nil {
		return err
	}
	if status == models.StatusPaid {
		e.alarms.Stop(id)
	}
	e.refreshAsync(ctx)
	return nil
}

// Delete stops any active alarm for the obligation, then removes the record.
// The sound resource is released even if the delete itself fails.
func (e *Engine) Delete(ctx context.Context, id int) error {
	e.alarms.Stop(id)

	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	e.refreshAsync(ctx)
	return nil
}

// Dismiss silences a ringing alarm without changing the obligation. While the
// obligation stays unpaid and overdue the scheduler will ring it again on a
// later tick; marking it Paid is the only way to keep it silent.
func (e *Engine) Dismiss(id int) {
	e.alarms.Stop(id)
}

// Now returns the engine's current time. Tests may swap the clock out.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Get returns a single obligation from the store.
func (e *Engine) Get(ctx context.Context, id int) (*models.Obligation, error) {
	return e.store.GetByID(ctx, id)
}

// Countdowns returns the countdown mapping as of the most recent tick.
func (e *Engine) Countdowns() map[int]Countdown {
	return e.scheduler.Snapshot()
}

// IsRinging reports whether an obligation's alarm is active.
func (e *Engine) IsRinging(id int) bool {
	return e.alarms.IsRinging(id)
}

// RingingIDs returns the ids of all currently ringing obligations.
func (e *Engine) RingingIDs() []int {
	return e.alarms.ActiveIDs()
}

// Refresh reloads the obligation cache from the store.
func (e *Engine) Refresh(ctx context.Context) error {
	obligations, err := e.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh obligations: %w", err)
	}
	e.cache.Replace(obligations)
	return nil
}

// refreshAsync refreshes the cache without blocking the caller's mutation
// path. Errors are logged; the next successful mutation resynchronizes.
func (e *Engine) refreshAsync(ctx context.Context) {
	if err := e.Refresh(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Obligation cache refresh failed")
	}
}
