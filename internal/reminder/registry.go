package reminder

import (
	"context"
	"slices"
	"sync"

	"gitlab.com/yelinaung/billkeeper/internal/logger"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// Sound is a running alarm playback handle. Stop pauses and releases it.
type Sound interface {
	Stop()
}

// Sounder starts a looping alarm sound for an obligation.
type Sounder interface {
	Start(ctx context.Context, o models.Obligation) (Sound, error)
}

// Notifier raises a one-shot platform notification for an obligation.
// Best-effort: failures are logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, o models.Obligation) error
}

// Alerter delivers a single fallback alert when the sound sink cannot start.
type Alerter interface {
	Alert(ctx context.Context, o models.Obligation)
}

// Registry owns the active-alarm set and every sound handle. No other
// component may start or stop a sound directly.
type Registry struct {
	sounder  Sounder
	notifier Notifier
	alerter  Alerter

	mu     sync.Mutex
	active map[int]Sound // nil value: ringing without a handle (fallback path)
}

// NewRegistry creates a Registry. notifier and alerter may be nil.
func NewRegistry(sounder Sounder, notifier Notifier, alerter Alerter) *Registry {
	return &Registry{
		sounder:  sounder,
		notifier: notifier,
		alerter:  alerter,
		active:   make(map[int]Sound),
	}
}

// Trigger transitions an obligation into the ringing state. It is idempotent:
// a second call while the obligation is still ringing is a no-op.
//
// If the sound sink fails to start, a single fallback alert is delivered and
// the obligation is still marked active so the scheduler does not retry on
// every tick.
func (r *Registry) Trigger(ctx context.Context, o models.Obligation) {
	r.mu.Lock()
	if _, ringing := r.active[o.ID]; ringing {
		r.mu.Unlock()
		return
	}
	// Reserve the id before starting the sink. Start can block on the
	// network; holding the lock across it would stall Stop and the tick.
	r.active[o.ID] = nil
	r.mu.Unlock()

	sound, err := r.sounder.Start(ctx, o)

	r.mu.Lock()
	if _, reserved := r.active[o.ID]; !reserved {
		// Stopped while the sink was starting. Release the fresh handle.
		r.mu.Unlock()
		if sound != nil {
			sound.Stop()
		}
		return
	}
	if err == nil {
		r.active[o.ID] = sound
	}
	r.mu.Unlock()

	if err != nil {
		logger.Log.Error().Err(err).Int("obligation_id", o.ID).Msg("Failed to start alarm sound, falling back to alert")
		if r.alerter != nil {
			r.alerter.Alert(ctx, o)
		}
	}

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, o); err != nil {
			logger.Log.Warn().Err(err).Int("obligation_id", o.ID).Msg("Failed to send alarm notification")
		}
	}

	logger.Log.Info().
		Int("obligation_id", o.ID).
		Str("name", o.Name).
		Msg("Alarm ringing")
}

// Stop releases the sound handle for an obligation and removes it from the
// active set. Calling Stop for an obligation that is not ringing is a no-op.
func (r *Registry) Stop(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sound, ringing := r.active[id]
	if !ringing {
		return
	}
	if sound != nil {
		sound.Stop()
	}
	delete(r.active, id)

	logger.Log.Info().Int("obligation_id", id).Msg("Alarm stopped")
}

// StopAll releases every active sound. Called on teardown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, sound := range r.active {
		if sound != nil {
			sound.Stop()
		}
		delete(r.active, id)
	}
}

// IsRinging reports whether an obligation currently has an active alarm.
func (r *Registry) IsRinging(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ringing := r.active[id]
	return ringing
}

// ActiveIDs returns the sorted ids of all ringing obligations.
func (r *Registry) ActiveIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
