// Package alert suppresses repeated notifications. It remembers, per asset,
// the last BUY or SELL that was emitted and only lets direction changes through.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/model"
)

// Event is a state-changing signal handed to the notifier.
type Event struct {
	ID        string         `json:"id"`
	Asset     string         `json:"asset"`
	Label     string         `json:"label,omitempty"`
	Signal    model.Signal   `json:"signal"`
	Previous  model.Decision `json:"previous,omitempty"`
	EmittedAt time.Time      `json:"emitted_at"`
}

// Deduplicator gates signals per asset.
//
// HOLD never changes state, so an asset that went BUY, HOLD, BUY alerts only
// once. A BUY or SELL different from the stored decision is emitted after the
// new state has been saved.
type Deduplicator struct {
	mu     sync.Mutex
	store  Store
	state  State
	now    func() time.Time
	logger zerolog.Logger
}

// New loads the persisted state once and returns a ready Deduplicator.
func New(ctx context.Context, store Store) (*Deduplicator, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading alert state: %w", err)
	}
	if state == nil {
		state = State{}
	}

	d := &Deduplicator{
		store:  store,
		state:  state,
		now:    time.Now,
		logger: log.With().Str("component", "alert_dedup").Logger(),
	}
	d.logger.Info().Int("assets", len(state)).Msg("Alert state loaded")
	return d, nil
}

// Observe feeds one signal through the state machine. It returns the event and
// true when the signal must be delivered. On a save error the in-memory state
// is left untouched and the error is returned.
func (d *Deduplicator) Observe(ctx context.Context, sig model.Signal) (Event, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !sig.Decision.Actionable() {
		return Event{}, false, nil
	}

	previous, alerted := d.state[sig.AssetKey]
	if alerted && previous == sig.Decision {
		d.logger.Debug().
			Str("asset", sig.AssetKey).
			Str("decision", string(sig.Decision)).
			Msg("Duplicate signal suppressed")
		return Event{}, false, nil
	}

	next := d.state.Clone()
	next[sig.AssetKey] = sig.Decision
	if err := d.store.Save(ctx, next); err != nil {
		return Event{}, false, fmt.Errorf("saving alert state for %s: %w", sig.AssetKey, err)
	}
	d.state = next

	return Event{
		ID:        uuid.NewString(),
		Asset:     sig.AssetKey,
		Signal:    sig,
		Previous:  previous,
		EmittedAt: d.now().UTC(),
	}, true, nil
}

// Last returns the stored decision for an asset.
func (d *Deduplicator) Last(asset string) (model.Decision, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.state[asset]
	return v, ok
}

// Snapshot returns a copy of the current state.
func (d *Deduplicator) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Clone()
}
