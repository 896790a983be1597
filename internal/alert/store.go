package alert

import (
	"context"
	"errors"

	"github.com/Alias1177/SmartMoney/internal/model"
)

// ErrNilStore is returned when a Deduplicator is built without a store.
var ErrNilStore = errors.New("alert store is nil")

// State maps an asset key to its last emitted BUY or SELL decision.
// Assets that were never alerted are absent.
type State map[string]model.Decision

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Store persists alert state. Save always receives the complete state and
// Load returns an empty, non-nil State when nothing was saved yet.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}
