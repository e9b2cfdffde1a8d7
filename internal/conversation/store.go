// Package conversation keeps the per-user message history the assistant
// replays to the model on every turn.  A user's history expires as a whole
// after an idle period measured from the last write and never grows past
// a fixed number of turns; the oldest turns are dropped first.
package conversation

import (
	"context"
	"time"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

// Store is the contract shared by the Redis and in-memory backends.
// Appends for the same user are applied atomically and in call order.
type Store interface {
	// History returns the user's turns, oldest first.  An unknown or
	// expired user yields an empty slice.
	History(ctx context.Context, userID string) ([]model.Turn, error)
	// Append adds turns to the end of the user's history and restarts
	// its idle timer.
	Append(ctx context.Context, userID string, turns ...model.Turn) error
	// Clear drops the user's history.
	Clear(ctx context.Context, userID string) error
}

// Options are common to both backends.
type Options struct {
	TTL      time.Duration // idle lifetime of a user's history
	MaxTurns int           // turns kept per user
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 40 * time.Minute
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = 50
	}
	return o
}
