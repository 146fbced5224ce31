// Package telemetry records durable dispatch attempt outcomes.
//
// The emitter sits outside the resolution transaction: attempt records are
// observability data, and losing one never blocks or re-orders gameplay
// writes.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// Emitter persists one attempt record per dispatched event. A nil emitter
// or a nil store silently discards records.
type Emitter struct {
	store storage.AttemptStore
	clock func() time.Time
}

// NewEmitter constructs an Emitter backed by the given attempt store.
func NewEmitter(store storage.AttemptStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// WithClock overrides the emitter clock, for tests.
func (e *Emitter) WithClock(clock func() time.Time) *Emitter {
	if e != nil && clock != nil {
		e.clock = clock
	}
	return e
}

// Emit records the outcome of one dispatch attempt. Failures are logged
// and swallowed.
func (e *Emitter) Emit(ctx context.Context, roomID, eventID, outcome, detail string) {
	if e == nil || e.store == nil {
		return
	}
	err := e.store.RecordAttempt(ctx, storage.AttemptRecord{
		RoomID:    roomID,
		EventID:   eventID,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: e.clock().UTC(),
	})
	if err != nil {
		log.Printf("record attempt for event %s: %v", eventID, err)
	}
}
