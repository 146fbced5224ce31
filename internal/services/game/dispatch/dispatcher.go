// Package dispatch routes appended tag events through idempotence claim,
// mode resolution, and round termination.
//
// Every decision is made inside one room transaction against fresh reads.
// The idempotence marker commits in that same transaction, so a crash
// anywhere before commit leaves the event unclaimed and safe to retry,
// and an event is never claimed without its effects.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/event"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/mode"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/round"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// Outcome classifies what one dispatch did with an event.
type Outcome string

const (
	// OutcomeProcessed means the event mutated state exactly once.
	OutcomeProcessed Outcome = "processed"
	// OutcomeDuplicate means the idempotence marker was already present.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeRejected means a mode guard refused the tag silently.
	OutcomeRejected Outcome = "rejected"
	// OutcomeDropped means the event was filtered (malformed, unknown
	// room, or a room not in play).
	OutcomeDropped Outcome = "dropped"
)

// Result reports the outcome of one dispatch.
type Result struct {
	Outcome Outcome
	// Detail carries the guard reason or filter cause.
	Detail string
	// Ended is true when this event terminated the round.
	Ended bool
}

const defaultMaxTxAttempts = 5

// Dispatcher consumes tag events and applies per-mode resolution rules.
type Dispatcher struct {
	store         storage.GameStore
	registry      *mode.Registry
	rules         mode.Rules
	clock         func() time.Time
	tracer        trace.Tracer
	maxTxAttempts int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the dispatch clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithMaxTxAttempts bounds transaction re-execution on conflict.
func WithMaxTxAttempts(attempts int) Option {
	return func(d *Dispatcher) {
		if attempts > 0 {
			d.maxTxAttempts = attempts
		}
	}
}

// New constructs a Dispatcher. The registry memoizes its handlers for the
// dispatcher's lifetime; rules are normalized once here.
func New(store storage.GameStore, registry *mode.Registry, rules mode.Rules, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:         store,
		registry:      registry,
		rules:         rules.Normalized(),
		clock:         time.Now,
		tracer:        otel.Tracer("game/dispatch"),
		maxTxAttempts: defaultMaxTxAttempts,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch resolves one appended tag event. Guard rejections, duplicates,
// and malformed events are successful no-ops; only infrastructure failures
// return an error, leaving the event unclaimed for the caller's retry
// policy.
func (d *Dispatcher) Dispatch(ctx context.Context, evt event.Tag) (Result, error) {
	ctx, span := d.tracer.Start(ctx, "Dispatch",
		trace.WithAttributes(
			attribute.String("room.id", evt.RoomID),
			attribute.String("event.id", evt.ID),
		))
	defer span.End()

	if evt.RoomID == "" || evt.ID == "" {
		return Result{Outcome: OutcomeDropped, Detail: "missing identifiers"}, nil
	}

	var result Result
	run := func(ctx context.Context, tx storage.RoomTx) error {
		result = Result{}
		now := d.clock()
		claimed, err := tx.ClaimEvent(ctx, evt.ID)
		if err != nil {
			return fmt.Errorf("claim event: %w", err)
		}
		if !claimed {
			result = Result{Outcome: OutcomeDuplicate}
			return nil
		}

		// The marker is staged; everything below commits with it, so a
		// filtered event is permanently consumed with no other effect.
		if !evt.Validate() {
			result = Result{Outcome: OutcomeDropped, Detail: "malformed event"}
			return nil
		}

		rm, err := tx.Room(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			result = Result{Outcome: OutcomeDropped, Detail: "unknown room"}
			return nil
		}
		if err != nil {
			return fmt.Errorf("load room: %w", err)
		}
		if rm.State != room.StateRunning {
			result = Result{Outcome: OutcomeDropped, Detail: "room not running"}
			return nil
		}

		handler, err := d.registry.Resolve(rm.Mode)
		if err != nil {
			return fmt.Errorf("resolve mode %q: %w", rm.Mode, err)
		}

		eff, err := handler.OnTag(ctx, tx, mode.TagContext{
			Room:      rm,
			HunterUID: evt.HunterUID,
			VictimUID: evt.VictimUID,
			Now:       now,
			Rules:     d.rules,
		})
		if errors.Is(err, storage.ErrNotFound) {
			result = Result{Outcome: OutcomeDropped, Detail: "unknown player"}
			return nil
		}
		if err != nil {
			return fmt.Errorf("resolve tag: %w", err)
		}
		if !eff.Applied {
			result = Result{Outcome: OutcomeRejected, Detail: string(eff.Reason)}
			return nil
		}

		ended, err := round.Evaluate(ctx, tx, eff.Room, eff.HunterScore, now)
		if err != nil {
			return fmt.Errorf("evaluate round: %w", err)
		}
		result = Result{Outcome: OutcomeProcessed, Ended: ended}
		return nil
	}

	// Contention re-runs the whole read-decide-write unit from the top.
	var err error
	for attempt := 0; attempt < d.maxTxAttempts; attempt++ {
		err = d.store.RunRoomTx(ctx, evt.RoomID, run)
		if !errors.Is(err, storage.ErrConflict) {
			break
		}
	}
	if err != nil {
		return Result{}, err
	}

	span.SetAttributes(attribute.String("dispatch.outcome", string(result.Outcome)))
	return result, nil
}
