package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/dispatch"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/event"
)

type eventSource interface {
	PendingEvents(ctx context.Context, limit int) ([]event.Tag, error)
}

type tagDispatcher interface {
	Dispatch(ctx context.Context, evt event.Tag) (dispatch.Result, error)
}

type attemptEmitter interface {
	Emit(ctx context.Context, roomID, eventID, outcome, detail string)
}

// dispatchLoop drains the pending event queue on a fixed interval.
//
// A failed dispatch leaves the event unclaimed, so it reappears in the
// next batch; the poll interval is the retry backoff.
type dispatchLoop struct {
	store        eventSource
	dispatcher   tagDispatcher
	emitter      attemptEmitter
	pollInterval time.Duration
	batchSize    int
}

func (l *dispatchLoop) run(ctx context.Context) error {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		if err := l.drain(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("drain pending events: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (l *dispatchLoop) drain(ctx context.Context) error {
	pending, err := l.store.PendingEvents(ctx, l.batchSize)
	if err != nil {
		return err
	}
	for _, evt := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := l.dispatcher.Dispatch(ctx, evt)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Printf("dispatch event %s in room %s: %v", evt.ID, evt.RoomID, err)
			l.emitter.Emit(ctx, evt.RoomID, evt.ID, "failed", err.Error())
			continue
		}
		if res.Ended {
			log.Printf("room %s round ended by event %s", evt.RoomID, evt.ID)
		}
		l.emitter.Emit(ctx, evt.RoomID, evt.ID, string(res.Outcome), res.Detail)
	}
	return nil
}
