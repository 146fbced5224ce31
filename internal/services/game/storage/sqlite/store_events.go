package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/chasse.space/internal/platform/id"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/event"
)

// AppendEvent appends an immutable event to the room's journal, assigning
// ID and CreatedAt when absent.
func (s *Store) AppendEvent(ctx context.Context, evt event.Tag) (event.Tag, error) {
	if err := ctx.Err(); err != nil {
		return event.Tag{}, err
	}
	if err := s.ready(); err != nil {
		return event.Tag{}, err
	}
	if strings.TrimSpace(evt.RoomID) == "" {
		return event.Tag{}, fmt.Errorf("room id is required")
	}

	if evt.ID == "" {
		generated, err := id.NewID()
		if err != nil {
			return event.Tag{}, fmt.Errorf("generate event id: %w", err)
		}
		evt.ID = generated
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}
	evt.CreatedAt = evt.CreatedAt.UTC().Truncate(time.Millisecond)

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO events (id, room_id, type, hunter_uid, victim_uid, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		evt.ID,
		evt.RoomID,
		string(evt.Type),
		evt.HunterUID,
		evt.VictimUID,
		toMillis(evt.CreatedAt),
	)
	if err != nil {
		return event.Tag{}, fmt.Errorf("append event: %w", err)
	}
	return evt, nil
}

// PendingEvents lists appended events whose idempotence marker is still
// absent, oldest first.
func (s *Store) PendingEvents(ctx context.Context, limit int) ([]event.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT e.id, e.room_id, e.type, e.hunter_uid, e.victim_uid, e.created_at
		 FROM events e
		 LEFT JOIN event_markers m ON m.event_id = e.id
		 WHERE m.event_id IS NULL
		 ORDER BY e.created_at, e.id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	defer rows.Close()

	var pending []event.Tag
	for rows.Next() {
		var evt event.Tag
		var eventType string
		var createdAt int64
		if err := rows.Scan(&evt.ID, &evt.RoomID, &eventType, &evt.HunterUID, &evt.VictimUID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Type = event.Type(eventType)
		evt.CreatedAt = fromMillis(createdAt)
		pending = append(pending, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	return pending, nil
}
