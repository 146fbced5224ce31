package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// RecordAttempt appends one durable dispatch attempt record.
func (s *Store) RecordAttempt(ctx context.Context, attempt storage.AttemptRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(attempt.EventID) == "" {
		return fmt.Errorf("event id is required")
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO attempts (room_id, event_id, outcome, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		attempt.RoomID,
		attempt.EventID,
		attempt.Outcome,
		attempt.Detail,
		toMillis(attempt.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// ListAttempts returns dispatch attempt records, newest first.
func (s *Store) ListAttempts(ctx context.Context, limit int) ([]storage.AttemptRecord, error) {
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
		`SELECT id, room_id, event_id, outcome, detail, created_at
		 FROM attempts ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []storage.AttemptRecord
	for rows.Next() {
		var attempt storage.AttemptRecord
		var createdAt int64
		if err := rows.Scan(&attempt.ID, &attempt.RoomID, &attempt.EventID, &attempt.Outcome, &attempt.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempt.CreatedAt = fromMillis(createdAt)
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
