package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/chasse.space/internal/platform/timeouts"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// RunRoomTx executes fn inside an immediate transaction scoped to one
// room. SQLite busy/locked failures surface as storage.ErrConflict so the
// caller re-runs the whole unit.
func (s *Store) RunRoomTx(ctx context.Context, roomID string, fn func(ctx context.Context, tx storage.RoomTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(roomID) == "" {
		return fmt.Errorf("room id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.RoomTransaction)
	defer cancel()

	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapTxError(fmt.Errorf("begin tx: %w", err))
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, &roomTx{sqlTx: sqlTx, roomID: roomID}); err != nil {
		return mapTxError(err)
	}
	if err := sqlTx.Commit(); err != nil {
		return mapTxError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

type roomTx struct {
	sqlTx  *sql.Tx
	roomID string
}

// ClaimEvent test-and-sets the idempotence marker inside the transaction.
// The insert is ignored when the marker already exists, so RowsAffected
// distinguishes first claim from replay.
func (tx *roomTx) ClaimEvent(ctx context.Context, eventID string) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return false, fmt.Errorf("event id is required")
	}
	res, err := tx.sqlTx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO event_markers (event_id, room_id, claimed_at) VALUES (?, ?, ?)`,
		eventID,
		tx.roomID,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("claim event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim event rows affected: %w", err)
	}
	return affected > 0, nil
}

func (tx *roomTx) Room(ctx context.Context) (room.Room, error) {
	return scanRoom(tx.sqlTx.QueryRowContext(ctx, selectRoomSQL, tx.roomID))
}

func (tx *roomTx) PutRoom(ctx context.Context, rm room.Room) error {
	if rm.ID == "" {
		rm.ID = tx.roomID
	}
	if rm.ID != tx.roomID {
		return fmt.Errorf("room id %q outside transaction scope %q", rm.ID, tx.roomID)
	}
	args, err := roomArgs(rm)
	if err != nil {
		return err
	}
	if _, err := tx.sqlTx.ExecContext(ctx, upsertRoomSQL, args...); err != nil {
		return fmt.Errorf("put room: %w", err)
	}
	return nil
}

func (tx *roomTx) Player(ctx context.Context, uid string) (room.Player, error) {
	if strings.TrimSpace(uid) == "" {
		return room.Player{}, fmt.Errorf("player uid is required")
	}
	return scanPlayer(tx.sqlTx.QueryRowContext(ctx, selectPlayerSQL, tx.roomID, uid))
}

func (tx *roomTx) PutPlayer(ctx context.Context, p room.Player) error {
	if p.RoomID == "" {
		p.RoomID = tx.roomID
	}
	if p.RoomID != tx.roomID {
		return fmt.Errorf("player room %q outside transaction scope %q", p.RoomID, tx.roomID)
	}
	if strings.TrimSpace(p.UID) == "" {
		return fmt.Errorf("player uid is required")
	}
	if _, err := tx.sqlTx.ExecContext(ctx, upsertPlayerSQL, playerArgs(p)...); err != nil {
		return fmt.Errorf("put player: %w", err)
	}
	return nil
}

func (tx *roomTx) CountPlayers(ctx context.Context) (int, error) {
	var count int
	row := tx.sqlTx.QueryRowContext(ctx, "SELECT COUNT(*) FROM players WHERE room_id = ?", tx.roomID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return count, nil
}
