package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

type roomRow struct {
	id              string
	mode            string
	state           string
	targetScore     sql.NullInt64
	victory         string
	infectionTarget sql.NullInt64
	roles           string
	hunterCount     int64
	playerCount     int64
	endedAt         sql.NullInt64
	createdAt       int64
	updatedAt       int64
}

func (r roomRow) toDomain() (room.Room, error) {
	roles := make(map[string]room.Role)
	if strings.TrimSpace(r.roles) != "" {
		if err := json.Unmarshal([]byte(r.roles), &roles); err != nil {
			return room.Room{}, fmt.Errorf("decode roles: %w", err)
		}
	}
	rm := room.Room{
		ID:          r.id,
		Mode:        room.Mode(r.mode),
		State:       room.State(r.state),
		Victory:     room.Victory(r.victory),
		Roles:       roles,
		HunterCount: int(r.hunterCount),
		PlayerCount: int(r.playerCount),
		CreatedAt:   fromMillis(r.createdAt),
		UpdatedAt:   fromMillis(r.updatedAt),
	}
	if r.targetScore.Valid {
		target := int(r.targetScore.Int64)
		rm.TargetScore = &target
	}
	if r.infectionTarget.Valid {
		target := int(r.infectionTarget.Int64)
		rm.InfectionTarget = &target
	}
	if r.endedAt.Valid {
		endedAt := fromMillis(r.endedAt.Int64)
		rm.EndedAt = &endedAt
	}
	return rm, nil
}

func encodeRoles(roles map[string]room.Role) (string, error) {
	if len(roles) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(roles)
	if err != nil {
		return "", fmt.Errorf("encode roles: %w", err)
	}
	return string(raw), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (room.Room, error) {
	var r roomRow
	err := row.Scan(
		&r.id,
		&r.mode,
		&r.state,
		&r.targetScore,
		&r.victory,
		&r.infectionTarget,
		&r.roles,
		&r.hunterCount,
		&r.playerCount,
		&r.endedAt,
		&r.createdAt,
		&r.updatedAt,
	)
	if err == sql.ErrNoRows {
		return room.Room{}, storage.ErrNotFound
	}
	if err != nil {
		return room.Room{}, fmt.Errorf("scan room: %w", err)
	}
	return r.toDomain()
}

const selectRoomSQL = `SELECT id, mode, state, target_score, victory, infection_target,
	roles, hunter_count, player_count, ended_at, created_at, updated_at
	FROM rooms WHERE id = ?`

const upsertRoomSQL = `INSERT INTO rooms (
	id, mode, state, target_score, victory, infection_target,
	roles, hunter_count, player_count, ended_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	mode = excluded.mode,
	state = excluded.state,
	target_score = excluded.target_score,
	victory = excluded.victory,
	infection_target = excluded.infection_target,
	roles = excluded.roles,
	hunter_count = excluded.hunter_count,
	player_count = excluded.player_count,
	ended_at = excluded.ended_at,
	updated_at = excluded.updated_at`

func roomArgs(rm room.Room) ([]any, error) {
	roles, err := encodeRoles(rm.Roles)
	if err != nil {
		return nil, err
	}
	var targetScore, infectionTarget, endedAt any
	if rm.TargetScore != nil {
		targetScore = int64(*rm.TargetScore)
	}
	if rm.InfectionTarget != nil {
		infectionTarget = int64(*rm.InfectionTarget)
	}
	if rm.EndedAt != nil {
		endedAt = toMillis(*rm.EndedAt)
	}
	return []any{
		rm.ID,
		string(rm.Mode),
		string(rm.State),
		targetScore,
		string(rm.Victory),
		infectionTarget,
		roles,
		int64(rm.HunterCount),
		int64(rm.PlayerCount),
		endedAt,
		toMillis(rm.CreatedAt),
		toMillis(rm.UpdatedAt),
	}, nil
}

const selectPlayerSQL = `SELECT room_id, uid, score, last_tag_ms, iframe_until_ms, created_at, updated_at
	FROM players WHERE room_id = ? AND uid = ?`

const upsertPlayerSQL = `INSERT INTO players (
	room_id, uid, score, last_tag_ms, iframe_until_ms, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(room_id, uid) DO UPDATE SET
	score = excluded.score,
	last_tag_ms = excluded.last_tag_ms,
	iframe_until_ms = excluded.iframe_until_ms,
	updated_at = excluded.updated_at`

func scanPlayer(row rowScanner) (room.Player, error) {
	var p room.Player
	var createdAt, updatedAt int64
	err := row.Scan(&p.RoomID, &p.UID, &p.Score, &p.LastTagMs, &p.IFrameUntilMs, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return room.Player{}, storage.ErrNotFound
	}
	if err != nil {
		return room.Player{}, fmt.Errorf("scan player: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func playerArgs(p room.Player) []any {
	return []any{
		p.RoomID,
		p.UID,
		p.Score,
		p.LastTagMs,
		p.IFrameUntilMs,
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	}
}

// Room returns a room record outside any transaction.
func (s *Store) Room(ctx context.Context, roomID string) (room.Room, error) {
	if err := ctx.Err(); err != nil {
		return room.Room{}, err
	}
	if err := s.ready(); err != nil {
		return room.Room{}, err
	}
	if strings.TrimSpace(roomID) == "" {
		return room.Room{}, fmt.Errorf("room id is required")
	}
	return scanRoom(s.sqlDB.QueryRowContext(ctx, selectRoomSQL, roomID))
}

// Players lists a room's players ordered by uid.
func (s *Store) Players(ctx context.Context, roomID string) ([]room.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("room id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT room_id, uid, score, last_tag_ms, iframe_until_ms, created_at, updated_at
		 FROM players WHERE room_id = ? ORDER BY uid`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []room.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// PutRoom upserts a room record outside any transaction.
func (s *Store) PutRoom(ctx context.Context, rm room.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(rm.ID) == "" {
		return fmt.Errorf("room id is required")
	}
	args, err := roomArgs(rm)
	if err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, upsertRoomSQL, args...); err != nil {
		return fmt.Errorf("put room: %w", err)
	}
	return nil
}

// PutPlayer upserts a player record outside any transaction.
func (s *Store) PutPlayer(ctx context.Context, p room.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(p.RoomID) == "" {
		return fmt.Errorf("room id is required")
	}
	if strings.TrimSpace(p.UID) == "" {
		return fmt.Errorf("player uid is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, upsertPlayerSQL, playerArgs(p)...); err != nil {
		return fmt.Errorf("put player: %w", err)
	}
	return nil
}

// ResetRoom deletes a room along with its players, journal, and markers.
// Harness tooling uses it to rebuild fixtures from scratch.
func (s *Store) ResetRoom(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(roomID) == "" {
		return fmt.Errorf("room id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM attempts WHERE room_id = ?",
		"DELETE FROM event_markers WHERE room_id = ?",
		"DELETE FROM events WHERE room_id = ?",
		"DELETE FROM players WHERE room_id = ?",
		"DELETE FROM rooms WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, roomID); err != nil {
			return fmt.Errorf("reset room: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}
