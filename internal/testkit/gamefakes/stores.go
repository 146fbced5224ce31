// Package gamefakes provides in-memory storage fakes for game service tests.
//
// The GameStore fake honors the transactional contract of the real store:
// writes staged inside RunRoomTx become visible only on commit, and
// injected conflicts abort the commit so callers exercise their retry
// paths.
package gamefakes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/event"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	"github.com/louisbranch/chasse.space/internal/services/game/storage"
)

// GameStore is an in-memory GameStore fake.
type GameStore struct {
	mu            sync.Mutex
	Rooms         map[string]room.Room
	PlayersByRoom map[string]map[string]room.Player
	Events        []event.Tag
	Markers       map[string]bool

	// ConflictsBeforeCommit aborts that many transaction commits with
	// storage.ErrConflict before letting one through.
	ConflictsBeforeCommit int
	// TxAttempts counts RunRoomTx executions, including aborted ones.
	TxAttempts int

	nextEventID int
}

// NewGameStore constructs a GameStore fake with initialized state maps.
func NewGameStore() *GameStore {
	return &GameStore{
		Rooms:         make(map[string]room.Room),
		PlayersByRoom: make(map[string]map[string]room.Player),
		Markers:       make(map[string]bool),
	}
}

// SeedRoom installs a room record directly.
func (s *GameStore) SeedRoom(r room.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rooms[r.ID] = r
}

// SeedPlayer installs a player record directly.
func (s *GameStore) SeedPlayer(p room.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PlayersByRoom[p.RoomID] == nil {
		s.PlayersByRoom[p.RoomID] = make(map[string]room.Player)
	}
	s.PlayersByRoom[p.RoomID][p.UID] = p
}

// RunRoomTx executes fn against a staged view of one room's records and
// commits the staged writes atomically on success.
func (s *GameStore) RunRoomTx(ctx context.Context, roomID string, fn func(ctx context.Context, tx storage.RoomTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TxAttempts++

	tx := &roomTx{
		store:         s,
		roomID:        roomID,
		stagedPlayers: make(map[string]room.Player),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if s.ConflictsBeforeCommit > 0 {
		s.ConflictsBeforeCommit--
		return storage.ErrConflict
	}
	tx.commit()
	return nil
}

type roomTx struct {
	store         *GameStore
	roomID        string
	stagedRoom    *room.Room
	stagedPlayers map[string]room.Player
	claimed       []string
}

func (tx *roomTx) ClaimEvent(_ context.Context, eventID string) (bool, error) {
	if tx.store.Markers[eventID] {
		return false, nil
	}
	tx.claimed = append(tx.claimed, eventID)
	return true, nil
}

func (tx *roomTx) Room(_ context.Context) (room.Room, error) {
	if tx.stagedRoom != nil {
		return *tx.stagedRoom, nil
	}
	r, ok := tx.store.Rooms[tx.roomID]
	if !ok {
		return room.Room{}, storage.ErrNotFound
	}
	return r, nil
}

func (tx *roomTx) PutRoom(_ context.Context, r room.Room) error {
	staged := r
	tx.stagedRoom = &staged
	return nil
}

func (tx *roomTx) Player(_ context.Context, uid string) (room.Player, error) {
	if p, ok := tx.stagedPlayers[uid]; ok {
		return p, nil
	}
	p, ok := tx.store.PlayersByRoom[tx.roomID][uid]
	if !ok {
		return room.Player{}, storage.ErrNotFound
	}
	return p, nil
}

func (tx *roomTx) PutPlayer(_ context.Context, p room.Player) error {
	tx.stagedPlayers[p.UID] = p
	return nil
}

func (tx *roomTx) CountPlayers(_ context.Context) (int, error) {
	uids := make(map[string]bool, len(tx.store.PlayersByRoom[tx.roomID]))
	for uid := range tx.store.PlayersByRoom[tx.roomID] {
		uids[uid] = true
	}
	for uid := range tx.stagedPlayers {
		uids[uid] = true
	}
	return len(uids), nil
}

func (tx *roomTx) commit() {
	if tx.stagedRoom != nil {
		tx.store.Rooms[tx.roomID] = *tx.stagedRoom
	}
	for uid, p := range tx.stagedPlayers {
		if tx.store.PlayersByRoom[tx.roomID] == nil {
			tx.store.PlayersByRoom[tx.roomID] = make(map[string]room.Player)
		}
		tx.store.PlayersByRoom[tx.roomID][uid] = p
	}
	for _, eventID := range tx.claimed {
		tx.store.Markers[eventID] = true
	}
}

// AppendEvent appends an event to the in-memory journal.
func (s *GameStore) AppendEvent(_ context.Context, evt event.Tag) (event.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(evt.RoomID) == "" {
		return event.Tag{}, fmt.Errorf("room id is required")
	}
	if evt.ID == "" {
		s.nextEventID++
		evt.ID = fmt.Sprintf("evt-%d", s.nextEventID)
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}
	s.Events = append(s.Events, evt)
	return evt, nil
}

// PendingEvents lists events without an idempotence marker, oldest first.
func (s *GameStore) PendingEvents(_ context.Context, limit int) ([]event.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []event.Tag
	for _, evt := range s.Events {
		if !s.Markers[evt.ID] {
			pending = append(pending, evt)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// Room returns a room record outside any transaction.
func (s *GameStore) Room(_ context.Context, roomID string) (room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Rooms[roomID]
	if !ok {
		return room.Room{}, storage.ErrNotFound
	}
	return r, nil
}

// Players lists a room's players ordered by uid.
func (s *GameStore) Players(_ context.Context, roomID string) ([]room.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := make([]room.Player, 0, len(s.PlayersByRoom[roomID]))
	for _, p := range s.PlayersByRoom[roomID] {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].UID < players[j].UID })
	return players, nil
}

// PutRoom upserts a room record outside any transaction.
func (s *GameStore) PutRoom(_ context.Context, r room.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rooms[r.ID] = r
	return nil
}

// PutPlayer upserts a player record outside any transaction.
func (s *GameStore) PutPlayer(_ context.Context, p room.Player) error {
	s.SeedPlayer(p)
	return nil
}

// AttemptStore is an in-memory AttemptStore fake.
type AttemptStore struct {
	mu       sync.Mutex
	Attempts []storage.AttemptRecord
}

// NewAttemptStore constructs an AttemptStore fake.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

// RecordAttempt appends one attempt record.
func (s *AttemptStore) RecordAttempt(_ context.Context, attempt storage.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.ID = int64(len(s.Attempts) + 1)
	s.Attempts = append(s.Attempts, attempt)
	return nil
}

// ListAttempts returns recorded attempts, newest first.
func (s *AttemptStore) ListAttempts(_ context.Context, limit int) ([]storage.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.AttemptRecord, 0, len(s.Attempts))
	for i := len(s.Attempts) - 1; i >= 0; i-- {
		out = append(out, s.Attempts[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
