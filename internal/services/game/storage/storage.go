// Package storage defines the persistence boundary for the game service.
//
// All authoritative room and player mutations happen through RoomTx inside
// a single transaction that re-reads every record it intends to mutate.
// Implementations surface contention as ErrConflict so callers can re-run
// the whole read-decide-write unit.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/event"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates a transaction lost to a concurrent writer and must
// be re-executed in full.
var ErrConflict = errors.New("transaction conflict")

// RoomTx gives transactional access to one room's records. Reads inside
// the transaction are fresh; a commit either applies every staged write or
// none of them.
type RoomTx interface {
	// ClaimEvent atomically test-and-sets the idempotence marker for an
	// event. It reports true when this transaction is the first to claim
	// it. The marker commits together with every other write staged in
	// the same transaction.
	ClaimEvent(ctx context.Context, eventID string) (bool, error)
	// Room returns the room record, fresh.
	Room(ctx context.Context) (room.Room, error)
	// PutRoom stages a room write.
	PutRoom(ctx context.Context, r room.Room) error
	// Player returns one player record, fresh.
	Player(ctx context.Context, uid string) (room.Player, error)
	// PutPlayer stages a player write.
	PutPlayer(ctx context.Context, p room.Player) error
	// CountPlayers returns the number of participants in the room.
	CountPlayers(ctx context.Context) (int, error)
}

// GameStore persists rooms, players, and the append-only tag event journal.
type GameStore interface {
	// RunRoomTx executes fn inside a transaction scoped to one room.
	// Returning an error from fn aborts the transaction. Contention
	// surfaces as ErrConflict; the dispatcher re-runs fn from the top.
	RunRoomTx(ctx context.Context, roomID string, fn func(ctx context.Context, tx RoomTx) error) error

	// AppendEvent appends an immutable event to the room's journal,
	// assigning ID and CreatedAt when absent.
	AppendEvent(ctx context.Context, evt event.Tag) (event.Tag, error)
	// PendingEvents lists appended events whose idempotence marker is
	// still absent, oldest first.
	PendingEvents(ctx context.Context, limit int) ([]event.Tag, error)

	// Room and Players are non-transactional reads for observers and
	// harness tooling; resolution decisions never rely on them.
	Room(ctx context.Context, roomID string) (room.Room, error)
	Players(ctx context.Context, roomID string) ([]room.Player, error)

	// PutRoom and PutPlayer upsert records outside any room transaction.
	// They exist for the lobby/seeding boundary, not for tag resolution.
	PutRoom(ctx context.Context, r room.Room) error
	PutPlayer(ctx context.Context, p room.Player) error
}

// AttemptRecord is one durable dispatch outcome record.
type AttemptRecord struct {
	ID        int64
	RoomID    string
	EventID   string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

// AttemptStore persists dispatch attempt records.
type AttemptStore interface {
	RecordAttempt(ctx context.Context, attempt AttemptRecord) error
	ListAttempts(ctx context.Context, limit int) ([]AttemptRecord, error)
}
