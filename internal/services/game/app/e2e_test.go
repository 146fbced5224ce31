package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/chasse.space/internal/services/game/dispatch"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/event"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/mode"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	gamesqlite "github.com/louisbranch/chasse.space/internal/services/game/storage/sqlite"
	"github.com/louisbranch/chasse.space/internal/telemetry"
)

// Exercises the full path against the real store: journal -> drain ->
// mode mutation -> termination -> attempt records.
func TestDrainAgainstSQLiteStore(t *testing.T) {
	store, err := gamesqlite.Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	target := 2
	rm := room.Room{
		ID:          "room-1",
		Mode:        room.ModeClassic,
		State:       room.StateRunning,
		TargetScore: &target,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.PutRoom(ctx, rm); err != nil {
		t.Fatalf("PutRoom() error = %v", err)
	}
	for _, uid := range []string{"hunter", "prey-1", "prey-2"} {
		if err := store.PutPlayer(ctx, room.Player{RoomID: "room-1", UID: uid, CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatalf("PutPlayer(%s) error = %v", uid, err)
		}
	}

	// Two tags spaced past the cooldown window; the second reaches the
	// target score and must end the round.
	for i, victim := range []string{"prey-1", "prey-2"} {
		_, err := store.AppendEvent(ctx, event.Tag{
			RoomID:    "room-1",
			Type:      event.TypeTag,
			HunterUID: "hunter",
			VictimUID: victim,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("AppendEvent(%d) error = %v", i, err)
		}
	}

	clock := now
	dispatcher := dispatch.New(store, mode.NewRegistry(), mode.Rules{}, dispatch.WithClock(func() time.Time {
		clock = clock.Add(2 * time.Second)
		return clock
	}))
	loop := &dispatchLoop{
		store:        store,
		dispatcher:   dispatcher,
		emitter:      telemetry.NewEmitter(store),
		pollInterval: 5 * time.Millisecond,
		batchSize:    10,
	}
	if err := loop.drain(ctx); err != nil {
		t.Fatalf("drain() error = %v", err)
	}

	got, err := store.Room(ctx, "room-1")
	if err != nil {
		t.Fatalf("Room() error = %v", err)
	}
	if got.State != room.StateEnded {
		t.Fatalf("room state = %v, want %v", got.State, room.StateEnded)
	}
	if got.EndedAt == nil {
		t.Fatal("room EndedAt = nil, want set")
	}

	players, err := store.Players(ctx, "room-1")
	if err != nil {
		t.Fatalf("Players() error = %v", err)
	}
	for _, p := range players {
		if p.UID == "hunter" && p.Score != 2 {
			t.Fatalf("hunter score = %d, want 2", p.Score)
		}
	}

	attempts, err := store.ListAttempts(ctx, 0)
	if err != nil {
		t.Fatalf("ListAttempts() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("len(attempts) = %d, want 2", len(attempts))
	}
	for _, attempt := range attempts {
		if attempt.Outcome != string(dispatch.OutcomeProcessed) {
			t.Fatalf("attempt outcome = %q, want %q", attempt.Outcome, dispatch.OutcomeProcessed)
		}
	}

	// Draining again must be a no-op: markers are durable.
	if err := loop.drain(ctx); err != nil {
		t.Fatalf("second drain() error = %v", err)
	}
	attempts, err = store.ListAttempts(ctx, 0)
	if err != nil {
		t.Fatalf("ListAttempts() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("len(attempts) after second drain = %d, want 2", len(attempts))
	}
}
