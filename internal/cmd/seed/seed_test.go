package seed

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	gamesqlite "github.com/louisbranch/chasse.space/internal/services/game/storage/sqlite"
)

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.RoomID != "demo-room" {
		t.Fatalf("room = %q, want %q", cfg.RoomID, "demo-room")
	}
	if cfg.Mode != string(room.ModeClassic) {
		t.Fatalf("mode = %q, want %q", cfg.Mode, room.ModeClassic)
	}
	if cfg.Players != 4 {
		t.Fatalf("players = %d, want 4", cfg.Players)
	}
}

func TestRunSeedsInfectionRoom(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "game.db")
	cfg := Config{
		DBPath:   dbPath,
		RoomID:   "room-1",
		Mode:     string(room.ModeInfection),
		Counters: true,
		Players:  3,
		Tags:     2,
	}

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	store, err := gamesqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	rm, err := store.Room(ctx, "room-1")
	if err != nil {
		t.Fatalf("Room() error = %v", err)
	}
	if rm.Mode != room.ModeInfection || rm.State != room.StateRunning {
		t.Fatalf("room = %+v", rm)
	}
	if rm.Roles["player-1"] != room.RoleChasseur || rm.Roles["player-2"] != room.RoleChasse {
		t.Fatalf("roles = %v", rm.Roles)
	}
	if rm.HunterCount != 1 || rm.PlayerCount != 3 {
		t.Fatalf("counters = (%d, %d), want (1, 3)", rm.HunterCount, rm.PlayerCount)
	}

	players, err := store.Players(ctx, "room-1")
	if err != nil {
		t.Fatalf("Players() error = %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("len(players) = %d, want 3", len(players))
	}

	pending, err := store.PendingEvents(ctx, 0)
	if err != nil {
		t.Fatalf("PendingEvents() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("len(pending) = %d, want 2", len(pending))
	}
	if pending[0].HunterUID != "player-1" {
		t.Fatalf("hunter = %q, want player-1", pending[0].HunterUID)
	}
}

func TestRunResetClearsPreviousSeed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "game.db")
	cfg := Config{DBPath: dbPath, RoomID: "room-1", Mode: string(room.ModeClassic), Players: 2, Tags: 3}

	if err := Run(context.Background(), cfg, nil); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	cfg.Reset = true
	cfg.Tags = 1
	if err := Run(context.Background(), cfg, nil); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	store, err := gamesqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	pending, err := store.PendingEvents(context.Background(), 0)
	if err != nil {
		t.Fatalf("PendingEvents() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("len(pending) = %d, want 1", len(pending))
	}
}

func TestRunRejectsTooFewPlayers(t *testing.T) {
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "game.db"), RoomID: "room-1", Players: 1}
	if err := Run(context.Background(), cfg, nil); err == nil {
		t.Fatal("Run() with 1 player succeeded, want error")
	}
}
