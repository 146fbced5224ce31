// Package seed populates a game database with demo rooms, players, and tag
// events for local development.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/chasse.space/internal/platform/cmd"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/event"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/room"
	gamesqlite "github.com/louisbranch/chasse.space/internal/services/game/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath          string `env:"CHASSE_SPACE_GAME_DB_PATH" envDefault:"data/game.db"`
	RoomID          string
	Mode            string
	TargetScore     int
	Victory         string
	InfectionTarget int
	Counters        bool
	Players         int
	Tags            int
	Reset           bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The game SQLite database path")
	fs.StringVar(&cfg.RoomID, "room", "demo-room", "Room id to seed")
	fs.StringVar(&cfg.Mode, "mode", string(room.ModeClassic), "Game mode (classic, transmission, infection)")
	fs.IntVar(&cfg.TargetScore, "target-score", 0, "Classic target score (0 keeps the server default)")
	fs.StringVar(&cfg.Victory, "victory", "", "Infection victory condition (all_infected, target_infections)")
	fs.IntVar(&cfg.InfectionTarget, "infection-target", 0, "Infections needed under target_infections (0 keeps the server default)")
	fs.BoolVar(&cfg.Counters, "counters", false, "Maintain denormalized hunter/player counters")
	fs.IntVar(&cfg.Players, "players", 4, "Number of players to create")
	fs.IntVar(&cfg.Tags, "tags", 0, "Number of demo tag events to append")
	fs.BoolVar(&cfg.Reset, "reset", false, "Delete the room and all derived records before seeding")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command against the configured database.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if strings.TrimSpace(cfg.RoomID) == "" {
		return fmt.Errorf("room id is required")
	}
	if cfg.Players < 2 {
		return fmt.Errorf("at least 2 players are required, got %d", cfg.Players)
	}

	store, err := gamesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open game sqlite store: %w", err)
	}
	defer store.Close()

	if cfg.Reset {
		if err := store.ResetRoom(ctx, cfg.RoomID); err != nil {
			return fmt.Errorf("reset room: %w", err)
		}
		fmt.Fprintf(out, "reset room %s\n", cfg.RoomID)
	}

	now := time.Now().UTC()
	mode := room.ModeOrClassic(cfg.Mode)
	rm := room.Room{
		ID:        cfg.RoomID,
		Mode:      mode,
		State:     room.StateRunning,
		Victory:   room.VictoryOrDefault(cfg.Victory),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cfg.TargetScore > 0 {
		target := cfg.TargetScore
		rm.TargetScore = &target
	}
	if cfg.InfectionTarget > 0 {
		target := cfg.InfectionTarget
		rm.InfectionTarget = &target
	}

	uids := make([]string, cfg.Players)
	for i := range uids {
		uids[i] = fmt.Sprintf("player-%d", i+1)
	}

	// Role-based modes start with one hunter and everyone else as prey.
	if mode == room.ModeTransmission || mode == room.ModeInfection {
		rm.Roles = make(map[string]room.Role, len(uids))
		for i, uid := range uids {
			if i == 0 {
				rm.Roles[uid] = room.RoleChasseur
			} else {
				rm.Roles[uid] = room.RoleChasse
			}
		}
	}
	if cfg.Counters {
		rm.HunterCount = rm.HunterRoleCount()
		rm.PlayerCount = len(uids)
	}

	if err := store.PutRoom(ctx, rm); err != nil {
		return fmt.Errorf("seed room: %w", err)
	}
	for _, uid := range uids {
		p := room.Player{RoomID: cfg.RoomID, UID: uid, CreatedAt: now, UpdatedAt: now}
		if err := store.PutPlayer(ctx, p); err != nil {
			return fmt.Errorf("seed player %s: %w", uid, err)
		}
	}
	fmt.Fprintf(out, "seeded room %s (%s) with %d players\n", cfg.RoomID, mode, len(uids))

	// Demo tags: the first player chases the others in order.
	for i := 0; i < cfg.Tags; i++ {
		victim := uids[1+i%(len(uids)-1)]
		evt, err := store.AppendEvent(ctx, event.Tag{
			RoomID:    cfg.RoomID,
			Type:      event.TypeTag,
			HunterUID: uids[0],
			VictimUID: victim,
		})
		if err != nil {
			return fmt.Errorf("append demo tag: %w", err)
		}
		fmt.Fprintf(out, "appended tag %s: %s -> %s\n", evt.ID, evt.HunterUID, evt.VictimUID)
	}
	return nil
}
