// Package game parses game command flags and launches the game runtime.
package game

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/chasse.space/internal/platform/cmd"
	gameserver "github.com/louisbranch/chasse.space/internal/services/game/app"
)

// Config holds game command configuration.
type Config struct {
	Port           int           `env:"CHASSE_SPACE_GAME_PORT" envDefault:"8091"`
	WatchPort      int           `env:"CHASSE_SPACE_GAME_WATCH_PORT" envDefault:"8092"`
	DBPath         string        `env:"CHASSE_SPACE_GAME_DB_PATH" envDefault:"data/game.db"`
	PollInterval   time.Duration `env:"CHASSE_SPACE_GAME_POLL_INTERVAL" envDefault:"500ms"`
	BatchSize      int           `env:"CHASSE_SPACE_GAME_BATCH_SIZE" envDefault:"50"`
	HunterCooldown time.Duration `env:"CHASSE_SPACE_GAME_HUNTER_COOLDOWN" envDefault:"1s"`
	VictimIFrame   time.Duration `env:"CHASSE_SPACE_GAME_VICTIM_IFRAME" envDefault:"1500ms"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game health gRPC server port")
	fs.IntVar(&cfg.WatchPort, "watch-port", cfg.WatchPort, "The room watch HTTP server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The game SQLite database path")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Pending event poll interval")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Maximum events dispatched per poll")
	fs.DurationVar(&cfg.HunterCooldown, "hunter-cooldown", cfg.HunterCooldown, "Minimum delay between a hunter's scoring tags")
	fs.DurationVar(&cfg.VictimIFrame, "victim-iframe", cfg.VictimIFrame, "Invulnerability window granted to a tagged victim")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the game runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(context.Context) error {
		return gameserver.Run(ctx, gameserver.RuntimeConfig{
			Port:           cfg.Port,
			WatchPort:      cfg.WatchPort,
			DBPath:         cfg.DBPath,
			PollInterval:   cfg.PollInterval,
			BatchSize:      cfg.BatchSize,
			HunterCooldown: cfg.HunterCooldown,
			VictimIFrame:   cfg.VictimIFrame,
		})
	})
}
