// Package app wires game runtime dependencies and runs the dispatch loop.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/chasse.space/internal/platform/timeouts"
	"github.com/louisbranch/chasse.space/internal/services/game/api"
	"github.com/louisbranch/chasse.space/internal/services/game/dispatch"
	"github.com/louisbranch/chasse.space/internal/services/game/domain/mode"
	gamesqlite "github.com/louisbranch/chasse.space/internal/services/game/storage/sqlite"
	"github.com/louisbranch/chasse.space/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls game service startup, dependencies, and loop
// behavior.
type RuntimeConfig struct {
	Port           int
	WatchPort      int
	DBPath         string
	PollInterval   time.Duration
	BatchSize      int
	HunterCooldown time.Duration
	VictimIFrame   time.Duration
}

const (
	defaultGamePort  = 8091
	defaultWatchPort = 8092
	defaultGameDB    = "data/game.db"
	defaultBatchSize = 50
)

// Run starts game runtime dependencies and the dispatch loop. It blocks
// until ctx is canceled or a dependency fails.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultGamePort
	}
	if cfg.WatchPort <= 0 {
		cfg.WatchPort = defaultWatchPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultGameDB
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = timeouts.EventPoll
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create game storage dir: %w", err)
		}
	}

	store, err := gamesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open game sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close game sqlite store: %v", closeErr)
		}
	}()

	dispatcher := dispatch.New(store, mode.NewRegistry(), mode.Rules{
		HunterCooldown: cfg.HunterCooldown,
		VictimIFrame:   cfg.VictimIFrame,
	})
	emitter := telemetry.NewEmitter(store)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on game port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("game.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	watchMux := http.NewServeMux()
	watchMux.Handle("/watch", api.NewWatchHandler(store, cfg.PollInterval))
	watchServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WatchPort),
		Handler:           watchMux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watchServer.ListenAndServe()
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := watchServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown watch server: %v", err)
		}
		<-watchErr
	}()

	log.Printf("game server listening at %v, watch at :%d", listener.Addr(), cfg.WatchPort)

	loop := &dispatchLoop{
		store:        store,
		dispatcher:   dispatcher,
		emitter:      emitter,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
	}
	return loop.run(ctx)
}
