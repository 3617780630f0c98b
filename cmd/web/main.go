package main

import (
	"fmt"
	"os"

	"github.com/halosani-dev/halosani/internal/config"
	"github.com/halosani-dev/halosani/internal/logger"
	"github.com/halosani-dev/halosani/internal/server"
	"github.com/halosani-dev/halosani/internal/workers"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	// Create server
	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	// Background session pruning (no-op unless configured)
	go workers.StartSessionPruner(srv.GetDB(), cfg.Session.PruneSchedule, cfg.Session.RetentionDays, log)

	log.Info().Str("version", version).Msg("Starting HaloSani web gate...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
