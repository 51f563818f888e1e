/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from SHIFT_* environment variables
  2. Configure logging
  3. Initialize SQLite store
  4. Build the engine (memo, timezone, workers, scheduled attendance)
  5. Start the schedule warmer
  6. Start HTTP server with graceful shutdown

ENVIRONMENT:
  SHIFT_ENV                  development | production (default: development)
  SHIFT_LOG_LEVEL            debug, info, warn, ... (default by environment)
  SHIFT_HTTP_PORT            HTTP server port (default: 8080)
  SHIFT_DB_PATH              SQLite database path (default: shift-engine.db)
                             Use ":memory:" for an in-memory database
  SHIFT_ENGINE_TIMEZONE      IANA zone for schedule wall-clock times (default: UTC)
  SHIFT_ENGINE_WORKERS       Range resolution concurrency (default: 4)
  SHIFT_WARMER_ENABLED       Background schedule warming (default: true)

  See config/config.go for the full list.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the warmer
  2. Stop accepting new connections
  3. Wait for active requests to complete (SHIFT_HTTP_SHUTDOWN_TIMEOUT)
  4. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/warp/shift-engine/api"
	"github.com/warp/shift-engine/config"
	"github.com/warp/shift-engine/logging"
	"github.com/warp/shift-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Environment, cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	// Initialize store
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DB.Path).Msg("failed to initialize database")
	}
	defer store.Close()

	engine := api.NewEngine(store, loc, cfg.Engine.Workers, cfg.Engine.MemoLimit, logger)

	// Initialize handler
	handler := api.NewHandler(store, engine, logger)
	handler.MaxRangeDays = cfg.Engine.MaxRangeDays

	warmer := api.NewScheduleWarmer(store, engine, logger)
	warmer.Enabled = cfg.Warmer.Enabled
	warmer.CheckInterval = cfg.Warmer.Interval
	warmer.Horizon = cfg.Warmer.Horizon
	warmer.Start()

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      api.NewRouter(handler, cfg.HTTP.AllowedOrigins...),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("db", cfg.DB.Path).
			Str("timezone", loc.String()).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	warmer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
