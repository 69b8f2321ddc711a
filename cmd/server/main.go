/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the EduSuite engine server: country and
  curriculum registries, the statutory deduction catalog and payroll.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Set up the logger
  3. Initialize SQLite store
  4. Wire catalog, aggregator, processor and API handler
  5. Register Prometheus metrics
  6. Start the monthly run scheduler (if enabled)
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  See config/config.go. PORT, DB_PATH, LOG_LEVEL, LOG_FORMAT,
  PAYROLL_WORKERS, PAYROLL_PAY_DAY, PAYROLL_ERROR_POLICY,
  SCHEDULER_ENABLED, SCHEDULER_INTERVAL, CORS_ALLOWED_ORIGINS,
  DEMO_SCENARIOS.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler (waits for an in-flight run)
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/edusuite.db"

  # Run with in-memory database and readable logs
  LOG_FORMAT=human ./server -db=":memory:"

  # Demo data for frontend work
  DEMO_SCENARIOS=true ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edusuite/engine/api"
	"github.com/edusuite/engine/config"
	"github.com/edusuite/engine/payroll"
	"github.com/edusuite/engine/statutory"
	"github.com/edusuite/engine/store/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Flags win over the environment
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.Port = *port
	cfg.DBPath = *dbPath
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := cfg.SetupLogger(os.Stdout)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("db", cfg.DBPath).Msg("Failed to initialize database")
	}
	defer store.Close()

	// Wire the engine
	catalog := statutory.NewCatalog(store)

	aggregator := payroll.NewAggregator(catalog, logger)
	aggregator.Workers = cfg.PayrollWorkers
	aggregator.Policy = cfg.PayrollErrorPolicy

	processor := payroll.NewProcessor(store, store, aggregator, cfg.PayrollPayDay)
	handler := api.NewHandler(catalog, store, store, processor, logger)
	if cfg.DemoScenarios {
		handler.Reset = store.Reset
		logger.Warn().Msg("Demo scenarios enabled: POST /api/scenarios/load wipes the database")
	}

	if err := api.RegisterMetrics(prometheus.DefaultRegisterer, payroll.Collectors()...); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register metrics")
	}

	router := api.NewRouter(handler, cfg.CORSAllowedOrigins)

	// Scheduler
	scheduler := api.NewRunScheduler(processor, logger)
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.CheckInterval = cfg.SchedulerInterval
	scheduler.Start()

	// Create server. WriteTimeout leaves room for a payroll run.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Port).Str("db", cfg.DBPath).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server stopped")
}
