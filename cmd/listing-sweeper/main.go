package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrbailey528/solanasign/internal/metrics"
	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/internal/service"
	"github.com/jrbailey528/solanasign/internal/worker"
	"github.com/jrbailey528/solanasign/pkg/config"
	"github.com/jrbailey528/solanasign/pkg/database"
	"github.com/jrbailey528/solanasign/pkg/logger"
)

// Standalone sweeper deployment. Expires resale listings past their
// deadline and reaps stale pending tickets left behind by crashed mints.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: "listing-sweeper",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Listing Sweeper...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := metrics.Init(); err != nil {
		appLog.Fatal(fmt.Sprintf("Metrics initialization failed: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      int32(cfg.Database.MaxOpenConns),
		MinConns:      int32(cfg.Database.MinIdleConns),
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// The sweeper only writes to Postgres; resale/expiry events still
	// flow through the publisher the API uses, so it stays no-op here.
	listingRepo := repository.NewPostgresListingRepository(db.Pool())
	ticketRepo := repository.NewPostgresTicketRepository(db.Pool())
	eventRepo := repository.NewPostgresEventRepository(db.Pool())

	listingService := service.NewListingService(listingRepo, ticketRepo, eventRepo, service.NewNoOpEventPublisher())

	sweeper := worker.NewSweepWorker(listingService, ticketRepo, &worker.SweepWorkerConfig{
		ScanInterval: cfg.Sweeper.ScanInterval,
		BatchSize:    cfg.Sweeper.BatchSize,
		PendingTTL:   cfg.Sweeper.PendingMaxAge,
	})

	if err := sweeper.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start sweeper: %v", err))
	}
	appLog.Info(fmt.Sprintf("Sweeper running (interval: %s, batch: %d)",
		cfg.Sweeper.ScanInterval, cfg.Sweeper.BatchSize))

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down sweeper...")

	sweeper.Stop()

	stats := sweeper.GetStats()
	appLog.Info(fmt.Sprintf("Sweeper stopped (expired: %d, reaped: %d)",
		stats.TotalExpired, stats.TotalReaped))
}
