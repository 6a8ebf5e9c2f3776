package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // Import pprof for profiling
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrbailey528/solanasign/internal/di"
	"github.com/jrbailey528/solanasign/internal/metrics"
	"github.com/jrbailey528/solanasign/internal/nft"
	"github.com/jrbailey528/solanasign/internal/service"
	"github.com/jrbailey528/solanasign/internal/worker"
	"github.com/jrbailey528/solanasign/migrations"
	"github.com/jrbailey528/solanasign/pkg/config"
	"github.com/jrbailey528/solanasign/pkg/database"
	"github.com/jrbailey528/solanasign/pkg/logger"
	"github.com/jrbailey528/solanasign/pkg/middleware"
	pkgredis "github.com/jrbailey528/solanasign/pkg/redis"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

const serviceName = "marketplace-api"

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       logLevel(cfg),
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Marketplace API...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Error(fmt.Sprintf("Telemetry shutdown failed: %v", err))
		}
	}()

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		appLog.Fatal(fmt.Sprintf("Metrics initialization failed: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MinIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Apply schema migrations
	if err := database.Migrate(dbCfg, migrations.FS, "."); err != nil {
		appLog.Fatal(fmt.Sprintf("Migrations failed: %v", err))
	}
	appLog.Info("Migrations applied")

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Initialize NFT issuance gateway client
	nftGateway := nft.NewHTTPClient(&nft.ClientConfig{
		BaseURL:        cfg.NFT.GatewayURL,
		CreatorAddress: cfg.NFT.CreatorAddress,
		RequestTimeout: cfg.NFT.RequestTimeout,
		MaxRetries:     cfg.NFT.MaxRetries,
	})

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: serviceName,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		} else {
			eventPublisher = kafkaPublisher
			appLog.Info("Kafka event publisher connected")
		}
	}
	defer eventPublisher.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		NFTGateway:     nftGateway,
		EventPublisher: eventPublisher,
		AuthConfig: &service.AuthServiceConfig{
			JWTSecret: cfg.JWT.Secret,
			TokenTTL:  cfg.JWT.TokenTTL,
		},
		TicketConfig: &service.TicketServiceConfig{
			MintBudget: cfg.NFT.RequestTimeout,
		},
	})

	// Start the background sweeper alongside the API. A dedicated
	// deployment can run cmd/listing-sweeper instead.
	sweeper := worker.NewSweepWorker(container.ListingService, container.TicketRepo, &worker.SweepWorkerConfig{
		ScanInterval: cfg.Sweeper.ScanInterval,
		BatchSize:    cfg.Sweeper.BatchSize,
		PendingTTL:   cfg.Sweeper.PendingMaxAge,
	})
	if err := sweeper.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Sweep worker failed to start: %v", err))
	}

	// Setup Gin
	gin.SetMode(gin.ReleaseMode)
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(appLog))
	router.Use(telemetry.TracingMiddleware(serviceName))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Pool stats for monitoring
	router.GET("/metrics", func(c *gin.Context) {
		stats := db.Pool().Stat()
		c.JSON(http.StatusOK, gin.H{
			"db_pool": gin.H{
				"total_conns":        stats.TotalConns(),
				"acquired_conns":     stats.AcquiredConns(),
				"idle_conns":         stats.IdleConns(),
				"max_conns":          stats.MaxConns(),
				"constructing_conns": stats.ConstructingConns(),
			},
			"sweeper": sweeper.GetStats(),
		})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": serviceName,
			})
		})

		// Public routes
		v1.POST("/auth/register", container.AuthHandler.Register)
		v1.POST("/auth/login", container.AuthHandler.Login)

		v1.GET("/events", container.EventHandler.ListEvents)
		v1.GET("/events/categories", container.EventHandler.GetCategories)
		v1.GET("/events/venues", container.EventHandler.GetVenues)
		v1.GET("/events/:id", container.EventHandler.GetEvent)

		v1.GET("/listings", container.ListingHandler.ListListings)

		// Gate scanners authenticate out of band, not per user
		v1.POST("/tickets/:id/verify", container.TicketHandler.VerifyTicket)
		v1.GET("/tickets/:id/history", container.TransactionHandler.GetTicketHistory)

		// Authenticated routes
		auth := v1.Group("")
		auth.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

		idempotencyConfig := middleware.DefaultIdempotencyConfig(redisClient.Client())
		idempotencyConfig.SkipPaths = []string{"/health", "/ready", "/metrics"}
		idempotent := middleware.IdempotencyMiddleware(idempotencyConfig)

		{
			auth.POST("/tickets/purchase", idempotent, container.TicketHandler.PurchaseTicket)
			auth.GET("/tickets/my-tickets", container.TicketHandler.GetMyTickets)
			auth.GET("/tickets/:id", container.TicketHandler.GetTicket)
			auth.POST("/tickets/:id/list", container.ListingHandler.CreateListing)
			auth.POST("/tickets/:id/transfer", idempotent, container.TicketHandler.TransferTicket)

			auth.POST("/listings/:id/purchase", idempotent, container.ListingHandler.PurchaseListing)
			auth.POST("/listings/:id/cancel", container.ListingHandler.CancelListing)

			auth.GET("/user/profile", container.AuthHandler.GetProfile)
			auth.PUT("/user/profile", container.AuthHandler.UpdateProfile)
			auth.GET("/user/transactions", container.TransactionHandler.GetUserTransactions)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start pprof server on separate port for profiling
	go func() {
		pprofAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port+1000)
		appLog.Info(fmt.Sprintf("pprof server listening on %s", pprofAddr))
		if err := http.ListenAndServe(pprofAddr, nil); err != nil {
			appLog.Error(fmt.Sprintf("pprof server error: %v", err))
		}
	}()

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Marketplace API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	sweeper.Stop()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

func logLevel(cfg *config.Config) string {
	if cfg.App.Debug {
		return "debug"
	}
	return "info"
}
