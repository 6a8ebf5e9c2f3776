package di

import (
	"github.com/jrbailey528/solanasign/internal/handler"
	"github.com/jrbailey528/solanasign/internal/nft"
	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/internal/service"
	"github.com/jrbailey528/solanasign/pkg/database"
	"github.com/jrbailey528/solanasign/pkg/redis"
)

// Container holds all dependencies for the marketplace API
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	UserRepo    repository.UserRepository
	EventRepo   repository.EventRepository
	TicketRepo  repository.TicketRepository
	ListingRepo repository.ListingRepository

	// External gateways and publishers
	NFTGateway     nft.Gateway
	EventPublisher service.EventPublisher

	// Services
	AuthService        service.AuthService
	EventService       service.EventService
	TicketService      service.TicketService
	ListingService     service.ListingService
	TransactionService service.TransactionService

	// Handlers
	HealthHandler      *handler.HealthHandler
	AuthHandler        *handler.AuthHandler
	EventHandler       *handler.EventHandler
	TicketHandler      *handler.TicketHandler
	ListingHandler     *handler.ListingHandler
	TransactionHandler *handler.TransactionHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	NFTGateway     nft.Gateway
	EventPublisher service.EventPublisher
	AuthConfig     *service.AuthServiceConfig
	TicketConfig   *service.TicketServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		NFTGateway:     cfg.NFTGateway,
		EventPublisher: cfg.EventPublisher,
	}

	pool := cfg.DB.Pool()
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.TicketRepo = repository.NewPostgresTicketRepository(pool)
	c.ListingRepo = repository.NewPostgresListingRepository(pool)

	c.AuthService = service.NewAuthService(c.UserRepo, cfg.AuthConfig)
	c.EventService = service.NewEventService(c.EventRepo)
	c.TicketService = service.NewTicketService(
		c.TicketRepo,
		c.EventRepo,
		c.UserRepo,
		c.NFTGateway,
		c.EventPublisher,
		cfg.TicketConfig,
	)
	c.ListingService = service.NewListingService(
		c.ListingRepo,
		c.TicketRepo,
		c.EventRepo,
		c.EventPublisher,
	)
	c.TransactionService = service.NewTransactionService(c.TicketRepo)

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService)
	c.ListingHandler = handler.NewListingHandler(c.ListingService)
	c.TransactionHandler = handler.NewTransactionHandler(c.TransactionService)

	return c
}
