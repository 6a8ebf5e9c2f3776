package repository

// Integration tests against a real Postgres instance. The concurrency
// guarantees of this layer live in SQL conditions, so they can only be
// verified against a live database.
//
// Run with:
//
//	INTEGRATION_TEST=true go test ./internal/repository/...
//
// Connection details come from TEST_POSTGRES_* environment variables.

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/migrations"
	"github.com/jrbailey528/solanasign/pkg/database"
)

func skipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB runs the migrations, connects, and wipes test data so every
// test starts from an empty schema.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	skipIfNoIntegration(t)

	port, err := strconv.Atoi(getEnv("TEST_POSTGRES_PORT", "5432"))
	if err != nil {
		t.Fatalf("invalid TEST_POSTGRES_PORT: %v", err)
	}
	cfg := &database.PostgresConfig{
		Host:           getEnv("TEST_POSTGRES_HOST", "localhost"),
		Port:           port,
		User:           getEnv("TEST_POSTGRES_USER", "postgres"),
		Password:       getEnv("TEST_POSTGRES_PASSWORD", "postgres"),
		Database:       getEnv("TEST_POSTGRES_DB", "marketplace_test"),
		SSLMode:        "disable",
		MaxConns:       5,
		MinConns:       1,
		ConnectTimeout: 5 * time.Second,
	}

	if err := database.Migrate(cfg, migrations.FS, "."); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(),
		"TRUNCATE ticket_transactions, listings, tickets, events, users")
	if err != nil {
		t.Fatalf("Failed to clean test data: %v", err)
	}
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, name string) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "$2a$10$integrationtesthash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewPostgresUserRepository(pool).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

func seedEvent(t *testing.T, pool *pgxpool.Pool, totalTickets int) *domain.Event {
	t.Helper()
	now := time.Now().UTC()
	event := &domain.Event{
		ID:           uuid.New().String(),
		Title:        "Integration Night",
		Date:         now.Add(30 * 24 * time.Hour),
		Venue:        "Crypto Arena",
		Location:     "Los Angeles, CA",
		Categories:   []string{"Concert"},
		BasePrice:    75,
		TotalTickets: totalTickets,
		Status:       domain.EventStatusOnSale,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewPostgresEventRepository(pool).Upsert(context.Background(), event); err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	return event
}

func newPendingTicket(eventID, ownerID string, createdAt time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:             uuid.New().String(),
		EventID:        eventID,
		OwnerID:        ownerID,
		PreviousOwners: []string{},
		Section:        "GA",
		Row:            "A",
		Seat:           "12",
		Price:          75,
		Status:         domain.TicketStatusPending,
		Version:        1,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func issuePendingTicket(t *testing.T, repo *PostgresTicketRepository, eventID, ownerID string, createdAt time.Time) *domain.Ticket {
	t.Helper()
	ticket := newPendingTicket(eventID, ownerID, createdAt)
	if err := repo.IssuePending(context.Background(), ticket); err != nil {
		t.Fatalf("Failed to issue pending ticket: %v", err)
	}
	return ticket
}

func mintEntry(ticketID, ownerID string) *domain.TicketTransaction {
	return &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   ticketID,
		Kind:       domain.TransactionKindMint,
		ToUserID:   ownerID,
		OccurredAt: time.Now().UTC(),
	}
}

// seedActiveTicket walks a ticket through the full issue/promote path,
// leaving it active at version 2.
func seedActiveTicket(t *testing.T, pool *pgxpool.Pool, eventID, ownerID string) *domain.Ticket {
	t.Helper()
	repo := NewPostgresTicketRepository(pool)
	ticket := issuePendingTicket(t, repo, eventID, ownerID, time.Now().UTC())
	ticket.MintAddress = "mint-" + ticket.ID
	if err := repo.Promote(context.Background(), ticket, mintEntry(ticket.ID, ownerID)); err != nil {
		t.Fatalf("Failed to promote ticket: %v", err)
	}
	ticket.Status = domain.TicketStatusActive
	ticket.Version = 2
	return ticket
}

func TestPostgresTicketRepository_IssuePendingDecrementsInventory(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTicketRepository(pool)
	eventRepo := NewPostgresEventRepository(pool)

	owner := seedUser(t, pool, "Buyer")
	event := seedEvent(t, pool, 2)

	ticket := issuePendingTicket(t, repo, event.ID, owner.ID, time.Now().UTC())

	got, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.TicketStatusPending {
		t.Errorf("Expected status %s, got %s", domain.TicketStatusPending, got.Status)
	}
	if got.Version != 1 {
		t.Errorf("Expected version 1, got %d", got.Version)
	}

	updated, err := eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("Event GetByID failed: %v", err)
	}
	if updated.AvailableTickets != 1 {
		t.Errorf("Expected 1 available ticket, got %d", updated.AvailableTickets)
	}
	if updated.SoldTickets != 1 {
		t.Errorf("Expected 1 sold ticket, got %d", updated.SoldTickets)
	}
}

func TestPostgresTicketRepository_IssuePendingExhaustsInventory(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTicketRepository(pool)
	eventRepo := NewPostgresEventRepository(pool)

	owner := seedUser(t, pool, "Buyer")
	event := seedEvent(t, pool, 1)

	issuePendingTicket(t, repo, event.ID, owner.ID, time.Now().UTC())

	second := newPendingTicket(event.ID, owner.ID, time.Now().UTC())
	err := repo.IssuePending(ctx, second)
	if !errors.Is(err, domain.ErrInventoryExhausted) {
		t.Errorf("Expected ErrInventoryExhausted, got %v", err)
	}

	updated, err := eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("Event GetByID failed: %v", err)
	}
	if updated.AvailableTickets != 0 {
		t.Errorf("Expected 0 available tickets, got %d", updated.AvailableTickets)
	}
}

func TestPostgresTicketRepository_PromoteActivatesAndRecordsMint(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTicketRepository(pool)

	owner := seedUser(t, pool, "Buyer")
	event := seedEvent(t, pool, 1)

	ticket := issuePendingTicket(t, repo, event.ID, owner.ID, time.Now().UTC())
	ticket.MintAddress = "mint-" + ticket.ID
	ticket.Metadata = &domain.TicketMetadata{
		Name: event.Title + " Ticket",
		Attributes: []domain.MetadataAttribute{
			{TraitType: "Section", Value: "GA"},
		},
	}

	if err := repo.Promote(ctx, ticket, mintEntry(ticket.ID, owner.ID)); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	got, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.TicketStatusActive {
		t.Errorf("Expected status %s, got %s", domain.TicketStatusActive, got.Status)
	}
	if got.Version != 2 {
		t.Errorf("Expected version 2, got %d", got.Version)
	}
	if got.MintAddress != ticket.MintAddress {
		t.Errorf("Expected mint address %s, got %s", ticket.MintAddress, got.MintAddress)
	}
	if got.Metadata == nil || got.Metadata.Name != ticket.Metadata.Name {
		t.Errorf("Expected metadata name %q, got %+v", ticket.Metadata.Name, got.Metadata)
	}

	history, err := repo.History(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history))
	}
	if history[0].Kind != domain.TransactionKindMint {
		t.Errorf("Expected mint entry, got %s", history[0].Kind)
	}
	if history[0].ToUserID != owner.ID {
		t.Errorf("Expected recipient %s, got %s", owner.ID, history[0].ToUserID)
	}

	// A second promotion must find no pending row
	err = repo.Promote(ctx, ticket, mintEntry(ticket.ID, owner.ID))
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Errorf("Expected ErrVersionConflict on double promote, got %v", err)
	}
}

func TestPostgresTicketRepository_CompensateRestoresInventory(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTicketRepository(pool)
	eventRepo := NewPostgresEventRepository(pool)

	owner := seedUser(t, pool, "Buyer")
	event := seedEvent(t, pool, 1)

	ticket := issuePendingTicket(t, repo, event.ID, owner.ID, time.Now().UTC())

	if err := repo.Compensate(ctx, ticket.ID, event.ID); err != nil {
		t.Fatalf("Compensate failed: %v", err)
	}

	if _, err := repo.GetByID(ctx, ticket.ID); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("Expected ErrTicketNotFound after compensation, got %v", err)
	}

	updated, err := eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("Event GetByID failed: %v", err)
	}
	if updated.AvailableTickets != 1 {
		t.Errorf("Expected inventory restored to 1, got %d", updated.AvailableTickets)
	}
	if updated.SoldTickets != 0 {
		t.Errorf("Expected 0 sold tickets, got %d", updated.SoldTickets)
	}

	// Already compensated: a repeat is a no-op
	if err := repo.Compensate(ctx, ticket.ID, event.ID); err != nil {
		t.Errorf("Expected repeat compensation to be a no-op, got %v", err)
	}
}

func TestPostgresTicketRepository_CompensateLeavesPromotedTicket(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTicketRepository(pool)
	eventRepo := NewPostgresEventRepository(pool)

	owner := seedUser(t, pool, "Buyer")
	event := seedEvent(t, pool, 1)
	ticket := seedActiveTicket(t, pool, event.ID, owner.ID)

	if err := repo.Compensate(ctx, ticket.ID, event.ID); err != nil {
		t.Fatalf("Compensate failed: %v", err)
	}

	got, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.TicketStatusActive {
		t.Errorf("Expected promoted ticket untouched, got status %s", got.Status)
	}

	updated, err := eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("Event GetByID failed: %v", err)
	}
	if updated.AvailableTickets != 0 {
		t.Errorf("Expected inventory untouched at 0, got %d", updated.AvailableTickets)
	}
}

func TestPostgresTicketRepository_ReapStalePending(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTicketRepository(pool)
	eventRepo := NewPostgresEventRepository(pool)

	owner := seedUser(t, pool, "Buyer")
	event := seedEvent(t, pool, 3)

	stale := time.Now().UTC().Add(-time.Hour)
	issuePendingTicket(t, repo, event.ID, owner.ID, stale)
	issuePendingTicket(t, repo, event.ID, owner.ID, stale)
	fresh := issuePendingTicket(t, repo, event.ID, owner.ID, time.Now().UTC())

	reaped, err := repo.ReapStalePending(ctx, time.Now().UTC().Add(-30*time.Minute), 10)
	if err != nil {
		t.Fatalf("ReapStalePending failed: %v", err)
	}
	if reaped != 2 {
		t.Errorf("Expected 2 reaped tickets, got %d", reaped)
	}

	got, err := repo.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.TicketStatusPending {
		t.Errorf("Expected fresh ticket left pending, got %s", got.Status)
	}

	updated, err := eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("Event GetByID failed: %v", err)
	}
	if updated.AvailableTickets != 2 {
		t.Errorf("Expected 2 available tickets after reaping, got %d", updated.AvailableTickets)
	}
}

func TestPostgresTicketRepository_TransferVersionCheck(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTicketRepository(pool)

	owner := seedUser(t, pool, "Seller")
	recipient := seedUser(t, pool, "Recipient")
	event := seedEvent(t, pool, 1)
	ticket := seedActiveTicket(t, pool, event.ID, owner.ID)

	moved := *ticket
	moved.OwnerID = recipient.ID
	moved.PreviousOwners = []string{owner.ID}
	transferTx := &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   ticket.ID,
		Kind:       domain.TransactionKindTransfer,
		FromUserID: owner.ID,
		ToUserID:   recipient.ID,
		OccurredAt: time.Now().UTC(),
	}

	err := repo.Transfer(ctx, &moved, ticket.Version-1, transferTx)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("Expected ErrVersionConflict on stale version, got %v", err)
	}

	if err := repo.Transfer(ctx, &moved, ticket.Version, transferTx); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	got, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.OwnerID != recipient.ID {
		t.Errorf("Expected owner %s, got %s", recipient.ID, got.OwnerID)
	}
	if got.Version != ticket.Version+1 {
		t.Errorf("Expected version %d, got %d", ticket.Version+1, got.Version)
	}
	if len(got.PreviousOwners) != 1 || got.PreviousOwners[0] != owner.ID {
		t.Errorf("Expected previous owners [%s], got %v", owner.ID, got.PreviousOwners)
	}
}

func TestPostgresTicketRepository_RedeemVersionCheck(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresTicketRepository(pool)

	owner := seedUser(t, pool, "Holder")
	event := seedEvent(t, pool, 1)
	ticket := seedActiveTicket(t, pool, event.ID, owner.ID)

	redeemed := *ticket
	redeemed.Status = domain.TicketStatusUsed
	useTx := &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   ticket.ID,
		Kind:       domain.TransactionKindUse,
		FromUserID: owner.ID,
		OccurredAt: time.Now().UTC(),
	}

	err := repo.Redeem(ctx, &redeemed, ticket.Version-1, useTx)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("Expected ErrVersionConflict on stale version, got %v", err)
	}

	if err := repo.Redeem(ctx, &redeemed, ticket.Version, useTx); err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}

	got, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.TicketStatusUsed {
		t.Errorf("Expected status %s, got %s", domain.TicketStatusUsed, got.Status)
	}

	history, err := repo.History(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 || history[1].Kind != domain.TransactionKindUse {
		t.Errorf("Expected mint then use entries, got %d entries", len(history))
	}
}
