package service

import (
	"context"
	"time"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/internal/nft"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	UpdateFunc     func(ctx context.Context, user *domain.User) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	UpsertFunc     func(ctx context.Context, event *domain.Event) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.Event, error)
	ListFunc       func(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, error)
	CategoriesFunc func(ctx context.Context) ([]string, error)
	VenuesFunc     func(ctx context.Context) ([]string, error)
}

func (m *MockEventRepository) Upsert(ctx context.Context, event *domain.Event) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) List(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockEventRepository) Categories(ctx context.Context) ([]string, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockEventRepository) Venues(ctx context.Context) ([]string, error) {
	if m.VenuesFunc != nil {
		return m.VenuesFunc(ctx)
	}
	return nil, nil
}

// MockTicketRepository is a mock implementation of repository.TicketRepository
type MockTicketRepository struct {
	IssuePendingFunc     func(ctx context.Context, ticket *domain.Ticket) error
	PromoteFunc          func(ctx context.Context, ticket *domain.Ticket, mintTx *domain.TicketTransaction) error
	CompensateFunc       func(ctx context.Context, ticketID, eventID string) error
	ReapStalePendingFunc func(ctx context.Context, cutoff time.Time, limit int) (int, error)
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Ticket, error)
	GetByOwnerFunc       func(ctx context.Context, ownerID string) ([]*domain.Ticket, error)
	TransferFunc         func(ctx context.Context, ticket *domain.Ticket, expectedVersion int, transferTx *domain.TicketTransaction) error
	RedeemFunc           func(ctx context.Context, ticket *domain.Ticket, expectedVersion int, useTx *domain.TicketTransaction) error
	HistoryFunc          func(ctx context.Context, ticketID string) ([]*domain.TicketTransaction, error)
	UserHistoryFunc      func(ctx context.Context, userID string) ([]*domain.TicketTransaction, error)
}

func (m *MockTicketRepository) IssuePending(ctx context.Context, ticket *domain.Ticket) error {
	if m.IssuePendingFunc != nil {
		return m.IssuePendingFunc(ctx, ticket)
	}
	return nil
}

func (m *MockTicketRepository) Promote(ctx context.Context, ticket *domain.Ticket, mintTx *domain.TicketTransaction) error {
	if m.PromoteFunc != nil {
		return m.PromoteFunc(ctx, ticket, mintTx)
	}
	return nil
}

func (m *MockTicketRepository) Compensate(ctx context.Context, ticketID, eventID string) error {
	if m.CompensateFunc != nil {
		return m.CompensateFunc(ctx, ticketID, eventID)
	}
	return nil
}

func (m *MockTicketRepository) ReapStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	if m.ReapStalePendingFunc != nil {
		return m.ReapStalePendingFunc(ctx, cutoff, limit)
	}
	return 0, nil
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrTicketNotFound
}

func (m *MockTicketRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Ticket, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *MockTicketRepository) Transfer(ctx context.Context, ticket *domain.Ticket, expectedVersion int, transferTx *domain.TicketTransaction) error {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, ticket, expectedVersion, transferTx)
	}
	return nil
}

func (m *MockTicketRepository) Redeem(ctx context.Context, ticket *domain.Ticket, expectedVersion int, useTx *domain.TicketTransaction) error {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, ticket, expectedVersion, useTx)
	}
	return nil
}

func (m *MockTicketRepository) History(ctx context.Context, ticketID string) ([]*domain.TicketTransaction, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *MockTicketRepository) UserHistory(ctx context.Context, userID string) ([]*domain.TicketTransaction, error) {
	if m.UserHistoryFunc != nil {
		return m.UserHistoryFunc(ctx, userID)
	}
	return nil, nil
}

// MockListingRepository is a mock implementation of repository.ListingRepository
type MockListingRepository struct {
	CreateFunc            func(ctx context.Context, listing *domain.Listing, expectedVersion int) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Listing, error)
	GetActiveByTicketFunc func(ctx context.Context, ticketID string) (*domain.Listing, error)
	ListFunc              func(ctx context.Context, eventID string, limit int) ([]*domain.Listing, error)
	SellFunc              func(ctx context.Context, listing *domain.Listing, buyerID string, purchaseTx *domain.TicketTransaction) error
	CancelFunc            func(ctx context.Context, listing *domain.Listing, delistTx *domain.TicketTransaction) error
	SweepExpiredFunc      func(ctx context.Context, now time.Time, limit int) (int, error)
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing, expectedVersion int) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, listing, expectedVersion)
	}
	return nil
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrListingNotFound
}

func (m *MockListingRepository) GetActiveByTicket(ctx context.Context, ticketID string) (*domain.Listing, error) {
	if m.GetActiveByTicketFunc != nil {
		return m.GetActiveByTicketFunc(ctx, ticketID)
	}
	return nil, domain.ErrListingNotFound
}

func (m *MockListingRepository) List(ctx context.Context, eventID string, limit int) ([]*domain.Listing, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, eventID, limit)
	}
	return nil, nil
}

func (m *MockListingRepository) Sell(ctx context.Context, listing *domain.Listing, buyerID string, purchaseTx *domain.TicketTransaction) error {
	if m.SellFunc != nil {
		return m.SellFunc(ctx, listing, buyerID, purchaseTx)
	}
	return nil
}

func (m *MockListingRepository) Cancel(ctx context.Context, listing *domain.Listing, delistTx *domain.TicketTransaction) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, listing, delistTx)
	}
	return nil
}

func (m *MockListingRepository) SweepExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	if m.SweepExpiredFunc != nil {
		return m.SweepExpiredFunc(ctx, now, limit)
	}
	return 0, nil
}

// MockGateway is a mock implementation of nft.Gateway
type MockGateway struct {
	MintFunc            func(ctx context.Context, metadata *domain.TicketMetadata) (*nft.MintResult, error)
	FindOwnerByMintFunc func(ctx context.Context, mintAddress string) (string, error)
}

func (m *MockGateway) Mint(ctx context.Context, metadata *domain.TicketMetadata) (*nft.MintResult, error) {
	if m.MintFunc != nil {
		return m.MintFunc(ctx, metadata)
	}
	return &nft.MintResult{MintAddress: "mock-mint", Signature: "mock-signature"}, nil
}

func (m *MockGateway) FindOwnerByMint(ctx context.Context, mintAddress string) (string, error) {
	if m.FindOwnerByMintFunc != nil {
		return m.FindOwnerByMintFunc(ctx, mintAddress)
	}
	return "", nil
}
