package repository

import (
	"context"
	"time"

	"github.com/jrbailey528/solanasign/internal/domain"
)

// UserRepository manages user persistence
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// EventRepository manages the event catalog
type EventRepository interface {
	Upsert(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, error)
	Categories(ctx context.Context) ([]string, error)
	Venues(ctx context.Context) ([]string, error)
}

// TicketRepository manages tickets, their history, and the multi-entity
// transactions of the two-phase mint.
type TicketRepository interface {
	// IssuePending atomically decrements event inventory and inserts the
	// ticket with status pending. Returns ErrInventoryExhausted when the
	// event has no availability left.
	IssuePending(ctx context.Context, ticket *domain.Ticket) error
	// Promote atomically moves a pending ticket to active, stores the mint
	// result, and appends the mint history entry.
	Promote(ctx context.Context, ticket *domain.Ticket, mintTx *domain.TicketTransaction) error
	// Compensate rolls back a pending ticket whose mint failed: deletes the
	// ticket and restores event inventory in one transaction.
	Compensate(ctx context.Context, ticketID, eventID string) error
	// ReapStalePending compensates pending tickets older than the cutoff.
	ReapStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error)

	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.Ticket, error)

	// Transfer applies an ownership handoff with an optimistic version check
	// and appends the transfer history entry in the same transaction.
	Transfer(ctx context.Context, ticket *domain.Ticket, expectedVersion int, transferTx *domain.TicketTransaction) error
	// Redeem marks the ticket used with an optimistic version check and
	// appends the use history entry in the same transaction.
	Redeem(ctx context.Context, ticket *domain.Ticket, expectedVersion int, useTx *domain.TicketTransaction) error

	History(ctx context.Context, ticketID string) ([]*domain.TicketTransaction, error)
	// UserHistory returns every history entry where the user is sender or
	// receiver, across all tickets they hold or once held, newest first.
	UserHistory(ctx context.Context, userID string) ([]*domain.TicketTransaction, error)
}

// ListingRepository manages resale listings and the transactions that
// couple them to ticket state.
type ListingRepository interface {
	// Create inserts the listing and flips its ticket from active to listed
	// under an optimistic version check, appending the list history entry.
	Create(ctx context.Context, listing *domain.Listing, expectedVersion int) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetActiveByTicket(ctx context.Context, ticketID string) (*domain.Listing, error)
	List(ctx context.Context, eventID string, limit int) ([]*domain.Listing, error)

	// Sell closes the listing and moves ticket ownership in one transaction.
	// The listing row is claimed with a conditional update so that exactly
	// one concurrent buyer wins; losers observe ErrListingUnavailable.
	Sell(ctx context.Context, listing *domain.Listing, buyerID string, purchaseTx *domain.TicketTransaction) error
	// Cancel closes the listing and returns its ticket to active, appending
	// the delist history entry.
	Cancel(ctx context.Context, listing *domain.Listing, delistTx *domain.TicketTransaction) error
	// SweepExpired cancels overdue listings and resets their tickets.
	SweepExpired(ctx context.Context, now time.Time, limit int) (int, error)
}
