package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// PostgresListingRepository implements ListingRepository using PostgreSQL
// with pgxpool. Every mutation that touches both a listing and its ticket
// runs in one transaction.
type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresListingRepository creates a new PostgresListingRepository
func NewPostgresListingRepository(pool *pgxpool.Pool) *PostgresListingRepository {
	return &PostgresListingRepository{pool: pool}
}

const listingColumns = `
	id, ticket_id, event_id, seller_id, buyer_id, price, status,
	listed_at, expires_at, sold_at, updated_at
`

// Create inserts the listing and flips its ticket from active to listed.
// The version check on the ticket serializes against concurrent transfers
// and redemptions; zero rows affected maps to ErrVersionConflict.
func (r *PostgresListingRepository) Create(ctx context.Context, listing *domain.Listing, expectedVersion int) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("listing_id", listing.ID),
		attribute.String("ticket_id", listing.TicketID),
		attribute.Float64("price", listing.Price),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	markListed := `
		UPDATE tickets
		SET status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = $3 AND version = $4
	`
	tag, err := tx.Exec(ctx, markListed,
		listing.TicketID,
		domain.TicketStatusListed.String(),
		domain.TicketStatusActive.String(),
		expectedVersion,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to mark ticket listed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	insert := `
		INSERT INTO listings (id, ticket_id, event_id, seller_id, price, status, listed_at, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, insert,
		listing.ID,
		listing.TicketID,
		listing.EventID,
		listing.SellerID,
		listing.Price,
		listing.Status.String(),
		listing.ListedAt,
		listing.ExpiresAt,
		listing.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert listing: %w", err)
	}

	listTx := &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   listing.TicketID,
		Kind:       domain.TransactionKindList,
		FromUserID: listing.SellerID,
		Price:      &listing.Price,
		OccurredAt: listing.ListedAt,
	}
	if err := insertTransaction(ctx, tx, listTx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a listing by its ID
func (r *PostgresListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("listing_id", id))

	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

// GetActiveByTicket retrieves the single active listing for a ticket
func (r *PostgresListingRepository) GetActiveByTicket(ctx context.Context, ticketID string) (*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.get_active_by_ticket")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `SELECT ` + listingColumns + ` FROM listings WHERE ticket_id = $1 AND status = $2`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, ticketID, domain.ListingStatusActive.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get active listing: %w", err)
	}
	return listing, nil
}

// List retrieves active listings, optionally narrowed to one event
func (r *PostgresListingRepository) List(ctx context.Context, eventID string, limit int) ([]*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.list")
	defer span.End()

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT ` + listingColumns + ` FROM listings WHERE status = $1`
	args := []any{domain.ListingStatusActive.String()}

	if eventID != "" {
		query += ` AND event_id = $2`
		args = append(args, eventID)
	}
	query += fmt.Sprintf(` ORDER BY listed_at DESC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	span.SetAttributes(attribute.Int("count", len(listings)))
	span.SetStatus(codes.Ok, "")
	return listings, rows.Err()
}

// Sell claims the listing and moves ticket ownership in one transaction.
// The conditional update on the listing row is the arbiter: exactly one
// concurrent buyer flips active to sold, every other buyer sees zero rows.
// An expired listing is never claimable, even before the sweeper reaches it.
func (r *PostgresListingRepository) Sell(ctx context.Context, listing *domain.Listing, buyerID string, purchaseTx *domain.TicketTransaction) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.sell")
	defer span.End()

	span.SetAttributes(
		attribute.String("listing_id", listing.ID),
		attribute.String("ticket_id", listing.TicketID),
		attribute.String("buyer_id", buyerID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	claim := `
		UPDATE listings
		SET status = $2, buyer_id = $3, sold_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
		  AND (expires_at IS NULL OR expires_at > NOW())
	`
	tag, err := tx.Exec(ctx, claim,
		listing.ID,
		domain.ListingStatusSold.String(),
		buyerID,
		domain.ListingStatusActive.String(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to claim listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingUnavailable
	}

	moveOwnership := `
		UPDATE tickets
		SET previous_owners = array_append(previous_owners, owner_id),
		    owner_id = $2, price = $3, status = $4,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`
	tag, err = tx.Exec(ctx, moveOwnership,
		listing.TicketID,
		buyerID,
		listing.Price,
		domain.TicketStatusActive.String(),
		domain.TicketStatusListed.String(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to move ticket ownership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Listing claimed but ticket not listed: state drifted, abort both
		return domain.ErrVersionConflict
	}

	if err := insertTransaction(ctx, tx, purchaseTx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Cancel closes the listing and returns its ticket to active
func (r *PostgresListingRepository) Cancel(ctx context.Context, listing *domain.Listing, delistTx *domain.TicketTransaction) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.String("listing_id", listing.ID),
		attribute.String("ticket_id", listing.TicketID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.closeListing(ctx, tx, listing.ID, listing.TicketID, domain.ListingStatusCancelled); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if delistTx != nil {
		if err := insertTransaction(ctx, tx, delistTx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// closeListing flips an active listing to a terminal status and returns its
// ticket to active, inside an open transaction.
func (r *PostgresListingRepository) closeListing(ctx context.Context, tx pgx.Tx, listingID, ticketID string, status domain.ListingStatus) error {
	claim := `
		UPDATE listings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`
	tag, err := tx.Exec(ctx, claim, listingID, status.String(), domain.ListingStatusActive.String())
	if err != nil {
		return fmt.Errorf("failed to close listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingUnavailable
	}

	unlist := `
		UPDATE tickets
		SET status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`
	if _, err := tx.Exec(ctx, unlist,
		ticketID,
		domain.TicketStatusActive.String(),
		domain.TicketStatusListed.String(),
	); err != nil {
		return fmt.Errorf("failed to unlist ticket: %w", err)
	}
	return nil
}

// SweepExpired cancels overdue listings and resets their tickets
func (r *PostgresListingRepository) SweepExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.sweep_expired")
	defer span.End()

	query := `
		SELECT id, ticket_id FROM listings
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at < $2
		ORDER BY expires_at ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, domain.ListingStatusActive.String(), now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to query expired listings: %w", err)
	}

	type expired struct{ listingID, ticketID string }
	var found []expired
	for rows.Next() {
		var e expired
		if err := rows.Scan(&e.listingID, &e.ticketID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan: %w", err)
		}
		found = append(found, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	swept := 0
	for _, e := range found {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return swept, fmt.Errorf("failed to begin transaction: %w", err)
		}
		err = r.closeListing(ctx, tx, e.listingID, e.ticketID, domain.ListingStatusExpired)
		if err != nil {
			tx.Rollback(ctx)
			if errors.Is(err, domain.ErrListingUnavailable) {
				// Sold or cancelled between the scan and the sweep
				continue
			}
			return swept, err
		}
		if err := tx.Commit(ctx); err != nil {
			return swept, fmt.Errorf("failed to commit: %w", err)
		}
		swept++
	}

	span.SetAttributes(attribute.Int("swept", swept))
	span.SetStatus(codes.Ok, "")
	return swept, nil
}

// scanListing scans a listing row in listingColumns order
func scanListing(row pgx.Row) (*domain.Listing, error) {
	listing := &domain.Listing{}
	var (
		status  string
		buyerID *string
	)

	err := row.Scan(
		&listing.ID,
		&listing.TicketID,
		&listing.EventID,
		&listing.SellerID,
		&buyerID,
		&listing.Price,
		&status,
		&listing.ListedAt,
		&listing.ExpiresAt,
		&listing.SoldAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	listing.Status = domain.ListingStatus(status)
	if buyerID != nil {
		listing.BuyerID = *buyerID
	}
	return listing, nil
}
