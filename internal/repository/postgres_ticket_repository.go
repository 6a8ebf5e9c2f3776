package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with
// pgxpool. Multi-entity mutations run in a single transaction; ticket rows
// carry a version column checked on every update.
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

const ticketColumns = `
	id, event_id, owner_id, previous_owners, section, row, seat, price,
	status, mint_address, metadata, version, created_at, updated_at
`

// IssuePending holds an inventory slot and inserts the ticket as pending.
// The conditional decrement guarantees availability never goes negative.
func (r *PostgresTicketRepository) IssuePending(ctx context.Context, ticket *domain.Ticket) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.issue_pending")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticket.ID),
		attribute.String("event_id", ticket.EventID),
		attribute.String("owner_id", ticket.OwnerID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	decrement := `
		UPDATE events
		SET available_tickets = available_tickets - 1,
		    sold_tickets = sold_tickets + 1,
		    updated_at = NOW()
		WHERE id = $1 AND available_tickets > 0
	`
	tag, err := tx.Exec(ctx, decrement, ticket.EventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to decrement availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInventoryExhausted
	}

	insert := `
		INSERT INTO tickets (
			id, event_id, owner_id, previous_owners, section, row, seat, price,
			status, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11)
	`
	_, err = tx.Exec(ctx, insert,
		ticket.ID,
		ticket.EventID,
		ticket.OwnerID,
		ticket.PreviousOwners,
		ticket.Section,
		ticket.Row,
		ticket.Seat,
		ticket.Price,
		domain.TicketStatusPending.String(),
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert pending ticket: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Promote completes the mint: pending -> active with the mint result and the
// mint history entry. The status condition makes promotion idempotent-safe
// against the stale-pending reaper.
func (r *PostgresTicketRepository) Promote(ctx context.Context, ticket *domain.Ticket, mintTx *domain.TicketTransaction) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.promote")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticket.ID),
		attribute.String("mint_address", ticket.MintAddress),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	promote := `
		UPDATE tickets
		SET status = $2, mint_address = $3, metadata = $4,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`
	tag, err := tx.Exec(ctx, promote,
		ticket.ID,
		domain.TicketStatusActive.String(),
		ticket.MintAddress,
		ticket.Metadata,
		domain.TicketStatusPending.String(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to promote ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	if err := insertTransaction(ctx, tx, mintTx); err != nil {
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

// Compensate rolls back a pending ticket whose mint failed
func (r *PostgresTicketRepository) Compensate(ctx context.Context, ticketID, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.compensate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticketID),
		attribute.String("event_id", eventID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	del := `DELETE FROM tickets WHERE id = $1 AND status = $2`
	tag, err := tx.Exec(ctx, del, ticketID, domain.TicketStatusPending.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete pending ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already promoted or already reaped; nothing to restore
		return nil
	}

	restore := `
		UPDATE events
		SET available_tickets = available_tickets + 1,
		    sold_tickets = sold_tickets - 1,
		    updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, restore, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to restore availability: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ReapStalePending compensates pending tickets created before the cutoff
func (r *PostgresTicketRepository) ReapStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.reap_stale_pending")
	defer span.End()

	query := `
		SELECT id, event_id FROM tickets
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, domain.TicketStatusPending.String(), cutoff, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to query stale pending tickets: %w", err)
	}

	type stale struct{ ticketID, eventID string }
	var found []stale
	for rows.Next() {
		var s stale
		if err := rows.Scan(&s.ticketID, &s.eventID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan: %w", err)
		}
		found = append(found, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	reaped := 0
	for _, s := range found {
		if err := r.Compensate(ctx, s.ticketID, s.eventID); err != nil {
			return reaped, err
		}
		reaped++
	}

	span.SetAttributes(attribute.Int("reaped", reaped))
	span.SetStatus(codes.Ok, "")
	return reaped, nil
}

// GetByID retrieves a ticket by its ID
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// GetByOwner retrieves the tickets currently held by a user. Pending tickets
// are excluded; an incomplete mint is not a holding.
func (r *PostgresTicketRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_owner")
	defer span.End()

	span.SetAttributes(attribute.String("owner_id", ownerID))

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE owner_id = $1 AND status != $2
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID, domain.TicketStatusPending.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, rows.Err()
}

// Transfer applies an ownership handoff under an optimistic version check
func (r *PostgresTicketRepository) Transfer(ctx context.Context, ticket *domain.Ticket, expectedVersion int, transferTx *domain.TicketTransaction) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.transfer")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticket.ID),
		attribute.String("new_owner_id", ticket.OwnerID),
		attribute.Int("expected_version", expectedVersion),
	)

	return r.updateVersioned(ctx, span, ticket, expectedVersion, transferTx)
}

// Redeem marks the ticket used under an optimistic version check
func (r *PostgresTicketRepository) Redeem(ctx context.Context, ticket *domain.Ticket, expectedVersion int, useTx *domain.TicketTransaction) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.redeem")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticket.ID),
		attribute.Int("expected_version", expectedVersion),
	)

	return r.updateVersioned(ctx, span, ticket, expectedVersion, useTx)
}

// updateVersioned writes the ticket's mutable fields and appends a history
// entry in one transaction. Zero rows affected means a concurrent writer won.
func (r *PostgresTicketRepository) updateVersioned(ctx context.Context, span trace.Span, ticket *domain.Ticket, expectedVersion int, historyTx *domain.TicketTransaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	update := `
		UPDATE tickets
		SET owner_id = $2, previous_owners = $3, price = $4, status = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $6
	`
	tag, err := tx.Exec(ctx, update,
		ticket.ID,
		ticket.OwnerID,
		ticket.PreviousOwners,
		ticket.Price,
		ticket.Status.String(),
		expectedVersion,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	if historyTx != nil {
		if err := insertTransaction(ctx, tx, historyTx); err != nil {
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

// History returns a ticket's history entries in chronological order
func (r *PostgresTicketRepository) History(ctx context.Context, ticketID string) ([]*domain.TicketTransaction, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.history")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT id, ticket_id, kind, from_user, to_user, price, signature, occurred_at
		FROM ticket_transactions
		WHERE ticket_id = $1
		ORDER BY occurred_at ASC, id ASC
	`
	return r.queryTransactions(ctx, query, ticketID)
}

// UserHistory returns every history entry involving the user, across all
// tickets they currently hold or once held, newest first.
func (r *PostgresTicketRepository) UserHistory(ctx context.Context, userID string) ([]*domain.TicketTransaction, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.user_history")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `
		SELECT tx.id, tx.ticket_id, tx.kind, tx.from_user, tx.to_user, tx.price, tx.signature, tx.occurred_at
		FROM ticket_transactions tx
		JOIN tickets t ON t.id = tx.ticket_id
		WHERE (t.owner_id = $1 OR $1 = ANY(t.previous_owners))
		  AND (tx.from_user = $1 OR tx.to_user = $1)
		ORDER BY tx.occurred_at DESC, tx.id DESC
	`
	return r.queryTransactions(ctx, query, userID)
}

func (r *PostgresTicketRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.TicketTransaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.TicketTransaction
	for rows.Next() {
		entry := &domain.TicketTransaction{}
		var (
			kind      string
			fromUser  *string
			toUser    *string
			signature *string
		)
		err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&kind,
			&fromUser,
			&toUser,
			&entry.Price,
			&signature,
			&entry.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entry.Kind = domain.TransactionKind(kind)
		if fromUser != nil {
			entry.FromUserID = *fromUser
		}
		if toUser != nil {
			entry.ToUserID = *toUser
		}
		if signature != nil {
			entry.Signature = *signature
		}
		txs = append(txs, entry)
	}
	return txs, rows.Err()
}

// insertTransaction appends a history entry inside an open transaction
func insertTransaction(ctx context.Context, tx pgx.Tx, entry *domain.TicketTransaction) error {
	query := `
		INSERT INTO ticket_transactions (id, ticket_id, kind, from_user, to_user, price, signature, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.Exec(ctx, query,
		entry.ID,
		entry.TicketID,
		entry.Kind.String(),
		nullString(entry.FromUserID),
		nullString(entry.ToUserID),
		entry.Price,
		nullString(entry.Signature),
		entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// scanTicket scans a ticket row in ticketColumns order
func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	var (
		status      string
		mintAddress *string
		metadata    *domain.TicketMetadata
	)

	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.OwnerID,
		&ticket.PreviousOwners,
		&ticket.Section,
		&ticket.Row,
		&ticket.Seat,
		&ticket.Price,
		&status,
		&mintAddress,
		&metadata,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatus(status)
	if mintAddress != nil {
		ticket.MintAddress = *mintAddress
	}
	ticket.Metadata = metadata
	return ticket, nil
}
