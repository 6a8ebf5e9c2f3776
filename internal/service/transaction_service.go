package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jrbailey528/solanasign/internal/dto"
	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// TransactionService defines the interface for the history index
type TransactionService interface {
	// GetUserTransactions returns every history entry involving the user,
	// across tickets they hold or once held, newest first.
	GetUserTransactions(ctx context.Context, userID string) (*dto.TransactionHistoryResponse, error)

	// GetTicketHistory returns a ticket's history in chronological order
	GetTicketHistory(ctx context.Context, ticketID string) (*dto.TransactionHistoryResponse, error)
}

// transactionService implements TransactionService
type transactionService struct {
	ticketRepo repository.TicketRepository
}

// NewTransactionService creates a new transaction service
func NewTransactionService(ticketRepo repository.TicketRepository) TransactionService {
	return &transactionService{ticketRepo: ticketRepo}
}

// GetUserTransactions returns the user's flattened history, newest first
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string) (*dto.TransactionHistoryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.transaction.user_history")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	txs, err := s.ticketRepo.UserHistory(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(txs)))
	span.SetStatus(codes.Ok, "")
	return &dto.TransactionHistoryResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Count:        len(txs),
	}, nil
}

// GetTicketHistory returns a ticket's history in chronological order
func (s *transactionService) GetTicketHistory(ctx context.Context, ticketID string) (*dto.TransactionHistoryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.transaction.ticket_history")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	// Ensure the ticket exists so absent ids surface as 404, not empty history
	if _, err := s.ticketRepo.GetByID(ctx, ticketID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	txs, err := s.ticketRepo.History(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(txs)))
	span.SetStatus(codes.Ok, "")
	return &dto.TransactionHistoryResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Count:        len(txs),
	}, nil
}
