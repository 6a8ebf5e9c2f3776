package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrbailey528/solanasign/internal/domain"
)

func TestTransactionService_GetUserTransactions(t *testing.T) {
	price := 75.0
	newest := time.Now()
	older := newest.Add(-time.Hour)

	ticketRepo := &MockTicketRepository{
		UserHistoryFunc: func(ctx context.Context, userID string) ([]*domain.TicketTransaction, error) {
			if userID != "user-001" {
				return nil, nil
			}
			return []*domain.TicketTransaction{
				{
					ID:         "tx-002",
					TicketID:   "ticket-001",
					Kind:       domain.TransactionKindPurchase,
					FromUserID: "user-002",
					ToUserID:   "user-001",
					Price:      &price,
					Signature:  "secondary-purchase",
					OccurredAt: newest,
				},
				{
					ID:         "tx-001",
					TicketID:   "ticket-001",
					Kind:       domain.TransactionKindMint,
					ToUserID:   "user-002",
					OccurredAt: older,
				},
			}, nil
		},
	}

	svc := NewTransactionService(ticketRepo)

	resp, err := svc.GetUserTransactions(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("GetUserTransactions() unexpected error = %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Transactions[0].ID != "tx-002" {
		t.Errorf("first entry = %q, want the newest tx-002", resp.Transactions[0].ID)
	}
	if resp.Transactions[0].Kind != string(domain.TransactionKindPurchase) {
		t.Errorf("kind = %q, want purchase", resp.Transactions[0].Kind)
	}
}

func TestTransactionService_GetUserTransactions_Empty(t *testing.T) {
	svc := NewTransactionService(&MockTicketRepository{})

	resp, err := svc.GetUserTransactions(context.Background(), "user-999")
	if err != nil {
		t.Fatalf("GetUserTransactions() unexpected error = %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
	if resp.Transactions == nil {
		t.Error("transactions should be an empty slice, not nil")
	}
}

func TestTransactionService_GetTicketHistory(t *testing.T) {
	tests := []struct {
		name       string
		ticketID   string
		setupMocks func(tr *MockTicketRepository)
		wantErr    error
		wantCount  int
	}{
		{
			name:     "history in chronological order",
			ticketID: "ticket-001",
			setupMocks: func(tr *MockTicketRepository) {
				tr.GetByIDFunc = func(ctx context.Context, id string) (*domain.Ticket, error) {
					return testTicket(domain.TicketStatusActive), nil
				}
				tr.HistoryFunc = func(ctx context.Context, ticketID string) ([]*domain.TicketTransaction, error) {
					return []*domain.TicketTransaction{
						{ID: "tx-001", TicketID: ticketID, Kind: domain.TransactionKindMint},
						{ID: "tx-002", TicketID: ticketID, Kind: domain.TransactionKindTransfer},
					}, nil
				}
			},
			wantCount: 2,
		},
		{
			name:     "unknown ticket is not an empty history",
			ticketID: "ticket-999",
			wantErr:  domain.ErrTicketNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticketRepo := &MockTicketRepository{}
			if tt.setupMocks != nil {
				tt.setupMocks(ticketRepo)
			}

			svc := NewTransactionService(ticketRepo)

			resp, err := svc.GetTicketHistory(context.Background(), tt.ticketID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetTicketHistory() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetTicketHistory() unexpected error = %v", err)
			}
			if resp.Count != tt.wantCount {
				t.Errorf("count = %d, want %d", resp.Count, tt.wantCount)
			}
		})
	}
}
