package dto

import (
	"time"

	"github.com/jrbailey528/solanasign/internal/domain"
)

// TransactionResponse represents one history entry in API responses
type TransactionResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	Kind       string    `json:"kind"`
	FromUserID string    `json:"from_user_id,omitempty"`
	ToUserID   string    `json:"to_user_id,omitempty"`
	Price      *float64  `json:"price,omitempty"`
	Signature  string    `json:"signature,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TransactionHistoryResponse represents a user's flattened history
type TransactionHistoryResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Count        int                    `json:"count"`
}

// TransactionFromDomain converts a domain TicketTransaction
func TransactionFromDomain(tx *domain.TicketTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:         tx.ID,
		TicketID:   tx.TicketID,
		Kind:       tx.Kind.String(),
		FromUserID: tx.FromUserID,
		ToUserID:   tx.ToUserID,
		Price:      tx.Price,
		Signature:  tx.Signature,
		OccurredAt: tx.OccurredAt,
	}
}

// TransactionsFromDomain converts a slice of domain TicketTransactions
func TransactionsFromDomain(txs []*domain.TicketTransaction) []*TransactionResponse {
	out := make([]*TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionFromDomain(tx))
	}
	return out
}
