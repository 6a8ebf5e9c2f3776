package domain

import "time"

// TransactionKind represents the kind of a ticket history entry
type TransactionKind string

const (
	TransactionKindMint     TransactionKind = "mint"
	TransactionKindPurchase TransactionKind = "purchase"
	TransactionKindList     TransactionKind = "list"
	TransactionKindDelist   TransactionKind = "delist"
	TransactionKindTransfer TransactionKind = "transfer"
	TransactionKindUse      TransactionKind = "use"
)

// IsValid checks if the kind is a valid TransactionKind
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindMint, TransactionKindPurchase, TransactionKindList,
		TransactionKindDelist, TransactionKindTransfer, TransactionKindUse:
		return true
	}
	return false
}

// String returns the string representation of TransactionKind
func (k TransactionKind) String() string {
	return string(k)
}

// TicketTransaction is one immutable history entry on a ticket.
// From/To are empty for system-originated entries such as mint and use.
type TicketTransaction struct {
	ID         string          `json:"id"`
	TicketID   string          `json:"ticket_id"`
	Kind       TransactionKind `json:"kind"`
	FromUserID string          `json:"from_user_id,omitempty"`
	ToUserID   string          `json:"to_user_id,omitempty"`
	Price      *float64        `json:"price,omitempty"`
	Signature  string          `json:"signature,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Involves checks if the given user is the sender or receiver of the entry
func (tx *TicketTransaction) Involves(userID string) bool {
	return tx.FromUserID == userID || tx.ToUserID == userID
}
