package dto

import (
	"time"

	"github.com/jrbailey528/solanasign/internal/domain"
)

// PurchaseTicketRequest represents a primary-market ticket purchase
type PurchaseTicketRequest struct {
	EventID string `json:"event_id" binding:"required"`
	Section string `json:"section,omitempty"`
	Row     string `json:"row,omitempty"`
	Seat    string `json:"seat,omitempty"`
}

// TransferTicketRequest represents a ticket transfer by recipient email
type TransferTicketRequest struct {
	RecipientEmail string `json:"recipient_email" binding:"required,email"`
}

// VerifyTicketRequest represents a gate verification attempt
type VerifyTicketRequest struct {
	WalletAddress string `json:"wallet_address,omitempty"`
}

// TicketResponse represents a ticket in API responses
type TicketResponse struct {
	ID             string                 `json:"id"`
	EventID        string                 `json:"event_id"`
	OwnerID        string                 `json:"owner_id"`
	PreviousOwners []string               `json:"previous_owners,omitempty"`
	Section        string                 `json:"section,omitempty"`
	Row            string                 `json:"row,omitempty"`
	Seat           string                 `json:"seat,omitempty"`
	Price          float64                `json:"price"`
	Status         string                 `json:"status"`
	MintAddress    string                 `json:"mint_address,omitempty"`
	Metadata       *domain.TicketMetadata `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	Event          *EventResponse         `json:"event,omitempty"`
}

// PurchaseTicketResponse represents a completed primary purchase
type PurchaseTicketResponse struct {
	Message string          `json:"message"`
	Ticket  *TicketResponse `json:"ticket"`
}

// VerifyTicketResponse represents the gate verification outcome
type VerifyTicketResponse struct {
	Valid   bool            `json:"valid"`
	Message string          `json:"message"`
	Ticket  *TicketResponse `json:"ticket,omitempty"`
}

// MyTicketsResponse represents a holder's ticket collection
type MyTicketsResponse struct {
	Tickets []*TicketResponse `json:"tickets"`
	Count   int               `json:"count"`
}

// TicketFromDomain converts a domain Ticket to TicketResponse
func TicketFromDomain(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:             t.ID,
		EventID:        t.EventID,
		OwnerID:        t.OwnerID,
		PreviousOwners: t.PreviousOwners,
		Section:        t.Section,
		Row:            t.Row,
		Seat:           t.Seat,
		Price:          t.Price,
		Status:         t.Status.String(),
		MintAddress:    t.MintAddress,
		Metadata:       t.Metadata,
		CreatedAt:      t.CreatedAt,
	}
}

// TicketsFromDomain converts a slice of domain Tickets
func TicketsFromDomain(tickets []*domain.Ticket) []*TicketResponse {
	out := make([]*TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketFromDomain(t))
	}
	return out
}
