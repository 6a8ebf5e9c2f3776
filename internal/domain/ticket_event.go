package domain

import "time"

// TicketEventType represents the type of a ticket lifecycle event
type TicketEventType string

const (
	TicketEventIssued      TicketEventType = "ticket.issued"
	TicketEventListed      TicketEventType = "ticket.listed"
	TicketEventDelisted    TicketEventType = "ticket.delisted"
	TicketEventSold        TicketEventType = "ticket.sold"
	TicketEventTransferred TicketEventType = "ticket.transferred"
	TicketEventRedeemed    TicketEventType = "ticket.redeemed"
)

// TicketEvent is the lifecycle message published to the event stream.
// Downstream consumers (chain reconciler, analytics) key on TicketID.
type TicketEvent struct {
	EventID     string          `json:"event_id"`
	Type        TicketEventType `json:"type"`
	TicketID    string          `json:"ticket_id"`
	CatalogID   string          `json:"catalog_id"`
	OwnerID     string          `json:"owner_id"`
	FromUserID  string          `json:"from_user_id,omitempty"`
	Price       float64         `json:"price,omitempty"`
	MintAddress string          `json:"mint_address,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// NewTicketEvent builds a lifecycle event snapshot from a ticket
func NewTicketEvent(eventType TicketEventType, ticket *Ticket, eventID string) *TicketEvent {
	return &TicketEvent{
		EventID:     eventID,
		Type:        eventType,
		TicketID:    ticket.ID,
		CatalogID:   ticket.EventID,
		OwnerID:     ticket.OwnerID,
		Price:       ticket.Price,
		MintAddress: ticket.MintAddress,
		OccurredAt:  time.Now(),
	}
}

// Key returns the partition key for the event
func (e *TicketEvent) Key() string {
	return e.TicketID
}
