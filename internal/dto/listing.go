package dto

import (
	"time"

	"github.com/jrbailey528/solanasign/internal/domain"
)

// CreateListingRequest represents putting a ticket up for resale
type CreateListingRequest struct {
	Price     float64    `json:"price" binding:"required,gt=0"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ListListingsRequest represents market query parameters
type ListListingsRequest struct {
	EventID string `form:"event_id"`
	Limit   int    `form:"limit"`
}

// ListingResponse represents a listing in API responses
type ListingResponse struct {
	ID        string          `json:"id"`
	TicketID  string          `json:"ticket_id"`
	EventID   string          `json:"event_id"`
	SellerID  string          `json:"seller_id"`
	BuyerID   string          `json:"buyer_id,omitempty"`
	Price     float64         `json:"price"`
	Status    string          `json:"status"`
	ListedAt  time.Time       `json:"listed_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	SoldAt    *time.Time      `json:"sold_at,omitempty"`
	Ticket    *TicketResponse `json:"ticket,omitempty"`
	Event     *EventResponse  `json:"event,omitempty"`
}

// ListListingsResponse represents the market listing payload
type ListListingsResponse struct {
	Listings []*ListingResponse `json:"listings"`
	Count    int                `json:"count"`
}

// PurchaseListingResponse represents a completed resale purchase
type PurchaseListingResponse struct {
	Message string           `json:"message"`
	Ticket  *TicketResponse  `json:"ticket"`
	Listing *ListingResponse `json:"listing"`
}

// ListingFromDomain converts a domain Listing to ListingResponse
func ListingFromDomain(l *domain.Listing) *ListingResponse {
	return &ListingResponse{
		ID:        l.ID,
		TicketID:  l.TicketID,
		EventID:   l.EventID,
		SellerID:  l.SellerID,
		BuyerID:   l.BuyerID,
		Price:     l.Price,
		Status:    l.Status.String(),
		ListedAt:  l.ListedAt,
		ExpiresAt: l.ExpiresAt,
		SoldAt:    l.SoldAt,
	}
}

// ListingsFromDomain converts a slice of domain Listings
func ListingsFromDomain(listings []*domain.Listing) []*ListingResponse {
	out := make([]*ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, ListingFromDomain(l))
	}
	return out
}
