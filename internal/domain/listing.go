package domain

import (
	"strings"
	"time"
)

// ListingStatus represents the status of a resale listing
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusCancelled ListingStatus = "cancelled"
	ListingStatusExpired   ListingStatus = "expired"
)

// IsValid checks if the status is a valid ListingStatus
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusCancelled, ListingStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of ListingStatus
func (s ListingStatus) String() string {
	return string(s)
}

// Listing represents a seller's standing offer to resell a ticket.
// A listing is never mutated after reaching a terminal status.
type Listing struct {
	ID        string        `json:"id"`
	TicketID  string        `json:"ticket_id"`
	EventID   string        `json:"event_id"`
	SellerID  string        `json:"seller_id"`
	BuyerID   string        `json:"buyer_id,omitempty"`
	Price     float64       `json:"price"`
	Status    ListingStatus `json:"status"`
	ListedAt  time.Time     `json:"listed_at"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	SoldAt    *time.Time    `json:"sold_at,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Validate validates all listing fields
func (l *Listing) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrInvalidListingID
	}
	if strings.TrimSpace(l.TicketID) == "" {
		return ErrInvalidTicketID
	}
	if strings.TrimSpace(l.SellerID) == "" {
		return ErrInvalidUserID
	}
	if l.Price <= 0 {
		return ErrInvalidPrice
	}
	if !l.Status.IsValid() {
		return ErrInvalidListingStatus
	}
	return nil
}

// IsActive checks if the listing is open for purchase
func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

// IsExpired checks if the listing has an expiry behind the given time
func (l *Listing) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// CanPurchase checks if the given buyer may purchase the listing
func (l *Listing) CanPurchase(buyerID string, now time.Time) error {
	if !l.IsActive() || l.IsExpired(now) {
		return ErrListingUnavailable
	}
	if l.SellerID == buyerID {
		return ErrSelfPurchase
	}
	return nil
}

// CanCancel checks if the given seller may cancel the listing
func (l *Listing) CanCancel(sellerID string) error {
	if l.SellerID != sellerID {
		return ErrNotListingSeller
	}
	if !l.IsActive() {
		return ErrListingUnavailable
	}
	return nil
}

// MarkSold records the buyer and closes the listing
func (l *Listing) MarkSold(buyerID string) error {
	if !l.IsActive() {
		return ErrListingUnavailable
	}
	now := time.Now()
	l.Status = ListingStatusSold
	l.BuyerID = buyerID
	l.SoldAt = &now
	l.UpdatedAt = now
	return nil
}

// Cancel closes the listing without a sale
func (l *Listing) Cancel() error {
	if !l.IsActive() {
		return ErrListingUnavailable
	}
	l.Status = ListingStatusCancelled
	l.UpdatedAt = time.Now()
	return nil
}

// Expire closes an overdue listing
func (l *Listing) Expire() error {
	if !l.IsActive() {
		return ErrInvalidListingStatus
	}
	l.Status = ListingStatusExpired
	l.UpdatedAt = time.Now()
	return nil
}
