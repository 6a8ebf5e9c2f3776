package domain

import (
	"strings"
	"time"
)

// TicketStatus represents the lifecycle status of a ticket
type TicketStatus string

const (
	// TicketStatusPending marks a ticket whose inventory slot is held but
	// whose NFT mint has not completed yet. Pending tickets are invisible
	// to owners and the market until promoted.
	TicketStatusPending     TicketStatus = "pending"
	TicketStatusActive      TicketStatus = "active"
	TicketStatusListed      TicketStatus = "listed"
	TicketStatusUsed        TicketStatus = "used"
	TicketStatusTransferred TicketStatus = "transferred"
)

// IsValid checks if the status is a valid TicketStatus
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusPending, TicketStatusActive, TicketStatusListed, TicketStatusUsed, TicketStatusTransferred:
		return true
	}
	return false
}

// String returns the string representation of TicketStatus
func (s TicketStatus) String() string {
	return string(s)
}

// MetadataAttribute is one trait of the NFT metadata snapshot
type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// TicketMetadata is the fixed-schema NFT metadata captured at mint time,
// with an open extension map for forward compatibility.
type TicketMetadata struct {
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	Image                string              `json:"image,omitempty"`
	Attributes           []MetadataAttribute `json:"attributes"`
	SellerFeeBasisPoints int                 `json:"seller_fee_basis_points"`
	MaxSupply            int                 `json:"max_supply"`
	Extra                map[string]string   `json:"extra,omitempty"`
}

// Attribute returns the value of the named trait, if present
func (m *TicketMetadata) Attribute(traitType string) (string, bool) {
	for _, a := range m.Attributes {
		if a.TraitType == traitType {
			return a.Value, true
		}
	}
	return "", false
}

// Ticket represents an issued ticket backed by an NFT mint
type Ticket struct {
	ID             string          `json:"id"`
	EventID        string          `json:"event_id"`
	OwnerID        string          `json:"owner_id"`
	PreviousOwners []string        `json:"previous_owners"`
	Section        string          `json:"section"`
	Row            string          `json:"row"`
	Seat           string          `json:"seat"`
	Price          float64         `json:"price"`
	Status         TicketStatus    `json:"status"`
	MintAddress    string          `json:"mint_address,omitempty"`
	Metadata       *TicketMetadata `json:"metadata,omitempty"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate validates all ticket fields
func (t *Ticket) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrInvalidTicketID
	}
	if strings.TrimSpace(t.EventID) == "" {
		return ErrInvalidEventID
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrInvalidUserID
	}
	if t.Price < 0 {
		return ErrInvalidPrice
	}
	if !t.Status.IsValid() {
		return ErrInvalidTicketStatus
	}
	return nil
}

// IsPending checks if the ticket mint has not completed
func (t *Ticket) IsPending() bool {
	return t.Status == TicketStatusPending
}

// IsActive checks if the ticket is held and usable
func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusActive
}

// IsListed checks if the ticket is on the resale market
func (t *Ticket) IsListed() bool {
	return t.Status == TicketStatusListed
}

// IsUsed checks if the ticket has been redeemed
func (t *Ticket) IsUsed() bool {
	return t.Status == TicketStatusUsed
}

// IsOwnedBy checks if the given user currently holds the ticket
func (t *Ticket) IsOwnedBy(userID string) bool {
	return t.OwnerID == userID
}

// WasOwnedBy checks if the given user appears anywhere in the ownership chain
func (t *Ticket) WasOwnedBy(userID string) bool {
	if t.OwnerID == userID {
		return true
	}
	for _, id := range t.PreviousOwners {
		if id == userID {
			return true
		}
	}
	return false
}

// CanList checks if the ticket can be put up for resale
func (t *Ticket) CanList() bool {
	return t.Status == TicketStatusActive
}

// CanTransfer checks if the ticket can be handed to another user
func (t *Ticket) CanTransfer() bool {
	return t.Status == TicketStatusActive
}

// CanRedeem checks if the ticket can be verified at the gate
func (t *Ticket) CanRedeem() bool {
	return t.Status == TicketStatusActive
}

// Promote completes the mint, moving the ticket from pending to active
func (t *Ticket) Promote(mintAddress string, metadata *TicketMetadata) error {
	if t.Status != TicketStatusPending {
		return ErrInvalidTicketStatus
	}
	t.Status = TicketStatusActive
	t.MintAddress = mintAddress
	t.Metadata = metadata
	t.UpdatedAt = time.Now()
	return nil
}

// MarkListed moves the ticket onto the resale market
func (t *Ticket) MarkListed() error {
	if !t.CanList() {
		if t.Status == TicketStatusPending {
			return ErrTicketPending
		}
		if t.Status == TicketStatusUsed {
			return ErrTicketAlreadyUsed
		}
		return ErrTicketNotListable
	}
	t.Status = TicketStatusListed
	t.UpdatedAt = time.Now()
	return nil
}

// Unlist returns a listed ticket to the active state
func (t *Ticket) Unlist() error {
	if t.Status != TicketStatusListed {
		return ErrInvalidTicketStatus
	}
	t.Status = TicketStatusActive
	t.UpdatedAt = time.Now()
	return nil
}

// ChangeOwner moves ownership to the given user, recording the previous
// holder in the ownership chain and repricing the ticket.
func (t *Ticket) ChangeOwner(newOwnerID string, price float64) {
	t.PreviousOwners = append(t.PreviousOwners, t.OwnerID)
	t.OwnerID = newOwnerID
	t.Price = price
	t.Status = TicketStatusActive
	t.UpdatedAt = time.Now()
}

// TransferTo hands the ticket to a new holder. Unlike a resale purchase,
// a transferred ticket does not return to the active state.
func (t *Ticket) TransferTo(recipientID string) error {
	if !t.CanTransfer() {
		if t.Status == TicketStatusPending {
			return ErrTicketPending
		}
		if t.Status == TicketStatusUsed {
			return ErrTicketAlreadyUsed
		}
		return ErrTicketNotActive
	}
	if t.OwnerID == recipientID {
		return ErrSelfTransfer
	}
	t.PreviousOwners = append(t.PreviousOwners, t.OwnerID)
	t.OwnerID = recipientID
	t.Status = TicketStatusTransferred
	t.UpdatedAt = time.Now()
	return nil
}

// Redeem marks the ticket as used at the gate
func (t *Ticket) Redeem() error {
	if !t.CanRedeem() {
		if t.Status == TicketStatusUsed {
			return ErrTicketAlreadyUsed
		}
		return ErrTicketNotActive
	}
	t.Status = TicketStatusUsed
	t.UpdatedAt = time.Now()
	return nil
}
