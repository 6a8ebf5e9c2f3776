package nft

import (
	"context"
	"time"

	"github.com/jrbailey528/solanasign/internal/domain"
)

// MintResult is the outcome of a successful mint
type MintResult struct {
	MintAddress string `json:"mint_address"`
	Signature   string `json:"signature"`
}

// Gateway is the external NFT issuance collaborator. Mint creates the
// on-chain token for a ticket; FindOwnerByMint resolves the current
// on-chain holder's wallet address.
type Gateway interface {
	Mint(ctx context.Context, metadata *domain.TicketMetadata) (*MintResult, error)
	FindOwnerByMint(ctx context.Context, mintAddress string) (string, error)
}

const (
	// Royalty taken on secondary sales, in basis points
	royaltyBasisPoints = 500
	// Each ticket is a unique token
	maxSupply = 1
)

// BuildMetadata assembles the fixed-schema metadata snapshot for a ticket
func BuildMetadata(event *domain.Event, ticket *domain.Ticket) *domain.TicketMetadata {
	return &domain.TicketMetadata{
		Name:        event.Title + " - Ticket",
		Description: "Section: " + ticket.Section + ", Row: " + ticket.Row + ", Seat: " + ticket.Seat,
		Image:       event.ImageURL,
		Attributes: []domain.MetadataAttribute{
			{TraitType: "Event", Value: event.Title},
			{TraitType: "Date", Value: event.Date.UTC().Format(time.RFC3339)},
			{TraitType: "Venue", Value: event.Venue},
			{TraitType: "Section", Value: ticket.Section},
			{TraitType: "Row", Value: ticket.Row},
			{TraitType: "Seat", Value: ticket.Seat},
			{TraitType: "Ticket ID", Value: ticket.ID},
		},
		SellerFeeBasisPoints: royaltyBasisPoints,
		MaxSupply:            maxSupply,
	}
}
