package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTicketStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status TicketStatus
		want   bool
	}{
		{"pending is valid", TicketStatusPending, true},
		{"active is valid", TicketStatusActive, true},
		{"listed is valid", TicketStatusListed, true},
		{"used is valid", TicketStatusUsed, true},
		{"transferred is valid", TicketStatusTransferred, true},
		{"unknown is invalid", TicketStatus("minted"), false},
		{"empty is invalid", TicketStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("TicketStatus.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTicket_Promote(t *testing.T) {
	meta := &TicketMetadata{Name: "Concert - Section A", MaxSupply: 1}

	tk := &Ticket{ID: "tkt-1", EventID: "evt-1", OwnerID: "usr-1", Status: TicketStatusPending}
	if err := tk.Promote("mint-abc", meta); err != nil {
		t.Fatalf("Promote() error = %v", err)
	}
	if tk.Status != TicketStatusActive {
		t.Errorf("status = %v, want active", tk.Status)
	}
	if tk.MintAddress != "mint-abc" {
		t.Errorf("mint address = %v, want mint-abc", tk.MintAddress)
	}

	// Promoting twice is a state error
	if err := tk.Promote("mint-xyz", meta); !errors.Is(err, ErrInvalidTicketStatus) {
		t.Errorf("second Promote() error = %v, want ErrInvalidTicketStatus", err)
	}
}

func TestTicket_MarkListed(t *testing.T) {
	tests := []struct {
		name    string
		status  TicketStatus
		wantErr error
	}{
		{"active can list", TicketStatusActive, nil},
		{"pending cannot list", TicketStatusPending, ErrTicketPending},
		{"used cannot list", TicketStatusUsed, ErrTicketAlreadyUsed},
		{"listed cannot list again", TicketStatusListed, ErrTicketNotListable},
		{"transferred cannot list", TicketStatusTransferred, ErrTicketNotListable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := &Ticket{ID: "tkt-1", Status: tt.status}
			err := tk.MarkListed()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("MarkListed() error = %v", err)
				}
				if tk.Status != TicketStatusListed {
					t.Errorf("status = %v, want listed", tk.Status)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("MarkListed() error = %v, want %v", err, tt.wantErr)
			}
			if tk.Status != tt.status {
				t.Errorf("status mutated to %v on failed transition", tk.Status)
			}
		})
	}
}

func TestTicket_Redeem(t *testing.T) {
	tk := &Ticket{ID: "tkt-1", Status: TicketStatusActive}
	if err := tk.Redeem(); err != nil {
		t.Fatalf("Redeem() error = %v", err)
	}
	if tk.Status != TicketStatusUsed {
		t.Errorf("status = %v, want used", tk.Status)
	}

	if err := tk.Redeem(); !errors.Is(err, ErrTicketAlreadyUsed) {
		t.Errorf("second Redeem() error = %v, want ErrTicketAlreadyUsed", err)
	}

	listed := &Ticket{ID: "tkt-2", Status: TicketStatusListed}
	if err := listed.Redeem(); !errors.Is(err, ErrTicketNotActive) {
		t.Errorf("Redeem() on listed ticket error = %v, want ErrTicketNotActive", err)
	}
}

func TestTicket_ChangeOwner(t *testing.T) {
	tk := &Ticket{ID: "tkt-1", OwnerID: "usr-a", Status: TicketStatusListed, Price: 50}

	tk.ChangeOwner("usr-b", 80)
	if tk.OwnerID != "usr-b" {
		t.Errorf("owner = %v, want usr-b", tk.OwnerID)
	}
	if tk.Price != 80 {
		t.Errorf("price = %v, want 80", tk.Price)
	}
	if tk.Status != TicketStatusActive {
		t.Errorf("status = %v, want active", tk.Status)
	}
	if len(tk.PreviousOwners) != 1 || tk.PreviousOwners[0] != "usr-a" {
		t.Errorf("previous owners = %v, want [usr-a]", tk.PreviousOwners)
	}

	tk.ChangeOwner("usr-c", 90)
	if len(tk.PreviousOwners) != 2 || tk.PreviousOwners[1] != "usr-b" {
		t.Errorf("previous owners = %v, want [usr-a usr-b]", tk.PreviousOwners)
	}
	if !tk.WasOwnedBy("usr-a") || !tk.WasOwnedBy("usr-b") || !tk.WasOwnedBy("usr-c") {
		t.Error("WasOwnedBy should cover current owner and full chain")
	}
	if tk.WasOwnedBy("usr-x") {
		t.Error("WasOwnedBy returned true for a stranger")
	}
}

func TestTicket_TransferTo(t *testing.T) {
	tk := &Ticket{ID: "tkt-1", OwnerID: "usr-a", Status: TicketStatusActive}

	if err := tk.TransferTo("usr-a"); !errors.Is(err, ErrSelfTransfer) {
		t.Errorf("TransferTo(self) error = %v, want ErrSelfTransfer", err)
	}

	if err := tk.TransferTo("usr-b"); err != nil {
		t.Fatalf("TransferTo() error = %v", err)
	}
	if tk.OwnerID != "usr-b" || tk.Status != TicketStatusTransferred {
		t.Errorf("ticket after transfer = owner %v status %v", tk.OwnerID, tk.Status)
	}
	if len(tk.PreviousOwners) != 1 || tk.PreviousOwners[0] != "usr-a" {
		t.Errorf("previous owners = %v, want [usr-a]", tk.PreviousOwners)
	}

	// Transferred tickets do not transfer again
	if err := tk.TransferTo("usr-c"); !errors.Is(err, ErrTicketNotActive) {
		t.Errorf("second TransferTo() error = %v, want ErrTicketNotActive", err)
	}
}

func TestTicketMetadata_Attribute(t *testing.T) {
	meta := &TicketMetadata{
		Attributes: []MetadataAttribute{
			{TraitType: "Event", Value: "Solana Summit"},
			{TraitType: "Seat", Value: "12"},
		},
	}

	if v, ok := meta.Attribute("Seat"); !ok || v != "12" {
		t.Errorf("Attribute(Seat) = %v, %v", v, ok)
	}
	if _, ok := meta.Attribute("Row"); ok {
		t.Error("Attribute(Row) should be absent")
	}
}

func TestListing_CanPurchase(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		listing Listing
		buyerID string
		wantErr error
	}{
		{"active listing purchasable", Listing{SellerID: "usr-a", Status: ListingStatusActive}, "usr-b", nil},
		{"seller cannot buy own listing", Listing{SellerID: "usr-a", Status: ListingStatusActive}, "usr-a", ErrSelfPurchase},
		{"sold listing unavailable", Listing{SellerID: "usr-a", Status: ListingStatusSold}, "usr-b", ErrListingUnavailable},
		{"cancelled listing unavailable", Listing{SellerID: "usr-a", Status: ListingStatusCancelled}, "usr-b", ErrListingUnavailable},
		{"expired listing unavailable", Listing{SellerID: "usr-a", Status: ListingStatusActive, ExpiresAt: &past}, "usr-b", ErrListingUnavailable},
		{"unexpired listing purchasable", Listing{SellerID: "usr-a", Status: ListingStatusActive, ExpiresAt: &future}, "usr-b", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.listing.CanPurchase(tt.buyerID, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanPurchase() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListing_MarkSold(t *testing.T) {
	l := &Listing{ID: "lst-1", SellerID: "usr-a", Status: ListingStatusActive}
	if err := l.MarkSold("usr-b"); err != nil {
		t.Fatalf("MarkSold() error = %v", err)
	}
	if l.Status != ListingStatusSold || l.BuyerID != "usr-b" || l.SoldAt == nil {
		t.Errorf("listing after sale = %+v", l)
	}

	if err := l.MarkSold("usr-c"); !errors.Is(err, ErrListingUnavailable) {
		t.Errorf("second MarkSold() error = %v, want ErrListingUnavailable", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"ticket not found is not found", ErrTicketNotFound, IsNotFoundError, true},
		{"version conflict is conflict", ErrVersionConflict, IsConflictError, true},
		{"mint failed is not a conflict", ErrMintFailed, IsConflictError, false},
		{"ownership mismatch is forbidden", ErrOwnershipMismatch, IsForbiddenError, true},
		{"inventory exhausted is state error", ErrInventoryExhausted, IsInvalidStateError, true},
		{"invalid email is validation", ErrInvalidEmail, IsValidationError, true},
		{"wrapped not found still matches", wrapErr(ErrListingNotFound), IsNotFoundError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("classification = %v, want %v", got, tt.want)
			}
		})
	}
}

func wrapErr(err error) error {
	return &wrappedErr{err}
}

type wrappedErr struct{ inner error }

func (w *wrappedErr) Error() string { return "op failed: " + w.inner.Error() }
func (w *wrappedErr) Unwrap() error { return w.inner }
