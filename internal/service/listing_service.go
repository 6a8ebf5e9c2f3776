package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/internal/dto"
	"github.com/jrbailey528/solanasign/internal/metrics"
	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/pkg/logger"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// ListingService defines the interface for listing market business logic
type ListingService interface {
	// CreateListing puts a ticket up for resale
	CreateListing(ctx context.Context, ticketID, userID string, req *dto.CreateListingRequest) (*dto.ListingResponse, error)

	// ListListings retrieves active listings, optionally for one event
	ListListings(ctx context.Context, req *dto.ListListingsRequest) (*dto.ListListingsResponse, error)

	// PurchaseListing buys an active listing, moving ticket ownership
	PurchaseListing(ctx context.Context, listingID, buyerID string) (*dto.PurchaseListingResponse, error)

	// CancelListing withdraws a seller's active listing
	CancelListing(ctx context.Context, listingID, userID string) (*dto.ListingResponse, error)

	// SweepExpiredListings cancels overdue listings; used by the sweeper
	SweepExpiredListings(ctx context.Context, limit int) (int, error)
}

// listingService implements ListingService
type listingService struct {
	listingRepo repository.ListingRepository
	ticketRepo  repository.TicketRepository
	eventRepo   repository.EventRepository
	publisher   EventPublisher
}

// NewListingService creates a new listing service
func NewListingService(
	listingRepo repository.ListingRepository,
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	publisher EventPublisher,
) ListingService {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &listingService{
		listingRepo: listingRepo,
		ticketRepo:  ticketRepo,
		eventRepo:   eventRepo,
		publisher:   publisher,
	}
}

// CreateListing puts a ticket up for resale
func (s *listingService) CreateListing(ctx context.Context, ticketID, userID string, req *dto.CreateListingRequest) (*dto.ListingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.listing.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticketID),
		attribute.String("user_id", userID),
		attribute.Float64("price", req.Price),
	)

	if req.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, domain.ErrInvalidListingStatus
	}

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !ticket.IsOwnedBy(userID) {
		return nil, domain.ErrNotTicketOwner
	}
	if !ticket.CanList() {
		if ticket.IsPending() {
			return nil, domain.ErrTicketPending
		}
		if ticket.IsUsed() {
			return nil, domain.ErrTicketAlreadyUsed
		}
		return nil, domain.ErrTicketNotListable
	}

	now := time.Now()
	listing := &domain.Listing{
		ID:        uuid.New().String(),
		TicketID:  ticket.ID,
		EventID:   ticket.EventID,
		SellerID:  userID,
		Price:     req.Price,
		Status:    domain.ListingStatusActive,
		ListedAt:  now,
		ExpiresAt: req.ExpiresAt,
		UpdatedAt: now,
	}
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	if err := s.listingRepo.Create(ctx, listing, ticket.Version); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ticket.Status = domain.TicketStatusListed

	if metrics.ListingsCreated != nil {
		metrics.ListingsCreated.Inc(ctx, attribute.String("event_id", ticket.EventID))
	}
	if err := s.publisher.PublishTicketListed(ctx, ticket); err != nil {
		logger.Get().Warn("failed to publish ticket listed event",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}

	span.SetAttributes(attribute.String("listing_id", listing.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ListingFromDomain(listing), nil
}

// ListListings retrieves active listings with ticket and event details
func (s *listingService) ListListings(ctx context.Context, req *dto.ListListingsRequest) (*dto.ListListingsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.listing.list")
	defer span.End()

	listings, err := s.listingRepo.List(ctx, req.EventID, req.Limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := dto.ListingsFromDomain(listings)
	eventCache := make(map[string]*dto.EventResponse)
	for i, l := range listings {
		if ticket, err := s.ticketRepo.GetByID(ctx, l.TicketID); err == nil {
			responses[i].Ticket = dto.TicketFromDomain(ticket)
		}
		if cached, ok := eventCache[l.EventID]; ok {
			responses[i].Event = cached
			continue
		}
		if event, err := s.eventRepo.GetByID(ctx, l.EventID); err == nil {
			resp := dto.EventFromDomain(event)
			eventCache[l.EventID] = resp
			responses[i].Event = resp
		}
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return &dto.ListListingsResponse{Listings: responses, Count: len(responses)}, nil
}

// PurchaseListing buys an active listing. The repository claims the listing
// row conditionally, so of N concurrent buyers exactly one succeeds and the
// rest observe ErrListingUnavailable.
func (s *listingService) PurchaseListing(ctx context.Context, listingID, buyerID string) (*dto.PurchaseListingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.listing.purchase")
	defer span.End()

	span.SetAttributes(
		attribute.String("listing_id", listingID),
		attribute.String("buyer_id", buyerID),
	)

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := listing.CanPurchase(buyerID, time.Now()); err != nil {
		return nil, err
	}

	purchaseTx := &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   listing.TicketID,
		Kind:       domain.TransactionKindPurchase,
		FromUserID: listing.SellerID,
		ToUserID:   buyerID,
		Price:      &listing.Price,
		Signature:  "secondary-purchase",
		OccurredAt: time.Now(),
	}
	if err := s.listingRepo.Sell(ctx, listing, buyerID, purchaseTx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	now := time.Now()
	listing.Status = domain.ListingStatusSold
	listing.BuyerID = buyerID
	listing.SoldAt = &now

	ticket, err := s.ticketRepo.GetByID(ctx, listing.TicketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordResale(ctx, listing.EventID)
	if err := s.publisher.PublishTicketSold(ctx, ticket, listing.SellerID); err != nil {
		logger.Get().Warn("failed to publish ticket sold event",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}

	span.SetStatus(codes.Ok, "")
	return &dto.PurchaseListingResponse{
		Message: "Listing purchased successfully",
		Ticket:  dto.TicketFromDomain(ticket),
		Listing: dto.ListingFromDomain(listing),
	}, nil
}

// CancelListing withdraws a seller's active listing
func (s *listingService) CancelListing(ctx context.Context, listingID, userID string) (*dto.ListingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.listing.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.String("listing_id", listingID),
		attribute.String("user_id", userID),
	)

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := listing.CanCancel(userID); err != nil {
		return nil, err
	}

	delistTx := &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   listing.TicketID,
		Kind:       domain.TransactionKindDelist,
		FromUserID: userID,
		OccurredAt: time.Now(),
	}
	if err := s.listingRepo.Cancel(ctx, listing, delistTx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	listing.Status = domain.ListingStatusCancelled

	if metrics.ListingsCancelled != nil {
		metrics.ListingsCancelled.Inc(ctx, attribute.String("event_id", listing.EventID))
	}
	if ticket, err := s.ticketRepo.GetByID(ctx, listing.TicketID); err == nil {
		if err := s.publisher.PublishTicketDelisted(ctx, ticket); err != nil {
			logger.Get().Warn("failed to publish ticket delisted event",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err),
			)
		}
	}

	span.SetStatus(codes.Ok, "")
	return dto.ListingFromDomain(listing), nil
}

// SweepExpiredListings cancels overdue listings and resets their tickets
func (s *listingService) SweepExpiredListings(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.listing.sweep_expired")
	defer span.End()

	swept, err := s.listingRepo.SweepExpired(ctx, time.Now(), limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, context.Canceled) && metrics.ErrorsTotal != nil {
			metrics.RecordError(ctx, "sweep_expired_listings", "repository")
		}
		return swept, err
	}

	if swept > 0 && metrics.ListingsExpired != nil {
		metrics.ListingsExpired.Add(ctx, int64(swept))
	}

	span.SetAttributes(attribute.Int("swept", swept))
	span.SetStatus(codes.Ok, "")
	return swept, nil
}
