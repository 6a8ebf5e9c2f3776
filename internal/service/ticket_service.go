package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/internal/dto"
	"github.com/jrbailey528/solanasign/internal/metrics"
	"github.com/jrbailey528/solanasign/internal/nft"
	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/pkg/logger"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// TicketService defines the interface for ticket ledger business logic
type TicketService interface {
	// PurchaseTicket issues a new ticket on the primary market, minting its NFT
	PurchaseTicket(ctx context.Context, userID string, req *dto.PurchaseTicketRequest) (*dto.PurchaseTicketResponse, error)

	// GetMyTickets retrieves the caller's ticket collection
	GetMyTickets(ctx context.Context, userID string) (*dto.MyTicketsResponse, error)

	// GetTicket retrieves a single ticket with its event
	GetTicket(ctx context.Context, ticketID string) (*dto.TicketResponse, error)

	// TransferTicket hands a ticket to another user resolved by email
	TransferTicket(ctx context.Context, ticketID, userID string, req *dto.TransferTicketRequest) (*dto.TicketResponse, error)

	// VerifyTicket validates a ticket at the gate and marks it used
	VerifyTicket(ctx context.Context, ticketID string) (*dto.VerifyTicketResponse, error)
}

// ticketService implements TicketService
type ticketService struct {
	ticketRepo repository.TicketRepository
	eventRepo  repository.EventRepository
	userRepo   repository.UserRepository
	gateway    nft.Gateway
	publisher  EventPublisher
	mintBudget time.Duration
}

// TicketServiceConfig contains configuration for the ticket service
type TicketServiceConfig struct {
	// MintBudget bounds the total time spent on the external mint,
	// including the single retry.
	MintBudget time.Duration
}

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	gateway nft.Gateway,
	publisher EventPublisher,
	cfg *TicketServiceConfig,
) TicketService {
	budget := 30 * time.Second
	if cfg != nil && cfg.MintBudget > 0 {
		budget = cfg.MintBudget
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &ticketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		userRepo:   userRepo,
		gateway:    gateway,
		publisher:  publisher,
		mintBudget: budget,
	}
}

// PurchaseTicket issues a new ticket on the primary market.
//
// The purchase is two-phase: phase one atomically claims an inventory slot
// and records the ticket as pending; phase two, after the external mint
// succeeds, promotes it to active with the mint result. A failed mint
// triggers a compensating transaction so no partial state survives.
func (s *ticketService) PurchaseTicket(ctx context.Context, userID string, req *dto.PurchaseTicketRequest) (*dto.PurchaseTicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.purchase")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
	)

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !event.HasAvailability() {
		return nil, domain.ErrInventoryExhausted
	}

	now := time.Now()
	ticket := &domain.Ticket{
		ID:             uuid.New().String(),
		EventID:        event.ID,
		OwnerID:        userID,
		PreviousOwners: []string{},
		Section:        defaultSeat(req.Section, "GA"),
		Row:            defaultSeat(req.Row, "GA"),
		Seat:           req.Seat,
		Price:          event.BasePrice,
		Status:         domain.TicketStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ticket.Seat == "" {
		// Unreserved seating still needs a unique descriptor for the NFT
		ticket.Seat = strings.ToUpper(ticket.ID[:8])
	}

	// Phase one: claim inventory, record pending
	if err := s.ticketRepo.IssuePending(ctx, ticket); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metadata := nft.BuildMetadata(event, ticket)

	mintCtx, cancel := context.WithTimeout(ctx, s.mintBudget)
	result, mintErr := s.gateway.Mint(mintCtx, metadata)
	cancel()
	if mintErr != nil {
		metrics.RecordMintFailure(ctx, event.ID)
		span.RecordError(mintErr)
		span.SetStatus(codes.Error, mintErr.Error())

		// Compensate: the purchase is not complete without a mint reference
		if compErr := s.ticketRepo.Compensate(ctx, ticket.ID, ticket.EventID); compErr != nil {
			// The stale-pending reaper will restore inventory later
			logger.Get().Error("mint compensation failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(compErr),
			)
		}
		if errors.Is(mintErr, domain.ErrMintFailed) {
			return nil, mintErr
		}
		return nil, domain.ErrMintFailed
	}

	// Phase two: promote pending -> active with the mint result
	ticket.MintAddress = result.MintAddress
	ticket.Metadata = metadata
	mintTx := &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   ticket.ID,
		Kind:       domain.TransactionKindMint,
		ToUserID:   userID,
		Price:      &ticket.Price,
		Signature:  result.Signature,
		OccurredAt: time.Now(),
	}
	if err := s.ticketRepo.Promote(ctx, ticket, mintTx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ticket.Status = domain.TicketStatusActive

	metrics.RecordTicketIssued(ctx, event.ID)
	if err := s.publisher.PublishTicketIssued(ctx, ticket); err != nil {
		logger.Get().Warn("failed to publish ticket issued event",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}

	span.SetAttributes(attribute.String("ticket_id", ticket.ID))
	span.SetStatus(codes.Ok, "")

	resp := dto.TicketFromDomain(ticket)
	resp.Event = dto.EventFromDomain(event)
	return &dto.PurchaseTicketResponse{
		Message: "Ticket purchased and NFT minted successfully",
		Ticket:  resp,
	}, nil
}

// GetMyTickets retrieves the caller's ticket collection with event details
func (s *ticketService) GetMyTickets(ctx context.Context, userID string) (*dto.MyTicketsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.my_tickets")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	tickets, err := s.ticketRepo.GetByOwner(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := dto.TicketsFromDomain(tickets)
	s.attachEvents(ctx, responses)

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return &dto.MyTicketsResponse{Tickets: responses, Count: len(responses)}, nil
}

// GetTicket retrieves a single ticket with its event
func (s *ticketService) GetTicket(ctx context.Context, ticketID string) (*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.get")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := dto.TicketFromDomain(ticket)
	if event, err := s.eventRepo.GetByID(ctx, ticket.EventID); err == nil {
		resp.Event = dto.EventFromDomain(event)
	}

	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// TransferTicket hands a ticket to another user resolved by email
func (s *ticketService) TransferTicket(ctx context.Context, ticketID, userID string, req *dto.TransferTicketRequest) (*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.transfer")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticketID),
		attribute.String("user_id", userID),
	)

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !ticket.IsOwnedBy(userID) {
		return nil, domain.ErrNotTicketOwner
	}

	recipient, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.RecipientEmail)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrRecipientNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	expectedVersion := ticket.Version
	if err := ticket.TransferTo(recipient.ID); err != nil {
		return nil, err
	}

	transferTx := &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   ticket.ID,
		Kind:       domain.TransactionKindTransfer,
		FromUserID: userID,
		ToUserID:   recipient.ID,
		Signature:  "transfer",
		OccurredAt: time.Now(),
	}
	if err := s.ticketRepo.Transfer(ctx, ticket, expectedVersion, transferTx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordTransfer(ctx, ticket.EventID)
	if err := s.publisher.PublishTicketTransferred(ctx, ticket, userID); err != nil {
		logger.Get().Warn("failed to publish ticket transferred event",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}

	span.SetStatus(codes.Ok, "")
	return dto.TicketFromDomain(ticket), nil
}

// VerifyTicket validates a ticket at the gate and marks it used.
//
// When the ticket carries a mint address, the recorded holder's wallet must
// match the on-chain owner; a mismatch fails closed and the ticket stays
// unused. Verifying an already-used ticket is idempotent.
func (s *ticketService) VerifyTicket(ctx context.Context, ticketID string) (*dto.VerifyTicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.verify")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Idempotent: a used ticket verifies clean with no new history
	if ticket.IsUsed() {
		span.SetStatus(codes.Ok, "")
		return &dto.VerifyTicketResponse{
			Valid:   true,
			Message: "Ticket already used",
			Ticket:  dto.TicketFromDomain(ticket),
		}, nil
	}

	if !ticket.CanRedeem() {
		return nil, domain.ErrTicketNotActive
	}

	if ticket.MintAddress != "" {
		owner, err := s.userRepo.GetByID(ctx, ticket.OwnerID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		chainOwner, err := s.gateway.FindOwnerByMint(ctx, ticket.MintAddress)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, domain.ErrOwnershipMismatch
		}
		if chainOwner == "" || chainOwner != owner.WalletAddress {
			span.SetAttributes(attribute.Bool("ownership_mismatch", true))
			return nil, domain.ErrOwnershipMismatch
		}
	}

	expectedVersion := ticket.Version
	if err := ticket.Redeem(); err != nil {
		return nil, err
	}

	useTx := &domain.TicketTransaction{
		ID:         uuid.New().String(),
		TicketID:   ticket.ID,
		Kind:       domain.TransactionKindUse,
		FromUserID: ticket.OwnerID,
		OccurredAt: time.Now(),
	}
	if err := s.ticketRepo.Redeem(ctx, ticket, expectedVersion, useTx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordRedemption(ctx, ticket.EventID)
	if err := s.publisher.PublishTicketRedeemed(ctx, ticket); err != nil {
		logger.Get().Warn("failed to publish ticket redeemed event",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}

	span.SetStatus(codes.Ok, "")
	return &dto.VerifyTicketResponse{
		Valid:   true,
		Message: "Ticket verified successfully",
		Ticket:  dto.TicketFromDomain(ticket),
	}, nil
}

// attachEvents decorates ticket responses with their events, deduplicated
func (s *ticketService) attachEvents(ctx context.Context, tickets []*dto.TicketResponse) {
	cache := make(map[string]*dto.EventResponse)
	for _, t := range tickets {
		if cached, ok := cache[t.EventID]; ok {
			t.Event = cached
			continue
		}
		event, err := s.eventRepo.GetByID(ctx, t.EventID)
		if err != nil {
			continue
		}
		resp := dto.EventFromDomain(event)
		cache[t.EventID] = resp
		t.Event = resp
	}
}

func defaultSeat(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
