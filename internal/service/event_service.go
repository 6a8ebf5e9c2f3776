package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/internal/dto"
	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// EventService defines the interface for catalog business logic
type EventService interface {
	// ListEvents retrieves events matching the filter
	ListEvents(ctx context.Context, req *dto.ListEventsRequest) (*dto.ListEventsResponse, error)

	// GetEvent retrieves a single event
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// GetCategories retrieves the distinct categories across the catalog
	GetCategories(ctx context.Context) ([]string, error)

	// GetVenues retrieves the distinct venues across the catalog
	GetVenues(ctx context.Context) ([]string, error)

	// IngestEvent upserts a catalog event from an external feed
	IngestEvent(ctx context.Context, event *domain.Event) error
}

// eventService implements EventService
type eventService struct {
	eventRepo repository.EventRepository
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

// ListEvents retrieves events matching the filter
func (s *eventService) ListEvents(ctx context.Context, req *dto.ListEventsRequest) (*dto.ListEventsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	filter := &domain.EventFilter{
		Category: req.Category,
		Venue:    req.Venue,
		Location: req.Location,
		PriceMin: req.PriceMin,
		PriceMax: req.PriceMax,
		Status:   domain.EventStatus(req.Status),
		Query:    req.Query,
		Sort:     req.Sort,
		Limit:    req.Limit,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, domain.ErrInvalidDate
		}
		filter.Date = &date
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return &dto.ListEventsResponse{
		Events: dto.EventsFromDomain(events),
		Count:  len(events),
	}, nil
}

// GetEvent retrieves a single event
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// GetCategories retrieves the distinct categories across the catalog
func (s *eventService) GetCategories(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.categories")
	defer span.End()

	categories, err := s.eventRepo.Categories(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return categories, nil
}

// GetVenues retrieves the distinct venues across the catalog
func (s *eventService) GetVenues(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.venues")
	defer span.End()

	venues, err := s.eventRepo.Venues(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return venues, nil
}

// IngestEvent upserts a catalog event from an external feed
func (s *eventService) IngestEvent(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.ingest")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	if event.Status == "" {
		event.Status = domain.EventStatusOnSale
	}
	if err := event.Validate(); err != nil {
		return err
	}

	if err := s.eventRepo.Upsert(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
