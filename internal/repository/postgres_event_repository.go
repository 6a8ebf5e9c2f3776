package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `
	id, title, description, date, venue, location, image_url, categories,
	base_price, total_tickets, available_tickets, sold_tickets, status,
	source, created_at, updated_at
`

// Upsert inserts or refreshes a catalog event. Inventory counters are only
// set on first insert; a re-ingest must not clobber live availability.
func (r *PostgresEventRepository) Upsert(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.upsert")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	query := `
		INSERT INTO events (
			id, title, description, date, venue, location, image_url, categories,
			base_price, total_tickets, available_tickets, sold_tickets, status,
			source, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, 0, $12,
			$13, NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			date = EXCLUDED.date,
			venue = EXCLUDED.venue,
			location = EXCLUDED.location,
			image_url = EXCLUDED.image_url,
			categories = EXCLUDED.categories,
			base_price = EXCLUDED.base_price,
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Venue,
		event.Location,
		nullString(event.ImageURL),
		event.Categories,
		event.BasePrice,
		event.TotalTickets,
		event.TotalTickets,
		event.Status.String(),
		nullString(event.Source),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to upsert event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List retrieves events matching the filter
func (r *PostgresEventRepository) List(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	query := `SELECT ` + eventColumns + ` FROM events`
	var conditions []string
	var args []any

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conditions = append(conditions, addArg(filter.Category)+" = ANY(categories)")
	}
	if filter.Venue != "" {
		conditions = append(conditions, "venue ILIKE "+addArg("%"+filter.Venue+"%"))
	}
	if filter.Location != "" {
		conditions = append(conditions, "location ILIKE "+addArg("%"+filter.Location+"%"))
	}
	if filter.Date != nil {
		conditions = append(conditions, "date::date = "+addArg(*filter.Date))
	}
	if filter.PriceMin != nil {
		conditions = append(conditions, "base_price >= "+addArg(*filter.PriceMin))
	}
	if filter.PriceMax != nil {
		conditions = append(conditions, "base_price <= "+addArg(*filter.PriceMax))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+addArg(filter.Status.String()))
	}
	if filter.Query != "" {
		p := addArg("%" + filter.Query + "%")
		conditions = append(conditions, "(title ILIKE "+p+" OR description ILIKE "+p+" OR venue ILIKE "+p+")")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	switch filter.Sort {
	case "price-asc":
		query += " ORDER BY base_price ASC"
	case "price-desc":
		query += " ORDER BY base_price DESC"
	case "popularity":
		query += " ORDER BY sold_tickets DESC"
	default:
		query += " ORDER BY date ASC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += " LIMIT " + addArg(limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, rows.Err()
}

// Categories returns the distinct category values across the catalog
func (r *PostgresEventRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.categories")
	defer span.End()

	query := `SELECT DISTINCT unnest(categories) AS category FROM events ORDER BY category`
	return r.queryStrings(ctx, query)
}

// Venues returns the distinct venues across the catalog
func (r *PostgresEventRepository) Venues(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.venues")
	defer span.End()

	query := `SELECT DISTINCT venue FROM events ORDER BY venue`
	return r.queryStrings(ctx, query)
}

func (r *PostgresEventRepository) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// scanEvent scans an event row in eventColumns order
func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var (
		status   string
		imageURL *string
		source   *string
	)

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Venue,
		&event.Location,
		&imageURL,
		&event.Categories,
		&event.BasePrice,
		&event.TotalTickets,
		&event.AvailableTickets,
		&event.SoldTickets,
		&status,
		&source,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Status = domain.EventStatus(status)
	if imageURL != nil {
		event.ImageURL = *imageURL
	}
	if source != nil {
		event.Source = *source
	}
	return event, nil
}
