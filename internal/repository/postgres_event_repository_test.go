package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrbailey528/solanasign/internal/domain"
)

func seedEventAtVenue(t *testing.T, pool *pgxpool.Pool, title, venue string) *domain.Event {
	t.Helper()
	now := time.Now().UTC()
	event := &domain.Event{
		ID:           uuid.New().String(),
		Title:        title,
		Date:         now.Add(30 * 24 * time.Hour),
		Venue:        venue,
		Location:     "New York, NY",
		Categories:   []string{"Concert"},
		BasePrice:    90,
		TotalTickets: 100,
		Status:       domain.EventStatusOnSale,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewPostgresEventRepository(pool).Upsert(context.Background(), event); err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	return event
}

func TestPostgresEventRepository_ListFiltersVenueBySubstring(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostgresEventRepository(pool)

	garden := seedEventAtVenue(t, pool, "Rock Night", "Madison Square Garden")
	seedEventAtVenue(t, pool, "Pop Night", "Crypto Arena")

	tests := []struct {
		name    string
		venue   string
		wantIDs []string
	}{
		{name: "partial match", venue: "square garden", wantIDs: []string{garden.ID}},
		{name: "case insensitive", venue: "MADISON", wantIDs: []string{garden.ID}},
		{name: "no match", venue: "stadium", wantIDs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.List(ctx, &domain.EventFilter{Venue: tt.venue})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(events) != len(tt.wantIDs) {
				t.Fatalf("Expected %d events, got %d", len(tt.wantIDs), len(events))
			}
			for i, want := range tt.wantIDs {
				if events[i].ID != want {
					t.Errorf("Expected event %s, got %s", want, events[i].ID)
				}
			}
		})
	}
}
