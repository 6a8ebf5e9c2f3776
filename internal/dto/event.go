package dto

import (
	"time"

	"github.com/jrbailey528/solanasign/internal/domain"
)

// ListEventsRequest represents catalog query parameters
type ListEventsRequest struct {
	Category string   `form:"category"`
	Venue    string   `form:"venue"`
	Location string   `form:"location"`
	Date     string   `form:"date"`
	PriceMin *float64 `form:"price_min"`
	PriceMax *float64 `form:"price_max"`
	Status   string   `form:"status"`
	Query    string   `form:"q"`
	Sort     string   `form:"sort"`
	Limit    int      `form:"limit"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Date             time.Time `json:"date"`
	Venue            string    `json:"venue"`
	Location         string    `json:"location,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	Categories       []string  `json:"categories,omitempty"`
	BasePrice        float64   `json:"base_price"`
	TotalTickets     int       `json:"total_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	SoldTickets      int       `json:"sold_tickets"`
	Status           string    `json:"status"`
}

// ListEventsResponse represents the catalog listing payload
type ListEventsResponse struct {
	Events []*EventResponse `json:"events"`
	Count  int              `json:"count"`
}

// EventFromDomain converts a domain Event to EventResponse
func EventFromDomain(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Date:             e.Date,
		Venue:            e.Venue,
		Location:         e.Location,
		ImageURL:         e.ImageURL,
		Categories:       e.Categories,
		BasePrice:        e.BasePrice,
		TotalTickets:     e.TotalTickets,
		AvailableTickets: e.AvailableTickets,
		SoldTickets:      e.SoldTickets,
		Status:           e.Status.String(),
	}
}

// EventsFromDomain converts a slice of domain Events
func EventsFromDomain(events []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventFromDomain(e))
	}
	return out
}
