package domain

import (
	"strings"
	"time"
)

// EventStatus represents the sale status of an event
type EventStatus string

const (
	EventStatusUpcoming EventStatus = "upcoming"
	EventStatusOnSale   EventStatus = "on_sale"
	EventStatusSoldOut  EventStatus = "sold_out"
	EventStatusPast     EventStatus = "past"
)

// IsValid checks if the status is a valid EventStatus
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusOnSale, EventStatusSoldOut, EventStatusPast:
		return true
	}
	return false
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// Event represents a catalog event with ticket inventory
type Event struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	Date             time.Time   `json:"date"`
	Venue            string      `json:"venue"`
	Location         string      `json:"location,omitempty"`
	ImageURL         string      `json:"image_url,omitempty"`
	Categories       []string    `json:"categories,omitempty"`
	BasePrice        float64     `json:"base_price"`
	TotalTickets     int         `json:"total_tickets"`
	AvailableTickets int         `json:"available_tickets"`
	SoldTickets      int         `json:"sold_tickets"`
	Status           EventStatus `json:"status"`
	Source           string      `json:"source,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Validate validates all event fields
func (e *Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrInvalidEventID
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrInvalidName
	}
	if e.BasePrice < 0 {
		return ErrInvalidPrice
	}
	if !e.Status.IsValid() {
		return ErrInvalidEventID
	}
	return nil
}

// HasAvailability reports whether at least one ticket can still be issued
func (e *Event) HasAvailability() bool {
	return e.AvailableTickets > 0
}

// IsPast reports whether the event date is behind the given time
func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Before(now)
}

// EventFilter narrows catalog queries
type EventFilter struct {
	Category string
	Venue    string
	Location string
	Date     *time.Time
	PriceMin *float64
	PriceMax *float64
	Status   EventStatus
	Query    string
	Sort     string
	Limit    int
}
