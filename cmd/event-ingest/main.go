package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/internal/service"
	"github.com/jrbailey528/solanasign/pkg/config"
	"github.com/jrbailey528/solanasign/pkg/database"
	"github.com/jrbailey528/solanasign/pkg/logger"
)

// Imports a CSV of events and upserts them into the catalog. Meant to be
// run by an external orchestrator (cron or a one-off job), not as a daemon.
func main() {
	filePath := flag.String("file", "", "path to the events CSV file")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("usage: event-ingest -file <events.csv>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: "event-ingest",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      5,
		MinConns:      1,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	eventService := service.NewEventService(repository.NewPostgresEventRepository(db.Pool()))

	file, err := os.Open(*filePath)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to open CSV: %v", err))
	}
	defer file.Close()

	imported, failed, err := ingest(ctx, eventService, file, appLog)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Import aborted: %v", err))
	}

	appLog.Info("Import complete",
		zap.Int("imported", imported),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

func ingest(ctx context.Context, events service.EventService, r io.Reader, appLog *logger.Logger) (imported, failed int, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			appLog.Warn("Skipping malformed row", zap.Int("line", line), zap.Error(err))
			failed++
			continue
		}

		event, err := eventFromRecord(cols, record)
		if err != nil {
			appLog.Warn("Skipping invalid row", zap.Int("line", line), zap.Error(err))
			failed++
			continue
		}

		if err := events.IngestEvent(ctx, event); err != nil {
			appLog.Warn("Failed to upsert event",
				zap.Int("line", line),
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			failed++
			continue
		}
		imported++
	}

	return imported, failed, nil
}

func eventFromRecord(cols map[string]int, record []string) (*domain.Event, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := field("name")
	venue := field("venue_name")

	date, err := parseEventDate(field("date"))
	if err != nil {
		return nil, err
	}

	basePrice, err := strconv.ParseFloat(field("general_price"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid general_price: %w", err)
	}
	totalTickets, err := strconv.Atoi(field("total_tickets"))
	if err != nil {
		return nil, fmt.Errorf("invalid total_tickets: %w", err)
	}
	availableTickets, err := strconv.Atoi(field("available_tickets"))
	if err != nil {
		return nil, fmt.Errorf("invalid available_tickets: %w", err)
	}
	soldTickets, _ := strconv.Atoi(field("sold_tickets"))

	eventType := field("event_type")
	genre := field("genre")

	var categories []string
	if eventType != "" {
		categories = append(categories, eventType)
	}
	if genre != "" {
		categories = append(categories, genre)
	}

	location := field("venue_city")
	if state := field("venue_state"); state != "" {
		location = fmt.Sprintf("%s, %s", location, state)
	}

	// Re-ingesting the same feed must hit the same rows, so the id is
	// derived from the row identity rather than generated fresh.
	id := field("id")
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(name+"|"+venue+"|"+date.Format(time.RFC3339))).String()
	}

	return &domain.Event{
		ID:               id,
		Title:            name,
		Description:      fmt.Sprintf("%s event at %s", genre, venue),
		Date:             date,
		Venue:            venue,
		Location:         location,
		ImageURL:         imageURLFor(eventType),
		Categories:       categories,
		BasePrice:        basePrice,
		TotalTickets:     totalTickets,
		AvailableTickets: availableTickets,
		SoldTickets:      soldTickets,
		Status:           domain.EventStatus(field("status")),
		Source:           "csv-import",
	}, nil
}

func parseEventDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func imageURLFor(eventType string) string {
	if eventType == "" {
		return ""
	}
	slug := strings.ToLower(strings.ReplaceAll(eventType, " & ", "-"))
	slug = strings.ReplaceAll(slug, " ", "-")
	return fmt.Sprintf("/images/events/%s.jpg", slug)
}
