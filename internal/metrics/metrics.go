package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

var (
	// Ticket counters
	TicketsIssued      *telemetry.Counter
	TicketsResold      *telemetry.Counter
	TicketsRedeemed    *telemetry.Counter
	TicketsTransferred *telemetry.Counter
	MintFailures       *telemetry.Counter

	// Listing counters
	ListingsCreated   *telemetry.Counter
	ListingsCancelled *telemetry.Counter
	ListingsExpired   *telemetry.Counter

	// Error tracking counters
	ErrorsTotal *telemetry.Counter

	// Histograms
	MintDuration    *telemetry.Histogram
	RequestDuration *telemetry.Histogram

	// Gauges
	PendingTickets *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all marketplace metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	TicketsIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_issued_total",
		Description: "Total number of tickets issued on the primary market",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsResold, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_resold_total",
		Description: "Total number of tickets sold through listings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsRedeemed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_redeemed_total",
		Description: "Total number of tickets redeemed at the gate",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsTransferred, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "tickets_transferred_total",
		Description: "Total number of ticket transfers",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	MintFailures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_mint_failures_total",
		Description: "Total number of failed NFT mints",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ListingsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "listings_created_total",
		Description: "Total number of resale listings created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ListingsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "listings_cancelled_total",
		Description: "Total number of listings cancelled by sellers",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ListingsExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "listings_expired_total",
		Description: "Total number of listings swept after expiry",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ErrorsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "marketplace_errors_total",
		Description: "Total number of errors by type",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	MintDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ticket_mint_duration_seconds",
		Description: "Duration of NFT gateway mint calls",
		Unit:        "s",
	}, []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20}) // 100ms to 20s
	if err != nil {
		return err
	}

	// Request duration histogram for latency tracking (p50, p90, p99)
	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "marketplace_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}) // 5ms to 10s
	if err != nil {
		return err
	}

	PendingTickets, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "tickets_pending",
		Description: "Current number of tickets awaiting mint completion",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordTicketIssued records a completed primary purchase
func RecordTicketIssued(ctx context.Context, eventID string) {
	if TicketsIssued != nil {
		TicketsIssued.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordMintFailure records a mint that exhausted its retry budget
func RecordMintFailure(ctx context.Context, eventID string) {
	if MintFailures != nil {
		MintFailures.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordResale records a completed listing purchase
func RecordResale(ctx context.Context, eventID string) {
	if TicketsResold != nil {
		TicketsResold.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordRedemption records a gate redemption
func RecordRedemption(ctx context.Context, eventID string) {
	if TicketsRedeemed != nil {
		TicketsRedeemed.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordTransfer records an ownership handoff
func RecordTransfer(ctx context.Context, eventID string) {
	if TicketsTransferred != nil {
		TicketsTransferred.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordError records an error by classification
func RecordError(ctx context.Context, operation, errType string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("operation", operation),
			attribute.String("error_type", errType),
		)
	}
}
