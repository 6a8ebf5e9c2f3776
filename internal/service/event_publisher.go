package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/pkg/kafka"
)

// EventPublisher defines the interface for publishing ticket lifecycle events
type EventPublisher interface {
	// PublishTicketIssued publishes a primary-market mint completion
	PublishTicketIssued(ctx context.Context, ticket *domain.Ticket) error

	// PublishTicketListed publishes a listing creation
	PublishTicketListed(ctx context.Context, ticket *domain.Ticket) error

	// PublishTicketDelisted publishes a listing cancellation
	PublishTicketDelisted(ctx context.Context, ticket *domain.Ticket) error

	// PublishTicketSold publishes a resale purchase
	PublishTicketSold(ctx context.Context, ticket *domain.Ticket, sellerID string) error

	// PublishTicketTransferred publishes an ownership handoff
	PublishTicketTransferred(ctx context.Context, ticket *domain.Ticket, fromUserID string) error

	// PublishTicketRedeemed publishes a gate redemption
	PublishTicketRedeemed(ctx context.Context, ticket *domain.Ticket) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "ticket-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "marketplace-api"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "marketplace-api-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishTicketIssued publishes a primary-market mint completion
func (p *KafkaEventPublisher) PublishTicketIssued(ctx context.Context, ticket *domain.Ticket) error {
	return p.publishEvent(ctx, domain.TicketEventIssued, ticket, "")
}

// PublishTicketListed publishes a listing creation
func (p *KafkaEventPublisher) PublishTicketListed(ctx context.Context, ticket *domain.Ticket) error {
	return p.publishEvent(ctx, domain.TicketEventListed, ticket, "")
}

// PublishTicketDelisted publishes a listing cancellation
func (p *KafkaEventPublisher) PublishTicketDelisted(ctx context.Context, ticket *domain.Ticket) error {
	return p.publishEvent(ctx, domain.TicketEventDelisted, ticket, "")
}

// PublishTicketSold publishes a resale purchase
func (p *KafkaEventPublisher) PublishTicketSold(ctx context.Context, ticket *domain.Ticket, sellerID string) error {
	return p.publishEvent(ctx, domain.TicketEventSold, ticket, sellerID)
}

// PublishTicketTransferred publishes an ownership handoff
func (p *KafkaEventPublisher) PublishTicketTransferred(ctx context.Context, ticket *domain.Ticket, fromUserID string) error {
	return p.publishEvent(ctx, domain.TicketEventTransferred, ticket, fromUserID)
}

// PublishTicketRedeemed publishes a gate redemption
func (p *KafkaEventPublisher) PublishTicketRedeemed(ctx context.Context, ticket *domain.Ticket) error {
	return p.publishEvent(ctx, domain.TicketEventRedeemed, ticket, "")
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publishEvent publishes a ticket lifecycle event to Kafka
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.TicketEventType, ticket *domain.Ticket, fromUserID string) error {
	eventID := uuid.New().String()
	event := domain.NewTicketEvent(eventType, ticket, eventID)
	event.FromUserID = fromUserID

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher for testing
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishTicketIssued is a no-op
func (p *NoOpEventPublisher) PublishTicketIssued(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}

// PublishTicketListed is a no-op
func (p *NoOpEventPublisher) PublishTicketListed(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}

// PublishTicketDelisted is a no-op
func (p *NoOpEventPublisher) PublishTicketDelisted(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}

// PublishTicketSold is a no-op
func (p *NoOpEventPublisher) PublishTicketSold(ctx context.Context, ticket *domain.Ticket, sellerID string) error {
	return nil
}

// PublishTicketTransferred is a no-op
func (p *NoOpEventPublisher) PublishTicketTransferred(ctx context.Context, ticket *domain.Ticket, fromUserID string) error {
	return nil
}

// PublishTicketRedeemed is a no-op
func (p *NoOpEventPublisher) PublishTicketRedeemed(ctx context.Context, ticket *domain.Ticket) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
