// Package events publishes quote lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paint-quote/core/engine"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

// TypeQuoteCalculated is emitted after a quote is priced and stored
const TypeQuoteCalculated = "quote.calculated"

// Event is a quote lifecycle event
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	TenantID   string          `json:"tenantId"`
	QuoteID    string          `json:"quoteId"`
	Model      types.Model     `json:"model"`
	Tier       types.Tier      `json:"tier"`
	Total      decimal.Decimal `json:"total"`
	Deposit    decimal.Decimal `json:"deposit"`
	InputHash  string          `json:"inputHash"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// QuoteCalculated builds the event for a stored quote
func QuoteCalculated(tenantID, quoteID string, res *engine.Result, at time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       TypeQuoteCalculated,
		TenantID:   tenantID,
		QuoteID:    quoteID,
		Model:      res.Model,
		Tier:       res.Tier,
		Total:      res.Total,
		Deposit:    res.Deposit,
		InputHash:  res.InputHash,
		OccurredAt: at.UTC(),
	}
}

// Publisher is the interface used by handlers to publish events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Writer defines the subset of kafka.Writer we need
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by tenant id, so one tenant's events
// stay ordered within a partition
type KafkaPublisher struct {
	writer Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(w, logger)
}

// NewKafkaPublisherWithWriter allows injecting a test writer
func NewKafkaPublisherWithWriter(w Writer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logging.OrNop(logger)}
}

// Publish marshals the event to JSON and writes it
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return errors.Internal("encode event", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.TenantID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("kafka write failed",
			logging.Tenant(event.TenantID), logging.Quote(event.QuoteID), zap.Error(err))
		return errors.Wrap(errors.TypeInternal, "publish event", err)
	}
	p.logger.Debug("event published",
		zap.String("type", event.Type), logging.Tenant(event.TenantID), logging.Quote(event.QuoteID))
	return nil
}

// Close closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close does nothing
func (NopPublisher) Close() error { return nil }

// New returns a Kafka publisher, or a NopPublisher when no brokers are set
func New(brokers []string, topic string, logger *zap.Logger) Publisher {
	var cleaned []string
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			cleaned = append(cleaned, b)
		}
	}
	if len(cleaned) == 0 || topic == "" {
		return NopPublisher{}
	}
	return NewKafkaPublisher(cleaned, topic, logger)
}
