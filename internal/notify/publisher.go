// Package notify publishes events about completed imports.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	skafka "github.com/segmentio/kafka-go"
)

// EventRateCardImported is the type of the event sent after a commit.
const EventRateCardImported = "rate_card.imported"

// RateCardImported describes one committed import.
type RateCardImported struct {
	Type            string    `json:"type"`
	RateCardID      string    `json:"rateCardId"`
	TemplateID      string    `json:"templateId"`
	TemplateVersion int       `json:"templateVersion"`
	CarrierID       string    `json:"carrierId"`
	ProcessedCount  int       `json:"processedCount"`
	SkippedCount    int       `json:"skippedCount"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// Publisher sends import events.
type Publisher interface {
	PublishImported(ctx context.Context, evt RateCardImported) error
	Close() error
}

// Writer is the subset of kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by template id so a
// template's imports stay ordered within a partition.
type KafkaPublisher struct {
	writer Writer
	logger *log.Logger
}

// NewKafkaPublisher creates a publisher for the comma-separated brokers and
// topic.
func NewKafkaPublisher(brokers, topic string, logger *log.Logger) *KafkaPublisher {
	addrs := make([]string, 0)
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	w := &skafka.Writer{
		Addr:                   skafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(w, logger)
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer, logger *log.Logger) *KafkaPublisher {
	if logger == nil {
		logger = log.New("notify")
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

// PublishImported marshals evt and writes it.
func (p *KafkaPublisher) PublishImported(ctx context.Context, evt RateCardImported) error {
	if evt.Type == "" {
		evt.Type = EventRateCardImported
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	msg := skafka.Message{
		Key:   []byte(evt.TemplateID),
		Value: b,
		Headers: []skafka.Header{
			{Key: "event-type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event for rate card %s: %w", evt.Type, evt.RateCardID, err)
	}
	p.logger.Debugf("published %s for rate card %s", evt.Type, evt.RateCardID)
	return nil
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishImported(context.Context, RateCardImported) error { return nil }

func (NopPublisher) Close() error { return nil }
