// Package events publishes sync-trigger events to Kafka so HTTP handlers
// can answer immediately while the worker performs the run out of band.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"sellmaster/internal/logger"
)

const (
	TypeFetchEbay = "ebay.fetch"
	TypeFullSync  = "sync.full"
)

type SyncEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	SessionID    string    `json:"session_id"`
	RunID        string    `json:"run_id,omitempty"`
	EbayStore    string    `json:"ebay_store"`
	ShopifyStore string    `json:"shopify_store,omitempty"`
	Limit        int       `json:"limit,omitempty"`
	RequestedAt  time.Time `json:"requested_at"`
}

type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers, topic string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// Publish fills in the event ID and timestamp and writes the event.
func (p *Publisher) Publish(ctx context.Context, event SyncEvent) (string, error) {
	event.ID = uuid.New().String()
	event.RequestedAt = time.Now()

	value, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
	})
	if err != nil {
		return "", err
	}

	p.logger.Debug("published %s event %s", event.Type, event.ID)
	return event.ID, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
