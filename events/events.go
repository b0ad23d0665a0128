package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderCreated       = "order-created"
	TopicOrderStatusUpdated = "order-status-updated"
)

// Publisher writes order lifecycle events to Kafka. A nil *Publisher is
// valid and publishes nothing, so callers never need to branch on whether
// eventing is configured.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

// Publish sends one event keyed by order id. Publishing is best effort:
// failures are logged and never fail the request that triggered them.
func (p *Publisher) Publish(ctx context.Context, topic, orderID string, payload any) {
	if p == nil {
		return
	}

	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal %s event for order %s: %v", topic, orderID, err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(orderID),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		log.Printf("failed to publish %s event for order %s: %v", topic, orderID, err)
	}
}
