package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lexara/internal/platform/kafka/producer"
)

// KafkaPublisher streams audit events to a Kafka topic keyed by user ID so a
// single user's trail stays ordered within a partition.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
}

// NewKafkaPublisher constructs a Kafka-backed audit publisher.
func NewKafkaPublisher(p *producer.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

// Emit publishes the event asynchronously. The record is buffered; delivery
// failures surface only in logs, matching the best-effort audit contract.
func (p *KafkaPublisher) Emit(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	return p.producer.ProduceAsync(&producer.Message{
		Topic: p.topic,
		Key:   []byte(event.UserID.String()),
		Value: value,
		Headers: map[string]string{
			"action": string(event.Action),
		},
	})
}
