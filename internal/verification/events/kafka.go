package events

import (
	"context"
	"encoding/json"
	"fmt"

	"bridgeid/internal/platform/kafka/producer"
	"bridgeid/internal/verification/models"
)

// Producer is the subset of the Kafka producer the sink uses.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSink writes events to a topic. Request events are keyed by correlation ID
// so both events of one request land on the same partition in order.
type KafkaSink struct {
	producer Producer
	topic    string
}

func NewKafkaSink(p Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	key := string(event.Kind)
	if event.CorrelationID != nil {
		key = event.CorrelationID.String()
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(key),
		Value: payload,
		Headers: map[string]string{
			"event_kind": string(event.Kind),
		},
	})
}
