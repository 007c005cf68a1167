package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/EcoSphere-Campus/service-rewards/internal/kafka"
)

// Publisher abstracts the event bus so services and tests can swap it out.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// KafkaPublisher publishes reward lifecycle events to the rewards topic.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewKafkaPublisher creates a publisher backed by the shared Kafka producer.
func NewKafkaPublisher(producer *kafka.Producer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

// Publish wraps the payload in a CloudEvent and writes it to rewards.events.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	ce, err := kafka.NewCloudEvent(EventSource, eventType, payload)
	if err != nil {
		return err
	}
	return p.producer.PublishEvent(ctx, TopicRewardEvents, ce)
}

// NoopPublisher discards events. Used when Kafka is disabled and in tests.
type NoopPublisher struct{}

// Publish drops the event.
func (NoopPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return nil
}
