package events

import (
	"context"

	"quotewatch/internal/metrics"
	"quotewatch/pkg/logger"
)

const sinkKafka = "kafka"

// Producer publishes a JSON encoded event to a topic
type Producer interface {
	Publish(ctx context.Context, topic string, key string, event interface{}) error
}

// KafkaPublisher forwards data changed events to Kafka keyed by user
type KafkaPublisher struct {
	producer Producer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher creates a publisher writing to topic
func NewKafkaPublisher(producer Producer, topic string, log *logger.Logger) *KafkaPublisher {
	if topic == "" {
		topic = TopicWatchlistsRefreshed
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log.With("component", "kafka_publisher", "topic", topic),
	}
}

// Notify implements Notifier. Publish failures are logged only.
func (p *KafkaPublisher) Notify(ctx context.Context, event WatchlistsRefreshed) {
	err := p.producer.Publish(ctx, p.topic, event.UserID, event)
	metrics.RecordEvent(sinkKafka, err)
	if err != nil {
		p.log.Warnw("Failed to publish refresh event", "event_id", event.ID, "error", err)
	}
}
