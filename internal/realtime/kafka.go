package realtime

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventPublisher mirrors alert events onto a Kafka topic for out-of-process
// observers. Optional: a nil publisher means the sink is disabled.
type EventPublisher struct {
	writer *kafka.Writer
}

func NewEventPublisher(broker, topic string) *EventPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &EventPublisher{writer: writer}
}

// Publish writes one event keyed by the subject user id.
func (p *EventPublisher) Publish(ctx context.Context, key string, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
