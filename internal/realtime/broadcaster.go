package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"safety-service/internal/logging"
)

// AlertEvent is the wire shape published to live observers.
type AlertEvent struct {
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	AlertID   uuid.UUID `json:"alert_id"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Accuracy  *float64  `json:"accuracy"`
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster publishes alert events to the subject's own room, the global
// room, and (when configured) a Kafka topic. Every sink is best-effort: a
// publish failure never affects the trigger operation.
type Broadcaster struct {
	hub       *Hub
	publisher *EventPublisher
	logger    *logging.Logger
}

func NewBroadcaster(hub *Hub, publisher *EventPublisher, logger *logging.Logger) *Broadcaster {
	return &Broadcaster{hub: hub, publisher: publisher, logger: logger}
}

// Publish emits the event to all sinks without waiting for any subscriber.
func (b *Broadcaster) Publish(ctx context.Context, event AlertEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Errorf("Failed to encode alert event %s: %v", event.AlertID, err)
		return
	}

	userRoom := strconv.Itoa(event.UserID)
	b.hub.Send(userRoom, payload)
	b.hub.Send(GlobalRoom, payload)

	if b.publisher != nil {
		if err := b.publisher.Publish(ctx, userRoom, payload); err != nil {
			b.logger.Errorf("Failed to publish alert event %s to Kafka: %v", event.AlertID, err)
		}
	}
}
