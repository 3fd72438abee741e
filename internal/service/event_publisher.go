package service

import (
	"context"

	"fundocs-be/internal/pkg/logger"
	"fundocs-be/pkg/events"
)

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// publishEvent never fails the caller; the bus is optional.
func publishEvent(ctx context.Context, pub EventPublisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn("EventBus", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
