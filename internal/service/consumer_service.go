package service

import (
	"context"
	"encoding/json"

	"fundocs-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	progress   IProgressService
	logger     logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, topicName string, progress IProgressService, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		progress:   progress,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a refresh that fails now is redone by the
// next read through the cache, and a nack would redeliver immediately.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload ProgressRefreshMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.UserId == "" {
		cs.logger.Warn("ConsumerService", "Dropping malformed refresh message", map[string]interface{}{"message_id": msg.UUID})
		return
	}

	if err := cs.progress.Refresh(ctx, payload.UserId); err != nil {
		cs.logger.Warn("ConsumerService", "Progress refresh failed", map[string]interface{}{
			"user_id": payload.UserId,
			"reason":  payload.Reason,
			"error":   err.Error(),
		})
		return
	}
	cs.logger.Debug("ConsumerService", "Progress refreshed", map[string]interface{}{"user_id": payload.UserId, "reason": payload.Reason})
}
