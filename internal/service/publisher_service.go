package service

import (
	"context"
	"encoding/json"

	"fundocs-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const ProgressRefreshTopic = "progress.refresh"

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
}

type publisherService struct {
	topic     string
	publisher message.Publisher
}

func NewPublisherService(topic string, publisher message.Publisher) IPublisherService {
	return &publisherService{topic: topic, publisher: publisher}
}

func (s *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return s.publisher.Publish(s.topic, msg)
}

// ProgressRefreshMessage asks the consumer to re-read a user's progress.
type ProgressRefreshMessage struct {
	UserId string `json:"user_id"`
	Reason string `json:"reason"`
}

func requestProgressRefresh(ctx context.Context, pub IPublisherService, log logger.ILogger, userID, reason string) {
	if pub == nil {
		return
	}
	payload, _ := json.Marshal(ProgressRefreshMessage{UserId: userID, Reason: reason})
	if err := pub.Publish(ctx, payload); err != nil {
		log.Warn("PublisherService", "Failed to queue progress refresh", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
