package service

import (
	"context"
	"fmt"
	"time"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/pkg/events"
	pktNats "fundocs-be/pkg/nats"

	"github.com/google/uuid"
)

const notificationDurable = "notif-service-worker"

// NotificationDelivery pushes real-time updates. Implemented by the
// websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification dto.Notification)
	Broadcast(notification dto.Notification)
}

type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start(ctx context.Context) {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No event bus, realtime notifications disabled", nil)
		return
	}
	if err := s.subscriber.Subscribe(ctx, pktNats.AllSubject, notificationDurable, s.HandleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to "+pktNats.AllSubject, nil)
}

func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	notif, broadcast, ok := BuildNotification(event)
	if !ok {
		s.logger.Debug("NotificationService", "Ignoring event", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	if s.delivery == nil {
		return nil
	}
	if broadcast {
		s.delivery.Broadcast(notif)
	} else {
		s.delivery.Send(notif.UserId, notif)
	}
	return nil
}

func number(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// BuildNotification maps a bus event to the notification shown to users.
// broadcast is true when every connected user should get it.
func BuildNotification(event events.Event) (notif dto.Notification, broadcast, ok bool) {
	data := event.Payload()
	notif = dto.Notification{
		Id:        uuid.New(),
		Type:      event.EventType(),
		CreatedAt: time.Now().UTC(),
		Metadata:  data,
	}

	target := events.String(event, "user_id")
	switch event.EventType() {
	case events.TypeUserVerified:
		notif.Title = "Email verified"
		notif.Message = fmt.Sprintf("Welcome aboard, %s! Your account is ready.", events.String(event, "name"))

	case events.TypeDocCreated:
		notif.Title = "Your doc is ready"
		notif.Message = fmt.Sprintf("%q has been turned into a story, steps, challenges and flashcards.", events.String(event, "title"))

	case events.TypeChallengeSubmitted:
		if success, _ := data["success"].(bool); success {
			notif.Title = "Challenge complete"
			notif.Message = fmt.Sprintf("You earned %d XP.", number(data["xp_awarded"]))
		} else {
			notif.Title = "Challenge reviewed"
			notif.Message = "Check the feedback and give it another try."
		}

	case events.TypeTipCreated:
		notif.Title = "New community tip"
		notif.Message = fmt.Sprintf("%s shared a tip.", events.String(event, "author_name"))
		return notif, true, true

	case events.TypeTipVoted:
		direction := events.String(event, "direction")
		if direction == "" {
			return notif, false, false
		}
		target = events.String(event, "author_id")
		verb := "upvoted"
		if direction == "down" {
			verb = "downvoted"
		}
		notif.Title = "Your tip got a vote"
		notif.Message = fmt.Sprintf("%s %s your tip.", events.String(event, "voter_name"), verb)

	default:
		return notif, false, false
	}

	userID, err := uuid.Parse(target)
	if err != nil {
		return notif, false, false
	}
	notif.UserId = userID
	return notif, false, true
}
