package kafka

import (
	"Lattice/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// NotificationHandler 消费通知事件，交给 NotificationService 落地
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

func NewNotificationHandler(notificationSvc service.NotificationService) sarama.ConsumerGroupHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

func (s *NotificationHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (s *NotificationHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (s *NotificationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	return pullMessageBatch(session, claim, s.handle)
}

func (s *NotificationHandler) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	event, err := ToNotificationEvent(msg)
	if err != nil {
		// 畸形消息没有重试价值，记录后跳过
		log.ErrorContext(ctx, "drop malformed notification event", "err", err)
		return nil
	}

	accepted, err := s.notificationSvc.Ingest(ctx, event)
	if err != nil {
		return err
	}
	if !accepted {
		log.InfoContext(ctx, "notification event deduplicated",
			"kind", event.Kind, "actor", event.ActorID, "recipient", event.RecipientID, "subject", event.SubjectID)
	}
	return nil
}
