package service

import (
	"context"
	"time"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/messaging"
	"github.com/yourusername/teamflow/internal/realtime"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

// NotifierService читает события из Kafka, сохраняет уведомления
// адресатам и транслирует события в realtime-комнаты
type NotifierService struct {
	notificationSvc *NotificationService
	broker          *realtime.Broker
	consumers       []*messaging.KafkaConsumer
	kafkaCfg        *config.KafkaConfig
	logger          logger.Logger
}

// NewNotifierService создает новый экземпляр NotifierService
func NewNotifierService(
	notificationSvc *NotificationService,
	broker *realtime.Broker,
	kafkaCfg *config.KafkaConfig,
	groupID string,
	logger logger.Logger,
) *NotifierService {
	topics := []string{
		kafkaCfg.Topics.TaskEvents,
		kafkaCfg.Topics.ProjectEvents,
		kafkaCfg.Topics.CommentEvents,
		kafkaCfg.Topics.Notifications,
	}

	consumers := make([]*messaging.KafkaConsumer, 0, len(topics))
	for _, topic := range topics {
		consumers = append(consumers, messaging.NewKafkaConsumer(kafkaCfg.Brokers, topic, groupID, logger))
	}

	return &NotifierService{
		notificationSvc: notificationSvc,
		broker:          broker,
		consumers:       consumers,
		kafkaCfg:        kafkaCfg,
		logger:          logger,
	}
}

// Start запускает чтение всех топиков
func (s *NotifierService) Start(ctx context.Context) error {
	s.logger.Info("Starting notifier service")

	for _, consumer := range s.consumers {
		go s.consume(ctx, consumer)
	}
	return nil
}

// Stop останавливает чтение
func (s *NotifierService) Stop() error {
	s.logger.Info("Stopping notifier service")
	for _, consumer := range s.consumers {
		if err := consumer.Close(); err != nil {
			s.logger.Error("Failed to close consumer", err)
		}
	}
	return nil
}

// consume читает сообщения одного топика до отмены контекста
func (s *NotifierService) consume(ctx context.Context, consumer *messaging.KafkaConsumer) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("Failed to read message from Kafka", err)
			time.Sleep(time.Second)
			continue
		}

		if err := s.handleMessage(ctx, consumer, msg); err != nil {
			s.logger.Error("Failed to handle message", err, map[string]interface{}{
				"topic": msg.Topic,
				"key":   msg.Key,
			})
		}
	}
}

// handleMessage обрабатывает сообщение в зависимости от топика
func (s *NotifierService) handleMessage(ctx context.Context, consumer *messaging.KafkaConsumer, msg *messaging.Message) error {
	switch msg.Topic {
	case s.kafkaCfg.Topics.TaskEvents:
		var event messaging.TaskEvent
		if err := consumer.ParseMessage(msg, &event); err != nil {
			return err
		}
		return s.handleTaskEvent(ctx, &event)

	case s.kafkaCfg.Topics.CommentEvents:
		var event messaging.CommentEvent
		if err := consumer.ParseMessage(msg, &event); err != nil {
			return err
		}
		return s.handleCommentEvent(ctx, &event)

	case s.kafkaCfg.Topics.ProjectEvents:
		var event messaging.ProjectEvent
		if err := consumer.ParseMessage(msg, &event); err != nil {
			return err
		}
		return s.handleProjectEvent(ctx, &event)

	case s.kafkaCfg.Topics.Notifications:
		var event messaging.NotificationEvent
		if err := consumer.ParseMessage(msg, &event); err != nil {
			return err
		}
		return s.handleNotificationEvent(ctx, &event)
	}

	s.logger.Warn("Message from unexpected topic", map[string]interface{}{
		"topic": msg.Topic,
	})
	return nil
}

// handleTaskEvent транслирует событие задачи в комнату проекта
func (s *NotifierService) handleTaskEvent(ctx context.Context, event *messaging.TaskEvent) error {
	room := realtime.ProjectRoom(event.ProjectID)
	return s.broker.Publish(ctx, room, event.Type, event)
}

// handleCommentEvent транслирует событие комментария в комнату проекта
func (s *NotifierService) handleCommentEvent(ctx context.Context, event *messaging.CommentEvent) error {
	room := realtime.ProjectRoom(event.ProjectID)
	return s.broker.Publish(ctx, room, event.Type, event)
}

// handleProjectEvent транслирует событие проекта в комнату проекта
func (s *NotifierService) handleProjectEvent(ctx context.Context, event *messaging.ProjectEvent) error {
	room := realtime.ProjectRoom(event.ProjectID)
	return s.broker.Publish(ctx, room, event.Type, event)
}

// handleNotificationEvent сохраняет уведомление каждому адресату.
// Рассылку в личные комнаты выполняет NotificationService.Create.
func (s *NotifierService) handleNotificationEvent(ctx context.Context, event *messaging.NotificationEvent) error {
	return s.notificationSvc.CreateForUsers(ctx, event.UserIDs, func(userID string) *domain.Notification {
		return &domain.Notification{
			UserID:     userID,
			Type:       domain.NotificationType(event.NotificationType),
			Title:      event.Title,
			Message:    event.Message,
			EntityID:   event.EntityID,
			EntityType: event.EntityType,
			ActorID:    event.ActorID,
			CreatedAt:  event.OccurredAt,
		}
	})
}
