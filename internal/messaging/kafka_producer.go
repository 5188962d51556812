package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

// KafkaProducer публикует события мутаций в Kafka.
// Один writer на все топики: топик выставляется на каждом сообщении.
type KafkaProducer struct {
	writer *kafka.Writer
	topics config.KafkaTopics
	logger logger.Logger
}

// NewKafkaProducer создает новый экземпляр KafkaProducer
func NewKafkaProducer(brokers []string, topics config.KafkaTopics, logger logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  5,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaProducer{
		writer: writer,
		topics: topics,
		logger: logger,
	}
}

// Close закрывает соединение с Kafka
func (p *KafkaProducer) Close() error {
	p.logger.Info("Closing Kafka producer")
	return p.writer.Close()
}

// PublishTaskEvent публикует событие задачи
func (p *KafkaProducer) PublishTaskEvent(ctx context.Context, event *TaskEvent) error {
	return p.publishEvent(ctx, p.topics.TaskEvents, event.TaskID, event)
}

// PublishCommentEvent публикует событие комментария
func (p *KafkaProducer) PublishCommentEvent(ctx context.Context, event *CommentEvent) error {
	return p.publishEvent(ctx, p.topics.CommentEvents, event.TaskID, event)
}

// PublishProjectEvent публикует событие проекта
func (p *KafkaProducer) PublishProjectEvent(ctx context.Context, event *ProjectEvent) error {
	return p.publishEvent(ctx, p.topics.ProjectEvents, event.ProjectID, event)
}

// PublishNotification публикует событие доставки уведомлений
func (p *KafkaProducer) PublishNotification(ctx context.Context, event *NotificationEvent) error {
	key := ""
	if event.EntityID != nil {
		key = *event.EntityID
	}
	return p.publishEvent(ctx, p.topics.Notifications, key, event)
}

func (p *KafkaProducer) publishEvent(ctx context.Context, topic, key string, event interface{}) error {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", err, map[string]interface{}{
			"topic": topic,
			"key":   key,
		})
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	elapsed := time.Since(start)

	if err != nil {
		p.logger.Error("Failed to publish event", err, map[string]interface{}{
			"topic":   topic,
			"key":     key,
			"elapsed": elapsed.String(),
		})
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Successfully published event", map[string]interface{}{
		"topic":   topic,
		"key":     key,
		"elapsed": elapsed.String(),
	})

	return nil
}
