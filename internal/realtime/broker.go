package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/teamflow/pkg/cache"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Message представляет realtime-событие, адресованное комнате
type Message struct {
	Event      string      `json:"event"`
	Room       string      `json:"room"`
	Data       interface{} `json:"data,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// TypingPayload представляет данные события user-typing.
// События набора текста нигде не сохраняются.
type TypingPayload struct {
	TaskID   string `json:"task_id"`
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

// Broker доставляет realtime-события через Redis PUBLISH.
// Доставка негарантированная, не чаще одного раза; мутации данных
// никогда не зависят от ее успеха.
type Broker struct {
	redis  *cache.Redis
	prefix string
	logger logger.Logger
}

// NewBroker создает новый экземпляр Broker
func NewBroker(redis *cache.Redis, channelPrefix string, logger logger.Logger) *Broker {
	return &Broker{
		redis:  redis,
		prefix: channelPrefix,
		logger: logger,
	}
}

// Publish отправляет событие в комнату
func (b *Broker) Publish(ctx context.Context, room, event string, data interface{}) error {
	msg := Message{
		Event:      event,
		Room:       room,
		Data:       data,
		OccurredAt: time.Now(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime message: %w", err)
	}

	if err := b.redis.Publish(ctx, b.channel(room), payload); err != nil {
		// Доставка best-effort: логируем и не прерываем вызывающего
		b.logger.Warn("Failed to publish realtime message", map[string]interface{}{
			"room":  room,
			"event": event,
			"error": err.Error(),
		})
	}
	return nil
}

// PublishTyping отправляет событие набора текста в комнату проекта
func (b *Broker) PublishTyping(ctx context.Context, room string, payload TypingPayload) error {
	return b.Publish(ctx, room, "user-typing", payload)
}

// PublishPresence отправляет событие присутствия user-online/user-offline
func (b *Broker) PublishPresence(ctx context.Context, userID string, online bool) error {
	event := "user-online"
	if !online {
		event = "user-offline"
	}
	return b.Publish(ctx, "presence", event, map[string]string{"user_id": userID})
}

func (b *Broker) channel(room string) string {
	return b.prefix + room
}
