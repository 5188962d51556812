package repository

import (
	"context"

	"github.com/yourusername/teamflow/internal/domain"
)

// NotificationRepository определяет интерфейс для работы с хранилищем уведомлений
type NotificationRepository interface {
	// Create создает новое уведомление
	Create(ctx context.Context, notification *domain.Notification) error

	// GetByID возвращает уведомление по ID
	GetByID(ctx context.Context, id string) (*domain.Notification, error)

	// ListByUser возвращает уведомления пользователя
	ListByUser(ctx context.Context, userID string, filter NotificationFilter) ([]*domain.Notification, error)

	// CountByUser возвращает количество уведомлений пользователя
	CountByUser(ctx context.Context, userID string, filter NotificationFilter) (int, error)

	// CountUnread возвращает количество непрочитанных уведомлений
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkAsRead помечает уведомление прочитанным
	MarkAsRead(ctx context.Context, id, userID string) error

	// MarkAllAsRead помечает все уведомления пользователя прочитанными
	MarkAllAsRead(ctx context.Context, userID string) error

	// Delete удаляет уведомление пользователя
	Delete(ctx context.Context, id, userID string) error
}

// NotificationFilter содержит параметры для фильтрации уведомлений
type NotificationFilter struct {
	Type   *domain.NotificationType `json:"type,omitempty"`
	IsRead *bool                    `json:"is_read,omitempty"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}
