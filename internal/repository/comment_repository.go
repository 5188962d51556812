package repository

import (
	"context"

	"github.com/yourusername/teamflow/internal/domain"
)

// CommentRepository определяет интерфейс для работы с хранилищем комментариев
type CommentRepository interface {
	// Create создает новый комментарий
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID возвращает комментарий по ID
	GetByID(ctx context.Context, id string) (*domain.Comment, error)

	// Update обновляет комментарий и помечает его отредактированным
	Update(ctx context.Context, comment *domain.Comment) error

	// Delete удаляет комментарий по ID
	Delete(ctx context.Context, id string) error

	// ListByTask возвращает комментарии задачи
	ListByTask(ctx context.Context, taskID string, filter CommentFilter) ([]*domain.Comment, error)

	// CountByTask возвращает количество комментариев задачи
	CountByTask(ctx context.Context, taskID string) (int, error)
}

// CommentFilter содержит параметры для фильтрации комментариев
type CommentFilter struct {
	UserID   *string `json:"user_id,omitempty"`
	OrderDir *string `json:"order_dir,omitempty"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}
