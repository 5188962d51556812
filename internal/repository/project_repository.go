package repository

import (
	"context"
	"time"

	"github.com/yourusername/teamflow/internal/domain"
)

// ProjectRepository определяет интерфейс для работы с хранилищем проектов
type ProjectRepository interface {
	// Create создает новый проект
	Create(ctx context.Context, project *domain.Project) error

	// GetByID возвращает проект по ID
	GetByID(ctx context.Context, id string) (*domain.Project, error)

	// Update обновляет данные проекта
	Update(ctx context.Context, project *domain.Project) error

	// Delete удаляет проект вместе с его задачами
	Delete(ctx context.Context, id string) error

	// List возвращает список проектов с фильтрацией
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)

	// Count возвращает количество проектов с фильтрацией
	Count(ctx context.Context, filter ProjectFilter) (int, error)

	// AddMember добавляет пользователя в проект
	AddMember(ctx context.Context, member *domain.ProjectMember) error

	// UpdateMember обновляет роль пользователя в проекте
	UpdateMember(ctx context.Context, projectID, userID string, role domain.ProjectMemberRole) error

	// RemoveMember удаляет пользователя из проекта
	RemoveMember(ctx context.Context, projectID, userID string) error

	// GetMembers возвращает список участников проекта
	GetMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error)

	// GetMember возвращает информацию об участнике проекта
	GetMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error)

	// GetAccessibleProjectIDs возвращает ID проектов, где пользователь
	// является владельцем или участником
	GetAccessibleProjectIDs(ctx context.Context, userID string) ([]string, error)

	// UpdateProgress записывает вычисленный прогресс проекта
	UpdateProgress(ctx context.Context, projectID string, progress int) error

	// ArchiveCompletedBefore архивирует завершенные проекты, не обновлявшиеся
	// с указанного момента; возвращает количество заархивированных
	ArchiveCompletedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ProjectFilter содержит параметры для фильтрации проектов
type ProjectFilter struct {
	IDs        []string                `json:"ids,omitempty"`
	Scope      *domain.AccessScope     `json:"-"`
	Status     *domain.ProjectStatus   `json:"status,omitempty"`
	Priority   *domain.ProjectPriority `json:"priority,omitempty"`
	OwnerID    *string                 `json:"owner_id,omitempty"`
	SearchText *string                 `json:"search_text,omitempty"`
	IsArchived *bool                   `json:"is_archived,omitempty"`
	Tags       []string                `json:"tags,omitempty"`
	OrderBy    *string                 `json:"order_by,omitempty"`
	OrderDir   *string                 `json:"order_dir,omitempty"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}
