package repository

import (
	"context"
	"time"

	"github.com/yourusername/teamflow/internal/domain"
)

// TaskRepository определяет интерфейс для работы с хранилищем задач
type TaskRepository interface {
	// Create создает новую задачу
	Create(ctx context.Context, task *domain.Task) error

	// GetByID возвращает задачу по ID
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// Update обновляет данные задачи
	Update(ctx context.Context, task *domain.Task) error

	// Delete удаляет задачу по ID
	Delete(ctx context.Context, id string) error

	// List возвращает список задач с фильтрацией
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Count возвращает количество задач с фильтрацией
	Count(ctx context.Context, filter TaskFilter) (int, error)

	// UpdateStatus обновляет статус, прогресс и время завершения задачи
	UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, progress int, completedAt *time.Time) error

	// UpdateAssignee обновляет исполнителя задачи
	UpdateAssignee(ctx context.Context, taskID string, assigneeID *string) error

	// UpdatePositions обновляет порядок задач внутри проекта
	UpdatePositions(ctx context.Context, projectID string, taskIDs []string) error

	// GetOverdueTasks возвращает просроченные незавершенные задачи
	GetOverdueTasks(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// AddSubtask добавляет подзадачу
	AddSubtask(ctx context.Context, subtask *domain.Subtask) error

	// UpdateSubtask обновляет подзадачу
	UpdateSubtask(ctx context.Context, subtask *domain.Subtask) error

	// DeleteSubtask удаляет подзадачу
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) error

	// GetSubtasks возвращает подзадачи задачи
	GetSubtasks(ctx context.Context, taskID string) ([]domain.Subtask, error)

	// GetLabels возвращает метки задачи
	GetLabels(ctx context.Context, taskID string) ([]string, error)

	// UpdateLabels заменяет метки задачи
	UpdateLabels(ctx context.Context, taskID string, labels []string) error

	// AddWatcher добавляет наблюдателя к задаче
	AddWatcher(ctx context.Context, taskID, userID string) error

	// RemoveWatcher удаляет наблюдателя задачи
	RemoveWatcher(ctx context.Context, taskID, userID string) error

	// GetWatchers возвращает наблюдателей задачи
	GetWatchers(ctx context.Context, taskID string) ([]string, error)

	// AddAttachment добавляет вложение к задаче
	AddAttachment(ctx context.Context, attachment *domain.Attachment) error

	// DeleteAttachment удаляет вложение задачи
	DeleteAttachment(ctx context.Context, taskID, attachmentID string) error

	// GetAttachments возвращает вложения задачи
	GetAttachments(ctx context.Context, taskID string) ([]domain.Attachment, error)

	// GetDependencies возвращает связи задачи с другими задачами
	GetDependencies(ctx context.Context, taskID string) ([]domain.TaskDependency, error)

	// UpdateDependencies заменяет связи задачи
	UpdateDependencies(ctx context.Context, taskID string, deps []domain.TaskDependency) error

	// AddTimeEntry добавляет запись учета времени
	AddTimeEntry(ctx context.Context, entry *domain.TimeEntry) error

	// GetTimeEntries возвращает записи учета времени по задаче
	GetTimeEntries(ctx context.Context, taskID string) ([]domain.TimeEntry, error)

	// CountByProject возвращает общее и завершенное количество задач проекта
	CountByProject(ctx context.Context, projectID string) (total int, completed int, err error)

	// ProjectIDsWithTasks возвращает ID проектов, в которых есть задачи
	ProjectIDsWithTasks(ctx context.Context) ([]string, error)
}

// TaskFilter содержит параметры для фильтрации задач
type TaskFilter struct {
	IDs        []string             `json:"ids,omitempty"`
	Scope      *domain.AccessScope  `json:"-"`
	ProjectID  *string              `json:"project_id,omitempty"`
	Status     *domain.TaskStatus   `json:"status,omitempty"`
	Priority   *domain.TaskPriority `json:"priority,omitempty"`
	Category   *domain.TaskCategory `json:"category,omitempty"`
	AssigneeID *string              `json:"assignee_id,omitempty"`
	CreatedBy  *string              `json:"created_by,omitempty"`
	WatcherID  *string              `json:"watcher_id,omitempty"`
	DueBefore  *time.Time           `json:"due_before,omitempty"`
	DueAfter   *time.Time           `json:"due_after,omitempty"`
	Labels     []string             `json:"labels,omitempty"`
	SearchText *string              `json:"search_text,omitempty"`
	IsOverdue  *bool                `json:"is_overdue,omitempty"`
	IsArchived *bool                `json:"is_archived,omitempty"`
	OrderBy    *string              `json:"order_by,omitempty"`
	OrderDir   *string              `json:"order_dir,omitempty"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}
