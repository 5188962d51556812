package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/logger"
)

// TaskRepository реализует репозиторий задач с использованием PostgreSQL
type TaskRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewTaskRepository создает новый экземпляр TaskRepository
func NewTaskRepository(db *sqlx.DB, logger logger.Logger) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает новую задачу
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction", rbErr)
			}
		}
	}()

	query := `
		INSERT INTO tasks (
			id, title, description, status, priority, category, project_id,
			created_by, assigned_to, progress, estimated_hours, due_date,
			start_date, completed_at, is_archived, custom_fields, created_at,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18
		)
	`

	if _, err = tx.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Category,
		task.ProjectID,
		task.CreatedBy,
		task.AssignedTo,
		task.Progress,
		task.EstimatedHours,
		task.DueDate,
		task.StartDate,
		task.CompletedAt,
		task.IsArchived,
		task.CustomFields,
		task.CreatedAt,
		task.UpdatedAt,
	); err != nil {
		r.logger.Error("Failed to create task", err, map[string]interface{}{
			"title": task.Title,
		})
		return fmt.Errorf("failed to create task: %w", err)
	}

	for _, label := range task.Labels {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO task_labels (task_id, label) VALUES ($1, $2)",
			task.ID,
			label,
		); err != nil {
			return fmt.Errorf("failed to add task label: %w", err)
		}
	}

	for _, watcher := range task.Watchers {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO task_watchers (task_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			task.ID,
			watcher,
		); err != nil {
			return fmt.Errorf("failed to add task watcher: %w", err)
		}
	}

	for _, dep := range task.Dependencies {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO task_dependencies (task_id, depends_on_id, type) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
			task.ID,
			dep.DependsOnID,
			dep.Type,
		); err != nil {
			return fmt.Errorf("failed to add task dependency: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID возвращает задачу по ID вместе с дочерними коллекциями
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `
		SELECT
			id, title, description, status, priority, category, project_id,
			created_by, assigned_to, progress, estimated_hours, due_date,
			start_date, completed_at, is_archived, custom_fields, created_at,
			updated_at
		FROM tasks
		WHERE id = $1
	`

	var task domain.Task
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get task by ID", err, map[string]interface{}{
			"id": id,
		})
		return nil, fmt.Errorf("failed to get task by ID: %w", err)
	}

	if task.Subtasks, err = r.GetSubtasks(ctx, id); err != nil {
		return nil, err
	}
	if task.Labels, err = r.GetLabels(ctx, id); err != nil {
		return nil, err
	}
	if task.Watchers, err = r.GetWatchers(ctx, id); err != nil {
		return nil, err
	}
	if task.Dependencies, err = r.GetDependencies(ctx, id); err != nil {
		return nil, err
	}
	if task.TimeEntries, err = r.GetTimeEntries(ctx, id); err != nil {
		return nil, err
	}
	if task.Attachments, err = r.GetAttachments(ctx, id); err != nil {
		return nil, err
	}

	return &task, nil
}

// Update обновляет данные задачи
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET
			title = $1,
			description = $2,
			status = $3,
			priority = $4,
			category = $5,
			assigned_to = $6,
			progress = $7,
			estimated_hours = $8,
			due_date = $9,
			start_date = $10,
			completed_at = $11,
			is_archived = $12,
			custom_fields = $13,
			updated_at = $14
		WHERE id = $15
	`

	task.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Category,
		task.AssignedTo,
		task.Progress,
		task.EstimatedHours,
		task.DueDate,
		task.StartDate,
		task.CompletedAt,
		task.IsArchived,
		task.CustomFields,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task", err, map[string]interface{}{
			"id": task.ID,
		})
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete удаляет задачу по ID
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	// Дочерние записи удаляются каскадом по внешним ключам
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		r.logger.Error("Failed to delete task", err, map[string]interface{}{
			"id": id,
		})
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// List возвращает список задач с фильтрацией
func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*domain.Task, error) {
	whereClause, args := r.buildWhereClause(filter)
	orderClause := r.buildOrderClause(filter)
	limitOffset := fmt.Sprintf("LIMIT %d OFFSET %d", filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT
			id, title, description, status, priority, category, project_id,
			created_by, assigned_to, progress, estimated_hours, due_date,
			start_date, completed_at, is_archived, custom_fields, created_at,
			updated_at
		FROM tasks
		%s
		%s
		%s
	`, whereClause, orderClause, limitOffset)

	tasks := []*domain.Task{}
	err := r.db.SelectContext(ctx, &tasks, query, args...)
	if err != nil {
		r.logger.Error("Failed to list tasks", err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Count возвращает количество задач с фильтрацией
func (r *TaskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int, error) {
	whereClause, args := r.buildWhereClause(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM tasks
		%s
	`, whereClause)

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		r.logger.Error("Failed to count tasks", err)
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	return count, nil
}

// UpdateStatus обновляет статус, прогресс и время завершения задачи
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, progress int, completedAt *time.Time) error {
	query := `
		UPDATE tasks
		SET status = $1, progress = $2, completed_at = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query, status, progress, completedAt, time.Now(), taskID)
	if err != nil {
		r.logger.Error("Failed to update task status", err, map[string]interface{}{
			"task_id": taskID,
			"status":  status,
		})
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// UpdateAssignee обновляет исполнителя задачи
func (r *TaskRepository) UpdateAssignee(ctx context.Context, taskID string, assigneeID *string) error {
	query := `UPDATE tasks SET assigned_to = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, assigneeID, time.Now(), taskID)
	if err != nil {
		r.logger.Error("Failed to update task assignee", err, map[string]interface{}{
			"task_id": taskID,
		})
		return fmt.Errorf("failed to update task assignee: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// UpdatePositions обновляет порядок задач внутри проекта
func (r *TaskRepository) UpdatePositions(ctx context.Context, projectID string, taskIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction", rbErr)
			}
		}
	}()

	for i, taskID := range taskIDs {
		if _, err = tx.ExecContext(
			ctx,
			"UPDATE tasks SET position = $1 WHERE id = $2 AND project_id = $3",
			i,
			taskID,
			projectID,
		); err != nil {
			return fmt.Errorf("failed to update task position: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetOverdueTasks возвращает просроченные незавершенные задачи
func (r *TaskRepository) GetOverdueTasks(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	query := `
		SELECT
			id, title, description, status, priority, category, project_id,
			created_by, assigned_to, progress, estimated_hours, due_date,
			start_date, completed_at, is_archived, custom_fields, created_at,
			updated_at
		FROM tasks
		WHERE due_date < $1
		  AND status NOT IN ($2, $3)
		  AND is_archived = FALSE
		ORDER BY due_date ASC
	`

	tasks := []*domain.Task{}
	err := r.db.SelectContext(ctx, &tasks, query, now, domain.TaskStatusCompleted, domain.TaskStatusCancelled)
	if err != nil {
		r.logger.Error("Failed to get overdue tasks", err)
		return nil, fmt.Errorf("failed to get overdue tasks: %w", err)
	}

	return tasks, nil
}

// AddSubtask добавляет подзадачу
func (r *TaskRepository) AddSubtask(ctx context.Context, subtask *domain.Subtask) error {
	query := `
		INSERT INTO task_subtasks (id, task_id, title, is_completed, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		subtask.ID,
		subtask.TaskID,
		subtask.Title,
		subtask.IsCompleted,
		subtask.CompletedAt,
		subtask.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add subtask", err, map[string]interface{}{
			"task_id": subtask.TaskID,
		})
		return fmt.Errorf("failed to add subtask: %w", err)
	}

	return nil
}

// UpdateSubtask обновляет подзадачу
func (r *TaskRepository) UpdateSubtask(ctx context.Context, subtask *domain.Subtask) error {
	query := `
		UPDATE task_subtasks
		SET title = $1, is_completed = $2, completed_at = $3
		WHERE id = $4 AND task_id = $5
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		subtask.Title,
		subtask.IsCompleted,
		subtask.CompletedAt,
		subtask.ID,
		subtask.TaskID,
	)
	if err != nil {
		r.logger.Error("Failed to update subtask", err, map[string]interface{}{
			"subtask_id": subtask.ID,
		})
		return fmt.Errorf("failed to update subtask: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteSubtask удаляет подзадачу
func (r *TaskRepository) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	query := `DELETE FROM task_subtasks WHERE id = $1 AND task_id = $2`

	result, err := r.db.ExecContext(ctx, query, subtaskID, taskID)
	if err != nil {
		r.logger.Error("Failed to delete subtask", err, map[string]interface{}{
			"subtask_id": subtaskID,
		})
		return fmt.Errorf("failed to delete subtask: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// GetSubtasks возвращает подзадачи задачи
func (r *TaskRepository) GetSubtasks(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	query := `
		SELECT id, task_id, title, is_completed, completed_at, created_at
		FROM task_subtasks
		WHERE task_id = $1
		ORDER BY created_at ASC
	`

	subtasks := []domain.Subtask{}
	err := r.db.SelectContext(ctx, &subtasks, query, taskID)
	if err != nil {
		r.logger.Error("Failed to get subtasks", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, fmt.Errorf("failed to get subtasks: %w", err)
	}

	return subtasks, nil
}

// GetLabels возвращает метки задачи
func (r *TaskRepository) GetLabels(ctx context.Context, taskID string) ([]string, error) {
	query := `SELECT label FROM task_labels WHERE task_id = $1 ORDER BY label`

	labels := []string{}
	err := r.db.SelectContext(ctx, &labels, query, taskID)
	if err != nil {
		r.logger.Error("Failed to get task labels", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, fmt.Errorf("failed to get task labels: %w", err)
	}

	return labels, nil
}

// UpdateLabels заменяет метки задачи
func (r *TaskRepository) UpdateLabels(ctx context.Context, taskID string, labels []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM task_labels WHERE task_id = $1", taskID); err != nil {
		return fmt.Errorf("failed to clear task labels: %w", err)
	}

	for _, label := range labels {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO task_labels (task_id, label) VALUES ($1, $2)",
			taskID,
			label,
		); err != nil {
			return fmt.Errorf("failed to add task label: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AddWatcher добавляет наблюдателя к задаче
func (r *TaskRepository) AddWatcher(ctx context.Context, taskID, userID string) error {
	query := `INSERT INTO task_watchers (task_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		r.logger.Error("Failed to add task watcher", err, map[string]interface{}{
			"task_id": taskID,
			"user_id": userID,
		})
		return fmt.Errorf("failed to add task watcher: %w", err)
	}

	return nil
}

// RemoveWatcher удаляет наблюдателя задачи
func (r *TaskRepository) RemoveWatcher(ctx context.Context, taskID, userID string) error {
	query := `DELETE FROM task_watchers WHERE task_id = $1 AND user_id = $2`

	_, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		r.logger.Error("Failed to remove task watcher", err, map[string]interface{}{
			"task_id": taskID,
			"user_id": userID,
		})
		return fmt.Errorf("failed to remove task watcher: %w", err)
	}

	return nil
}

// GetWatchers возвращает наблюдателей задачи
func (r *TaskRepository) GetWatchers(ctx context.Context, taskID string) ([]string, error) {
	query := `SELECT user_id FROM task_watchers WHERE task_id = $1`

	watchers := []string{}
	err := r.db.SelectContext(ctx, &watchers, query, taskID)
	if err != nil {
		r.logger.Error("Failed to get task watchers", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, fmt.Errorf("failed to get task watchers: %w", err)
	}

	return watchers, nil
}

// GetDependencies возвращает связи задачи с другими задачами
func (r *TaskRepository) GetDependencies(ctx context.Context, taskID string) ([]domain.TaskDependency, error) {
	query := `SELECT depends_on_id, type FROM task_dependencies WHERE task_id = $1`

	deps := []domain.TaskDependency{}
	err := r.db.SelectContext(ctx, &deps, query, taskID)
	if err != nil {
		r.logger.Error("Failed to get task dependencies", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, fmt.Errorf("failed to get task dependencies: %w", err)
	}

	return deps, nil
}

// UpdateDependencies заменяет связи задачи
func (r *TaskRepository) UpdateDependencies(ctx context.Context, taskID string, deps []domain.TaskDependency) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM task_dependencies WHERE task_id = $1", taskID); err != nil {
		return fmt.Errorf("failed to clear task dependencies: %w", err)
	}

	for _, dep := range deps {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO task_dependencies (task_id, depends_on_id, type) VALUES ($1, $2, $3)",
			taskID,
			dep.DependsOnID,
			dep.Type,
		); err != nil {
			return fmt.Errorf("failed to add task dependency: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AddTimeEntry добавляет запись учета времени
func (r *TaskRepository) AddTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	query := `
		INSERT INTO task_time_entries (id, task_id, user_id, minutes, description, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.TaskID,
		entry.UserID,
		entry.Minutes,
		entry.Description,
		entry.LoggedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add time entry", err, map[string]interface{}{
			"task_id": entry.TaskID,
		})
		return fmt.Errorf("failed to add time entry: %w", err)
	}

	return nil
}

// GetTimeEntries возвращает записи учета времени по задаче
func (r *TaskRepository) GetTimeEntries(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	query := `
		SELECT id, task_id, user_id, minutes, description, logged_at
		FROM task_time_entries
		WHERE task_id = $1
		ORDER BY logged_at DESC
	`

	entries := []domain.TimeEntry{}
	err := r.db.SelectContext(ctx, &entries, query, taskID)
	if err != nil {
		r.logger.Error("Failed to get time entries", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, fmt.Errorf("failed to get time entries: %w", err)
	}

	return entries, nil
}

// AddAttachment добавляет вложение к задаче
func (r *TaskRepository) AddAttachment(ctx context.Context, attachment *domain.Attachment) error {
	query := `
		INSERT INTO task_attachments (id, task_id, file_name, file_url, file_size, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		attachment.ID,
		attachment.TaskID,
		attachment.FileName,
		attachment.FileURL,
		attachment.FileSize,
		attachment.UploadedBy,
		attachment.UploadedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add attachment", err, map[string]interface{}{
			"task_id": attachment.TaskID,
		})
		return fmt.Errorf("failed to add attachment: %w", err)
	}

	return nil
}

// DeleteAttachment удаляет вложение задачи
func (r *TaskRepository) DeleteAttachment(ctx context.Context, taskID, attachmentID string) error {
	result, err := r.db.ExecContext(
		ctx,
		"DELETE FROM task_attachments WHERE id = $1 AND task_id = $2",
		attachmentID,
		taskID,
	)
	if err != nil {
		r.logger.Error("Failed to delete attachment", err, map[string]interface{}{
			"task_id": taskID,
		})
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// GetAttachments возвращает вложения задачи
func (r *TaskRepository) GetAttachments(ctx context.Context, taskID string) ([]domain.Attachment, error) {
	query := `
		SELECT id, task_id, file_name, file_url, file_size, uploaded_by, uploaded_at
		FROM task_attachments
		WHERE task_id = $1
		ORDER BY uploaded_at DESC
	`

	attachments := []domain.Attachment{}
	err := r.db.SelectContext(ctx, &attachments, query, taskID)
	if err != nil {
		r.logger.Error("Failed to get attachments", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, fmt.Errorf("failed to get attachments: %w", err)
	}

	return attachments, nil
}

// CountByProject возвращает общее и завершенное количество задач проекта
func (r *TaskRepository) CountByProject(ctx context.Context, projectID string) (int, int, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = $2) AS completed
		FROM tasks
		WHERE project_id = $1 AND is_archived = FALSE
	`

	var counts struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
	}
	err := r.db.GetContext(ctx, &counts, query, projectID, domain.TaskStatusCompleted)
	if err != nil {
		r.logger.Error("Failed to count project tasks", err, map[string]interface{}{
			"project_id": projectID,
		})
		return 0, 0, fmt.Errorf("failed to count project tasks: %w", err)
	}

	return counts.Total, counts.Completed, nil
}

// ProjectIDsWithTasks возвращает ID проектов, в которых есть задачи
func (r *TaskRepository) ProjectIDsWithTasks(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT project_id FROM tasks`

	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, query)
	if err != nil {
		r.logger.Error("Failed to get project IDs with tasks", err)
		return nil, fmt.Errorf("failed to get project IDs with tasks: %w", err)
	}

	return ids, nil
}

func (r *TaskRepository) buildWhereClause(filter repository.TaskFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Scope != nil {
		if cond := scopeCondition(*filter.Scope, "project_id", &args, &argIndex); cond != "" {
			conditions = append(conditions, cond)
		}
	}

	if len(filter.IDs) > 0 {
		placeholders := make([]string, len(filter.IDs))
		for i, id := range filter.IDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, id)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argIndex))
		args = append(args, *filter.ProjectID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argIndex))
		args = append(args, *filter.Priority)
		argIndex++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argIndex))
		args = append(args, *filter.AssigneeID)
		argIndex++
	}

	if filter.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", argIndex))
		args = append(args, *filter.CreatedBy)
		argIndex++
	}

	if filter.WatcherID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT task_id FROM task_watchers WHERE user_id = $%d)", argIndex))
		args = append(args, *filter.WatcherID)
		argIndex++
	}

	if filter.DueBefore != nil {
		conditions = append(conditions, fmt.Sprintf("due_date <= $%d", argIndex))
		args = append(args, *filter.DueBefore)
		argIndex++
	}

	if filter.DueAfter != nil {
		conditions = append(conditions, fmt.Sprintf("due_date >= $%d", argIndex))
		args = append(args, *filter.DueAfter)
		argIndex++
	}

	if len(filter.Labels) > 0 {
		placeholders := make([]string, len(filter.Labels))
		for i, label := range filter.Labels {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, label)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT task_id FROM task_labels WHERE label IN (%s))",
			strings.Join(placeholders, ", "),
		))
	}

	if filter.SearchText != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex+1))
		args = append(args, "%"+*filter.SearchText+"%", "%"+*filter.SearchText+"%")
		argIndex += 2
	}

	if filter.IsOverdue != nil && *filter.IsOverdue {
		conditions = append(conditions, fmt.Sprintf(
			"due_date < NOW() AND status <> $%d", argIndex))
		args = append(args, domain.TaskStatusCompleted)
		argIndex++
	}

	if filter.IsArchived != nil {
		conditions = append(conditions, fmt.Sprintf("is_archived = $%d", argIndex))
		args = append(args, *filter.IsArchived)
		argIndex++
	}

	if len(conditions) > 0 {
		return "WHERE " + strings.Join(conditions, " AND "), args
	}
	return "", args
}

func (r *TaskRepository) buildOrderClause(filter repository.TaskFilter) string {
	if filter.OrderBy != nil {
		direction := "ASC"
		if filter.OrderDir != nil && strings.ToUpper(*filter.OrderDir) == "DESC" {
			direction = "DESC"
		}

		// Проверяем, что поле сортировки допустимо
		allowedFields := map[string]bool{
			"title":      true,
			"status":     true,
			"priority":   true,
			"category":   true,
			"progress":   true,
			"due_date":   true,
			"position":   true,
			"created_at": true,
			"updated_at": true,
		}
		if allowedFields[*filter.OrderBy] {
			return fmt.Sprintf("ORDER BY %s %s", *filter.OrderBy, direction)
		}
	}
	return "ORDER BY created_at DESC"
}
