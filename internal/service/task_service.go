package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/messaging"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/internal/repository/cache"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Ошибки задачного сервиса
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrSubtaskNotFound     = errors.New("subtask not found")
	ErrSelfDependency      = errors.New("task cannot depend on itself")
	ErrCyclicDependency    = errors.New("dependency would create a cycle")
	ErrForeignDependency   = errors.New("dependency must belong to the same project")
	ErrAssigneeNotInvolved = errors.New("assignee must be a project member")
)

// TaskService представляет бизнес-логику для работы с задачами
type TaskService struct {
	repo        repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	resolver    *access.Resolver
	producer    *messaging.KafkaProducer
	cacheRepo   *cache.RedisRepository
	logger      logger.Logger
}

// NewTaskService создает новый экземпляр TaskService
func NewTaskService(repo repository.TaskRepository, projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository, resolver *access.Resolver, producer *messaging.KafkaProducer,
	cacheRepo *cache.RedisRepository, logger logger.Logger) *TaskService {
	return &TaskService{
		repo:        repo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		resolver:    resolver,
		producer:    producer,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// Create создает новую задачу
func (s *TaskService) Create(ctx context.Context, actor *domain.User, req domain.TaskCreateRequest) (*domain.TaskResponse, error) {
	project, err := s.getProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanViewProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	if req.AssignedTo != nil && !project.HasMember(*req.AssignedTo) {
		return nil, ErrAssigneeNotInvolved
	}

	now := time.Now()
	task := &domain.Task{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.TaskStatusTodo,
		Priority:       domain.TaskPriorityMedium,
		Category:       domain.TaskCategoryOther,
		ProjectID:      req.ProjectID,
		CreatedBy:      actor.ID,
		AssignedTo:     req.AssignedTo,
		EstimatedHours: req.EstimatedHours,
		DueDate:        req.DueDate,
		StartDate:      req.StartDate,
		Labels:         req.Labels,
		Watchers:       req.Watchers,
		Dependencies:   normalizeDependencies(req.Dependencies),
		CustomFields:   req.CustomFields,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Status != nil {
		task.ApplyStatus(*req.Status, now)
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Category != nil {
		task.Category = *req.Category
	}

	if err := s.checkDependencies(ctx, task, task.Dependencies); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error("Failed to create task", err, map[string]interface{}{
			"project_id": req.ProjectID,
		})
		return nil, err
	}

	s.refreshProjectProgress(ctx, task.ProjectID)
	s.publishTaskEvent(ctx, messaging.EventTypeTaskCreated, task, actor.ID, nil)

	if task.AssignedTo != nil && *task.AssignedTo != actor.ID {
		s.notify(ctx, []string{*task.AssignedTo}, domain.NotificationTypeTaskAssigned,
			"Task assigned", task.Title, task.ID, actor.ID)
	}

	s.logger.Info("Task created", map[string]interface{}{
		"task_id":    task.ID,
		"project_id": task.ProjectID,
	})

	return s.toResponse(ctx, task)
}

// GetByID возвращает задачу по ID с проверкой доступа
func (s *TaskService) GetByID(ctx context.Context, actor *domain.User, id string) (*domain.TaskResponse, error) {
	task, project, err := s.getTaskWithProject(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanViewProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	return s.toResponse(ctx, task)
}

// Update обновляет задачу. Статус и прогресс согласуются между собой:
// явный статус completed доводит прогресс до 100, прогресс 100 завершает
// задачу, промежуточный прогресс выводит задачу из todo.
func (s *TaskService) Update(ctx context.Context, actor *domain.User, id string, req domain.TaskUpdateRequest) (*domain.TaskResponse, error) {
	task, project, err := s.getTaskWithProject(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanEditTask(ctx, actor, task, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	changes := map[string]interface{}{}
	previousAssignee := task.AssignedTo
	previousStatus := task.Status

	if req.Title != nil {
		task.Title = *req.Title
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
		changes["description"] = true
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
		changes["priority"] = string(*req.Priority)
	}
	if req.Category != nil {
		task.Category = *req.Category
		changes["category"] = string(*req.Category)
	}
	if req.AssignedTo != nil {
		if !project.HasMember(*req.AssignedTo) {
			return nil, ErrAssigneeNotInvolved
		}
		task.AssignedTo = req.AssignedTo
		changes["assigned_to"] = *req.AssignedTo
	}
	if req.EstimatedHours != nil {
		task.EstimatedHours = req.EstimatedHours
		changes["estimated_hours"] = *req.EstimatedHours
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
		changes["due_date"] = req.DueDate.Format(time.RFC3339)
	}
	if req.StartDate != nil {
		task.StartDate = req.StartDate
	}
	if req.IsArchived != nil {
		task.IsArchived = *req.IsArchived
		changes["is_archived"] = *req.IsArchived
	}
	if req.CustomFields != nil {
		task.CustomFields = *req.CustomFields
	}

	// Статус применяется до прогресса: явный прогресс в том же
	// запросе уточняет результат
	if req.Status != nil {
		task.ApplyStatus(*req.Status, now)
		changes["status"] = string(task.Status)
	}
	if req.Progress != nil {
		task.ApplyProgress(*req.Progress, now)
		changes["progress"] = task.Progress
	}

	if req.Dependencies != nil {
		deps := normalizeDependencies(*req.Dependencies)
		if err := s.checkDependencies(ctx, task, deps); err != nil {
			return nil, err
		}
		task.Dependencies = deps
		if err := s.repo.UpdateDependencies(ctx, id, deps); err != nil {
			return nil, err
		}
	}
	if req.Labels != nil {
		task.Labels = *req.Labels
		if err := s.repo.UpdateLabels(ctx, id, *req.Labels); err != nil {
			return nil, err
		}
	}

	task.UpdatedAt = now

	if err := s.repo.Update(ctx, task); err != nil {
		s.logger.Error("Failed to update task", err, map[string]interface{}{
			"task_id": id,
		})
		return nil, err
	}

	s.invalidateTask(ctx, id)
	s.publishTaskEvent(ctx, messaging.EventTypeTaskUpdated, task, actor.ID, changes)

	if req.AssignedTo != nil && (previousAssignee == nil || *previousAssignee != *req.AssignedTo) &&
		*req.AssignedTo != actor.ID {
		s.notify(ctx, []string{*req.AssignedTo}, domain.NotificationTypeTaskAssigned,
			"Task assigned", task.Title, task.ID, actor.ID)
	}

	if task.Status == domain.TaskStatusCompleted && previousStatus != domain.TaskStatusCompleted {
		s.notifyCompletion(ctx, task, actor.ID)
		s.refreshProjectProgress(ctx, task.ProjectID)
	} else if previousStatus == domain.TaskStatusCompleted && task.Status != domain.TaskStatusCompleted {
		s.refreshProjectProgress(ctx, task.ProjectID)
	}

	return s.toResponse(ctx, task)
}

// UpdateStatus изменяет статус задачи
func (s *TaskService) UpdateStatus(ctx context.Context, actor *domain.User, id string, status domain.TaskStatus) (*domain.TaskResponse, error) {
	return s.Update(ctx, actor, id, domain.TaskUpdateRequest{Status: &status})
}

// Delete удаляет задачу
func (s *TaskService) Delete(ctx context.Context, actor *domain.User, id string) error {
	task, project, err := s.getTaskWithProject(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := s.resolver.CanDeleteTask(ctx, actor, task, project)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete task", err, map[string]interface{}{
			"task_id": id,
		})
		return err
	}

	s.invalidateTask(ctx, id)
	s.refreshProjectProgress(ctx, task.ProjectID)
	s.publishTaskEvent(ctx, messaging.EventTypeTaskDeleted, task, actor.ID, nil)

	return nil
}

// List возвращает задачи, доступные пользователю
func (s *TaskService) List(ctx context.Context, actor *domain.User, opts domain.TaskFilterOptions) (*domain.PagedResponse, error) {
	scope, err := s.resolver.ResolveScope(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.TaskFilter{
		Scope:      &scope,
		ProjectID:  opts.ProjectID,
		Status:     opts.Status,
		Priority:   opts.Priority,
		Category:   opts.Category,
		AssigneeID: opts.AssignedTo,
		CreatedBy:  opts.CreatedBy,
		DueBefore:  opts.DueBefore,
		DueAfter:   opts.DueAfter,
		Labels:     opts.Labels,
		SearchText: opts.SearchText,
		IsOverdue:  opts.IsOverdue,
		IsArchived: opts.IsArchived,
		OrderBy:    opts.SortBy,
		OrderDir:   opts.SortOrder,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list tasks", err)
		return nil, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count tasks", err)
		return nil, err
	}

	responses := make([]domain.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp, err := s.toResponse(ctx, task)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	response := domain.NewPagedResponse(responses, total, page, pageSize)
	return &response, nil
}

// Reorder задает новый порядок задач внутри проекта
func (s *TaskService) Reorder(ctx context.Context, actor *domain.User, projectID string, taskIDs []string) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	allowed, err := s.resolver.CanViewProject(ctx, actor, project)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrForbidden
	}

	if err := s.repo.UpdatePositions(ctx, projectID, taskIDs); err != nil {
		s.logger.Error("Failed to reorder tasks", err, map[string]interface{}{
			"project_id": projectID,
		})
		return err
	}
	return nil
}

// AddSubtask добавляет подзадачу и пересчитывает прогресс родителя
func (s *TaskService) AddSubtask(ctx context.Context, actor *domain.User, taskID string, req domain.SubtaskCreateRequest) (*domain.TaskResponse, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanEditTask(ctx, actor, task, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	subtask := &domain.Subtask{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Title:     req.Title,
		CreatedAt: time.Now(),
	}

	if err := s.repo.AddSubtask(ctx, subtask); err != nil {
		s.logger.Error("Failed to add subtask", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, err
	}

	task.Subtasks = append(task.Subtasks, *subtask)
	return s.recalculateAndSave(ctx, actor, task)
}

// UpdateSubtask обновляет подзадачу. Переключение is_completed
// пересчитывает прогресс родительской задачи.
func (s *TaskService) UpdateSubtask(ctx context.Context, actor *domain.User, taskID, subtaskID string, req domain.SubtaskUpdateRequest) (*domain.TaskResponse, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanEditTask(ctx, actor, task, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	idx := -1
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrSubtaskNotFound
	}

	subtask := &task.Subtasks[idx]
	if req.Title != nil {
		subtask.Title = *req.Title
	}
	if req.IsCompleted != nil && subtask.IsCompleted != *req.IsCompleted {
		subtask.IsCompleted = *req.IsCompleted
		if *req.IsCompleted {
			now := time.Now()
			subtask.CompletedAt = &now
		} else {
			subtask.CompletedAt = nil
		}
	}

	if err := s.repo.UpdateSubtask(ctx, subtask); err != nil {
		s.logger.Error("Failed to update subtask", err, map[string]interface{}{
			"task_id":    taskID,
			"subtask_id": subtaskID,
		})
		return nil, err
	}

	return s.recalculateAndSave(ctx, actor, task)
}

// DeleteSubtask удаляет подзадачу и пересчитывает прогресс родителя
func (s *TaskService) DeleteSubtask(ctx context.Context, actor *domain.User, taskID, subtaskID string) (*domain.TaskResponse, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanEditTask(ctx, actor, task, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	found := false
	remaining := task.Subtasks[:0]
	for _, st := range task.Subtasks {
		if st.ID == subtaskID {
			found = true
			continue
		}
		remaining = append(remaining, st)
	}
	if !found {
		return nil, ErrSubtaskNotFound
	}

	if err := s.repo.DeleteSubtask(ctx, taskID, subtaskID); err != nil {
		s.logger.Error("Failed to delete subtask", err, map[string]interface{}{
			"task_id":    taskID,
			"subtask_id": subtaskID,
		})
		return nil, err
	}

	task.Subtasks = remaining
	return s.recalculateAndSave(ctx, actor, task)
}

// LogTime добавляет запись учета времени по задаче
func (s *TaskService) LogTime(ctx context.Context, actor *domain.User, taskID string, req domain.TimeEntryRequest) (*domain.TaskResponse, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanEditTask(ctx, actor, task, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	entry := &domain.TimeEntry{
		ID:          uuid.New().String(),
		TaskID:      taskID,
		UserID:      actor.ID,
		Minutes:     req.Minutes,
		Description: req.Description,
		LoggedAt:    time.Now(),
	}

	if err := s.repo.AddTimeEntry(ctx, entry); err != nil {
		s.logger.Error("Failed to add time entry", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, err
	}

	task.TimeEntries = append(task.TimeEntries, *entry)
	s.invalidateTask(ctx, taskID)
	return s.toResponse(ctx, task)
}

// AddAttachment регистрирует метаданные загруженного файла
func (s *TaskService) AddAttachment(ctx context.Context, actor *domain.User, taskID string, req domain.AttachmentCreateRequest) (*domain.TaskResponse, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanEditTask(ctx, actor, task, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	attachment := &domain.Attachment{
		ID:         uuid.New().String(),
		TaskID:     taskID,
		FileName:   req.FileName,
		FileURL:    req.FileURL,
		FileSize:   req.FileSize,
		UploadedBy: actor.ID,
		UploadedAt: time.Now(),
	}

	if err := s.repo.AddAttachment(ctx, attachment); err != nil {
		s.logger.Error("Failed to add attachment", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, err
	}

	task.Attachments = append(task.Attachments, *attachment)
	s.invalidateTask(ctx, taskID)
	return s.toResponse(ctx, task)
}

// RemoveAttachment удаляет вложение задачи
func (s *TaskService) RemoveAttachment(ctx context.Context, actor *domain.User, taskID, attachmentID string) error {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return err
	}

	allowed, err := s.resolver.CanEditTask(ctx, actor, task, project)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrForbidden
	}

	if err := s.repo.DeleteAttachment(ctx, taskID, attachmentID); err != nil {
		return err
	}

	s.invalidateTask(ctx, taskID)
	return nil
}

// AddWatcher подписывает пользователя на задачу
func (s *TaskService) AddWatcher(ctx context.Context, actor *domain.User, taskID, userID string) error {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return err
	}

	allowed, err := s.resolver.CanViewProject(ctx, actor, project)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrForbidden
	}

	if err := s.repo.AddWatcher(ctx, taskID, userID); err != nil {
		s.logger.Error("Failed to add watcher", err, map[string]interface{}{
			"task_id": task.ID,
			"user_id": userID,
		})
		return err
	}

	s.invalidateTask(ctx, taskID)
	return nil
}

// RemoveWatcher отписывает пользователя от задачи
func (s *TaskService) RemoveWatcher(ctx context.Context, actor *domain.User, taskID, userID string) error {
	_, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return err
	}

	if actor.ID != userID {
		allowed, err := s.resolver.CanManageProject(ctx, actor, project)
		if err != nil {
			return err
		}
		if !allowed {
			return domain.ErrForbidden
		}
	}

	if err := s.repo.RemoveWatcher(ctx, taskID, userID); err != nil {
		return err
	}

	s.invalidateTask(ctx, taskID)
	return nil
}

// recalculateAndSave пересчитывает прогресс задачи по подзадачам
// и сохраняет результат
func (s *TaskService) recalculateAndSave(ctx context.Context, actor *domain.User, task *domain.Task) (*domain.TaskResponse, error) {
	previousStatus := task.Status
	now := time.Now()
	task.RecalculateProgress(now)
	task.UpdatedAt = now

	if err := s.repo.UpdateStatus(ctx, task.ID, task.Status, task.Progress, task.CompletedAt); err != nil {
		s.logger.Error("Failed to save recalculated progress", err, map[string]interface{}{
			"task_id": task.ID,
		})
		return nil, err
	}

	s.invalidateTask(ctx, task.ID)
	s.publishTaskEvent(ctx, messaging.EventTypeTaskUpdated, task, actor.ID, map[string]interface{}{
		"progress": task.Progress,
		"status":   string(task.Status),
	})

	if task.Status == domain.TaskStatusCompleted && previousStatus != domain.TaskStatusCompleted {
		s.notifyCompletion(ctx, task, actor.ID)
		s.refreshProjectProgress(ctx, task.ProjectID)
	}

	return s.toResponse(ctx, task)
}

// normalizeDependencies подставляет тип связи по умолчанию
func normalizeDependencies(deps []domain.TaskDependency) []domain.TaskDependency {
	for i := range deps {
		if deps[i].Type == "" {
			deps[i].Type = domain.DependencyBlocks
		}
	}
	return deps
}

// checkDependencies проверяет связи задачи: та же принадлежность
// к проекту, без самозависимости и без циклов
func (s *TaskService) checkDependencies(ctx context.Context, task *domain.Task, deps []domain.TaskDependency) error {
	for _, link := range deps {
		if link.DependsOnID == task.ID {
			return ErrSelfDependency
		}

		dep, err := s.repo.GetByID(ctx, link.DependsOnID)
		if err != nil {
			return err
		}
		if dep == nil {
			return ErrTaskNotFound
		}
		if dep.ProjectID != task.ProjectID {
			return ErrForeignDependency
		}

		reaches, err := s.dependsOnTransitively(ctx, link.DependsOnID, task.ID)
		if err != nil {
			return err
		}
		if reaches {
			return ErrCyclicDependency
		}
	}
	return nil
}

// dependsOnTransitively проверяет, достижима ли задача target
// из задачи from по графу зависимостей
func (s *TaskService) dependsOnTransitively(ctx context.Context, from, target string) (bool, error) {
	visited := map[string]bool{}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == target {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		deps, err := s.repo.GetDependencies(ctx, current)
		if err != nil {
			return false, err
		}
		for _, dep := range deps {
			queue = append(queue, dep.DependsOnID)
		}
	}
	return false, nil
}

// getTaskWithProject загружает задачу вместе с ее проектом.
// Отсутствие задачи сообщается раньше отказа в доступе.
func (s *TaskService) getTaskWithProject(ctx context.Context, id string) (*domain.Task, *domain.Project, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get task", err, map[string]interface{}{
			"task_id": id,
		})
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, ErrTaskNotFound
	}

	project, err := s.getProject(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return task, project, nil
}

func (s *TaskService) getProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// refreshProjectProgress пересчитывает прогресс проекта после изменения
// состава или статусов его задач
func (s *TaskService) refreshProjectProgress(ctx context.Context, projectID string) {
	total, completed, err := s.repo.CountByProject(ctx, projectID)
	if err != nil {
		s.logger.Warn("Failed to count project tasks", map[string]interface{}{
			"project_id": projectID,
			"error":      err.Error(),
		})
		return
	}

	progress := domain.CalculateProgress(total, completed)
	if err := s.projectRepo.UpdateProgress(ctx, projectID, progress); err != nil {
		s.logger.Warn("Failed to update project progress", map[string]interface{}{
			"project_id": projectID,
			"error":      err.Error(),
		})
	}

	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.InvalidateProject(ctx, projectID); err != nil {
		s.logger.Warn("Failed to invalidate project cache", map[string]interface{}{
			"project_id": projectID,
			"error":      err.Error(),
		})
	}
}

// notifyCompletion уведомляет создателя и наблюдателей о завершении задачи
func (s *TaskService) notifyCompletion(ctx context.Context, task *domain.Task, actorID string) {
	recipients := map[string]bool{}
	if task.CreatedBy != actorID {
		recipients[task.CreatedBy] = true
	}
	for _, watcherID := range task.Watchers {
		if watcherID != actorID {
			recipients[watcherID] = true
		}
	}
	if len(recipients) == 0 {
		return
	}

	userIDs := make([]string, 0, len(recipients))
	for id := range recipients {
		userIDs = append(userIDs, id)
	}

	s.notify(ctx, userIDs, domain.NotificationTypeTaskCompleted, "Task completed", task.Title, task.ID, actorID)
}

func (s *TaskService) notify(ctx context.Context, userIDs []string, notifType domain.NotificationType,
	title, message, taskID, actorID string) {
	entityType := "task"
	event := &messaging.NotificationEvent{
		Type:             messaging.EventTypeNotification,
		UserIDs:          userIDs,
		NotificationType: string(notifType),
		Title:            title,
		Message:          message,
		EntityID:         &taskID,
		EntityType:       &entityType,
		ActorID:          &actorID,
		OccurredAt:       time.Now(),
	}
	if err := s.producer.PublishNotification(ctx, event); err != nil {
		s.logger.Warn("Failed to publish notification event", map[string]interface{}{
			"type":  string(notifType),
			"error": err.Error(),
		})
	}
}

func (s *TaskService) publishTaskEvent(ctx context.Context, eventType string, task *domain.Task, actorID string, changes map[string]interface{}) {
	event := &messaging.TaskEvent{
		Type:       eventType,
		TaskID:     task.ID,
		Title:      task.Title,
		ProjectID:  task.ProjectID,
		Status:     string(task.Status),
		Priority:   string(task.Priority),
		AssignedTo: task.AssignedTo,
		ActorID:    actorID,
		Changes:    changes,
		OccurredAt: time.Now(),
	}
	if err := s.producer.PublishTaskEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish task event", map[string]interface{}{
			"task_id": task.ID,
			"type":    eventType,
			"error":   err.Error(),
		})
	}
}

func (s *TaskService) invalidateTask(ctx context.Context, id string) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.InvalidateTask(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate task cache", map[string]interface{}{
			"task_id": id,
			"error":   err.Error(),
		})
	}
}

// toResponse собирает TaskResponse с краткими карточками участников
func (s *TaskService) toResponse(ctx context.Context, task *domain.Task) (*domain.TaskResponse, error) {
	ids := []string{task.CreatedBy}
	if task.AssignedTo != nil {
		ids = append(ids, *task.AssignedTo)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var createdBy, assignedTo *domain.UserBrief
	for _, u := range users {
		brief := u.ToBrief()
		if u.ID == task.CreatedBy {
			createdBy = &brief
		}
		if task.AssignedTo != nil && u.ID == *task.AssignedTo {
			assigned := u.ToBrief()
			assignedTo = &assigned
		}
	}

	response := task.ToResponse(createdBy, assignedTo)
	return &response, nil
}
