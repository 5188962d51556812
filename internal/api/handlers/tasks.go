package handlers

import (
	"net/http"
	"time"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// TaskHandler обрабатывает запросы для работы с задачами
type TaskHandler struct {
	BaseHandler
	taskService *service.TaskService
}

// NewTaskHandler создает новый экземпляр TaskHandler
func NewTaskHandler(taskService *service.TaskService, jwtManager *auth.JWTManager, logger logger.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(logger, jwtManager),
		taskService: taskService,
	}
}

// Create создает новую задачу
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	var req domain.TaskCreateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.Create(r.Context(), actor, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithCreated(w, r, task)
}

// List возвращает задачи с фильтрацией
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	page, pageSize := h.GetPaginationParams(r)
	opts := domain.TaskFilterOptions{
		Page:     page,
		PageSize: pageSize,
	}

	query := r.URL.Query()
	if projectID := query.Get("project_id"); projectID != "" {
		opts.ProjectID = &projectID
	}
	if statusParam := query.Get("status"); statusParam != "" {
		status := domain.TaskStatus(statusParam)
		opts.Status = &status
	}
	if priorityParam := query.Get("priority"); priorityParam != "" {
		priority := domain.TaskPriority(priorityParam)
		opts.Priority = &priority
	}
	if categoryParam := query.Get("category"); categoryParam != "" {
		category := domain.TaskCategory(categoryParam)
		opts.Category = &category
	}
	if assignedTo := query.Get("assigned_to"); assignedTo != "" {
		opts.AssignedTo = &assignedTo
	}
	if createdBy := query.Get("created_by"); createdBy != "" {
		opts.CreatedBy = &createdBy
	}
	if search := query.Get("search"); search != "" {
		opts.SearchText = &search
	}
	if dueBefore := query.Get("due_before"); dueBefore != "" {
		if parsed, err := time.Parse(time.RFC3339, dueBefore); err == nil {
			opts.DueBefore = &parsed
		}
	}
	if dueAfter := query.Get("due_after"); dueAfter != "" {
		if parsed, err := time.Parse(time.RFC3339, dueAfter); err == nil {
			opts.DueAfter = &parsed
		}
	}
	if overdueParam := query.Get("is_overdue"); overdueParam != "" {
		isOverdue := overdueParam == "true"
		opts.IsOverdue = &isOverdue
	}
	if archivedParam := query.Get("is_archived"); archivedParam != "" {
		isArchived := archivedParam == "true"
		opts.IsArchived = &isArchived
	}
	if labels, ok := query["label"]; ok {
		opts.Labels = labels
	}
	if sortBy := query.Get("sort_by"); sortBy != "" {
		opts.SortBy = &sortBy
	}
	if sortOrder := query.Get("sort_order"); sortOrder != "" {
		opts.SortOrder = &sortOrder
	}

	response, err := h.taskService.List(r.Context(), actor, opts)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithPagination(w, r, response)
}

// Get возвращает задачу по ID
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	task, err := h.taskService.GetByID(r.Context(), actor, id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, task)
}

// Update обновляет задачу
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	var req domain.TaskUpdateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.Update(r.Context(), actor, id, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, task)
}

// UpdateStatus изменяет статус задачи
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	var req struct {
		Status domain.TaskStatus `json:"status" validate:"required,task_status"`
	}
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, task)
}

// Delete удаляет задачу
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	if err := h.taskService.Delete(r.Context(), actor, id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.Respond(w, r, http.StatusNoContent, nil)
}

// Reorder задает порядок задач внутри проекта
func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	var req struct {
		ProjectID string   `json:"project_id" validate:"required,uuid"`
		TaskIDs   []string `json:"task_ids" validate:"required,min=1"`
	}
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.taskService.Reorder(r.Context(), actor, req.ProjectID, req.TaskIDs); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, map[string]string{"message": "tasks reordered"})
}

// AddSubtask добавляет подзадачу
func (h *TaskHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	var req domain.SubtaskCreateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.AddSubtask(r.Context(), actor, id, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithCreated(w, r, task)
}

// UpdateSubtask обновляет подзадачу
func (h *TaskHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")
	subtaskID := h.GetURLParam(r, "subtaskID")

	var req domain.SubtaskUpdateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateSubtask(r.Context(), actor, id, subtaskID, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, task)
}

// DeleteSubtask удаляет подзадачу
func (h *TaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")
	subtaskID := h.GetURLParam(r, "subtaskID")

	task, err := h.taskService.DeleteSubtask(r.Context(), actor, id, subtaskID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, task)
}

// LogTime добавляет запись учета времени
func (h *TaskHandler) LogTime(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	var req domain.TimeEntryRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.LogTime(r.Context(), actor, id, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithCreated(w, r, task)
}

// AddAttachment регистрирует метаданные загруженного файла
func (h *TaskHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	var req domain.AttachmentCreateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.AddAttachment(r.Context(), actor, id, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithCreated(w, r, task)
}

// RemoveAttachment удаляет вложение задачи
func (h *TaskHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")
	attachmentID := h.GetURLParam(r, "attachmentID")

	if err := h.taskService.RemoveAttachment(r.Context(), actor, id, attachmentID); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, nil)
}

// Watch подписывает текущего пользователя на задачу
func (h *TaskHandler) Watch(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	if err := h.taskService.AddWatcher(r.Context(), actor, id, actor.ID); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, map[string]string{"message": "watching"})
}

// Unwatch отписывает текущего пользователя от задачи
func (h *TaskHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	if err := h.taskService.RemoveWatcher(r.Context(), actor, id, actor.ID); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.Respond(w, r, http.StatusNoContent, nil)
}
