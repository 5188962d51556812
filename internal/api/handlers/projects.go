package handlers

import (
	"net/http"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// ProjectHandler обрабатывает запросы для работы с проектами
type ProjectHandler struct {
	BaseHandler
	projectService *service.ProjectService
}

// NewProjectHandler создает новый экземпляр ProjectHandler
func NewProjectHandler(projectService *service.ProjectService, jwtManager *auth.JWTManager, logger logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:    NewBaseHandler(logger, jwtManager),
		projectService: projectService,
	}
}

// Create создает новый проект
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	var req domain.ProjectCreateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), actor, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithCreated(w, r, project)
}

// List возвращает проекты, доступные пользователю
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	page, pageSize := h.GetPaginationParams(r)
	opts := domain.ProjectFilterOptions{
		Page:     page,
		PageSize: pageSize,
	}

	query := r.URL.Query()
	if statusParam := query.Get("status"); statusParam != "" {
		status := domain.ProjectStatus(statusParam)
		opts.Status = &status
	}
	if priorityParam := query.Get("priority"); priorityParam != "" {
		priority := domain.ProjectPriority(priorityParam)
		opts.Priority = &priority
	}
	if ownerID := query.Get("owner_id"); ownerID != "" {
		opts.OwnerID = &ownerID
	}
	if search := query.Get("search"); search != "" {
		opts.SearchText = &search
	}
	if archived := query.Get("is_archived"); archived != "" {
		isArchived := archived == "true"
		opts.IsArchived = &isArchived
	}
	if tags, ok := query["tag"]; ok {
		opts.Tags = tags
	}
	if sortBy := query.Get("sort_by"); sortBy != "" {
		opts.SortBy = &sortBy
	}
	if sortOrder := query.Get("sort_order"); sortOrder != "" {
		opts.SortOrder = &sortOrder
	}

	response, err := h.projectService.List(r.Context(), actor, opts)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithPagination(w, r, response)
}

// Get возвращает проект по ID
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	project, err := h.projectService.GetByID(r.Context(), actor, id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, project)
}

// Update обновляет проект
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	var req domain.ProjectUpdateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), actor, id, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, project)
}

// Delete удаляет проект
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	if err := h.projectService.Delete(r.Context(), actor, id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.Respond(w, r, http.StatusNoContent, nil)
}

// Members возвращает участников проекта
func (h *ProjectHandler) Members(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	members, err := h.projectService.GetMembers(r.Context(), actor, id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, members)
}

// AddMember добавляет участника в проект
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	var req domain.ProjectMemberRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.projectService.AddMember(r.Context(), actor, id, req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithCreated(w, r, map[string]string{"message": "member added"})
}

// UpdateMember изменяет роль участника проекта
func (h *ProjectHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")
	userID := h.GetURLParam(r, "userID")

	var req struct {
		Role domain.ProjectMemberRole `json:"role" validate:"required,oneof=admin member viewer"`
	}
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.projectService.UpdateMember(r.Context(), actor, id, userID, req.Role); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, map[string]string{"message": "member updated"})
}

// RemoveMember исключает участника из проекта
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")
	userID := h.GetURLParam(r, "userID")

	if err := h.projectService.RemoveMember(r.Context(), actor, id, userID); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.Respond(w, r, http.StatusNoContent, nil)
}
