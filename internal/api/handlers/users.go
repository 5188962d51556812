package handlers

import (
	"net/http"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// UserHandler обрабатывает запросы для работы с пользователями
type UserHandler struct {
	BaseHandler
	userService *service.UserService
}

// NewUserHandler создает новый экземпляр UserHandler
func NewUserHandler(userService *service.UserService, jwtManager *auth.JWTManager, logger logger.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger, jwtManager),
		userService: userService,
	}
}

// List возвращает список пользователей
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := h.GetPaginationParams(r)

	opts := domain.UserFilterOptions{
		Page:     page,
		PageSize: pageSize,
	}

	query := r.URL.Query()
	if search := query.Get("search"); search != "" {
		opts.SearchText = &search
	}
	if roleParam := query.Get("role"); roleParam != "" {
		role := domain.UserRole(roleParam)
		opts.Role = &role
	}
	if activeParam := query.Get("is_active"); activeParam != "" {
		isActive := activeParam == "true"
		opts.IsActive = &isActive
	}

	response, err := h.userService.List(r.Context(), opts)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithPagination(w, r, response)
}

// Get возвращает пользователя по ID
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := h.GetURLParam(r, "id")

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, user)
}

// Update обновляет данные пользователя
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	var req domain.UserUpdateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), actor, id, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, user)
}

// Deactivate деактивирует пользователя
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	if err := h.userService.Deactivate(r.Context(), actor, id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.Respond(w, r, http.StatusNoContent, nil)
}

// Stats возвращает сводку по задачам пользователя
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := h.GetURLParam(r, "id")

	stats, err := h.userService.GetStats(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, stats)
}
