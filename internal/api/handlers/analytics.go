package handlers

import (
	"net/http"
	"strconv"

	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// AnalyticsHandler обрабатывает запросы аналитических отчетов
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler создает новый экземпляр AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, jwtManager *auth.JWTManager, logger logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger, jwtManager),
		analyticsService: analyticsService,
	}
}

// rangeDays извлекает размер отчетного периода из запроса
func (h *AnalyticsHandler) rangeDays(r *http.Request) int {
	if param := r.URL.Query().Get("time_range"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 && parsed <= 365 {
			return parsed
		}
	}
	return 0
}

// Dashboard возвращает сводный дашборд аналитики
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	dashboard, err := h.analyticsService.Dashboard(r.Context(), actor, h.rangeDays(r))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, dashboard)
}

// Project возвращает аналитику проекта
func (h *AnalyticsHandler) Project(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	projectID := h.GetURLParam(r, "id")

	analytics, err := h.analyticsService.Project(r.Context(), actor, projectID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, analytics)
}

// User возвращает аналитику пользователя
func (h *AnalyticsHandler) User(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	userID := h.GetURLParam(r, "id")

	analytics, err := h.analyticsService.User(r.Context(), actor, userID, h.rangeDays(r))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, analytics)
}

// Team возвращает аналитику команды
func (h *AnalyticsHandler) Team(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	analytics, err := h.analyticsService.Team(r.Context(), actor, h.rangeDays(r))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, analytics)
}
