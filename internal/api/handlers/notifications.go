package handlers

import (
	"net/http"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// NotificationHandler обрабатывает запросы для работы с уведомлениями
type NotificationHandler struct {
	BaseHandler
	notificationService *service.NotificationService
}

// NewNotificationHandler создает новый экземпляр NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService, jwtManager *auth.JWTManager, logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger, jwtManager),
		notificationService: notificationService,
	}
}

// List возвращает уведомления текущего пользователя
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	page, pageSize := h.GetPaginationParams(r)
	opts := domain.NotificationFilterOptions{
		Page:     page,
		PageSize: pageSize,
	}

	query := r.URL.Query()
	if typeParam := query.Get("type"); typeParam != "" {
		notifType := domain.NotificationType(typeParam)
		opts.Type = &notifType
	}
	if readParam := query.Get("is_read"); readParam != "" {
		isRead := readParam == "true"
		opts.IsRead = &isRead
	}

	response, err := h.notificationService.ListByUser(r.Context(), actor.ID, opts)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithPagination(w, r, response)
}

// UnreadCount возвращает количество непрочитанных уведомлений
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	count, err := h.notificationService.UnreadCount(r.Context(), actor.ID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, map[string]int{"unread": count})
}

// MarkAsRead помечает уведомление прочитанным
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	if err := h.notificationService.MarkAsRead(r.Context(), actor.ID, id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, map[string]string{"message": "marked as read"})
}

// MarkAllAsRead помечает все уведомления прочитанными
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	if err := h.notificationService.MarkAllAsRead(r.Context(), actor.ID); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, map[string]string{"message": "all marked as read"})
}

// Delete удаляет уведомление
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	id := h.GetURLParam(r, "id")

	if err := h.notificationService.Delete(r.Context(), actor.ID, id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.Respond(w, r, http.StatusNoContent, nil)
}
