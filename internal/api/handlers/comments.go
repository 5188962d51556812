package handlers

import (
	"net/http"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// CommentHandler обрабатывает запросы для работы с комментариями
type CommentHandler struct {
	BaseHandler
	commentService *service.CommentService
}

// NewCommentHandler создает новый экземпляр CommentHandler
func NewCommentHandler(commentService *service.CommentService, jwtManager *auth.JWTManager, logger logger.Logger) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    NewBaseHandler(logger, jwtManager),
		commentService: commentService,
	}
}

// ListByTask возвращает комментарии задачи
func (h *CommentHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	taskID := h.GetURLParam(r, "id")
	page, pageSize := h.GetPaginationParams(r)

	response, err := h.commentService.ListByTask(r.Context(), actor, taskID, page, pageSize)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithPagination(w, r, response)
}

// Create добавляет комментарий к задаче
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	taskID := h.GetURLParam(r, "id")

	var req domain.CommentCreateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.commentService.Create(r.Context(), actor, taskID, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithCreated(w, r, comment)
}

// Update редактирует комментарий
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	commentID := h.GetURLParam(r, "id")

	var req domain.CommentUpdateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.commentService.Update(r.Context(), actor, commentID, req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, comment)
}

// Delete удаляет комментарий
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	commentID := h.GetURLParam(r, "id")

	if err := h.commentService.Delete(r.Context(), actor, commentID); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.Respond(w, r, http.StatusNoContent, nil)
}
