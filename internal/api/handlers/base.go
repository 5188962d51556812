package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/teamflow/internal/api/middleware"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	apperrors "github.com/yourusername/teamflow/pkg/errors"
	"github.com/yourusername/teamflow/pkg/logger"
	appvalidator "github.com/yourusername/teamflow/pkg/validator"
)

// StandardResponseData представляет стандартную структуру ответа API
type StandardResponseData struct {
	Success      bool        `json:"success"`
	Data         interface{} `json:"data,omitempty"`
	ErrorMessage string      `json:"error,omitempty"`
	ErrorCode    string      `json:"error_code,omitempty"`
	Meta         interface{} `json:"meta,omitempty"`
}

// ErrorResponse представляет структуру ответа с ошибкой
type ErrorResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error"`
	ErrorCode    string `json:"error_code,omitempty"`
}

// ValidationError представляет ошибку валидации
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse представляет структуру ответа с ошибками валидации
type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Errors  []ValidationError `json:"errors"`
}

// PaginationMeta представляет метаданные для постраничной навигации
type PaginationMeta struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// BaseHandler содержит общие методы для всех обработчиков
type BaseHandler struct {
	Logger     logger.Logger
	Validator  *validator.Validate
	JWTManager *auth.JWTManager
}

// NewBaseHandler создает новый экземпляр BaseHandler
func NewBaseHandler(logger logger.Logger, jwtManager *auth.JWTManager) BaseHandler {
	return BaseHandler{
		Logger:     logger,
		Validator:  appvalidator.New(),
		JWTManager: jwtManager,
	}
}

// Respond отправляет стандартный ответ с указанным кодом статуса
func (h *BaseHandler) Respond(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.Logger.Error("Failed to encode response", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}

// RespondWithSuccess отправляет успешный ответ
func (h *BaseHandler) RespondWithSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	response := StandardResponseData{
		Success: true,
		Data:    data,
	}
	h.Respond(w, r, http.StatusOK, response)
}

// RespondWithCreated отправляет ответ о созданном ресурсе
func (h *BaseHandler) RespondWithCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	response := StandardResponseData{
		Success: true,
		Data:    data,
	}
	h.Respond(w, r, http.StatusCreated, response)
}

// RespondWithError отправляет ответ с ошибкой
func (h *BaseHandler) RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, errorMsg string, errorCode string) {
	response := ErrorResponse{
		Success:      false,
		ErrorMessage: errorMsg,
		ErrorCode:    errorCode,
	}
	h.Respond(w, r, statusCode, response)
}

// RespondWithValidationErrors отправляет ответ с ошибками валидации
func (h *BaseHandler) RespondWithValidationErrors(w http.ResponseWriter, r *http.Request, errors []ValidationError) {
	response := ValidationErrorResponse{
		Success: false,
		Error:   "Validation failed",
		Errors:  errors,
	}
	h.Respond(w, r, http.StatusBadRequest, response)
}

// RespondWithPagination отправляет ответ с пагинацией
func (h *BaseHandler) RespondWithPagination(w http.ResponseWriter, r *http.Request, pagedResponse *domain.PagedResponse) {
	meta := PaginationMeta{
		TotalItems:  pagedResponse.TotalItems,
		TotalPages:  pagedResponse.TotalPages,
		CurrentPage: pagedResponse.Page,
		PageSize:    pagedResponse.PageSize,
	}

	response := StandardResponseData{
		Success: true,
		Data:    pagedResponse.Items,
		Meta:    meta,
	}

	h.Respond(w, r, http.StatusOK, response)
}

// HandleError сопоставляет ошибку сервиса с HTTP-статусом
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrSubtaskNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, domain.ErrNotFound):
		h.RespondWithError(w, r, http.StatusNotFound, err.Error(), "not_found")

	case errors.Is(err, domain.ErrForbidden):
		h.RespondWithError(w, r, http.StatusForbidden, "Insufficient permissions", "forbidden")

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		h.RespondWithError(w, r, http.StatusUnauthorized, err.Error(), "unauthorized")

	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, domain.ErrConflict):
		h.RespondWithError(w, r, http.StatusConflict, err.Error(), "conflict")

	case errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrSelfDependency),
		errors.Is(err, service.ErrCyclicDependency),
		errors.Is(err, service.ErrForeignDependency),
		errors.Is(err, service.ErrAssigneeNotInvolved),
		errors.Is(err, service.ErrOwnerImmutable),
		errors.Is(err, domain.ErrBadRequest):
		h.RespondWithError(w, r, http.StatusBadRequest, err.Error(), "bad_request")

	default:
		appErr := apperrors.FromError(err)
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("Request failed", err, map[string]interface{}{
				"path": r.URL.Path,
			})
		}
		h.RespondWithError(w, r, appErr.StatusCode, appErr.Message, appErr.Code)
	}
}

// ParseJSON разбирает JSON из тела запроса
func (h *BaseHandler) ParseJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// ValidateRequest проверяет валидность структуры запроса
func (h *BaseHandler) ValidateRequest(data interface{}) ([]ValidationError, error) {
	if err := h.Validator.Struct(data); err != nil {
		var validationErrors []ValidationError
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range errs {
				validationErrors = append(validationErrors, ValidationError{
					Field:   fieldErr.Field(),
					Message: getErrorMsg(fieldErr),
				})
			}
			return validationErrors, nil
		}
		return nil, err
	}
	return nil, nil
}

// DecodeAndValidate разбирает тело запроса и проверяет его.
// Возвращает false, если ответ об ошибке уже отправлен.
func (h *BaseHandler) DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := h.ParseJSON(r, dst); err != nil {
		h.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body", "bad_request")
		return false
	}

	validationErrors, err := h.ValidateRequest(dst)
	if err != nil {
		h.RespondWithError(w, r, http.StatusInternalServerError, "Validation failed", "internal_error")
		return false
	}
	if len(validationErrors) > 0 {
		h.RespondWithValidationErrors(w, r, validationErrors)
		return false
	}
	return true
}

// GetPaginationParams извлекает параметры пагинации из запроса
func (h *BaseHandler) GetPaginationParams(r *http.Request) (int, int) {
	page := 1
	pageSize := 20

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if parsed, err := strconv.Atoi(pageParam); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if pageSizeParam := r.URL.Query().Get("page_size"); pageSizeParam != "" {
		if parsed, err := strconv.Atoi(pageSizeParam); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	return page, pageSize
}

// GetUserFromContext извлекает аутентифицированного пользователя
// из контекста запроса
func (h *BaseHandler) GetUserFromContext(r *http.Request) (*domain.User, error) {
	user, ok := r.Context().Value(middleware.ContextUser).(*domain.User)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

// GetURLParam извлекает параметр из URL
func (h *BaseHandler) GetURLParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// Функция для получения человекочитаемого сообщения об ошибке валидации
func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "uuid":
		return "Invalid UUID format"
	case "oneof", "task_status", "task_priority", "task_category":
		return "Invalid value"
	default:
		return fmt.Sprintf("Validation failed on '%s'", err.Tag())
	}
}
