package errors

import (
	"errors"
	"net/http"
)

// Сентинельные ошибки для сопоставления с HTTP-статусами
var (
	ErrNotFound           = errors.New("resource not found")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation error")
	ErrTimeout            = errors.New("request timeout")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// AppError представляет ошибку приложения с HTTP-статусом
type AppError struct {
	Err        error
	StatusCode int
	Message    string
	Code       string
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap возвращает оборачиваемую ошибку
func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(err error, statusCode int, message, code string) *AppError {
	return &AppError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// FromError создает AppError из обычной ошибки.
// Нераспознанные ошибки считаются внутренними
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return newAppError(err, http.StatusNotFound, "Resource not found", "not_found")
	case errors.Is(err, ErrBadRequest):
		return newAppError(err, http.StatusBadRequest, "Bad request", "bad_request")
	case errors.Is(err, ErrUnauthorized):
		return newAppError(err, http.StatusUnauthorized, "Unauthorized", "unauthorized")
	case errors.Is(err, ErrForbidden):
		return newAppError(err, http.StatusForbidden, "Forbidden", "forbidden")
	case errors.Is(err, ErrConflict):
		return newAppError(err, http.StatusConflict, "Conflict", "conflict")
	case errors.Is(err, ErrValidation):
		return newAppError(err, http.StatusUnprocessableEntity, "Validation error", "validation_error")
	case errors.Is(err, ErrTimeout):
		return newAppError(err, http.StatusRequestTimeout, "Request timeout", "request_timeout")
	case errors.Is(err, ErrServiceUnavailable):
		return newAppError(err, http.StatusServiceUnavailable, "Service unavailable", "service_unavailable")
	default:
		return newAppError(err, http.StatusInternalServerError, "Internal server error", "internal_error")
	}
}
