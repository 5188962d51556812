package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"не найдено", ErrNotFound, http.StatusNotFound, "not_found"},
		{"обернутая ошибка доступа", fmt.Errorf("update task: %w", ErrForbidden), http.StatusForbidden, "forbidden"},
		{"конфликт", ErrConflict, http.StatusConflict, "conflict"},
		{"неизвестная ошибка становится внутренней", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromError(tt.err)
			if appErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", appErr.StatusCode, tt.wantStatus)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestFromErrorKeepsAppError(t *testing.T) {
	original := &AppError{StatusCode: http.StatusTeapot, Message: "чайник", Code: "teapot"}
	wrapped := fmt.Errorf("handler: %w", original)

	if got := FromError(wrapped); got != original {
		t.Errorf("FromError() = %+v, want исходный AppError", got)
	}
}
