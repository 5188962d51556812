package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator - структура для валидации данных
type CustomValidator struct {
	validator *validator.Validate
}

// ValidationError представляет ошибку валидации
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors содержит список ошибок валидации
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error реализует интерфейс error
func (ve ValidationErrors) Error() string {
	var errMsgs []string
	for _, err := range ve.Errors {
		errMsgs = append(errMsgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(errMsgs, "; ")
}

// NewValidator создает новый экземпляр валидатора
func NewValidator() *CustomValidator {
	v := validator.New()

	// Регистрируем функцию для получения JSON-тега вместо имени структуры
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &CustomValidator{
		validator: v,
	}
}

// New возвращает настроенный *validator.Validate с зарегистрированными
// кастомными валидациями
func New() *validator.Validate {
	cv := NewValidator()
	cv.RegisterCustomValidations()
	return cv.validator
}

// RegisterCustomValidations регистрирует кастомные валидации
func (cv *CustomValidator) RegisterCustomValidations() {
	cv.validator.RegisterValidation("task_status", validateTaskStatus)
	cv.validator.RegisterValidation("task_priority", validateTaskPriority)
	cv.validator.RegisterValidation("task_category", validateTaskCategory)
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	validStatuses := map[string]bool{
		"todo":        true,
		"in-progress": true,
		"review":      true,
		"completed":   true,
		"cancelled":   true,
	}
	return validStatuses[status]
}

func validateTaskPriority(fl validator.FieldLevel) bool {
	priority := fl.Field().String()
	validPriorities := map[string]bool{
		"low":    true,
		"medium": true,
		"high":   true,
		"urgent": true,
	}
	return validPriorities[priority]
}

func validateTaskCategory(fl validator.FieldLevel) bool {
	category := fl.Field().String()
	validCategories := map[string]bool{
		"bug":           true,
		"feature":       true,
		"improvement":   true,
		"documentation": true,
		"testing":       true,
		"other":         true,
	}
	return validCategories[category]
}

// Validate проверяет структуру на соответствие правилам валидации
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors ValidationErrors

		for _, err := range err.(validator.ValidationErrors) {
			field := err.Field()
			message := getErrorMessage(err)

			validationErrors.Errors = append(validationErrors.Errors, ValidationError{
				Field:   field,
				Message: message,
			})
		}

		return validationErrors
	}
	return nil
}

// getErrorMessage возвращает понятное сообщение об ошибке на основе тега валидации
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if err.Type().Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", err.Param())
		}
		return fmt.Sprintf("Must be at least %s", err.Param())
	case "max":
		if err.Type().Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", err.Param())
		}
		return fmt.Sprintf("Must be at most %s", err.Param())
	case "task_status":
		return "Invalid task status"
	case "task_priority":
		return "Invalid task priority"
	case "task_category":
		return "Invalid task category"
	default:
		return fmt.Sprintf("Failed validation for '%s'", err.Tag())
	}
}
