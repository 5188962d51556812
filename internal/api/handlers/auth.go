package handlers

import (
	"net/http"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	BaseHandler
	userService *service.UserService
}

// NewAuthHandler создает новый экземпляр AuthHandler
func NewAuthHandler(userService *service.UserService, jwtManager *auth.JWTManager, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger, jwtManager),
		userService: userService,
	}
}

// Register обрабатывает регистрацию нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.UserCreateRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithCreated(w, r, user)
}

// Login обрабатывает вход пользователя
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.userService.Login(r.Context(), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, response)
}

// Refresh обрабатывает обновление пары токенов
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshTokenRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.userService.RefreshToken(r.Context(), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, response)
}

// Me возвращает профиль текущего пользователя
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	h.RespondWithSuccess(w, r, user.ToResponse())
}

// ChangePassword обрабатывает смену пароля текущего пользователя
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	var req domain.ChangePasswordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), user.ID, req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.RespondWithSuccess(w, r, map[string]string{"message": "password changed"})
}
