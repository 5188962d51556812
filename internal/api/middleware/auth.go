package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Ключи контекста запроса
const (
	ContextUserID = "user_id"
	ContextUser   = "user"
)

// AuthMiddleware предоставляет middleware для аутентификации пользователей
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	userRepo   repository.UserRepository
	logger     logger.Logger
}

// NewAuthMiddleware создает новый экземпляр AuthMiddleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, userRepo repository.UserRepository, logger logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Authenticate проверяет JWT токен и загружает пользователя в контекст.
// Деактивированные пользователи не проходят аутентификацию.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verifyRequest(w, r)
		if !ok {
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			m.logger.Error("Failed to load user for request", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if user == nil || !user.IsActive {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserID, user.ID)
		ctx = context.WithValue(ctx, ContextUser, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole пропускает только пользователей с указанной ролью.
// Администраторы имеют доступ ко всем ресурсам.
func (m *AuthMiddleware) RequireRole(role domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(ContextUser).(*domain.User)
			if !ok {
				http.Error(w, "User not found in context", http.StatusInternalServerError)
				return
			}

			if user.Role != role && !user.IsAdmin() {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// verifyRequest извлекает и проверяет токен доступа из заголовка
func (m *AuthMiddleware) verifyRequest(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		http.Error(w, "Authorization header required", http.StatusUnauthorized)
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := m.jwtManager.VerifyToken(parts[1])
	if err != nil {
		m.logger.Warn("Invalid JWT token", map[string]interface{}{
			"error": err.Error(),
		})
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return nil, false
	}

	if claims.Type != string(auth.AccessToken) {
		http.Error(w, "Invalid token type", http.StatusUnauthorized)
		return nil, false
	}

	return claims, true
}
