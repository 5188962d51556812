package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/internal/repository/cache"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Стандартные ошибки
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUserDeactivated    = errors.New("user is deactivated")
)

// UserService представляет бизнес-логику для работы с пользователями
type UserService struct {
	repo          repository.UserRepository
	analyticsRepo repository.AnalyticsRepository
	jwtManager    *auth.JWTManager
	cacheRepo     *cache.RedisRepository
	logger        logger.Logger
}

// NewUserService создает новый экземпляр UserService
func NewUserService(repo repository.UserRepository, analyticsRepo repository.AnalyticsRepository,
	jwtManager *auth.JWTManager, cacheRepo *cache.RedisRepository, logger logger.Logger) *UserService {
	return &UserService{
		repo:          repo,
		analyticsRepo: analyticsRepo,
		jwtManager:    jwtManager,
		cacheRepo:     cacheRepo,
		logger:        logger,
	}
}

// Register создает нового пользователя.
// Роль admin при самостоятельной регистрации не присваивается.
func (s *UserService) Register(ctx context.Context, req domain.UserCreateRequest) (*domain.UserResponse, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to check existing email", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", err)
		return nil, err
	}

	role := req.Role
	if role == "" || role == domain.UserRoleAdmin {
		role = domain.UserRoleMember
	}

	now := time.Now()
	user := &domain.User{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: string(hashedPassword),
		Role:           role,
		IsActive:       true,
		Preferences: domain.UserPreferences{
			Theme:              "light",
			EmailNotifications: true,
			PushNotifications:  true,
			Language:           "en",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("Failed to create user", err)
		return nil, err
	}

	response := user.ToResponse()
	return &response, nil
}

// Login выполняет вход пользователя
func (s *UserService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to get user during login", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn("Inactive user attempted to login", map[string]interface{}{
			"email": req.Email,
		})
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		s.logger.Warn("Invalid password during login", map[string]interface{}{
			"email": req.Email,
		})
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		s.logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last login time", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	_, expiresAt, err := s.jwtManager.GenerateToken(user.ID, user.Email, string(user.Role), auth.AccessToken)
	if err != nil {
		s.logger.Error("Failed to get token expiration", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	return &domain.LoginResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// RefreshToken обновляет пару токенов
func (s *UserService) RefreshToken(ctx context.Context, req domain.RefreshTokenRequest) (*domain.LoginResponse, error) {
	accessToken, refreshToken, err := s.jwtManager.RefreshTokens(req.RefreshToken)
	if err != nil {
		s.logger.Error("Failed to refresh tokens", err)
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.jwtManager.VerifyToken(accessToken)
	if err != nil {
		s.logger.Error("Failed to verify access token", err)
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	_, expiresAt, err := s.jwtManager.GenerateToken(user.ID, user.Email, string(user.Role), auth.AccessToken)
	if err != nil {
		s.logger.Error("Failed to get token expiration", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	return &domain.LoginResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// GetByID возвращает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.UserResponse, error) {
	if cached, err := s.cacheRepo.GetUser(ctx, id); err == nil && cached != nil {
		response := cached.ToResponse()
		return &response, nil
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user by ID", err, map[string]interface{}{
			"id": id,
		})
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.cacheRepo.CacheUser(ctx, user); err != nil {
		s.logger.Warn("Failed to cache user", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
	}

	response := user.ToResponse()
	return &response, nil
}

// Update обновляет данные пользователя.
// Поля role и is_active может менять только администратор.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, req domain.UserUpdateRequest) (*domain.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if actor.ID != id && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if (req.Role != nil || req.IsActive != nil) && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Skills != nil {
		user.Skills = *req.Skills
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}

	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", err, map[string]interface{}{
			"id": id,
		})
		return nil, err
	}

	if err := s.cacheRepo.InvalidateUser(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate user cache", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
	}

	response := user.ToResponse()
	return &response, nil
}

// Deactivate деактивирует пользователя вместо физического удаления.
// История задач и комментариев сохраняется.
func (s *UserService) Deactivate(ctx context.Context, actor *domain.User, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to deactivate user", err, map[string]interface{}{
			"id": id,
		})
		return err
	}

	if err := s.cacheRepo.InvalidateUser(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate user cache", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
	}

	s.logger.Info("User deactivated", map[string]interface{}{
		"id":       id,
		"actor_id": actor.ID,
	})
	return nil
}

// ChangePassword изменяет пароль пользователя
func (s *UserService) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.OldPassword)); err != nil {
		s.logger.Warn("Invalid old password during password change", map[string]interface{}{
			"user_id": userID,
		})
		return ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash new password", err)
		return err
	}

	user.HashedPassword = string(hashedPassword)
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	return nil
}

// List возвращает список пользователей с фильтрацией и пагинацией
func (s *UserService) List(ctx context.Context, opts domain.UserFilterOptions) (*domain.PagedResponse, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.UserFilter{
		Role:       opts.Role,
		IsActive:   opts.IsActive,
		SearchText: opts.SearchText,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", err)
		return nil, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count users", err)
		return nil, err
	}

	responses := make([]domain.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	response := domain.NewPagedResponse(responses, total, page, pageSize)
	return &response, nil
}

// GetStats возвращает разбивку задач пользователя по статусам
func (s *UserService) GetStats(ctx context.Context, id string) ([]domain.UserTaskStatsEntry, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	stats, err := s.analyticsRepo.UserTaskStats(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user task stats", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return stats, nil
}
