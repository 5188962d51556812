package domain

import (
	"time"
)

// UserRole определяет глобальную роль пользователя в системе
type UserRole string

const (
	// UserRoleAdmin имеет доступ ко всем функциям системы
	UserRoleAdmin UserRole = "admin"
	// UserRoleManager может создавать проекты и смотреть аналитику команды
	UserRoleManager UserRole = "manager"
	// UserRoleMember работает с задачами в своих проектах
	UserRoleMember UserRole = "member"
)

// UserPreferences представляет пользовательские настройки
type UserPreferences struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"email_notifications"`
	PushNotifications  bool   `json:"push_notifications"`
	Language           string `json:"language"`
}

// User представляет модель пользователя
type User struct {
	ID             string          `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Email          string          `json:"email" db:"email"`
	HashedPassword string          `json:"-" db:"hashed_password"`
	Role           UserRole        `json:"role" db:"role"`
	Avatar         *string         `json:"avatar,omitempty" db:"avatar"`
	Department     *string         `json:"department,omitempty" db:"department"`
	Phone          *string         `json:"phone,omitempty" db:"phone"`
	Bio            *string         `json:"bio,omitempty" db:"bio"`
	Skills         []string        `json:"skills,omitempty" db:"-"` // Навыки хранятся в отдельной таблице
	IsActive       bool            `json:"is_active" db:"is_active"`
	Preferences    UserPreferences `json:"preferences" db:"-"`
	LastLoginAt    *time.Time      `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// UserCreateRequest представляет данные для регистрации пользователя
type UserCreateRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=50"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin manager member"`
}

// UserUpdateRequest представляет данные для обновления пользователя
type UserUpdateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar      *string          `json:"avatar,omitempty"`
	Department  *string          `json:"department,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	Bio         *string          `json:"bio,omitempty" validate:"omitempty,max=500"`
	Skills      *[]string        `json:"skills,omitempty"`
	Role        *UserRole        `json:"role,omitempty" validate:"omitempty,oneof=admin manager member"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}

// UserResponse представляет данные пользователя для API-ответов
type UserResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        UserRole        `json:"role"`
	Avatar      *string         `json:"avatar,omitempty"`
	Department  *string         `json:"department,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Bio         *string         `json:"bio,omitempty"`
	Skills      []string        `json:"skills,omitempty"`
	IsActive    bool            `json:"is_active"`
	Preferences UserPreferences `json:"preferences"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UserBrief представляет краткую информацию о пользователе для вложенных ответов
type UserBrief struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar,omitempty"`
}

// ToResponse преобразует User в UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Avatar:      u.Avatar,
		Department:  u.Department,
		Phone:       u.Phone,
		Bio:         u.Bio,
		Skills:      u.Skills,
		IsActive:    u.IsActive,
		Preferences: u.Preferences,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToBrief преобразует User в UserBrief
func (u *User) ToBrief() UserBrief {
	return UserBrief{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
	}
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsManager проверяет, имеет ли пользователь права менеджера или выше
func (u *User) IsManager() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleManager
}

// UserFilterOptions представляет параметры для фильтрации пользователей
type UserFilterOptions struct {
	SearchText *string   `json:"search_text,omitempty"`
	Role       *UserRole `json:"role,omitempty"`
	IsActive   *bool     `json:"is_active,omitempty"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}
