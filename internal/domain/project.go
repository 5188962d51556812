package domain

import (
	"time"
)

// ProjectStatus определяет статус проекта
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on-hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// ProjectPriority определяет приоритет проекта
type ProjectPriority string

const (
	ProjectPriorityLow    ProjectPriority = "low"
	ProjectPriorityMedium ProjectPriority = "medium"
	ProjectPriorityHigh   ProjectPriority = "high"
	ProjectPriorityUrgent ProjectPriority = "urgent"
)

// ProjectMemberRole определяет роль участника внутри проекта
type ProjectMemberRole string

const (
	ProjectMemberRoleAdmin  ProjectMemberRole = "admin"
	ProjectMemberRoleMember ProjectMemberRole = "member"
	ProjectMemberRoleViewer ProjectMemberRole = "viewer"
)

// ProjectMember представляет участника проекта
type ProjectMember struct {
	ProjectID string            `json:"project_id" db:"project_id"`
	UserID    string            `json:"user_id" db:"user_id"`
	Role      ProjectMemberRole `json:"role" db:"role"`
	JoinedAt  time.Time         `json:"joined_at" db:"joined_at"`
}

// ProjectSettings представляет настройки проекта
type ProjectSettings struct {
	IsPrivate         bool `json:"is_private"`
	AllowMemberInvite bool `json:"allow_member_invite"`
	RequireApproval   bool `json:"require_approval"`
	NotificationsOn   bool `json:"notifications_on"`
}

// Project представляет модель проекта
type Project struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Status      ProjectStatus   `json:"status" db:"status"`
	Priority    ProjectPriority `json:"priority" db:"priority"`
	OwnerID     string          `json:"owner_id" db:"owner_id"`
	Members     []ProjectMember `json:"members,omitempty" db:"-"`
	Tags        []string        `json:"tags,omitempty" db:"-"`
	StartDate   *time.Time      `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty" db:"end_date"`
	Budget      *float64        `json:"budget,omitempty" db:"budget"`
	Color       string          `json:"color" db:"color"`
	Progress    int             `json:"progress" db:"progress"`
	IsArchived  bool            `json:"is_archived" db:"is_archived"`
	Settings    ProjectSettings `json:"settings" db:"-"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProjectCreateRequest представляет данные для создания проекта
type ProjectCreateRequest struct {
	Name        string           `json:"name" validate:"required,min=3,max=100"`
	Description string           `json:"description" validate:"max=1000"`
	Status      *ProjectStatus   `json:"status,omitempty" validate:"omitempty,oneof=planning active on-hold completed cancelled"`
	Priority    *ProjectPriority `json:"priority,omitempty" validate:"omitempty,task_priority"`
	MemberIDs   []string         `json:"member_ids,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Budget      *float64         `json:"budget,omitempty" validate:"omitempty,min=0"`
	Color       *string          `json:"color,omitempty"`
	Settings    *ProjectSettings `json:"settings,omitempty"`
}

// ProjectUpdateRequest представляет данные для обновления проекта
type ProjectUpdateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      *ProjectStatus   `json:"status,omitempty" validate:"omitempty,oneof=planning active on-hold completed cancelled"`
	Priority    *ProjectPriority `json:"priority,omitempty" validate:"omitempty,task_priority"`
	Tags        *[]string        `json:"tags,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Budget      *float64         `json:"budget,omitempty" validate:"omitempty,min=0"`
	Color       *string          `json:"color,omitempty"`
	IsArchived  *bool            `json:"is_archived,omitempty"`
	Settings    *ProjectSettings `json:"settings,omitempty"`
}

// ProjectMemberRequest представляет данные для добавления участника в проект
type ProjectMemberRequest struct {
	UserID string            `json:"user_id" validate:"required,uuid"`
	Role   ProjectMemberRole `json:"role" validate:"required,oneof=admin member viewer"`
}

// ProjectResponse представляет данные проекта для API-ответов
type ProjectResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Status      ProjectStatus           `json:"status"`
	Priority    ProjectPriority         `json:"priority"`
	Owner       *UserBrief              `json:"owner,omitempty"`
	Members     []ProjectMemberResponse `json:"members,omitempty"`
	Tags        []string                `json:"tags,omitempty"`
	StartDate   *time.Time              `json:"start_date,omitempty"`
	EndDate     *time.Time              `json:"end_date,omitempty"`
	Budget      *float64                `json:"budget,omitempty"`
	Color       string                  `json:"color"`
	Progress    int                     `json:"progress"`
	IsArchived  bool                    `json:"is_archived"`
	Settings    ProjectSettings         `json:"settings"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// ProjectMemberResponse представляет участника проекта в API-ответах
type ProjectMemberResponse struct {
	User     UserBrief         `json:"user"`
	Role     ProjectMemberRole `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
}

// ToResponse преобразует Project в ProjectResponse
func (p *Project) ToResponse(owner *UserBrief, members []ProjectMemberResponse) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		Owner:       owner,
		Members:     members,
		Tags:        p.Tags,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		Color:       p.Color,
		Progress:    p.Progress,
		IsArchived:  p.IsArchived,
		Settings:    p.Settings,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// HasMember проверяет, является ли пользователь участником проекта
func (p *Project) HasMember(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// CanManage проверяет, может ли пользователь управлять проектом.
// Владелец и участники с ролью admin могут менять состав и удалять проект.
func (p *Project) CanManage(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.UserID == userID && m.Role == ProjectMemberRoleAdmin {
			return true
		}
	}
	return false
}

// CalculateProgress вычисляет процент выполнения проекта по его задачам.
// Округление арифметическое: round(100 * completed / total).
func CalculateProgress(totalTasks, completedTasks int) int {
	if totalTasks <= 0 {
		return 0
	}
	return int(float64(completedTasks)*100.0/float64(totalTasks) + 0.5)
}

// ProjectFilterOptions представляет параметры для фильтрации проектов
type ProjectFilterOptions struct {
	Status     *ProjectStatus   `json:"status,omitempty"`
	Priority   *ProjectPriority `json:"priority,omitempty"`
	OwnerID    *string          `json:"owner_id,omitempty"`
	SearchText *string          `json:"search_text,omitempty"`
	IsArchived *bool            `json:"is_archived,omitempty"`
	Tags       []string         `json:"tags,omitempty"`
	SortBy     *string          `json:"sort_by,omitempty"`
	SortOrder  *string          `json:"sort_order,omitempty"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}
