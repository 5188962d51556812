package domain

import (
	"time"
)

// NotificationType определяет тип уведомления
type NotificationType string

const (
	NotificationTypeTaskAssigned   NotificationType = "task_assigned"
	NotificationTypeTaskUpdated    NotificationType = "task_updated"
	NotificationTypeTaskCompleted  NotificationType = "task_completed"
	NotificationTypeTaskOverdue    NotificationType = "task_overdue"
	NotificationTypeCommentAdded   NotificationType = "comment_added"
	NotificationTypeMentioned      NotificationType = "mentioned"
	NotificationTypeProjectInvite  NotificationType = "project_invite"
	NotificationTypeProjectUpdated NotificationType = "project_updated"
	NotificationTypeDeadlineSoon   NotificationType = "deadline_soon"
)

// Notification представляет уведомление пользователя
type Notification struct {
	ID         string           `json:"id" db:"id"`
	UserID     string           `json:"user_id" db:"user_id"`
	Type       NotificationType `json:"type" db:"type"`
	Title      string           `json:"title" db:"title"`
	Message    string           `json:"message" db:"message"`
	EntityID   *string          `json:"entity_id,omitempty" db:"entity_id"`
	EntityType *string          `json:"entity_type,omitempty" db:"entity_type"`
	ActorID    *string          `json:"actor_id,omitempty" db:"actor_id"`
	IsRead     bool             `json:"is_read" db:"is_read"`
	ReadAt     *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// NotificationFilterOptions представляет параметры для фильтрации уведомлений
type NotificationFilterOptions struct {
	Type     *NotificationType `json:"type,omitempty"`
	IsRead   *bool             `json:"is_read,omitempty"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
