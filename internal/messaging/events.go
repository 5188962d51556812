package messaging

import (
	"time"
)

// Типы событий. Имена совпадают с именами realtime-событий,
// которые notifier рассылает в комнаты.
const (
	EventTypeTaskCreated    = "task-created"
	EventTypeTaskUpdated    = "task-updated"
	EventTypeTaskDeleted    = "task-deleted"
	EventTypeCommentAdded   = "comment-added"
	EventTypeProjectUpdated = "project-updated"
	EventTypeMemberAdded    = "member-added"
	EventTypeMemberRemoved  = "member-removed"
	EventTypeNotification   = "notification"
)

// TaskEvent представляет событие, связанное с задачей
type TaskEvent struct {
	Type       string                 `json:"type"`
	TaskID     string                 `json:"task_id"`
	Title      string                 `json:"title"`
	ProjectID  string                 `json:"project_id"`
	Status     string                 `json:"status"`
	Priority   string                 `json:"priority"`
	AssignedTo *string                `json:"assigned_to,omitempty"`
	ActorID    string                 `json:"actor_id"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// CommentEvent представляет событие добавления комментария
type CommentEvent struct {
	Type       string    `json:"type"`
	CommentID  string    `json:"comment_id"`
	TaskID     string    `json:"task_id"`
	TaskTitle  string    `json:"task_title"`
	ProjectID  string    `json:"project_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProjectEvent представляет событие, связанное с проектом
type ProjectEvent struct {
	Type       string    `json:"type"`
	ProjectID  string    `json:"project_id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	MemberID   string    `json:"member_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotificationEvent представляет событие доставки уведомлений.
// Notifier сохраняет уведомление каждому адресату и рассылает
// его в комнаты user-{id}.
type NotificationEvent struct {
	Type             string    `json:"type"`
	UserIDs          []string  `json:"user_ids"`
	NotificationType string    `json:"notification_type"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	EntityID         *string   `json:"entity_id,omitempty"`
	EntityType       *string   `json:"entity_type,omitempty"`
	ActorID          *string   `json:"actor_id,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}
