package domain

import (
	"time"
)

// Comment представляет комментарий к задаче
type Comment struct {
	ID        string     `json:"id" db:"id"`
	TaskID    string     `json:"task_id" db:"task_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Content   string     `json:"content" db:"content"`
	IsEdited  bool       `json:"is_edited" db:"is_edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty" db:"edited_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// CommentCreateRequest представляет данные для создания комментария
type CommentCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// CommentUpdateRequest представляет данные для обновления комментария
type CommentUpdateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// CommentResponse представляет данные комментария для API-ответов
type CommentResponse struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	Author    UserBrief  `json:"author"`
	Content   string     `json:"content"`
	IsEdited  bool       `json:"is_edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToResponse преобразует Comment в CommentResponse
func (c *Comment) ToResponse(author UserBrief) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		Author:    author,
		Content:   c.Content,
		IsEdited:  c.IsEdited,
		EditedAt:  c.EditedAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
