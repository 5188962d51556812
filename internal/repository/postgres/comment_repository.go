package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/logger"
)

// CommentRepository реализует репозиторий комментариев с использованием PostgreSQL
type CommentRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewCommentRepository создает новый экземпляр CommentRepository
func NewCommentRepository(db *sqlx.DB, logger logger.Logger) *CommentRepository {
	return &CommentRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает новый комментарий
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO task_comments (id, task_id, user_id, content, is_edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		comment.ID,
		comment.TaskID,
		comment.UserID,
		comment.Content,
		comment.IsEdited,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create comment", err, map[string]interface{}{
			"task_id": comment.TaskID,
		})
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByID возвращает комментарий по ID
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := `
		SELECT id, task_id, user_id, content, is_edited, edited_at, created_at, updated_at
		FROM task_comments
		WHERE id = $1
	`

	var comment domain.Comment
	err := r.db.GetContext(ctx, &comment, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get comment by ID", err, map[string]interface{}{
			"id": id,
		})
		return nil, fmt.Errorf("failed to get comment by ID: %w", err)
	}

	return &comment, nil
}

// Update обновляет комментарий и помечает его отредактированным
func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE task_comments
		SET content = $1, is_edited = TRUE, edited_at = $2, updated_at = $2
		WHERE id = $3
	`

	now := time.Now()
	comment.IsEdited = true
	comment.EditedAt = &now
	comment.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query, comment.Content, now, comment.ID)
	if err != nil {
		r.logger.Error("Failed to update comment", err, map[string]interface{}{
			"id": comment.ID,
		})
		return fmt.Errorf("failed to update comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete удаляет комментарий по ID
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM task_comments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete comment", err, map[string]interface{}{
			"id": id,
		})
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListByTask возвращает комментарии задачи
func (r *CommentRepository) ListByTask(ctx context.Context, taskID string, filter repository.CommentFilter) ([]*domain.Comment, error) {
	direction := "ASC"
	if filter.OrderDir != nil && strings.ToUpper(*filter.OrderDir) == "DESC" {
		direction = "DESC"
	}

	args := []interface{}{taskID}
	userCond := ""
	if filter.UserID != nil {
		userCond = "AND user_id = $2"
		args = append(args, *filter.UserID)
	}

	query := fmt.Sprintf(`
		SELECT id, task_id, user_id, content, is_edited, edited_at, created_at, updated_at
		FROM task_comments
		WHERE task_id = $1 %s
		ORDER BY created_at %s
		LIMIT %d OFFSET %d
	`, userCond, direction, filter.Limit, filter.Offset)

	comments := []*domain.Comment{}
	err := r.db.SelectContext(ctx, &comments, query, args...)
	if err != nil {
		r.logger.Error("Failed to list comments", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

// CountByTask возвращает количество комментариев задачи
func (r *CommentRepository) CountByTask(ctx context.Context, taskID string) (int, error) {
	query := `SELECT COUNT(*) FROM task_comments WHERE task_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, taskID)
	if err != nil {
		r.logger.Error("Failed to count comments", err, map[string]interface{}{
			"task_id": taskID,
		})
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}
