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

// NotificationRepository реализует репозиторий уведомлений с использованием PostgreSQL
type NotificationRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewNotificationRepository создает новый экземпляр NotificationRepository
func NewNotificationRepository(db *sqlx.DB, logger logger.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает новое уведомление
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, type, title, message, entity_id, entity_type,
			actor_id, is_read, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.EntityID,
		notification.EntityType,
		notification.ActorID,
		notification.IsRead,
		notification.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", err, map[string]interface{}{
			"user_id": notification.UserID,
			"type":    notification.Type,
		})
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID возвращает уведомление по ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, entity_id, entity_type,
			actor_id, is_read, read_at, created_at
		FROM notifications
		WHERE id = $1
	`

	var notification domain.Notification
	err := r.db.GetContext(ctx, &notification, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get notification by ID", err, map[string]interface{}{
			"id": id,
		})
		return nil, fmt.Errorf("failed to get notification by ID: %w", err)
	}

	return &notification, nil
}

// ListByUser возвращает уведомления пользователя
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, filter repository.NotificationFilter) ([]*domain.Notification, error) {
	whereClause, args := r.buildWhereClause(userID, filter)
	limitOffset := fmt.Sprintf("LIMIT %d OFFSET %d", filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, message, entity_id, entity_type,
			actor_id, is_read, read_at, created_at
		FROM notifications
		%s
		ORDER BY created_at DESC
		%s
	`, whereClause, limitOffset)

	notifications := []*domain.Notification{}
	err := r.db.SelectContext(ctx, &notifications, query, args...)
	if err != nil {
		r.logger.Error("Failed to list notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// CountByUser возвращает количество уведомлений пользователя
func (r *NotificationRepository) CountByUser(ctx context.Context, userID string, filter repository.NotificationFilter) (int, error) {
	whereClause, args := r.buildWhereClause(userID, filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM notifications
		%s
	`, whereClause)

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		r.logger.Error("Failed to count notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return count, nil
}

// CountUnread возвращает количество непрочитанных уведомлений
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	if err != nil {
		r.logger.Error("Failed to count unread notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkAsRead помечает уведомление прочитанным
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $1
		WHERE id = $2 AND user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id, userID)
	if err != nil {
		r.logger.Error("Failed to mark notification as read", err, map[string]interface{}{
			"id": id,
		})
		return fmt.Errorf("failed to mark notification as read: %w", err)
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

// MarkAllAsRead помечает все уведомления пользователя прочитанными
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $1
		WHERE user_id = $2 AND is_read = FALSE
	`

	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		r.logger.Error("Failed to mark all notifications as read", err, map[string]interface{}{
			"user_id": userID,
		})
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	return nil
}

// Delete удаляет уведомление пользователя
func (r *NotificationRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete notification", err, map[string]interface{}{
			"id": id,
		})
		return fmt.Errorf("failed to delete notification: %w", err)
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

func (r *NotificationRepository) buildWhereClause(userID string, filter repository.NotificationFilter) (string, []interface{}) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argIndex := 2

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}

	if filter.IsRead != nil {
		conditions = append(conditions, fmt.Sprintf("is_read = $%d", argIndex))
		args = append(args, *filter.IsRead)
		argIndex++
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
