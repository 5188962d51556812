package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/realtime"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/internal/repository/cache"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Ошибки сервиса уведомлений
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationService представляет бизнес-логику для работы с уведомлениями
type NotificationService struct {
	repo      repository.NotificationRepository
	cacheRepo *cache.RedisRepository
	broker    *realtime.Broker
	logger    logger.Logger
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(repo repository.NotificationRepository, cacheRepo *cache.RedisRepository,
	broker *realtime.Broker, logger logger.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		cacheRepo: cacheRepo,
		broker:    broker,
		logger:    logger,
	}
}

// Create сохраняет уведомление и рассылает его в личную комнату адресата
func (s *NotificationService) Create(ctx context.Context, notification *domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to create notification", err, map[string]interface{}{
			"user_id": notification.UserID,
			"type":    string(notification.Type),
		})
		return err
	}

	s.invalidateUnread(ctx, notification.UserID)

	if s.broker != nil {
		room := realtime.UserRoom(notification.UserID)
		if err := s.broker.Publish(ctx, room, "notification", notification); err != nil {
			s.logger.Warn("Failed to broadcast notification", map[string]interface{}{
				"user_id": notification.UserID,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

// CreateForUsers сохраняет одно и то же уведомление каждому адресату
func (s *NotificationService) CreateForUsers(ctx context.Context, userIDs []string, build func(userID string) *domain.Notification) error {
	for _, userID := range userIDs {
		if err := s.Create(ctx, build(userID)); err != nil {
			return err
		}
	}
	return nil
}

// ListByUser возвращает уведомления пользователя, новые первыми
func (s *NotificationService) ListByUser(ctx context.Context, userID string, opts domain.NotificationFilterOptions) (*domain.PagedResponse, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.NotificationFilter{
		Type:   opts.Type,
		IsRead: opts.IsRead,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}

	notifications, err := s.repo.ListByUser(ctx, userID, filter)
	if err != nil {
		s.logger.Error("Failed to list notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	total, err := s.repo.CountByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	response := domain.NewPagedResponse(notifications, total, page, pageSize)
	return &response, nil
}

// UnreadCount возвращает количество непрочитанных уведомлений
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s.cacheRepo != nil {
		if count, err := s.cacheRepo.GetUnreadCount(ctx, userID); err == nil {
			return count, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.CacheUnreadCount(ctx, userID, count); err != nil {
			s.logger.Warn("Failed to cache unread count", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return count, nil
}

// MarkAsRead помечает уведомление прочитанным.
// Чужое уведомление пометить нельзя.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("Failed to mark notification as read", err, map[string]interface{}{
			"notification_id": id,
		})
		return err
	}

	s.invalidateUnread(ctx, userID)
	return nil
}

// MarkAllAsRead помечает все уведомления пользователя прочитанными
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		s.logger.Error("Failed to mark all notifications as read", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	s.invalidateUnread(ctx, userID)
	return nil
}

// Delete удаляет уведомление пользователя
func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID string) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.InvalidateUnreadCount(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate unread count cache", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
