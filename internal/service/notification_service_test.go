package service

import (
	"context"
	"testing"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/logger"
)

// stubNotificationRepo хранит уведомления в памяти
type stubNotificationRepo struct {
	notifications map[string]*domain.Notification
	unread        int
}

func (s *stubNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	s.notifications[notification.ID] = notification
	return nil
}

func (s *stubNotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	return s.notifications[id], nil
}

func (s *stubNotificationRepo) ListByUser(ctx context.Context, userID string, filter repository.NotificationFilter) ([]*domain.Notification, error) {
	return nil, nil
}

func (s *stubNotificationRepo) CountByUser(ctx context.Context, userID string, filter repository.NotificationFilter) (int, error) {
	return 0, nil
}

func (s *stubNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.unread, nil
}

func (s *stubNotificationRepo) MarkAsRead(ctx context.Context, id, userID string) error {
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (s *stubNotificationRepo) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

func (s *stubNotificationRepo) Delete(ctx context.Context, id, userID string) error {
	if n, ok := s.notifications[id]; !ok || n.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func newTestNotificationService(repo *stubNotificationRepo) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger.NewLogger("disabled", true),
	}
}

func TestNotificationCreate(t *testing.T) {
	ctx := context.Background()
	repo := &stubNotificationRepo{notifications: map[string]*domain.Notification{}}
	svc := newTestNotificationService(repo)

	notification := &domain.Notification{
		UserID:  "u1",
		Type:    domain.NotificationTypeTaskAssigned,
		Title:   "Новая задача",
		Message: "Вам назначена задача",
	}

	if err := svc.Create(ctx, notification); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// ID и время создания проставляются автоматически
	if notification.ID == "" {
		t.Error("ID should be generated")
	}
	if notification.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if len(repo.notifications) != 1 {
		t.Errorf("stored %d notifications, want 1", len(repo.notifications))
	}
}

func TestNotificationCreateForUsers(t *testing.T) {
	ctx := context.Background()
	repo := &stubNotificationRepo{notifications: map[string]*domain.Notification{}}
	svc := newTestNotificationService(repo)

	err := svc.CreateForUsers(ctx, []string{"u1", "u2", "u3"}, func(userID string) *domain.Notification {
		return &domain.Notification{
			UserID: userID,
			Type:   domain.NotificationTypeTaskCompleted,
			Title:  "Задача завершена",
		}
	})
	if err != nil {
		t.Fatalf("CreateForUsers() error = %v", err)
	}

	if len(repo.notifications) != 3 {
		t.Errorf("stored %d notifications, want 3", len(repo.notifications))
	}
	recipients := map[string]bool{}
	for _, n := range repo.notifications {
		recipients[n.UserID] = true
	}
	if !recipients["u1"] || !recipients["u2"] || !recipients["u3"] {
		t.Errorf("unexpected recipients: %v", recipients)
	}
}

func TestNotificationMarkAsRead(t *testing.T) {
	ctx := context.Background()
	repo := &stubNotificationRepo{notifications: map[string]*domain.Notification{
		"n1": {ID: "n1", UserID: "u1"},
	}}
	svc := newTestNotificationService(repo)

	if err := svc.MarkAsRead(ctx, "u1", "n1"); err != nil {
		t.Fatalf("MarkAsRead() error = %v", err)
	}
	if !repo.notifications["n1"].IsRead {
		t.Error("notification should be marked as read")
	}

	// Чужое уведомление выглядит как отсутствующее
	if err := svc.MarkAsRead(ctx, "u2", "n1"); err != ErrNotificationNotFound {
		t.Errorf("MarkAsRead() error = %v, want %v", err, ErrNotificationNotFound)
	}
	if err := svc.MarkAsRead(ctx, "u1", "ghost"); err != ErrNotificationNotFound {
		t.Errorf("MarkAsRead() error = %v, want %v", err, ErrNotificationNotFound)
	}
}

func TestNotificationUnreadCount(t *testing.T) {
	ctx := context.Background()
	repo := &stubNotificationRepo{notifications: map[string]*domain.Notification{}, unread: 5}
	svc := newTestNotificationService(repo)

	count, err := svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 5 {
		t.Errorf("UnreadCount() = %d, want 5", count)
	}
}

func TestNotificationDelete(t *testing.T) {
	ctx := context.Background()
	repo := &stubNotificationRepo{notifications: map[string]*domain.Notification{
		"n1": {ID: "n1", UserID: "u1"},
	}}
	svc := newTestNotificationService(repo)

	if err := svc.Delete(ctx, "u2", "n1"); err != ErrNotificationNotFound {
		t.Errorf("Delete() error = %v, want %v", err, ErrNotificationNotFound)
	}
	if err := svc.Delete(ctx, "u1", "n1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.notifications) != 0 {
		t.Error("notification should be removed")
	}
}
