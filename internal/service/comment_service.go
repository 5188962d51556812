package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/messaging"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Ошибки сервиса комментариев
var (
	ErrCommentNotFound = errors.New("comment not found")
)

// mentionPattern извлекает @упоминания из текста комментария
var mentionPattern = regexp.MustCompile(`@([\w.\-]+@[\w.\-]+\.\w+|[\w.\-]+)`)

// CommentService представляет бизнес-логику для работы с комментариями
type CommentService struct {
	repo        repository.CommentRepository
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	resolver    *access.Resolver
	producer    *messaging.KafkaProducer
	logger      logger.Logger
}

// NewCommentService создает новый экземпляр CommentService
func NewCommentService(repo repository.CommentRepository, taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository, userRepo repository.UserRepository,
	resolver *access.Resolver, producer *messaging.KafkaProducer, logger logger.Logger) *CommentService {
	return &CommentService{
		repo:        repo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		resolver:    resolver,
		producer:    producer,
		logger:      logger,
	}
}

// Create добавляет комментарий к задаче
func (s *CommentService) Create(ctx context.Context, actor *domain.User, taskID string, req domain.CommentCreateRequest) (*domain.CommentResponse, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanViewProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	comment := &domain.Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    actor.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to create comment", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, err
	}

	s.publishCommentEvent(ctx, comment, task)
	s.notifyParticipants(ctx, actor, task, comment)

	author := actor.ToBrief()
	response := comment.ToResponse(author)
	return &response, nil
}

// Update редактирует комментарий. Редактировать может только автор.
func (s *CommentService) Update(ctx context.Context, actor *domain.User, commentID string, req domain.CommentUpdateRequest) (*domain.CommentResponse, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != actor.ID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	comment.Content = req.Content
	comment.IsEdited = true
	comment.EditedAt = &now
	comment.UpdatedAt = now

	if err := s.repo.Update(ctx, comment); err != nil {
		s.logger.Error("Failed to update comment", err, map[string]interface{}{
			"comment_id": commentID,
		})
		return nil, err
	}

	author := actor.ToBrief()
	response := comment.ToResponse(author)
	return &response, nil
}

// Delete удаляет комментарий. Удалять может автор,
// администратор или владелец проекта.
func (s *CommentService) Delete(ctx context.Context, actor *domain.User, commentID string) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != actor.ID && !actor.IsAdmin() {
		_, project, err := s.getTaskWithProject(ctx, comment.TaskID)
		if err != nil {
			return err
		}
		if project.OwnerID != actor.ID {
			return domain.ErrForbidden
		}
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		s.logger.Error("Failed to delete comment", err, map[string]interface{}{
			"comment_id": commentID,
		})
		return err
	}
	return nil
}

// ListByTask возвращает комментарии задачи в хронологическом порядке
func (s *CommentService) ListByTask(ctx context.Context, actor *domain.User, taskID string, page, pageSize int) (*domain.PagedResponse, error) {
	_, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanViewProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	filter := repository.CommentFilter{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}

	comments, err := s.repo.ListByTask(ctx, taskID, filter)
	if err != nil {
		s.logger.Error("Failed to list comments", err, map[string]interface{}{
			"task_id": taskID,
		})
		return nil, err
	}

	total, err := s.repo.CountByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(comments))
	seen := map[string]bool{}
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			authorIDs = append(authorIDs, c.UserID)
		}
	}

	authors := map[string]domain.UserBrief{}
	if len(authorIDs) > 0 {
		users, err := s.userRepo.GetByIDs(ctx, authorIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			authors[u.ID] = u.ToBrief()
		}
	}

	responses := make([]domain.CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, c.ToResponse(authors[c.UserID]))
	}

	response := domain.NewPagedResponse(responses, total, page, pageSize)
	return &response, nil
}

// notifyParticipants уведомляет исполнителя, наблюдателей и
// упомянутых пользователей о новом комментарии
func (s *CommentService) notifyParticipants(ctx context.Context, actor *domain.User, task *domain.Task, comment *domain.Comment) {
	recipients := map[string]bool{}
	if task.CreatedBy != actor.ID {
		recipients[task.CreatedBy] = true
	}
	if task.AssignedTo != nil && *task.AssignedTo != actor.ID {
		recipients[*task.AssignedTo] = true
	}
	for _, watcherID := range task.Watchers {
		if watcherID != actor.ID {
			recipients[watcherID] = true
		}
	}

	mentioned := s.resolveMentions(ctx, comment.Content)
	for _, userID := range mentioned {
		// Упоминание имеет собственный тип уведомления
		delete(recipients, userID)
	}

	entityType := "task"
	if len(recipients) > 0 {
		userIDs := make([]string, 0, len(recipients))
		for id := range recipients {
			userIDs = append(userIDs, id)
		}
		s.publishNotification(ctx, &messaging.NotificationEvent{
			Type:             messaging.EventTypeNotification,
			UserIDs:          userIDs,
			NotificationType: string(domain.NotificationTypeCommentAdded),
			Title:            "New comment",
			Message:          task.Title,
			EntityID:         &task.ID,
			EntityType:       &entityType,
			ActorID:          &actor.ID,
		})
	}

	mentionRecipients := make([]string, 0, len(mentioned))
	for _, userID := range mentioned {
		if userID != actor.ID {
			mentionRecipients = append(mentionRecipients, userID)
		}
	}
	if len(mentionRecipients) > 0 {
		s.publishNotification(ctx, &messaging.NotificationEvent{
			Type:             messaging.EventTypeNotification,
			UserIDs:          mentionRecipients,
			NotificationType: string(domain.NotificationTypeMentioned),
			Title:            "You were mentioned",
			Message:          task.Title,
			EntityID:         &task.ID,
			EntityType:       &entityType,
			ActorID:          &actor.ID,
		})
	}
}

// resolveMentions сопоставляет @упоминания в тексте с email
// зарегистрированных пользователей
func (s *CommentService) resolveMentions(ctx context.Context, content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	ids := []string{}
	seen := map[string]bool{}
	for _, m := range matches {
		handle := m[1]
		if !strings.Contains(handle, "@") {
			continue
		}
		user, err := s.userRepo.GetByEmail(ctx, handle)
		if err != nil || user == nil {
			continue
		}
		if !seen[user.ID] {
			seen[user.ID] = true
			ids = append(ids, user.ID)
		}
	}
	return ids
}

func (s *CommentService) publishCommentEvent(ctx context.Context, comment *domain.Comment, task *domain.Task) {
	event := &messaging.CommentEvent{
		Type:       messaging.EventTypeCommentAdded,
		CommentID:  comment.ID,
		TaskID:     task.ID,
		TaskTitle:  task.Title,
		ProjectID:  task.ProjectID,
		UserID:     comment.UserID,
		Content:    comment.Content,
		OccurredAt: time.Now(),
	}
	if err := s.producer.PublishCommentEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish comment event", map[string]interface{}{
			"comment_id": comment.ID,
			"error":      err.Error(),
		})
	}
}

func (s *CommentService) publishNotification(ctx context.Context, event *messaging.NotificationEvent) {
	event.OccurredAt = time.Now()
	if err := s.producer.PublishNotification(ctx, event); err != nil {
		s.logger.Warn("Failed to publish notification event", map[string]interface{}{
			"type":  event.NotificationType,
			"error": err.Error(),
		})
	}
}

func (s *CommentService) getComment(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

func (s *CommentService) getTaskWithProject(ctx context.Context, taskID string) (*domain.Task, *domain.Project, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, ErrTaskNotFound
	}

	project, err := s.projectRepo.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, ErrProjectNotFound
	}
	return task, project, nil
}
