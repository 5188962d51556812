package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/messaging"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/internal/repository/cache"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Блокировки, защищающие фоновые задачи от параллельного
// запуска на нескольких экземплярах планировщика
const (
	lockOverdueScan     = "scheduler:overdue-scan"
	lockProgressRefresh = "scheduler:progress-refresh"
	lockArchiveSweep    = "scheduler:archive-sweep"

	jobLockTTL = 10 * time.Minute
)

// SchedulerService запускает периодические фоновые задачи:
// поиск просроченных задач, пересчет прогресса проектов
// и архивирование давно завершенных задач
type SchedulerService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	producer    *messaging.KafkaProducer
	cacheRepo   *cache.RedisRepository
	cron        *cron.Cron
	config      *config.SchedulerConfig
	logger      logger.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService
func NewSchedulerService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	producer *messaging.KafkaProducer,
	cacheRepo *cache.RedisRepository,
	config *config.SchedulerConfig,
	logger logger.Logger,
) *SchedulerService {
	return &SchedulerService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		producer:    producer,
		cacheRepo:   cacheRepo,
		cron:        cron.New(),
		config:      config,
		logger:      logger,
	}
}

// Start запускает планировщик
func (s *SchedulerService) Start(ctx context.Context) error {
	s.logger.Info("Starting scheduler service")

	s.registerJobs()
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.logger.Info("Stopping scheduler service")
		s.cron.Stop()
	}()

	return nil
}

// registerJobs регистрирует фоновые задачи по расписанию
func (s *SchedulerService) registerJobs() {
	if _, err := s.cron.AddFunc(s.config.OverdueScanCron, s.scanOverdueTasks); err != nil {
		s.logger.Error("Failed to schedule overdue scan", err)
	}

	if _, err := s.cron.AddFunc(s.config.ProgressRefreshCron, s.refreshProjectProgress); err != nil {
		s.logger.Error("Failed to schedule progress refresh", err)
	}

	if _, err := s.cron.AddFunc(s.config.ArchiveSweepCron, s.archiveCompletedTasks); err != nil {
		s.logger.Error("Failed to schedule archive sweep", err)
	}
}

// scanOverdueTasks находит просроченные задачи и задачи с истекающим
// сроком и уведомляет их исполнителей
func (s *SchedulerService) scanOverdueTasks() {
	ctx := context.Background()
	if !s.acquire(ctx, lockOverdueScan) {
		return
	}
	defer s.release(ctx, lockOverdueScan)

	now := time.Now()

	overdue, err := s.taskRepo.GetOverdueTasks(ctx, now)
	if err != nil {
		s.logger.Error("Failed to get overdue tasks", err)
		return
	}

	for _, task := range overdue {
		s.notifyAssignee(ctx, task, domain.NotificationTypeTaskOverdue, "Task overdue")
	}

	dueSoon, err := s.findTasksDueSoon(ctx, now)
	if err != nil {
		s.logger.Error("Failed to get tasks due soon", err)
		return
	}

	for _, task := range dueSoon {
		s.notifyAssignee(ctx, task, domain.NotificationTypeDeadlineSoon, "Deadline approaching")
	}

	s.logger.Info("Overdue scan finished", map[string]interface{}{
		"overdue":  len(overdue),
		"due_soon": len(dueSoon),
	})
}

// findTasksDueSoon возвращает незавершенные задачи со сроком
// в ближайшие сутки
func (s *SchedulerService) findTasksDueSoon(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	dueBefore := now.Add(24 * time.Hour)
	filter := repository.TaskFilter{
		DueAfter:  &now,
		DueBefore: &dueBefore,
		Limit:     500,
	}
	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	active := tasks[:0]
	for _, task := range tasks {
		if task.Status != domain.TaskStatusCompleted && task.Status != domain.TaskStatusCancelled {
			active = append(active, task)
		}
	}
	return active, nil
}

// refreshProjectProgress пересчитывает прогресс всех проектов,
// в которых есть задачи
func (s *SchedulerService) refreshProjectProgress() {
	ctx := context.Background()
	if !s.acquire(ctx, lockProgressRefresh) {
		return
	}
	defer s.release(ctx, lockProgressRefresh)

	projectIDs, err := s.taskRepo.ProjectIDsWithTasks(ctx)
	if err != nil {
		s.logger.Error("Failed to get projects with tasks", err)
		return
	}

	updated := 0
	for _, projectID := range projectIDs {
		total, completed, err := s.taskRepo.CountByProject(ctx, projectID)
		if err != nil {
			s.logger.Error("Failed to count project tasks", err, map[string]interface{}{
				"project_id": projectID,
			})
			continue
		}

		progress := domain.CalculateProgress(total, completed)
		if err := s.projectRepo.UpdateProgress(ctx, projectID, progress); err != nil {
			s.logger.Error("Failed to update project progress", err, map[string]interface{}{
				"project_id": projectID,
			})
			continue
		}
		updated++
	}

	s.logger.Info("Project progress refreshed", map[string]interface{}{
		"projects": updated,
	})
}

// archiveCompletedTasks архивирует проекты, завершенные
// дольше настроенного срока назад
func (s *SchedulerService) archiveCompletedTasks() {
	ctx := context.Background()
	if !s.acquire(ctx, lockArchiveSweep) {
		return
	}
	defer s.release(ctx, lockArchiveSweep)

	cutoff := time.Now().Add(-s.config.ArchiveAfter)
	archived, err := s.projectRepo.ArchiveCompletedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to archive completed projects", err)
		return
	}

	s.logger.Info("Archive sweep finished", map[string]interface{}{
		"archived": archived,
	})
}

// notifyAssignee отправляет событие уведомления исполнителю задачи
func (s *SchedulerService) notifyAssignee(ctx context.Context, task *domain.Task, notifType domain.NotificationType, title string) {
	if task.AssignedTo == nil {
		return
	}

	entityType := "task"
	event := &messaging.NotificationEvent{
		Type:             messaging.EventTypeNotification,
		UserIDs:          []string{*task.AssignedTo},
		NotificationType: string(notifType),
		Title:            title,
		Message:          task.Title,
		EntityID:         &task.ID,
		EntityType:       &entityType,
		OccurredAt:       time.Now(),
	}
	if err := s.producer.PublishNotification(ctx, event); err != nil {
		s.logger.Warn("Failed to publish scheduler notification", map[string]interface{}{
			"task_id": task.ID,
			"type":    string(notifType),
			"error":   err.Error(),
		})
	}
}

func (s *SchedulerService) acquire(ctx context.Context, key string) bool {
	ok, err := s.cacheRepo.AcquireLock(ctx, key, jobLockTTL)
	if err != nil {
		s.logger.Warn("Failed to acquire job lock", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return ok
}

func (s *SchedulerService) release(ctx context.Context, key string) {
	if err := s.cacheRepo.ReleaseLock(ctx, key); err != nil {
		s.logger.Warn("Failed to release job lock", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
