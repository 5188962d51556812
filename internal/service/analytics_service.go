package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/internal/repository/cache"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

// AnalyticsService собирает агрегированные отчеты по задачам,
// проектам и команде. Каждый отчет складывается из независимых
// SQL-агрегаций, которые выполняются параллельно.
type AnalyticsService struct {
	repo        repository.AnalyticsRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	resolver    *access.Resolver
	cacheRepo   *cache.RedisRepository
	cfg         config.AnalyticsConfig
	logger      logger.Logger
}

// NewAnalyticsService создает новый экземпляр AnalyticsService
func NewAnalyticsService(repo repository.AnalyticsRepository, projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository, resolver *access.Resolver, cacheRepo *cache.RedisRepository,
	cfg config.AnalyticsConfig, logger logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:        repo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		resolver:    resolver,
		cacheRepo:   cacheRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// rangeStart возвращает нижнюю границу отчетного периода
func (s *AnalyticsService) rangeStart(days int) time.Time {
	if days <= 0 {
		days = s.cfg.DefaultTimeRangeDays
	}
	return time.Now().AddDate(0, 0, -days)
}

// Dashboard возвращает сводный дашборд в пределах доступа пользователя.
// Доступен только менеджерам и администраторам.
func (s *AnalyticsService) Dashboard(ctx context.Context, actor *domain.User, rangeDays int) (*domain.DashboardAnalytics, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}

	scope, err := s.resolver.ResolveScope(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:%s:%d", actor.ID, rangeDays)
	var cached domain.DashboardAnalytics
	if s.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	since := s.rangeStart(rangeDays)
	now := time.Now()
	result := &domain.DashboardAnalytics{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.buildSummary(gctx, scope, since)
		if err != nil {
			return err
		}
		result.Summary = *summary
		return nil
	})
	g.Go(func() error {
		stats, err := s.repo.StatusDistribution(gctx, scope)
		if err != nil {
			return err
		}
		result.TaskStatusStats = stats
		return nil
	})
	g.Go(func() error {
		stats, err := s.repo.PriorityDistribution(gctx, scope)
		if err != nil {
			return err
		}
		result.TaskPriorityStats = stats
		return nil
	})
	g.Go(func() error {
		stats, err := s.repo.ProjectStatusDistribution(gctx, scope)
		if err != nil {
			return err
		}
		result.ProjectStatusStats = stats
		return nil
	})
	g.Go(func() error {
		trend, err := s.repo.CompletionTrend(gctx, scope, since)
		if err != nil {
			return err
		}
		result.RecentActivity = trend
		return nil
	})
	g.Go(func() error {
		trend, err := s.repo.ProductivityTrend(gctx, scope, since)
		if err != nil {
			return err
		}
		result.ProductivityStats = trend
		return nil
	})
	g.Go(func() error {
		performance, err := s.repo.UserPerformance(gctx, scope, s.cfg.TopListLimit)
		if err != nil {
			return err
		}
		result.UserPerformance = performance
		return nil
	})
	g.Go(func() error {
		overdue, err := s.repo.OverdueByPriority(gctx, scope, now)
		if err != nil {
			return err
		}
		result.OverdueStats = overdue
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build dashboard analytics", err, map[string]interface{}{
			"user_id": actor.ID,
		})
		return nil, err
	}

	s.cacheResult(ctx, cacheKey, result)
	return result, nil
}

// Project возвращает аналитику одного проекта
func (s *AnalyticsService) Project(ctx context.Context, actor *domain.User, projectID string) (*domain.ProjectAnalytics, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	allowed, err := s.resolver.CanViewProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	cacheKey := fmt.Sprintf("project:%s", projectID)
	var cached domain.ProjectAnalytics
	if s.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	since := s.rangeStart(0)
	result := &domain.ProjectAnalytics{ProjectID: projectID}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.repo.ProjectTaskStats(gctx, projectID)
		if err != nil {
			return err
		}
		result.TaskStats = stats
		return nil
	})
	g.Go(func() error {
		trends, err := s.repo.WeeklyTaskTrend(gctx, projectID, since)
		if err != nil {
			return err
		}
		result.TaskTrends = trends
		return nil
	})
	g.Go(func() error {
		contributions, err := s.repo.MemberContributions(gctx, projectID)
		if err != nil {
			return err
		}
		result.MemberContributions = contributions
		return nil
	})
	g.Go(func() error {
		tracking, err := s.repo.TimeTrackingSummary(gctx, projectID)
		if err != nil {
			return err
		}
		result.TimeTracking = tracking
		return nil
	})
	g.Go(func() error {
		burndown, err := s.repo.BurndownSummary(gctx, projectID)
		if err != nil {
			return err
		}
		// У проекта без задач отдается нулевая сводка
		if burndown != nil {
			result.BurndownData = *burndown
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build project analytics", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, err
	}

	s.cacheResult(ctx, cacheKey, result)
	return result, nil
}

// User возвращает аналитику одного пользователя.
// Чужой отчет доступен только администратору.
func (s *AnalyticsService) User(ctx context.Context, actor *domain.User, userID string, rangeDays int) (*domain.UserAnalytics, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if actor.ID != userID && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	cacheKey := fmt.Sprintf("user:%s:%d", userID, rangeDays)
	var cached domain.UserAnalytics
	if s.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	since := s.rangeStart(rangeDays)
	result := &domain.UserAnalytics{UserID: userID}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.repo.UserTaskStats(gctx, userID)
		if err != nil {
			return err
		}
		result.TaskStats = stats
		return nil
	})
	g.Go(func() error {
		trends, err := s.repo.UserProductivityTrend(gctx, userID, since)
		if err != nil {
			return err
		}
		result.ProductivityTrends = trends
		return nil
	})
	g.Go(func() error {
		spent, err := s.repo.TimeSpentByProject(gctx, userID)
		if err != nil {
			return err
		}
		result.TimeSpentByProject = spent
		return nil
	})
	g.Go(func() error {
		recent, err := s.repo.RecentTasks(gctx, userID, since, s.cfg.TopListLimit)
		if err != nil {
			return err
		}
		result.RecentActivity = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build user analytics", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	s.cacheResult(ctx, cacheKey, result)
	return result, nil
}

// Team возвращает аналитику по всей команде.
// Доступна менеджерам и администраторам.
func (s *AnalyticsService) Team(ctx context.Context, actor *domain.User, rangeDays int) (*domain.TeamAnalytics, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}

	cacheKey := fmt.Sprintf("team:%d", rangeDays)
	var cached domain.TeamAnalytics
	if s.getCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	since := s.rangeStart(rangeDays)
	result := &domain.TeamAnalytics{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		productivity, err := s.repo.TeamProductivity(gctx, since)
		if err != nil {
			return err
		}
		result.TeamProductivity = productivity
		return nil
	})
	g.Go(func() error {
		collaboration, err := s.repo.CollaborationStats(gctx, since, s.cfg.TopListLimit)
		if err != nil {
			return err
		}
		result.CollaborationStats = collaboration
		return nil
	})
	g.Go(func() error {
		workload, err := s.repo.WorkloadDistribution(gctx)
		if err != nil {
			return err
		}
		result.WorkloadDistribution = workload
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build team analytics", err)
		return nil, err
	}

	s.cacheResult(ctx, cacheKey, result)
	return result, nil
}

// buildSummary собирает сводные счетчики дашборда
func (s *AnalyticsService) buildSummary(ctx context.Context, scope domain.AccessScope, since time.Time) (*domain.AnalyticsSummary, error) {
	summary := &domain.AnalyticsSummary{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.repo.CountTasks(gctx, scope)
		if err != nil {
			return err
		}
		summary.TotalTasks = count
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.CountProjects(gctx, scope)
		if err != nil {
			return err
		}
		summary.TotalProjects = count
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.CountActiveUsers(gctx)
		if err != nil {
			return err
		}
		summary.ActiveUsers = count
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.CountCompletedSince(gctx, scope, since)
		if err != nil {
			return err
		}
		summary.CompletedInRange = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if summary.TotalTasks > 0 {
		summary.CompletionRate = float64(summary.CompletedInRange) / float64(summary.TotalTasks) * 100.0
	}
	return summary, nil
}

// getCached читает отчет из кэша; кэш опционален
func (s *AnalyticsService) getCached(ctx context.Context, key string, dest interface{}) bool {
	if s.cacheRepo == nil {
		return false
	}
	return s.cacheRepo.GetAnalytics(ctx, key, dest) == nil
}

func (s *AnalyticsService) cacheResult(ctx context.Context, key string, value interface{}) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.CacheAnalytics(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache analytics report", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
