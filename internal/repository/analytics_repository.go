package repository

import (
	"context"
	"time"

	"github.com/yourusername/teamflow/internal/domain"
)

// AnalyticsRepository определяет интерфейс движка агрегаций.
// Каждый метод выполняет одну агрегацию; область видимости scope
// ограничивает выборку доступными проектами, пустая область дает
// пустой результат.
type AnalyticsRepository interface {
	// CountTasks возвращает количество задач в области видимости
	CountTasks(ctx context.Context, scope domain.AccessScope) (int, error)

	// CountProjects возвращает количество проектов в области видимости
	CountProjects(ctx context.Context, scope domain.AccessScope) (int, error)

	// CountActiveUsers возвращает количество активных пользователей
	CountActiveUsers(ctx context.Context) (int, error)

	// CountCompletedSince возвращает количество задач, завершенных после since
	CountCompletedSince(ctx context.Context, scope domain.AccessScope, since time.Time) (int, error)

	// StatusDistribution возвращает распределение задач по статусам
	StatusDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error)

	// PriorityDistribution возвращает распределение задач по приоритетам
	PriorityDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error)

	// ProjectStatusDistribution возвращает распределение проектов по статусам
	ProjectStatusDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error)

	// OverdueByPriority возвращает распределение просроченных задач по приоритетам
	OverdueByPriority(ctx context.Context, scope domain.AccessScope, now time.Time) ([]domain.CategoryCount, error)

	// CompletionTrend возвращает дневные корзины задач, созданных после since,
	// отсортированные по возрастанию даты
	CompletionTrend(ctx context.Context, scope domain.AccessScope, since time.Time) ([]domain.TrendPoint, error)

	// ProductivityTrend возвращает дневные корзины созданных и завершенных задач
	ProductivityTrend(ctx context.Context, scope domain.AccessScope, since time.Time) ([]domain.ProductivityPoint, error)

	// WeeklyTaskTrend возвращает недельные корзины задач проекта
	WeeklyTaskTrend(ctx context.Context, projectID string, since time.Time) ([]domain.WeeklyTrendPoint, error)

	// UserPerformance возвращает показатели исполнителей, отсортированные
	// по убыванию процента завершения
	UserPerformance(ctx context.Context, scope domain.AccessScope, limit int) ([]domain.UserPerformanceEntry, error)

	// TeamProductivity возвращает показатели всех активных пользователей,
	// включая пользователей без задач
	TeamProductivity(ctx context.Context, since time.Time) ([]domain.TeamProductivityEntry, error)

	// WorkloadDistribution возвращает загрузку исполнителей по незавершенным
	// задачам, отсортированную по убыванию оценки загрузки
	WorkloadDistribution(ctx context.Context) ([]domain.WorkloadEntry, error)

	// CollaborationStats возвращает активность обсуждений по проектам
	// за период, не более limit проектов по количеству комментариев
	CollaborationStats(ctx context.Context, since time.Time, limit int) ([]domain.CollaborationEntry, error)

	// MemberContributions возвращает вклад участников проекта
	MemberContributions(ctx context.Context, projectID string) ([]domain.MemberContribution, error)

	// TimeTrackingSummary возвращает дневные корзины списанного времени проекта
	TimeTrackingSummary(ctx context.Context, projectID string) ([]domain.TimeTrackingPoint, error)

	// BurndownSummary возвращает сводку burndown проекта;
	// при отсутствии задач возвращает (nil, nil)
	BurndownSummary(ctx context.Context, projectID string) (*domain.BurndownSummary, error)

	// ProjectTaskStats возвращает распределение задач проекта по статусам
	ProjectTaskStats(ctx context.Context, projectID string) ([]domain.CategoryCount, error)

	// UserTaskStats возвращает статистику задач пользователя по статусам
	UserTaskStats(ctx context.Context, userID string) ([]domain.UserTaskStatsEntry, error)

	// UserProductivityTrend возвращает дневные корзины задач пользователя
	UserProductivityTrend(ctx context.Context, userID string, since time.Time) ([]domain.ProductivityPoint, error)

	// TimeSpentByProject возвращает суммарное время пользователя по проектам
	TimeSpentByProject(ctx context.Context, userID string) ([]domain.TimeByProjectEntry, error)

	// RecentTasks возвращает задачи пользователя, обновленные после since
	RecentTasks(ctx context.Context, userID string, since time.Time, limit int) ([]domain.RecentTaskEntry, error)
}
