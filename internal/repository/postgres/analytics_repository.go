package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/pkg/logger"
)

// AnalyticsRepository реализует движок агрегаций поверх PostgreSQL.
// Каждый метод — одна агрегация одним запросом; ограничение по области
// видимости встраивается в WHERE, пустая область дает условие FALSE.
type AnalyticsRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewAnalyticsRepository создает новый экземпляр AnalyticsRepository
func NewAnalyticsRepository(db *sqlx.DB, logger logger.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{
		db:     db,
		logger: logger,
	}
}

// CountTasks возвращает количество задач в области видимости
func (r *AnalyticsRepository) CountTasks(ctx context.Context, scope domain.AccessScope) (int, error) {
	args := []interface{}{}
	argIndex := 1
	where := "WHERE TRUE"
	if cond := scopeCondition(scope, "project_id", &args, &argIndex); cond != "" {
		where = "WHERE " + cond
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM tasks %s`, where)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.Error("Failed to count tasks", err)
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// CountProjects возвращает количество проектов в области видимости
func (r *AnalyticsRepository) CountProjects(ctx context.Context, scope domain.AccessScope) (int, error) {
	args := []interface{}{}
	argIndex := 1
	where := "WHERE TRUE"
	if cond := scopeCondition(scope, "id", &args, &argIndex); cond != "" {
		where = "WHERE " + cond
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM projects %s`, where)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.Error("Failed to count projects", err)
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// CountActiveUsers возвращает количество активных пользователей
func (r *AnalyticsRepository) CountActiveUsers(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE is_active = TRUE`

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		r.logger.Error("Failed to count active users", err)
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// CountCompletedSince возвращает количество задач, завершенных после since
func (r *AnalyticsRepository) CountCompletedSince(ctx context.Context, scope domain.AccessScope, since time.Time) (int, error) {
	args := []interface{}{}
	argIndex := 1
	scopeCond := scopeCondition(scope, "project_id", &args, &argIndex)

	args = append(args, domain.TaskStatusCompleted, since)
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM tasks
		WHERE %s status = $%d AND completed_at >= $%d
	`, andCond(scopeCond), argIndex, argIndex+1)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.Error("Failed to count completed tasks", err)
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return count, nil
}

// StatusDistribution возвращает распределение задач по статусам
func (r *AnalyticsRepository) StatusDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error) {
	return r.taskDistribution(ctx, scope, "status")
}

// PriorityDistribution возвращает распределение задач по приоритетам
func (r *AnalyticsRepository) PriorityDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error) {
	return r.taskDistribution(ctx, scope, "priority")
}

func (r *AnalyticsRepository) taskDistribution(ctx context.Context, scope domain.AccessScope, column string) ([]domain.CategoryCount, error) {
	args := []interface{}{}
	argIndex := 1
	where := ""
	if cond := scopeCondition(scope, "project_id", &args, &argIndex); cond != "" {
		where = "WHERE " + cond
	}

	query := fmt.Sprintf(`
		SELECT %s AS category, COUNT(*) AS count
		FROM tasks
		%s
		GROUP BY %s
	`, column, where, column)

	result := []domain.CategoryCount{}
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.Error("Failed to get task distribution", err, map[string]interface{}{
			"column": column,
		})
		return nil, fmt.Errorf("failed to get task distribution: %w", err)
	}
	return result, nil
}

// ProjectStatusDistribution возвращает распределение проектов по статусам
func (r *AnalyticsRepository) ProjectStatusDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error) {
	args := []interface{}{}
	argIndex := 1
	where := ""
	if cond := scopeCondition(scope, "id", &args, &argIndex); cond != "" {
		where = "WHERE " + cond
	}

	query := fmt.Sprintf(`
		SELECT status AS category, COUNT(*) AS count
		FROM projects
		%s
		GROUP BY status
	`, where)

	result := []domain.CategoryCount{}
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.Error("Failed to get project status distribution", err)
		return nil, fmt.Errorf("failed to get project status distribution: %w", err)
	}
	return result, nil
}

// OverdueByPriority возвращает распределение просроченных задач по приоритетам
func (r *AnalyticsRepository) OverdueByPriority(ctx context.Context, scope domain.AccessScope, now time.Time) ([]domain.CategoryCount, error) {
	args := []interface{}{}
	argIndex := 1
	scopeCond := scopeCondition(scope, "project_id", &args, &argIndex)

	args = append(args, now, domain.TaskStatusCompleted, domain.TaskStatusCancelled)
	query := fmt.Sprintf(`
		SELECT priority AS category, COUNT(*) AS count
		FROM tasks
		WHERE %s due_date < $%d AND status NOT IN ($%d, $%d)
		GROUP BY priority
	`, andCond(scopeCond), argIndex, argIndex+1, argIndex+2)

	result := []domain.CategoryCount{}
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.Error("Failed to get overdue distribution", err)
		return nil, fmt.Errorf("failed to get overdue distribution: %w", err)
	}
	return result, nil
}

// CompletionTrend возвращает дневные корзины задач, созданных после since.
// Порядок по возрастанию даты обязателен: клиент строит график по порядку строк.
func (r *AnalyticsRepository) CompletionTrend(ctx context.Context, scope domain.AccessScope, since time.Time) ([]domain.TrendPoint, error) {
	args := []interface{}{}
	argIndex := 1
	scopeCond := scopeCondition(scope, "project_id", &args, &argIndex)

	args = append(args, since)
	query := fmt.Sprintf(`
		SELECT
			EXTRACT(YEAR FROM created_at)::int AS year,
			EXTRACT(MONTH FROM created_at)::int AS month,
			EXTRACT(DAY FROM created_at)::int AS day,
			COUNT(*) AS count
		FROM tasks
		WHERE %s created_at >= $%d
		GROUP BY year, month, day
		ORDER BY year, month, day
	`, andCond(scopeCond), argIndex)

	result := []domain.TrendPoint{}
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.Error("Failed to get completion trend", err)
		return nil, fmt.Errorf("failed to get completion trend: %w", err)
	}
	return result, nil
}

// ProductivityTrend возвращает дневные корзины созданных и завершенных задач
func (r *AnalyticsRepository) ProductivityTrend(ctx context.Context, scope domain.AccessScope, since time.Time) ([]domain.ProductivityPoint, error) {
	args := []interface{}{}
	argIndex := 1
	scopeCond := scopeCondition(scope, "project_id", &args, &argIndex)

	args = append(args, since, domain.TaskStatusCompleted)
	query := fmt.Sprintf(`
		SELECT
			EXTRACT(YEAR FROM created_at)::int AS year,
			EXTRACT(MONTH FROM created_at)::int AS month,
			EXTRACT(DAY FROM created_at)::int AS day,
			COUNT(*) AS created,
			COUNT(*) FILTER (WHERE status = $%d) AS completed
		FROM tasks
		WHERE %s created_at >= $%d
		GROUP BY year, month, day
		ORDER BY year, month, day
	`, argIndex+1, andCond(scopeCond), argIndex)

	result := []domain.ProductivityPoint{}
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.Error("Failed to get productivity trend", err)
		return nil, fmt.Errorf("failed to get productivity trend: %w", err)
	}
	return result, nil
}

// WeeklyTaskTrend возвращает недельные корзины задач проекта
func (r *AnalyticsRepository) WeeklyTaskTrend(ctx context.Context, projectID string, since time.Time) ([]domain.WeeklyTrendPoint, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM created_at)::int AS year,
			EXTRACT(MONTH FROM created_at)::int AS month,
			EXTRACT(WEEK FROM created_at)::int AS week,
			COUNT(*) AS created,
			COUNT(*) FILTER (WHERE status = $3) AS completed
		FROM tasks
		WHERE project_id = $1 AND created_at >= $2
		GROUP BY year, month, week
		ORDER BY year, month, week
	`

	result := []domain.WeeklyTrendPoint{}
	if err := r.db.SelectContext(ctx, &result, query, projectID, since, domain.TaskStatusCompleted); err != nil {
		r.logger.Error("Failed to get weekly task trend", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, fmt.Errorf("failed to get weekly task trend: %w", err)
	}
	return result, nil
}

// UserPerformance возвращает показатели исполнителей, отсортированные
// по убыванию процента завершения. NULLIF защищает от деления на ноль.
func (r *AnalyticsRepository) UserPerformance(ctx context.Context, scope domain.AccessScope, limit int) ([]domain.UserPerformanceEntry, error) {
	args := []interface{}{}
	argIndex := 1
	outerCond := scopeCondition(scope, "t.project_id", &args, &argIndex)
	subCond := scopeCondition(scope, "et.project_id", &args, &argIndex)
	if subCond != "" {
		subCond = "AND " + subCond
	}

	args = append(args, domain.TaskStatusCompleted, limit)
	query := fmt.Sprintf(`
		SELECT
			u.id AS user_id,
			u.name,
			u.email,
			u.avatar,
			COUNT(t.id) AS total_tasks,
			COUNT(t.id) FILTER (WHERE t.status = $%d) AS completed_tasks,
			COALESCE(ROUND(
				COUNT(t.id) FILTER (WHERE t.status = $%d)::numeric * 100
					/ NULLIF(COUNT(t.id), 0), 0), 0) AS completion_rate,
			COALESCE(ROUND(AVG(t.progress)::numeric, 2), 0) AS avg_progress,
			COALESCE(ROUND((
				SELECT SUM(e.minutes)::numeric / 60
				FROM task_time_entries e
				JOIN tasks et ON et.id = e.task_id
				WHERE e.user_id = u.id %s
			), 2), 0) AS total_time_spent
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to
		WHERE %s t.assigned_to IS NOT NULL
		GROUP BY u.id, u.name, u.email, u.avatar
		ORDER BY completion_rate DESC
		LIMIT $%d
	`, argIndex, argIndex, subCond, andCond(outerCond), argIndex+1)

	result := []domain.UserPerformanceEntry{}
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.Error("Failed to get user performance", err)
		return nil, fmt.Errorf("failed to get user performance: %w", err)
	}
	return result, nil
}

// TeamProductivity возвращает показатели всех активных пользователей.
// LEFT JOIN оставляет в выборке пользователей без задач с нулями.
func (r *AnalyticsRepository) TeamProductivity(ctx context.Context, since time.Time) ([]domain.TeamProductivityEntry, error) {
	query := `
		SELECT
			u.id AS user_id,
			u.name,
			u.email,
			u.department,
			COUNT(t.id) AS total_tasks,
			COUNT(t.id) FILTER (WHERE t.status = $2) AS completed_tasks,
			COUNT(t.id) FILTER (WHERE t.status = $3) AS in_progress_tasks,
			COALESCE(ROUND(
				COUNT(t.id) FILTER (WHERE t.status = $2)::numeric * 100
					/ NULLIF(COUNT(t.id), 0), 0), 0) AS completion_rate,
			COALESCE(ROUND((
				SELECT SUM(e.minutes)::numeric / 60
				FROM task_time_entries e
				WHERE e.user_id = u.id AND e.logged_at >= $1
			), 2), 0) AS total_hours_logged
		FROM users u
		LEFT JOIN tasks t ON t.assigned_to = u.id AND t.created_at >= $1
		WHERE u.is_active = TRUE
		GROUP BY u.id, u.name, u.email, u.department
		ORDER BY completed_tasks DESC
	`

	result := []domain.TeamProductivityEntry{}
	if err := r.db.SelectContext(ctx, &result, query, since, domain.TaskStatusCompleted, domain.TaskStatusInProgress); err != nil {
		r.logger.Error("Failed to get team productivity", err)
		return nil, fmt.Errorf("failed to get team productivity: %w", err)
	}
	return result, nil
}

// WorkloadDistribution возвращает загрузку исполнителей по незавершенным
// задачам. Приоритет взвешивается как low=1, medium=2, high=3, urgent=4.
func (r *AnalyticsRepository) WorkloadDistribution(ctx context.Context) ([]domain.WorkloadEntry, error) {
	query := `
		SELECT
			u.id AS user_id,
			u.name,
			u.email,
			COUNT(t.id) AS active_tasks,
			COALESCE(ROUND(SUM(t.estimated_hours)::numeric, 2), 0) AS estimated_hours,
			COALESCE(ROUND(AVG(
				CASE t.priority
					WHEN 'low' THEN 1
					WHEN 'medium' THEN 2
					WHEN 'high' THEN 3
					WHEN 'urgent' THEN 4
					ELSE 2
				END)::numeric, 2), 0) AS avg_priority,
			COALESCE(ROUND((COUNT(t.id) * AVG(
				CASE t.priority
					WHEN 'low' THEN 1
					WHEN 'medium' THEN 2
					WHEN 'high' THEN 3
					WHEN 'urgent' THEN 4
					ELSE 2
				END))::numeric, 2), 0) AS workload_score
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to
		WHERE t.status NOT IN ($1, $2) AND t.assigned_to IS NOT NULL
		GROUP BY u.id, u.name, u.email
		ORDER BY workload_score DESC
	`

	result := []domain.WorkloadEntry{}
	if err := r.db.SelectContext(ctx, &result, query, domain.TaskStatusCompleted, domain.TaskStatusCancelled); err != nil {
		r.logger.Error("Failed to get workload distribution", err)
		return nil, fmt.Errorf("failed to get workload distribution: %w", err)
	}
	return result, nil
}

// CollaborationStats возвращает активность обсуждений по проектам за период.
// Сначала комментарии сворачиваются по задачам, затем по проектам.
func (r *AnalyticsRepository) CollaborationStats(ctx context.Context, since time.Time, limit int) ([]domain.CollaborationEntry, error) {
	query := `
		SELECT
			p.id AS project_id,
			p.name AS project_name,
			SUM(tc.comment_count)::int AS total_comments,
			ROUND(AVG(tc.commenter_count)::numeric, 2) AS avg_commenters,
			COUNT(tc.task_id) AS task_count
		FROM (
			SELECT
				c.task_id,
				COUNT(*) AS comment_count,
				COUNT(DISTINCT c.user_id) AS commenter_count
			FROM task_comments c
			WHERE c.created_at >= $1
			GROUP BY c.task_id
		) tc
		JOIN tasks t ON t.id = tc.task_id
		JOIN projects p ON p.id = t.project_id
		GROUP BY p.id, p.name
		ORDER BY total_comments DESC
		LIMIT $2
	`

	result := []domain.CollaborationEntry{}
	if err := r.db.SelectContext(ctx, &result, query, since, limit); err != nil {
		r.logger.Error("Failed to get collaboration stats", err)
		return nil, fmt.Errorf("failed to get collaboration stats: %w", err)
	}
	return result, nil
}

// MemberContributions возвращает вклад участников проекта
func (r *AnalyticsRepository) MemberContributions(ctx context.Context, projectID string) ([]domain.MemberContribution, error) {
	query := `
		SELECT
			u.id AS user_id,
			u.name,
			u.email,
			u.avatar,
			COUNT(t.id) AS assigned_tasks,
			COUNT(t.id) FILTER (WHERE t.status = $2) AS completed_tasks,
			COALESCE((
				SELECT SUM(e.minutes)
				FROM task_time_entries e
				JOIN tasks et ON et.id = e.task_id
				WHERE e.user_id = u.id AND et.project_id = $1
			), 0) AS minutes_logged
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to
		WHERE t.project_id = $1 AND t.assigned_to IS NOT NULL
		GROUP BY u.id, u.name, u.email, u.avatar
		ORDER BY assigned_tasks DESC
	`

	result := []domain.MemberContribution{}
	if err := r.db.SelectContext(ctx, &result, query, projectID, domain.TaskStatusCompleted); err != nil {
		r.logger.Error("Failed to get member contributions", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, fmt.Errorf("failed to get member contributions: %w", err)
	}
	return result, nil
}

// TimeTrackingSummary возвращает дневные корзины списанного времени проекта
func (r *AnalyticsRepository) TimeTrackingSummary(ctx context.Context, projectID string) ([]domain.TimeTrackingPoint, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM e.logged_at)::int AS year,
			EXTRACT(MONTH FROM e.logged_at)::int AS month,
			EXTRACT(DAY FROM e.logged_at)::int AS day,
			SUM(e.minutes)::int AS minutes
		FROM task_time_entries e
		JOIN tasks t ON t.id = e.task_id
		WHERE t.project_id = $1
		GROUP BY year, month, day
		ORDER BY year, month, day
	`

	result := []domain.TimeTrackingPoint{}
	if err := r.db.SelectContext(ctx, &result, query, projectID); err != nil {
		r.logger.Error("Failed to get time tracking summary", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, fmt.Errorf("failed to get time tracking summary: %w", err)
	}
	return result, nil
}

// BurndownSummary возвращает сводку burndown проекта.
// При отсутствии задач возвращает nil: дефолт с нулями подставляет сервис.
func (r *AnalyticsRepository) BurndownSummary(ctx context.Context, projectID string) (*domain.BurndownSummary, error) {
	query := `
		SELECT
			COUNT(*) AS total_tasks,
			COUNT(*) FILTER (WHERE t.status = $2) AS completed_tasks,
			COALESCE(ROUND(SUM(t.estimated_hours)::numeric, 2), 0) AS estimated_hours,
			COALESCE(ROUND((
				SELECT SUM(e.minutes)::numeric / 60
				FROM task_time_entries e
				JOIN tasks et ON et.id = e.task_id
				WHERE et.project_id = $1
			), 2), 0) AS actual_hours
		FROM tasks t
		WHERE t.project_id = $1
		HAVING COUNT(*) > 0
	`

	var summary domain.BurndownSummary
	err := r.db.GetContext(ctx, &summary, query, projectID, domain.TaskStatusCompleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get burndown summary", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, fmt.Errorf("failed to get burndown summary: %w", err)
	}
	return &summary, nil
}

// ProjectTaskStats возвращает распределение задач проекта по статусам
func (r *AnalyticsRepository) ProjectTaskStats(ctx context.Context, projectID string) ([]domain.CategoryCount, error) {
	query := `
		SELECT status AS category, COUNT(*) AS count
		FROM tasks
		WHERE project_id = $1
		GROUP BY status
	`

	result := []domain.CategoryCount{}
	if err := r.db.SelectContext(ctx, &result, query, projectID); err != nil {
		r.logger.Error("Failed to get project task stats", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, fmt.Errorf("failed to get project task stats: %w", err)
	}
	return result, nil
}

// UserTaskStats возвращает статистику задач пользователя по статусам
func (r *AnalyticsRepository) UserTaskStats(ctx context.Context, userID string) ([]domain.UserTaskStatsEntry, error) {
	query := `
		SELECT
			t.status,
			COUNT(*) AS count,
			COALESCE(ROUND(AVG(t.progress)), 0) AS avg_progress,
			COALESCE(ROUND(SUM(t.estimated_hours)::numeric, 2), 0) AS estimated_hours,
			COALESCE(ROUND((
				SELECT SUM(e.minutes)::numeric / 60
				FROM task_time_entries e
				JOIN tasks et ON et.id = e.task_id
				WHERE e.user_id = $1 AND et.status = t.status
			), 2), 0) AS actual_hours
		FROM tasks t
		WHERE t.assigned_to = $1
		GROUP BY t.status
	`

	result := []domain.UserTaskStatsEntry{}
	if err := r.db.SelectContext(ctx, &result, query, userID); err != nil {
		r.logger.Error("Failed to get user task stats", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to get user task stats: %w", err)
	}
	return result, nil
}

// UserProductivityTrend возвращает дневные корзины задач пользователя
func (r *AnalyticsRepository) UserProductivityTrend(ctx context.Context, userID string, since time.Time) ([]domain.ProductivityPoint, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM created_at)::int AS year,
			EXTRACT(MONTH FROM created_at)::int AS month,
			EXTRACT(DAY FROM created_at)::int AS day,
			COUNT(*) AS created,
			COUNT(*) FILTER (WHERE status = $3) AS completed
		FROM tasks
		WHERE assigned_to = $1 AND created_at >= $2
		GROUP BY year, month, day
		ORDER BY year, month, day
	`

	result := []domain.ProductivityPoint{}
	if err := r.db.SelectContext(ctx, &result, query, userID, since, domain.TaskStatusCompleted); err != nil {
		r.logger.Error("Failed to get user productivity trend", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to get user productivity trend: %w", err)
	}
	return result, nil
}

// TimeSpentByProject возвращает суммарное время пользователя по проектам
func (r *AnalyticsRepository) TimeSpentByProject(ctx context.Context, userID string) ([]domain.TimeByProjectEntry, error) {
	query := `
		SELECT
			p.id AS project_id,
			p.name AS project_name,
			SUM(e.minutes)::int AS minutes,
			COUNT(DISTINCT e.task_id) AS task_count
		FROM task_time_entries e
		JOIN tasks t ON t.id = e.task_id
		JOIN projects p ON p.id = t.project_id
		WHERE e.user_id = $1
		GROUP BY p.id, p.name
		ORDER BY minutes DESC
	`

	result := []domain.TimeByProjectEntry{}
	if err := r.db.SelectContext(ctx, &result, query, userID); err != nil {
		r.logger.Error("Failed to get time spent by project", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to get time spent by project: %w", err)
	}
	return result, nil
}

// RecentTasks возвращает задачи пользователя, обновленные после since
func (r *AnalyticsRepository) RecentTasks(ctx context.Context, userID string, since time.Time, limit int) ([]domain.RecentTaskEntry, error) {
	query := `
		SELECT
			t.id,
			t.title,
			t.status,
			t.priority,
			t.project_id,
			p.name AS project_name,
			t.updated_at
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.assigned_to = $1 AND t.updated_at >= $2
		ORDER BY t.updated_at DESC
		LIMIT $3
	`

	result := []domain.RecentTaskEntry{}
	if err := r.db.SelectContext(ctx, &result, query, userID, since, limit); err != nil {
		r.logger.Error("Failed to get recent tasks", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to get recent tasks: %w", err)
	}
	return result, nil
}

// andCond дополняет условие WHERE связкой AND, если условие не пустое
func andCond(cond string) string {
	if cond == "" {
		return ""
	}
	return cond + " AND"
}
