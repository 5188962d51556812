package domain

import (
	"time"
)

// CategoryCount представляет одну строку распределения по категориям.
// Категории с нулевым количеством в выборку не попадают.
type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count" db:"count"`
}

// TrendPoint представляет дневную корзину количества задач
type TrendPoint struct {
	Year  int `json:"year" db:"year"`
	Month int `json:"month" db:"month"`
	Day   int `json:"day" db:"day"`
	Count int `json:"count" db:"count"`
}

// ProductivityPoint представляет дневную корзину созданных и завершенных задач
type ProductivityPoint struct {
	Year      int `json:"year" db:"year"`
	Month     int `json:"month" db:"month"`
	Day       int `json:"day" db:"day"`
	Created   int `json:"created" db:"created"`
	Completed int `json:"completed" db:"completed"`
}

// WeeklyTrendPoint представляет недельную корзину созданных и завершенных задач
type WeeklyTrendPoint struct {
	Year      int `json:"year" db:"year"`
	Month     int `json:"month" db:"month"`
	Week      int `json:"week" db:"week"`
	Created   int `json:"created" db:"created"`
	Completed int `json:"completed" db:"completed"`
}

// UserPerformanceEntry представляет показатели одного исполнителя
type UserPerformanceEntry struct {
	UserID         string  `json:"user_id" db:"user_id"`
	Name           string  `json:"name" db:"name"`
	Email          string  `json:"email" db:"email"`
	Avatar         *string `json:"avatar,omitempty" db:"avatar"`
	TotalTasks     int     `json:"total_tasks" db:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks" db:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate" db:"completion_rate"`
	AvgProgress    float64 `json:"avg_progress" db:"avg_progress"`
	TotalTimeSpent float64 `json:"total_time_spent" db:"total_time_spent"`
}

// TeamProductivityEntry представляет показатели участника команды.
// Пользователи без задач тоже попадают в выборку с нулями.
type TeamProductivityEntry struct {
	UserID           string  `json:"user_id" db:"user_id"`
	Name             string  `json:"name" db:"name"`
	Email            string  `json:"email" db:"email"`
	Department       *string `json:"department,omitempty" db:"department"`
	TotalTasks       int     `json:"total_tasks" db:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks" db:"completed_tasks"`
	InProgressTasks  int     `json:"in_progress_tasks" db:"in_progress_tasks"`
	CompletionRate   float64 `json:"completion_rate" db:"completion_rate"`
	TotalHoursLogged float64 `json:"total_hours_logged" db:"total_hours_logged"`
}

// WorkloadEntry представляет текущую загрузку исполнителя
type WorkloadEntry struct {
	UserID         string  `json:"user_id" db:"user_id"`
	Name           string  `json:"name" db:"name"`
	Email          string  `json:"email" db:"email"`
	ActiveTasks    int     `json:"active_tasks" db:"active_tasks"`
	EstimatedHours float64 `json:"estimated_hours" db:"estimated_hours"`
	AvgPriority    float64 `json:"avg_priority" db:"avg_priority"`
	WorkloadScore  float64 `json:"workload_score" db:"workload_score"`
}

// CollaborationEntry представляет активность обсуждений по проекту
type CollaborationEntry struct {
	ProjectID     string  `json:"project_id" db:"project_id"`
	ProjectName   string  `json:"project_name" db:"project_name"`
	TotalComments int     `json:"total_comments" db:"total_comments"`
	AvgCommenters float64 `json:"avg_commenters" db:"avg_commenters"`
	TaskCount     int     `json:"task_count" db:"task_count"`
}

// MemberContribution представляет вклад участника в проект
type MemberContribution struct {
	UserID         string  `json:"user_id" db:"user_id"`
	Name           string  `json:"name" db:"name"`
	Email          string  `json:"email" db:"email"`
	Avatar         *string `json:"avatar,omitempty" db:"avatar"`
	AssignedTasks  int     `json:"assigned_tasks" db:"assigned_tasks"`
	CompletedTasks int     `json:"completed_tasks" db:"completed_tasks"`
	MinutesLogged  int     `json:"minutes_logged" db:"minutes_logged"`
}

// TimeTrackingPoint представляет дневную корзину списанного времени
type TimeTrackingPoint struct {
	Year    int `json:"year" db:"year"`
	Month   int `json:"month" db:"month"`
	Day     int `json:"day" db:"day"`
	Minutes int `json:"minutes" db:"minutes"`
}

// BurndownSummary представляет сводку для burndown-графика проекта
type BurndownSummary struct {
	TotalTasks     int     `json:"total_tasks" db:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks" db:"completed_tasks"`
	EstimatedHours float64 `json:"estimated_hours" db:"estimated_hours"`
	ActualHours    float64 `json:"actual_hours" db:"actual_hours"`
}

// UserTaskStatsEntry представляет статистику задач пользователя по статусу
type UserTaskStatsEntry struct {
	Status         TaskStatus `json:"status" db:"status"`
	Count          int        `json:"count" db:"count"`
	AvgProgress    float64    `json:"avg_progress" db:"avg_progress"`
	EstimatedHours float64    `json:"estimated_hours" db:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours" db:"actual_hours"`
}

// TimeByProjectEntry представляет суммарное время пользователя по проекту
type TimeByProjectEntry struct {
	ProjectID   string `json:"project_id" db:"project_id"`
	ProjectName string `json:"project_name" db:"project_name"`
	Minutes     int    `json:"minutes" db:"minutes"`
	TaskCount   int    `json:"task_count" db:"task_count"`
}

// RecentTaskEntry представляет задачу в списке недавней активности
type RecentTaskEntry struct {
	ID          string       `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Status      TaskStatus   `json:"status" db:"status"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	ProjectID   string       `json:"project_id" db:"project_id"`
	ProjectName string       `json:"project_name" db:"project_name"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// AnalyticsSummary представляет сводные показатели дашборда
type AnalyticsSummary struct {
	TotalTasks       int     `json:"total_tasks"`
	TotalProjects    int     `json:"total_projects"`
	ActiveUsers      int     `json:"active_users"`
	CompletedInRange int     `json:"completed_in_range"`
	CompletionRate   float64 `json:"completion_rate"`
}

// DashboardAnalytics представляет ответ дашборда аналитики
type DashboardAnalytics struct {
	Summary            AnalyticsSummary       `json:"summary"`
	TaskStatusStats    []CategoryCount        `json:"task_status_stats"`
	TaskPriorityStats  []CategoryCount        `json:"task_priority_stats"`
	ProjectStatusStats []CategoryCount        `json:"project_status_stats"`
	RecentActivity     []TrendPoint           `json:"recent_activity"`
	ProductivityStats  []ProductivityPoint    `json:"productivity_stats"`
	UserPerformance    []UserPerformanceEntry `json:"user_performance"`
	OverdueStats       []CategoryCount        `json:"overdue_stats"`
}

// ProjectAnalytics представляет ответ аналитики проекта
type ProjectAnalytics struct {
	ProjectID           string               `json:"project_id"`
	TaskStats           []CategoryCount      `json:"task_stats"`
	TaskTrends          []WeeklyTrendPoint   `json:"task_trends"`
	MemberContributions []MemberContribution `json:"member_contributions"`
	TimeTracking        []TimeTrackingPoint  `json:"time_tracking"`
	BurndownData        BurndownSummary      `json:"burndown_data"`
}

// UserAnalytics представляет ответ аналитики пользователя
type UserAnalytics struct {
	UserID             string               `json:"user_id"`
	TaskStats          []UserTaskStatsEntry `json:"task_stats"`
	ProductivityTrends []ProductivityPoint  `json:"productivity_trends"`
	TimeSpentByProject []TimeByProjectEntry `json:"time_spent_by_project"`
	RecentActivity     []RecentTaskEntry    `json:"recent_activity"`
}

// TeamAnalytics представляет ответ аналитики команды
type TeamAnalytics struct {
	TeamProductivity     []TeamProductivityEntry `json:"team_productivity"`
	CollaborationStats   []CollaborationEntry    `json:"collaboration_stats"`
	WorkloadDistribution []WorkloadEntry         `json:"workload_distribution"`
}
