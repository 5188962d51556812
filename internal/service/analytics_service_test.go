package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

// stubAnalyticsRepo отдает фиксированные агрегации и запоминает
// область видимости последнего запроса
type stubAnalyticsRepo struct {
	lastScope  domain.AccessScope
	failCounts bool
	burndown   *domain.BurndownSummary
}

func (s *stubAnalyticsRepo) CountTasks(ctx context.Context, scope domain.AccessScope) (int, error) {
	s.lastScope = scope
	if s.failCounts {
		return 0, errors.New("aggregation failed")
	}
	return 10, nil
}

func (s *stubAnalyticsRepo) CountProjects(ctx context.Context, scope domain.AccessScope) (int, error) {
	return 2, nil
}

func (s *stubAnalyticsRepo) CountActiveUsers(ctx context.Context) (int, error) {
	return 3, nil
}

func (s *stubAnalyticsRepo) CountCompletedSince(ctx context.Context, scope domain.AccessScope, since time.Time) (int, error) {
	return 4, nil
}

func (s *stubAnalyticsRepo) StatusDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Category: "todo", Count: 6}, {Category: "completed", Count: 4}}, nil
}

func (s *stubAnalyticsRepo) PriorityDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Category: "high", Count: 10}}, nil
}

func (s *stubAnalyticsRepo) ProjectStatusDistribution(ctx context.Context, scope domain.AccessScope) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Category: "active", Count: 2}}, nil
}

func (s *stubAnalyticsRepo) OverdueByPriority(ctx context.Context, scope domain.AccessScope, now time.Time) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Category: "urgent", Count: 1}}, nil
}

func (s *stubAnalyticsRepo) CompletionTrend(ctx context.Context, scope domain.AccessScope, since time.Time) ([]domain.TrendPoint, error) {
	return []domain.TrendPoint{{Year: 2024, Month: 1, Day: 1, Count: 2}}, nil
}

func (s *stubAnalyticsRepo) ProductivityTrend(ctx context.Context, scope domain.AccessScope, since time.Time) ([]domain.ProductivityPoint, error) {
	return []domain.ProductivityPoint{{Year: 2024, Month: 1, Day: 1, Created: 3, Completed: 1}}, nil
}

func (s *stubAnalyticsRepo) WeeklyTaskTrend(ctx context.Context, projectID string, since time.Time) ([]domain.WeeklyTrendPoint, error) {
	return []domain.WeeklyTrendPoint{{Year: 2024, Month: 1, Week: 2, Created: 5, Completed: 2}}, nil
}

func (s *stubAnalyticsRepo) UserPerformance(ctx context.Context, scope domain.AccessScope, limit int) ([]domain.UserPerformanceEntry, error) {
	return []domain.UserPerformanceEntry{{UserID: "u1", TotalTasks: 5, CompletedTasks: 3}}, nil
}

func (s *stubAnalyticsRepo) TeamProductivity(ctx context.Context, since time.Time) ([]domain.TeamProductivityEntry, error) {
	return []domain.TeamProductivityEntry{{UserID: "u1", TotalTasks: 5}}, nil
}

func (s *stubAnalyticsRepo) WorkloadDistribution(ctx context.Context) ([]domain.WorkloadEntry, error) {
	return []domain.WorkloadEntry{{UserID: "u1", ActiveTasks: 2}}, nil
}

func (s *stubAnalyticsRepo) CollaborationStats(ctx context.Context, since time.Time, limit int) ([]domain.CollaborationEntry, error) {
	return []domain.CollaborationEntry{{ProjectID: "p1", TotalComments: 7}}, nil
}

func (s *stubAnalyticsRepo) MemberContributions(ctx context.Context, projectID string) ([]domain.MemberContribution, error) {
	return []domain.MemberContribution{{UserID: "u1", AssignedTasks: 4}}, nil
}

func (s *stubAnalyticsRepo) TimeTrackingSummary(ctx context.Context, projectID string) ([]domain.TimeTrackingPoint, error) {
	return []domain.TimeTrackingPoint{{Year: 2024, Month: 1, Day: 1, Minutes: 120}}, nil
}

func (s *stubAnalyticsRepo) BurndownSummary(ctx context.Context, projectID string) (*domain.BurndownSummary, error) {
	return s.burndown, nil
}

func (s *stubAnalyticsRepo) ProjectTaskStats(ctx context.Context, projectID string) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Category: "in-progress", Count: 3}}, nil
}

func (s *stubAnalyticsRepo) UserTaskStats(ctx context.Context, userID string) ([]domain.UserTaskStatsEntry, error) {
	return []domain.UserTaskStatsEntry{{Status: domain.TaskStatusCompleted, Count: 3}}, nil
}

func (s *stubAnalyticsRepo) UserProductivityTrend(ctx context.Context, userID string, since time.Time) ([]domain.ProductivityPoint, error) {
	return []domain.ProductivityPoint{{Year: 2024, Month: 1, Day: 2, Created: 1}}, nil
}

func (s *stubAnalyticsRepo) TimeSpentByProject(ctx context.Context, userID string) ([]domain.TimeByProjectEntry, error) {
	return []domain.TimeByProjectEntry{{ProjectID: "p1", Minutes: 60}}, nil
}

func (s *stubAnalyticsRepo) RecentTasks(ctx context.Context, userID string, since time.Time, limit int) ([]domain.RecentTaskEntry, error) {
	return []domain.RecentTaskEntry{{ID: "t1", Title: "Recent"}}, nil
}

// stubUserRepo хранит пользователей в памяти
type stubUserRepo struct {
	users map[string]*domain.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users[id], nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }
func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id string) error { return nil }

func (s *stubUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	return 0, nil
}

// stubProjectRepo хранит проекты и участников в памяти
type stubProjectRepo struct {
	projects map[string]*domain.Project
	members  map[string]*domain.ProjectMember
}

func projectMemberKey(projectID, userID string) string { return projectID + "/" + userID }

func (s *stubProjectRepo) Create(ctx context.Context, project *domain.Project) error { return nil }

func (s *stubProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects[id], nil
}

func (s *stubProjectRepo) Update(ctx context.Context, project *domain.Project) error { return nil }
func (s *stubProjectRepo) Delete(ctx context.Context, id string) error               { return nil }

func (s *stubProjectRepo) List(ctx context.Context, filter repository.ProjectFilter) ([]*domain.Project, error) {
	return nil, nil
}

func (s *stubProjectRepo) Count(ctx context.Context, filter repository.ProjectFilter) (int, error) {
	return 0, nil
}

func (s *stubProjectRepo) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	return nil
}

func (s *stubProjectRepo) UpdateMember(ctx context.Context, projectID, userID string, role domain.ProjectMemberRole) error {
	return nil
}

func (s *stubProjectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	return nil
}

func (s *stubProjectRepo) GetMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	return nil, nil
}

func (s *stubProjectRepo) GetMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	return s.members[projectMemberKey(projectID, userID)], nil
}

func (s *stubProjectRepo) GetAccessibleProjectIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	for id, p := range s.projects {
		if p.OwnerID == userID {
			ids = append(ids, id)
			continue
		}
		if s.members[projectMemberKey(id, userID)] != nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *stubProjectRepo) UpdateProgress(ctx context.Context, projectID string, progress int) error {
	return nil
}

func (s *stubProjectRepo) ArchiveCompletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func newAnalyticsFixture(repo *stubAnalyticsRepo, users map[string]*domain.User,
	projects map[string]*domain.Project, members map[string]*domain.ProjectMember) *AnalyticsService {
	log := logger.NewLogger("disabled", true)
	userRepo := &stubUserRepo{users: users}
	projectRepo := &stubProjectRepo{projects: projects, members: members}
	resolver := access.NewResolver(userRepo, projectRepo, log)

	return NewAnalyticsService(repo, projectRepo, userRepo, resolver, nil, config.AnalyticsConfig{
		DefaultTimeRangeDays: 30,
		TopListLimit:         10,
		CacheTTL:             time.Minute,
	}, log)
}

func TestAnalyticsDashboard(t *testing.T) {
	ctx := context.Background()
	admin := &domain.User{ID: "admin", Role: domain.UserRoleAdmin}
	repo := &stubAnalyticsRepo{}
	svc := newAnalyticsFixture(repo, map[string]*domain.User{"admin": admin}, nil, nil)

	result, err := svc.Dashboard(ctx, admin, 7)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if result.Summary.TotalTasks != 10 || result.Summary.CompletedInRange != 4 {
		t.Errorf("Summary = %+v, want 10 tasks and 4 completed", result.Summary)
	}
	if result.Summary.CompletionRate != 40.0 {
		t.Errorf("CompletionRate = %f, want 40", result.Summary.CompletionRate)
	}
	if len(result.TaskStatusStats) != 2 {
		t.Errorf("len(TaskStatusStats) = %d, want 2", len(result.TaskStatusStats))
	}
	if len(result.UserPerformance) != 1 {
		t.Errorf("len(UserPerformance) = %d, want 1", len(result.UserPerformance))
	}
	if !repo.lastScope.All {
		t.Error("администратор должен запрашивать полную область видимости")
	}
}

func TestAnalyticsDashboardForbiddenForMember(t *testing.T) {
	ctx := context.Background()
	member := &domain.User{ID: "u1", Role: domain.UserRoleMember}
	svc := newAnalyticsFixture(&stubAnalyticsRepo{}, map[string]*domain.User{"u1": member}, nil, nil)

	if _, err := svc.Dashboard(ctx, member, 7); err != domain.ErrForbidden {
		t.Errorf("Dashboard() error = %v, want %v", err, domain.ErrForbidden)
	}
}

func TestAnalyticsDashboardAggregationError(t *testing.T) {
	ctx := context.Background()
	admin := &domain.User{ID: "admin", Role: domain.UserRoleAdmin}
	repo := &stubAnalyticsRepo{failCounts: true}
	svc := newAnalyticsFixture(repo, map[string]*domain.User{"admin": admin}, nil, nil)

	if _, err := svc.Dashboard(ctx, admin, 7); err == nil {
		t.Fatal("Dashboard() error = nil, want aggregation error")
	}
}

func TestAnalyticsProject(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: "owner", Role: domain.UserRoleMember}
	outsider := &domain.User{ID: "out", Role: domain.UserRoleMember}
	projects := map[string]*domain.Project{"p1": {ID: "p1", OwnerID: "owner"}}

	t.Run("владелец получает отчет", func(t *testing.T) {
		svc := newAnalyticsFixture(&stubAnalyticsRepo{}, nil, projects, nil)

		result, err := svc.Project(ctx, owner, "p1")
		if err != nil {
			t.Fatalf("Project() error = %v", err)
		}
		if result.ProjectID != "p1" {
			t.Errorf("ProjectID = %q, want p1", result.ProjectID)
		}
		// Проект без задач получает нулевую burndown-сводку
		if result.BurndownData.TotalTasks != 0 {
			t.Errorf("BurndownData = %+v, want zero summary", result.BurndownData)
		}
	})

	t.Run("сводка burndown заполняется из агрегации", func(t *testing.T) {
		repo := &stubAnalyticsRepo{burndown: &domain.BurndownSummary{TotalTasks: 8, CompletedTasks: 3}}
		svc := newAnalyticsFixture(repo, nil, projects, nil)

		result, err := svc.Project(ctx, owner, "p1")
		if err != nil {
			t.Fatalf("Project() error = %v", err)
		}
		if result.BurndownData.TotalTasks != 8 || result.BurndownData.CompletedTasks != 3 {
			t.Errorf("BurndownData = %+v, want 8/3", result.BurndownData)
		}
	})

	t.Run("неизвестный проект", func(t *testing.T) {
		svc := newAnalyticsFixture(&stubAnalyticsRepo{}, nil, projects, nil)

		if _, err := svc.Project(ctx, owner, "ghost"); err != ErrProjectNotFound {
			t.Errorf("Project() error = %v, want %v", err, ErrProjectNotFound)
		}
	})

	t.Run("посторонний не видит отчет", func(t *testing.T) {
		svc := newAnalyticsFixture(&stubAnalyticsRepo{}, nil, projects, nil)

		if _, err := svc.Project(ctx, outsider, "p1"); err != domain.ErrForbidden {
			t.Errorf("Project() error = %v, want %v", err, domain.ErrForbidden)
		}
	})
}

func TestAnalyticsUser(t *testing.T) {
	ctx := context.Background()
	member := &domain.User{ID: "u1", Role: domain.UserRoleMember}
	other := &domain.User{ID: "u2", Role: domain.UserRoleMember}
	manager := &domain.User{ID: "m1", Role: domain.UserRoleManager}
	users := map[string]*domain.User{"u1": member, "u2": other, "m1": manager}

	svc := newAnalyticsFixture(&stubAnalyticsRepo{}, users, nil, nil)

	t.Run("свой отчет доступен", func(t *testing.T) {
		result, err := svc.User(ctx, member, "u1", 0)
		if err != nil {
			t.Fatalf("User() error = %v", err)
		}
		if result.UserID != "u1" || len(result.TaskStats) != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("чужой отчет запрещен участнику", func(t *testing.T) {
		if _, err := svc.User(ctx, other, "u1", 0); err != domain.ErrForbidden {
			t.Errorf("User() error = %v, want %v", err, domain.ErrForbidden)
		}
	})

	t.Run("чужой отчет запрещен менеджеру", func(t *testing.T) {
		if _, err := svc.User(ctx, manager, "u1", 0); err != domain.ErrForbidden {
			t.Errorf("User() error = %v, want %v", err, domain.ErrForbidden)
		}
	})

	t.Run("администратор видит чужой отчет", func(t *testing.T) {
		admin := &domain.User{ID: "a1", Role: domain.UserRoleAdmin}
		result, err := svc.User(ctx, admin, "u1", 0)
		if err != nil {
			t.Fatalf("User() error = %v", err)
		}
		if result.UserID != "u1" {
			t.Errorf("UserID = %q, want u1", result.UserID)
		}
	})

	t.Run("неизвестный пользователь", func(t *testing.T) {
		if _, err := svc.User(ctx, manager, "ghost", 0); err != ErrUserNotFound {
			t.Errorf("User() error = %v, want %v", err, ErrUserNotFound)
		}
	})
}

func TestAnalyticsTeam(t *testing.T) {
	ctx := context.Background()
	svc := newAnalyticsFixture(&stubAnalyticsRepo{}, nil, nil, nil)

	t.Run("участнику запрещено", func(t *testing.T) {
		member := &domain.User{ID: "u1", Role: domain.UserRoleMember}
		if _, err := svc.Team(ctx, member, 0); err != domain.ErrForbidden {
			t.Errorf("Team() error = %v, want %v", err, domain.ErrForbidden)
		}
	})

	t.Run("менеджер получает отчет", func(t *testing.T) {
		manager := &domain.User{ID: "m1", Role: domain.UserRoleManager}
		result, err := svc.Team(ctx, manager, 0)
		if err != nil {
			t.Fatalf("Team() error = %v", err)
		}
		if len(result.TeamProductivity) != 1 || len(result.WorkloadDistribution) != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}
