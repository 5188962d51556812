package access

import (
	"context"
	"testing"
	"time"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/logger"
)

// fakeUserRepo хранит пользователей в памяти
type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }
func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string) error { return nil }

func (f *fakeUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	return 0, nil
}

// fakeProjectRepo хранит участников и доступные проекты в памяти
type fakeProjectRepo struct {
	members    map[string]*domain.ProjectMember
	accessible []string
}

func memberKey(projectID, userID string) string { return projectID + "/" + userID }

func (f *fakeProjectRepo) Create(ctx context.Context, project *domain.Project) error { return nil }
func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return nil, nil
}
func (f *fakeProjectRepo) Update(ctx context.Context, project *domain.Project) error { return nil }
func (f *fakeProjectRepo) Delete(ctx context.Context, id string) error               { return nil }

func (f *fakeProjectRepo) List(ctx context.Context, filter repository.ProjectFilter) ([]*domain.Project, error) {
	return nil, nil
}

func (f *fakeProjectRepo) Count(ctx context.Context, filter repository.ProjectFilter) (int, error) {
	return 0, nil
}

func (f *fakeProjectRepo) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	return nil
}

func (f *fakeProjectRepo) UpdateMember(ctx context.Context, projectID, userID string, role domain.ProjectMemberRole) error {
	return nil
}

func (f *fakeProjectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	return nil
}

func (f *fakeProjectRepo) GetMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	return nil, nil
}

func (f *fakeProjectRepo) GetMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	return f.members[memberKey(projectID, userID)], nil
}

func (f *fakeProjectRepo) GetAccessibleProjectIDs(ctx context.Context, userID string) ([]string, error) {
	return f.accessible, nil
}

func (f *fakeProjectRepo) UpdateProgress(ctx context.Context, projectID string, progress int) error {
	return nil
}

func (f *fakeProjectRepo) ArchiveCompletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func newTestResolver(users map[string]*domain.User, members map[string]*domain.ProjectMember, accessible []string) *Resolver {
	return NewResolver(
		&fakeUserRepo{users: users},
		&fakeProjectRepo{members: members, accessible: accessible},
		logger.NewLogger("disabled", true),
	)
}

func TestResolveScope(t *testing.T) {
	ctx := context.Background()

	t.Run("администратор видит все", func(t *testing.T) {
		resolver := newTestResolver(map[string]*domain.User{
			"admin": {ID: "admin", Role: domain.UserRoleAdmin},
		}, nil, nil)

		scope, err := resolver.ResolveScope(ctx, "admin")
		if err != nil {
			t.Fatalf("ResolveScope() error = %v", err)
		}
		if !scope.All {
			t.Error("scope.All = false, want true")
		}
	})

	t.Run("участник видит свои проекты", func(t *testing.T) {
		resolver := newTestResolver(map[string]*domain.User{
			"u1": {ID: "u1", Role: domain.UserRoleMember},
		}, nil, []string{"p1", "p2"})

		scope, err := resolver.ResolveScope(ctx, "u1")
		if err != nil {
			t.Fatalf("ResolveScope() error = %v", err)
		}
		if scope.All {
			t.Error("scope.All = true, want false")
		}
		if len(scope.ProjectIDs) != 2 {
			t.Errorf("len(ProjectIDs) = %d, want 2", len(scope.ProjectIDs))
		}
	})

	t.Run("пользователь без проектов получает пустую область", func(t *testing.T) {
		resolver := newTestResolver(map[string]*domain.User{
			"u1": {ID: "u1", Role: domain.UserRoleMember},
		}, nil, nil)

		scope, err := resolver.ResolveScope(ctx, "u1")
		if err != nil {
			t.Fatalf("ResolveScope() error = %v", err)
		}
		if !scope.IsEmpty() {
			t.Error("scope.IsEmpty() = false, want true")
		}
	})

	t.Run("неизвестный пользователь", func(t *testing.T) {
		resolver := newTestResolver(map[string]*domain.User{}, nil, nil)

		_, err := resolver.ResolveScope(ctx, "ghost")
		if err != domain.ErrNotFound {
			t.Errorf("ResolveScope() error = %v, want %v", err, domain.ErrNotFound)
		}
	})
}

func TestCanViewProject(t *testing.T) {
	ctx := context.Background()
	project := &domain.Project{ID: "p1", OwnerID: "owner"}

	tests := []struct {
		name   string
		user   *domain.User
		member *domain.ProjectMember
		want   bool
	}{
		{"администратор", &domain.User{ID: "x", Role: domain.UserRoleAdmin}, nil, true},
		{"владелец", &domain.User{ID: "owner", Role: domain.UserRoleMember}, nil, true},
		{"участник", &domain.User{ID: "m1", Role: domain.UserRoleMember},
			&domain.ProjectMember{ProjectID: "p1", UserID: "m1", Role: domain.ProjectMemberRoleViewer}, true},
		{"посторонний", &domain.User{ID: "out", Role: domain.UserRoleMember}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := map[string]*domain.ProjectMember{}
			if tt.member != nil {
				members[memberKey(tt.member.ProjectID, tt.member.UserID)] = tt.member
			}
			resolver := newTestResolver(nil, members, nil)

			got, err := resolver.CanViewProject(ctx, tt.user, project)
			if err != nil {
				t.Fatalf("CanViewProject() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanViewProject() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManageProject(t *testing.T) {
	ctx := context.Background()
	project := &domain.Project{ID: "p1", OwnerID: "owner"}

	tests := []struct {
		name   string
		user   *domain.User
		member *domain.ProjectMember
		want   bool
	}{
		{"владелец", &domain.User{ID: "owner", Role: domain.UserRoleMember}, nil, true},
		{"администратор проекта", &domain.User{ID: "m1", Role: domain.UserRoleMember},
			&domain.ProjectMember{ProjectID: "p1", UserID: "m1", Role: domain.ProjectMemberRoleAdmin}, true},
		{"обычный участник", &domain.User{ID: "m2", Role: domain.UserRoleMember},
			&domain.ProjectMember{ProjectID: "p1", UserID: "m2", Role: domain.ProjectMemberRoleMember}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := map[string]*domain.ProjectMember{}
			if tt.member != nil {
				members[memberKey(tt.member.ProjectID, tt.member.UserID)] = tt.member
			}
			resolver := newTestResolver(nil, members, nil)

			got, err := resolver.CanManageProject(ctx, tt.user, project)
			if err != nil {
				t.Fatalf("CanManageProject() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanManageProject() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanEditTask(t *testing.T) {
	ctx := context.Background()
	project := &domain.Project{ID: "p1", OwnerID: "owner"}
	assignee := "worker"

	resolver := newTestResolver(nil, nil, nil)

	t.Run("исполнитель может изменять свою задачу", func(t *testing.T) {
		task := &domain.Task{ID: "t1", ProjectID: "p1", AssignedTo: &assignee}
		user := &domain.User{ID: "worker", Role: domain.UserRoleMember}

		got, err := resolver.CanEditTask(ctx, user, task, project)
		if err != nil {
			t.Fatalf("CanEditTask() error = %v", err)
		}
		if !got {
			t.Error("CanEditTask() = false, want true")
		}
	})

	t.Run("посторонний не может изменять задачу", func(t *testing.T) {
		task := &domain.Task{ID: "t1", ProjectID: "p1"}
		user := &domain.User{ID: "out", Role: domain.UserRoleMember}

		got, err := resolver.CanEditTask(ctx, user, task, project)
		if err != nil {
			t.Fatalf("CanEditTask() error = %v", err)
		}
		if got {
			t.Error("CanEditTask() = true, want false")
		}
	})
}

func TestCanDeleteTask(t *testing.T) {
	ctx := context.Background()
	project := &domain.Project{ID: "p1", OwnerID: "owner"}
	resolver := newTestResolver(nil, nil, nil)

	tests := []struct {
		name string
		user *domain.User
		task *domain.Task
		want bool
	}{
		{"автор задачи", &domain.User{ID: "creator", Role: domain.UserRoleMember},
			&domain.Task{CreatedBy: "creator"}, true},
		{"владелец проекта", &domain.User{ID: "owner", Role: domain.UserRoleMember},
			&domain.Task{CreatedBy: "creator"}, true},
		{"посторонний", &domain.User{ID: "out", Role: domain.UserRoleMember},
			&domain.Task{CreatedBy: "creator"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.CanDeleteTask(ctx, tt.user, tt.task, project)
			if err != nil {
				t.Fatalf("CanDeleteTask() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanDeleteTask() = %v, want %v", got, tt.want)
			}
		})
	}
}
