package service

import (
	"context"
	"testing"
	"time"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/logger"
)

// stubTaskRepo хранит задачи и связи в памяти
type stubTaskRepo struct {
	tasks map[string]*domain.Task
	deps  map[string][]domain.TaskDependency
}

func (s *stubTaskRepo) Create(ctx context.Context, task *domain.Task) error { return nil }

func (s *stubTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks[id], nil
}

func (s *stubTaskRepo) Update(ctx context.Context, task *domain.Task) error { return nil }
func (s *stubTaskRepo) Delete(ctx context.Context, id string) error         { return nil }

func (s *stubTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]*domain.Task, error) {
	return nil, nil
}

func (s *stubTaskRepo) Count(ctx context.Context, filter repository.TaskFilter) (int, error) {
	return 0, nil
}

func (s *stubTaskRepo) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, progress int, completedAt *time.Time) error {
	return nil
}

func (s *stubTaskRepo) UpdateAssignee(ctx context.Context, taskID string, assigneeID *string) error {
	return nil
}

func (s *stubTaskRepo) UpdatePositions(ctx context.Context, projectID string, taskIDs []string) error {
	return nil
}

func (s *stubTaskRepo) GetOverdueTasks(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	return nil, nil
}

func (s *stubTaskRepo) AddSubtask(ctx context.Context, subtask *domain.Subtask) error    { return nil }
func (s *stubTaskRepo) UpdateSubtask(ctx context.Context, subtask *domain.Subtask) error { return nil }

func (s *stubTaskRepo) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	return nil
}

func (s *stubTaskRepo) GetSubtasks(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	return nil, nil
}

func (s *stubTaskRepo) GetLabels(ctx context.Context, taskID string) ([]string, error) {
	return nil, nil
}

func (s *stubTaskRepo) UpdateLabels(ctx context.Context, taskID string, labels []string) error {
	return nil
}

func (s *stubTaskRepo) AddWatcher(ctx context.Context, taskID, userID string) error    { return nil }
func (s *stubTaskRepo) RemoveWatcher(ctx context.Context, taskID, userID string) error { return nil }

func (s *stubTaskRepo) GetWatchers(ctx context.Context, taskID string) ([]string, error) {
	return nil, nil
}

func (s *stubTaskRepo) GetDependencies(ctx context.Context, taskID string) ([]domain.TaskDependency, error) {
	return s.deps[taskID], nil
}

func (s *stubTaskRepo) UpdateDependencies(ctx context.Context, taskID string, deps []domain.TaskDependency) error {
	return nil
}

func (s *stubTaskRepo) AddTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	return nil
}

func (s *stubTaskRepo) GetTimeEntries(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	return nil, nil
}

func (s *stubTaskRepo) AddAttachment(ctx context.Context, attachment *domain.Attachment) error {
	return nil
}

func (s *stubTaskRepo) DeleteAttachment(ctx context.Context, taskID, attachmentID string) error {
	return nil
}

func (s *stubTaskRepo) GetAttachments(ctx context.Context, taskID string) ([]domain.Attachment, error) {
	return nil, nil
}

func (s *stubTaskRepo) CountByProject(ctx context.Context, projectID string) (int, int, error) {
	return 0, 0, nil
}

func (s *stubTaskRepo) ProjectIDsWithTasks(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestCheckDependencies(t *testing.T) {
	ctx := context.Background()

	repo := &stubTaskRepo{
		tasks: map[string]*domain.Task{
			"a": {ID: "a", ProjectID: "p1"},
			"b": {ID: "b", ProjectID: "p1"},
			"c": {ID: "c", ProjectID: "p1"},
			"d": {ID: "d", ProjectID: "p1"},
			"x": {ID: "x", ProjectID: "p2"},
		},
		// b -> c -> a: добавление a -> b замкнет цикл
		deps: map[string][]domain.TaskDependency{
			"b": {{DependsOnID: "c", Type: domain.DependencyBlocks}},
			"c": {{DependsOnID: "a", Type: domain.DependencyBlocks}},
		},
	}
	svc := &TaskService{repo: repo, logger: logger.NewLogger("disabled", true)}

	taskA := repo.tasks["a"]

	link := func(id string) []domain.TaskDependency {
		return []domain.TaskDependency{{DependsOnID: id, Type: domain.DependencyBlocks}}
	}

	tests := []struct {
		name      string
		dependsOn []domain.TaskDependency
		wantErr   error
	}{
		{"без связей", nil, nil},
		{"связь с самой собой", link("a"), ErrSelfDependency},
		{"несуществующая задача", link("ghost"), ErrTaskNotFound},
		{"задача из другого проекта", link("x"), ErrForeignDependency},
		{"транзитивный цикл", link("b"), ErrCyclicDependency},
		{"корректная связь", link("d"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.checkDependencies(ctx, taskA, tt.dependsOn)
			if err != tt.wantErr {
				t.Errorf("checkDependencies() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDependsOnTransitively(t *testing.T) {
	ctx := context.Background()
	repo := &stubTaskRepo{
		deps: map[string][]domain.TaskDependency{
			"a": {{DependsOnID: "b"}},
			"b": {{DependsOnID: "c"}},
			// Ромб с повторным посещением
			"c": {{DependsOnID: "d"}, {DependsOnID: "b"}},
		},
	}
	svc := &TaskService{repo: repo, logger: logger.NewLogger("disabled", true)}

	reaches, err := svc.dependsOnTransitively(ctx, "a", "d")
	if err != nil {
		t.Fatalf("dependsOnTransitively() error = %v", err)
	}
	if !reaches {
		t.Error("dependsOnTransitively(a, d) = false, want true")
	}

	reaches, err = svc.dependsOnTransitively(ctx, "d", "a")
	if err != nil {
		t.Fatalf("dependsOnTransitively() error = %v", err)
	}
	if reaches {
		t.Error("dependsOnTransitively(d, a) = true, want false")
	}
}

func TestNormalizeDependencies(t *testing.T) {
	deps := normalizeDependencies([]domain.TaskDependency{
		{DependsOnID: "a"},
		{DependsOnID: "b", Type: domain.DependencyRelated},
	})

	if deps[0].Type != domain.DependencyBlocks {
		t.Errorf("Type = %s, want %s", deps[0].Type, domain.DependencyBlocks)
	}
	if deps[1].Type != domain.DependencyRelated {
		t.Errorf("Type = %s, want %s", deps[1].Type, domain.DependencyRelated)
	}
}

func TestAddAttachment(t *testing.T) {
	ctx := context.Background()
	log := logger.NewLogger("disabled", true)

	assignee := "u1"
	repo := &stubTaskRepo{
		tasks: map[string]*domain.Task{
			"t1": {ID: "t1", ProjectID: "p1", CreatedBy: "u2", AssignedTo: &assignee},
		},
	}
	userRepo := &stubUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Role: domain.UserRoleMember},
	}}
	projectRepo := &stubProjectRepo{projects: map[string]*domain.Project{
		"p1": {ID: "p1", OwnerID: "u2"},
	}}
	svc := &TaskService{
		repo:        repo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		resolver:    access.NewResolver(userRepo, projectRepo, log),
		logger:      log,
	}

	actor := &domain.User{ID: "u1", Role: domain.UserRoleMember}
	req := domain.AttachmentCreateRequest{
		FileName: "report.pdf",
		FileURL:  "https://files.local/report.pdf",
		FileSize: 2048,
	}

	task, err := svc.AddAttachment(ctx, actor, "t1", req)
	if err != nil {
		t.Fatalf("AddAttachment() error = %v", err)
	}
	if len(task.Attachments) != 1 {
		t.Fatalf("len(Attachments) = %d, want 1", len(task.Attachments))
	}

	att := task.Attachments[0]
	if att.ID == "" || att.FileName != "report.pdf" || att.UploadedBy != "u1" {
		t.Errorf("Attachment = %+v, want заполненные метаданные", att)
	}

	// Пользователь без доступа к проекту не добавляет вложения
	stranger := &domain.User{ID: "u3", Role: domain.UserRoleMember}
	if _, err := svc.AddAttachment(ctx, stranger, "t1", req); err != domain.ErrForbidden {
		t.Errorf("AddAttachment() error = %v, want %v", err, domain.ErrForbidden)
	}

	if err := svc.RemoveAttachment(ctx, actor, "t1", att.ID); err != nil {
		t.Errorf("RemoveAttachment() error = %v", err)
	}
}
