package access

import (
	"context"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Resolver вычисляет область видимости и проверяет права доступа.
// Администратор видит все; остальные — проекты, где они владельцы
// или участники. Пустая область означает пустые выборки, а не ошибку.
type Resolver struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	logger      logger.Logger
}

// NewResolver создает новый экземпляр Resolver
func NewResolver(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, logger logger.Logger) *Resolver {
	return &Resolver{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// ResolveScope возвращает область видимости пользователя
func (r *Resolver) ResolveScope(ctx context.Context, userID string) (domain.AccessScope, error) {
	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		return domain.AccessScope{}, err
	}
	if user == nil {
		return domain.AccessScope{}, domain.ErrNotFound
	}

	if user.IsAdmin() {
		return domain.ScopeAll(), nil
	}

	ids, err := r.projectRepo.GetAccessibleProjectIDs(ctx, userID)
	if err != nil {
		return domain.AccessScope{}, err
	}
	return domain.ScopeProjects(ids), nil
}

// CanViewProject проверяет право просмотра проекта:
// администратор, владелец или участник
func (r *Resolver) CanViewProject(ctx context.Context, user *domain.User, project *domain.Project) (bool, error) {
	if user.IsAdmin() || project.OwnerID == user.ID {
		return true, nil
	}

	member, err := r.projectRepo.GetMember(ctx, project.ID, user.ID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// CanManageProject проверяет право управления проектом:
// администратор, владелец или участник с ролью admin
func (r *Resolver) CanManageProject(ctx context.Context, user *domain.User, project *domain.Project) (bool, error) {
	if user.IsAdmin() || project.OwnerID == user.ID {
		return true, nil
	}

	member, err := r.projectRepo.GetMember(ctx, project.ID, user.ID)
	if err != nil {
		return false, err
	}
	return member != nil && member.Role == domain.ProjectMemberRoleAdmin, nil
}

// CanEditTask проверяет право изменения задачи: помимо доступа к проекту,
// изменять задачу может назначенный исполнитель
func (r *Resolver) CanEditTask(ctx context.Context, user *domain.User, task *domain.Task, project *domain.Project) (bool, error) {
	if task.AssignedTo != nil && *task.AssignedTo == user.ID {
		return true, nil
	}
	return r.CanViewProject(ctx, user, project)
}

// CanDeleteTask проверяет право удаления задачи:
// администратор, владелец проекта или автор задачи
func (r *Resolver) CanDeleteTask(ctx context.Context, user *domain.User, task *domain.Task, project *domain.Project) (bool, error) {
	if user.IsAdmin() || project.OwnerID == user.ID || task.CreatedBy == user.ID {
		return true, nil
	}
	return false, nil
}
