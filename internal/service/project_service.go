package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/messaging"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/internal/repository/cache"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Ошибки проектного сервиса
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrMemberNotFound  = errors.New("project member not found")
	ErrAlreadyMember   = errors.New("user is already a project member")
	ErrOwnerImmutable  = errors.New("project owner membership cannot be changed")
)

const defaultProjectColor = "#3b82f6"

// ProjectService представляет бизнес-логику для работы с проектами
type ProjectService struct {
	repo      repository.ProjectRepository
	userRepo  repository.UserRepository
	resolver  *access.Resolver
	producer  *messaging.KafkaProducer
	cacheRepo *cache.RedisRepository
	logger    logger.Logger
}

// NewProjectService создает новый экземпляр ProjectService
func NewProjectService(repo repository.ProjectRepository, userRepo repository.UserRepository,
	resolver *access.Resolver, producer *messaging.KafkaProducer,
	cacheRepo *cache.RedisRepository, logger logger.Logger) *ProjectService {
	return &ProjectService{
		repo:      repo,
		userRepo:  userRepo,
		resolver:  resolver,
		producer:  producer,
		cacheRepo: cacheRepo,
		logger:    logger,
	}
}

// Create создает новый проект. Создатель становится владельцем
// и автоматически включается в участники с ролью admin.
func (s *ProjectService) Create(ctx context.Context, actor *domain.User, req domain.ProjectCreateRequest) (*domain.ProjectResponse, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	project := &domain.Project{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatusPlanning,
		Priority:    domain.ProjectPriorityMedium,
		OwnerID:     actor.ID,
		Tags:        req.Tags,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Color:       defaultProjectColor,
		Settings: domain.ProjectSettings{
			AllowMemberInvite: true,
			NotificationsOn:   true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Priority != nil {
		project.Priority = *req.Priority
	}
	if req.Color != nil {
		project.Color = *req.Color
	}
	if req.Settings != nil {
		project.Settings = *req.Settings
	}

	members := []domain.ProjectMember{{
		ProjectID: project.ID,
		UserID:    actor.ID,
		Role:      domain.ProjectMemberRoleAdmin,
		JoinedAt:  now,
	}}
	for _, memberID := range req.MemberIDs {
		if memberID == actor.ID {
			continue
		}
		members = append(members, domain.ProjectMember{
			ProjectID: project.ID,
			UserID:    memberID,
			Role:      domain.ProjectMemberRoleMember,
			JoinedAt:  now,
		})
	}
	project.Members = members

	if err := s.repo.Create(ctx, project); err != nil {
		s.logger.Error("Failed to create project", err, map[string]interface{}{
			"name": req.Name,
		})
		return nil, err
	}

	s.publishProjectEvent(ctx, messaging.EventTypeProjectUpdated, project, actor.ID, "")

	s.logger.Info("Project created", map[string]interface{}{
		"project_id": project.ID,
		"owner_id":   actor.ID,
	})

	return s.toResponse(ctx, project)
}

// GetByID возвращает проект по ID с проверкой доступа
func (s *ProjectService) GetByID(ctx context.Context, actor *domain.User, id string) (*domain.ProjectResponse, error) {
	project, err := s.getProject(ctx, id)
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

	return s.toResponse(ctx, project)
}

// Update обновляет данные проекта
func (s *ProjectService) Update(ctx context.Context, actor *domain.User, id string, req domain.ProjectUpdateRequest) (*domain.ProjectResponse, error) {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.resolver.CanManageProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Priority != nil {
		project.Priority = *req.Priority
	}
	if req.Tags != nil {
		project.Tags = *req.Tags
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.Budget != nil {
		project.Budget = req.Budget
	}
	if req.Color != nil {
		project.Color = *req.Color
	}
	if req.IsArchived != nil {
		project.IsArchived = *req.IsArchived
	}
	if req.Settings != nil {
		project.Settings = *req.Settings
	}

	project.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, project); err != nil {
		s.logger.Error("Failed to update project", err, map[string]interface{}{
			"project_id": id,
		})
		return nil, err
	}

	s.invalidateProject(ctx, id)
	s.publishProjectEvent(ctx, messaging.EventTypeProjectUpdated, project, actor.ID, "")

	return s.toResponse(ctx, project)
}

// Delete удаляет проект вместе со всеми его задачами
func (s *ProjectService) Delete(ctx context.Context, actor *domain.User, id string) error {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && project.OwnerID != actor.ID {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete project", err, map[string]interface{}{
			"project_id": id,
		})
		return err
	}

	s.invalidateProject(ctx, id)

	s.logger.Info("Project deleted", map[string]interface{}{
		"project_id": id,
		"actor_id":   actor.ID,
	})
	return nil
}

// List возвращает проекты, доступные пользователю
func (s *ProjectService) List(ctx context.Context, actor *domain.User, opts domain.ProjectFilterOptions) (*domain.PagedResponse, error) {
	scope, err := s.resolver.ResolveScope(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.ProjectFilter{
		Scope:      &scope,
		Status:     opts.Status,
		Priority:   opts.Priority,
		OwnerID:    opts.OwnerID,
		SearchText: opts.SearchText,
		IsArchived: opts.IsArchived,
		Tags:       opts.Tags,
		OrderBy:    opts.SortBy,
		OrderDir:   opts.SortOrder,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}

	projects, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list projects", err)
		return nil, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count projects", err)
		return nil, err
	}

	responses := make([]domain.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		resp, err := s.toResponse(ctx, project)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	response := domain.NewPagedResponse(responses, total, page, pageSize)
	return &response, nil
}

// AddMember добавляет участника в проект
func (s *ProjectService) AddMember(ctx context.Context, actor *domain.User, projectID string, req domain.ProjectMemberRequest) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.checkMemberManage(ctx, actor, project); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	member := &domain.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      req.Role,
		JoinedAt:  time.Now(),
	}

	if err := s.repo.AddMember(ctx, member); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return ErrAlreadyMember
		}
		s.logger.Error("Failed to add project member", err, map[string]interface{}{
			"project_id": projectID,
			"user_id":    req.UserID,
		})
		return err
	}

	s.invalidateProject(ctx, projectID)
	s.publishProjectEvent(ctx, messaging.EventTypeMemberAdded, project, actor.ID, req.UserID)

	s.publishNotification(ctx, &messaging.NotificationEvent{
		Type:             messaging.EventTypeNotification,
		UserIDs:          []string{req.UserID},
		NotificationType: string(domain.NotificationTypeProjectInvite),
		Title:            "Added to project",
		Message:          project.Name,
		EntityID:         &project.ID,
		EntityType:       strPtr("project"),
		ActorID:          &actor.ID,
	})

	return nil
}

// UpdateMember изменяет роль участника проекта
func (s *ProjectService) UpdateMember(ctx context.Context, actor *domain.User, projectID, userID string, role domain.ProjectMemberRole) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.checkMemberManage(ctx, actor, project); err != nil {
		return err
	}

	// Роль владельца внутри проекта не меняется
	if userID == project.OwnerID {
		return ErrOwnerImmutable
	}

	member, err := s.repo.GetMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	if err := s.repo.UpdateMember(ctx, projectID, userID, role); err != nil {
		s.logger.Error("Failed to update project member", err, map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
		})
		return err
	}

	s.invalidateProject(ctx, projectID)
	return nil
}

// RemoveMember исключает участника из проекта.
// Участник может выйти из проекта сам; владелец выйти не может.
func (s *ProjectService) RemoveMember(ctx context.Context, actor *domain.User, projectID, userID string) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if userID == project.OwnerID {
		return ErrOwnerImmutable
	}

	if actor.ID != userID {
		if err := s.checkMemberManage(ctx, actor, project); err != nil {
			return err
		}
	}

	member, err := s.repo.GetMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	if err := s.repo.RemoveMember(ctx, projectID, userID); err != nil {
		s.logger.Error("Failed to remove project member", err, map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
		})
		return err
	}

	s.invalidateProject(ctx, projectID)
	s.publishProjectEvent(ctx, messaging.EventTypeMemberRemoved, project, actor.ID, userID)

	return nil
}

// GetMembers возвращает участников проекта
func (s *ProjectService) GetMembers(ctx context.Context, actor *domain.User, projectID string) ([]domain.ProjectMemberResponse, error) {
	project, err := s.getProject(ctx, projectID)
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

	return s.memberResponses(ctx, project.Members)
}

// getProject загружает проект или возвращает ErrProjectNotFound
func (s *ProjectService) getProject(ctx context.Context, id string) (*domain.Project, error) {
	if cached, err := s.cacheRepo.GetProject(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get project", err, map[string]interface{}{
			"project_id": id,
		})
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if err := s.cacheRepo.CacheProject(ctx, project); err != nil {
		s.logger.Warn("Failed to cache project", map[string]interface{}{
			"project_id": id,
			"error":      err.Error(),
		})
	}
	return project, nil
}

// checkMemberManage проверяет право управлять составом участников.
// При включенной настройке allow_member_invite приглашать могут все участники.
func (s *ProjectService) checkMemberManage(ctx context.Context, actor *domain.User, project *domain.Project) error {
	allowed, err := s.resolver.CanManageProject(ctx, actor, project)
	if err != nil {
		return err
	}
	if !allowed && project.Settings.AllowMemberInvite && project.HasMember(actor.ID) {
		allowed = true
	}
	if !allowed {
		return domain.ErrForbidden
	}
	return nil
}

func (s *ProjectService) toResponse(ctx context.Context, project *domain.Project) (*domain.ProjectResponse, error) {
	members, err := s.memberResponses(ctx, project.Members)
	if err != nil {
		return nil, err
	}

	var owner *domain.UserBrief
	if ownerUser, err := s.userRepo.GetByID(ctx, project.OwnerID); err == nil && ownerUser != nil {
		brief := ownerUser.ToBrief()
		owner = &brief
	}

	response := project.ToResponse(owner, members)
	return &response, nil
}

func (s *ProjectService) memberResponses(ctx context.Context, members []domain.ProjectMember) ([]domain.ProjectMemberResponse, error) {
	if len(members) == 0 {
		return []domain.ProjectMemberResponse{}, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	briefs := make(map[string]domain.UserBrief, len(users))
	for _, u := range users {
		briefs[u.ID] = u.ToBrief()
	}

	responses := make([]domain.ProjectMemberResponse, 0, len(members))
	for _, m := range members {
		brief, ok := briefs[m.UserID]
		if !ok {
			continue
		}
		responses = append(responses, domain.ProjectMemberResponse{
			User:     brief,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return responses, nil
}

func (s *ProjectService) invalidateProject(ctx context.Context, id string) {
	if err := s.cacheRepo.InvalidateProject(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate project cache", map[string]interface{}{
			"project_id": id,
			"error":      err.Error(),
		})
	}
}

func (s *ProjectService) publishProjectEvent(ctx context.Context, eventType string, project *domain.Project, actorID, memberID string) {
	event := &messaging.ProjectEvent{
		Type:       eventType,
		ProjectID:  project.ID,
		Name:       project.Name,
		Status:     string(project.Status),
		ActorID:    actorID,
		MemberID:   memberID,
		OccurredAt: time.Now(),
	}
	if err := s.producer.PublishProjectEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish project event", map[string]interface{}{
			"project_id": project.ID,
			"type":       eventType,
			"error":      err.Error(),
		})
	}
}

func (s *ProjectService) publishNotification(ctx context.Context, event *messaging.NotificationEvent) {
	event.OccurredAt = time.Now()
	if err := s.producer.PublishNotification(ctx, event); err != nil {
		s.logger.Warn("Failed to publish notification event", map[string]interface{}{
			"type":  event.NotificationType,
			"error": err.Error(),
		})
	}
}

func strPtr(s string) *string {
	return &s
}
