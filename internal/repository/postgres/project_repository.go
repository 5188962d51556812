package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/pkg/logger"
)

// ProjectRepository реализует репозиторий проектов с использованием PostgreSQL
type ProjectRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewProjectRepository создает новый экземпляр ProjectRepository
func NewProjectRepository(db *sqlx.DB, logger logger.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает новый проект
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction", rbErr)
			}
		}
	}()

	settings, err := json.Marshal(project.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		INSERT INTO projects (
			id, name, description, status, priority, owner_id, start_date,
			end_date, budget, color, progress, is_archived, settings,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	if _, err = tx.ExecContext(
		ctx,
		query,
		project.ID,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.OwnerID,
		project.StartDate,
		project.EndDate,
		project.Budget,
		project.Color,
		project.Progress,
		project.IsArchived,
		settings,
		project.CreatedAt,
		project.UpdatedAt,
	); err != nil {
		r.logger.Error("Failed to create project", err, map[string]interface{}{
			"name": project.Name,
		})
		return fmt.Errorf("failed to create project: %w", err)
	}

	// Участники, включая владельца с ролью admin
	for _, member := range project.Members {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO project_members (project_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING",
			project.ID,
			member.UserID,
			member.Role,
			member.JoinedAt,
		); err != nil {
			return fmt.Errorf("failed to add project member: %w", err)
		}
	}

	for _, tag := range project.Tags {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO project_tags (project_id, tag) VALUES ($1, $2)",
			project.ID,
			tag,
		); err != nil {
			return fmt.Errorf("failed to add project tag: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID возвращает проект по ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT
			id, name, description, status, priority, owner_id, start_date,
			end_date, budget, color, progress, is_archived, settings,
			created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var row projectRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get project by ID", err, map[string]interface{}{
			"id": id,
		})
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}

	project, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	members, err := r.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		project.Members = append(project.Members, *m)
	}

	tags, err := r.getTags(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Tags = tags

	return project, nil
}

// Update обновляет данные проекта
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	settings, err := json.Marshal(project.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		UPDATE projects
		SET
			name = $1,
			description = $2,
			status = $3,
			priority = $4,
			start_date = $5,
			end_date = $6,
			budget = $7,
			color = $8,
			is_archived = $9,
			settings = $10,
			updated_at = $11
		WHERE id = $12
	`

	project.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(
		ctx,
		query,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.StartDate,
		project.EndDate,
		project.Budget,
		project.Color,
		project.IsArchived,
		settings,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update project", err, map[string]interface{}{
			"id": project.ID,
		})
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	if project.Tags != nil {
		if err := r.replaceTags(ctx, project.ID, project.Tags); err != nil {
			return err
		}
	}

	return nil
}

// Delete удаляет проект вместе с его задачами
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction", rbErr)
			}
		}
	}()

	// Задачи и их дочерние записи удаляются каскадом по внешним ключам
	if _, err = tx.ExecContext(ctx, "DELETE FROM tasks WHERE project_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		r.logger.Error("Failed to delete project", err, map[string]interface{}{
			"id": id,
		})
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		err = domain.ErrNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List возвращает список проектов с фильтрацией
func (r *ProjectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]*domain.Project, error) {
	whereClause, args := r.buildWhereClause(filter)
	orderClause := r.buildOrderClause(filter)
	limitOffset := fmt.Sprintf("LIMIT %d OFFSET %d", filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT
			id, name, description, status, priority, owner_id, start_date,
			end_date, budget, color, progress, is_archived, settings,
			created_at, updated_at
		FROM projects
		%s
		%s
		%s
	`, whereClause, orderClause, limitOffset)

	rows := []projectRow{}
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		r.logger.Error("Failed to list projects", err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*domain.Project, 0, len(rows))
	for _, row := range rows {
		project, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// Count возвращает количество проектов с фильтрацией
func (r *ProjectRepository) Count(ctx context.Context, filter repository.ProjectFilter) (int, error) {
	whereClause, args := r.buildWhereClause(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM projects
		%s
	`, whereClause)

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		r.logger.Error("Failed to count projects", err)
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}

	return count, nil
}

// AddMember добавляет пользователя в проект
func (r *ProjectRepository) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, member.ProjectID, member.UserID, member.Role, member.JoinedAt)
	if err != nil {
		if strings.Contains(err.Error(), "project_members_pkey") {
			return domain.ErrConflict
		}
		r.logger.Error("Failed to add project member", err, map[string]interface{}{
			"project_id": member.ProjectID,
			"user_id":    member.UserID,
		})
		return fmt.Errorf("failed to add project member: %w", err)
	}

	return nil
}

// UpdateMember обновляет роль пользователя в проекте
func (r *ProjectRepository) UpdateMember(ctx context.Context, projectID, userID string, role domain.ProjectMemberRole) error {
	query := `UPDATE project_members SET role = $1 WHERE project_id = $2 AND user_id = $3`

	result, err := r.db.ExecContext(ctx, query, role, projectID, userID)
	if err != nil {
		r.logger.Error("Failed to update project member", err, map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
		})
		return fmt.Errorf("failed to update project member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// RemoveMember удаляет пользователя из проекта
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		r.logger.Error("Failed to remove project member", err, map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
		})
		return fmt.Errorf("failed to remove project member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// GetMembers возвращает список участников проекта
func (r *ProjectRepository) GetMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	query := `
		SELECT project_id, user_id, role, joined_at
		FROM project_members
		WHERE project_id = $1
		ORDER BY joined_at ASC
	`

	members := []*domain.ProjectMember{}
	err := r.db.SelectContext(ctx, &members, query, projectID)
	if err != nil {
		r.logger.Error("Failed to get project members", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil, fmt.Errorf("failed to get project members: %w", err)
	}

	return members, nil
}

// GetMember возвращает информацию об участнике проекта
func (r *ProjectRepository) GetMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	query := `
		SELECT project_id, user_id, role, joined_at
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`

	var member domain.ProjectMember
	err := r.db.GetContext(ctx, &member, query, projectID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get project member", err, map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
		})
		return nil, fmt.Errorf("failed to get project member: %w", err)
	}

	return &member, nil
}

// GetAccessibleProjectIDs возвращает ID проектов, где пользователь
// является владельцем или участником
func (r *ProjectRepository) GetAccessibleProjectIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT id FROM projects WHERE owner_id = $1
		UNION
		SELECT project_id FROM project_members WHERE user_id = $1
	`

	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		r.logger.Error("Failed to get accessible project IDs", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to get accessible project IDs: %w", err)
	}

	return ids, nil
}

// UpdateProgress записывает вычисленный прогресс проекта
func (r *ProjectRepository) UpdateProgress(ctx context.Context, projectID string, progress int) error {
	query := `UPDATE projects SET progress = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, progress, time.Now(), projectID)
	if err != nil {
		r.logger.Error("Failed to update project progress", err, map[string]interface{}{
			"project_id": projectID,
		})
		return fmt.Errorf("failed to update project progress: %w", err)
	}

	return nil
}

// ArchiveCompletedBefore архивирует завершенные проекты, не обновлявшиеся
// с указанного момента
func (r *ProjectRepository) ArchiveCompletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE projects
		SET is_archived = TRUE, updated_at = NOW()
		WHERE status = $1 AND is_archived = FALSE AND updated_at < $2
	`

	result, err := r.db.ExecContext(ctx, query, domain.ProjectStatusCompleted, cutoff)
	if err != nil {
		r.logger.Error("Failed to archive completed projects", err)
		return 0, fmt.Errorf("failed to archive completed projects: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

func (r *ProjectRepository) getTags(ctx context.Context, projectID string) ([]string, error) {
	query := `SELECT tag FROM project_tags WHERE project_id = $1 ORDER BY tag`

	tags := []string{}
	err := r.db.SelectContext(ctx, &tags, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project tags: %w", err)
	}

	return tags, nil
}

func (r *ProjectRepository) replaceTags(ctx context.Context, projectID string, tags []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM project_tags WHERE project_id = $1", projectID); err != nil {
		return fmt.Errorf("failed to clear project tags: %w", err)
	}

	for _, tag := range tags {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO project_tags (project_id, tag) VALUES ($1, $2)",
			projectID,
			tag,
		); err != nil {
			return fmt.Errorf("failed to add project tag: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ProjectRepository) buildWhereClause(filter repository.ProjectFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Scope != nil {
		if cond := scopeCondition(*filter.Scope, "id", &args, &argIndex); cond != "" {
			conditions = append(conditions, cond)
		}
	}

	if len(filter.IDs) > 0 {
		placeholders := make([]string, len(filter.IDs))
		for i, id := range filter.IDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, id)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argIndex))
		args = append(args, *filter.Priority)
		argIndex++
	}

	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argIndex))
		args = append(args, *filter.OwnerID)
		argIndex++
	}

	if filter.IsArchived != nil {
		conditions = append(conditions, fmt.Sprintf("is_archived = $%d", argIndex))
		args = append(args, *filter.IsArchived)
		argIndex++
	}

	if filter.SearchText != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex+1))
		args = append(args, "%"+*filter.SearchText+"%", "%"+*filter.SearchText+"%")
		argIndex += 2
	}

	if len(filter.Tags) > 0 {
		placeholders := make([]string, len(filter.Tags))
		for i, tag := range filter.Tags {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, tag)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT project_id FROM project_tags WHERE tag IN (%s))",
			strings.Join(placeholders, ", "),
		))
	}

	if len(conditions) > 0 {
		return "WHERE " + strings.Join(conditions, " AND "), args
	}
	return "", args
}

func (r *ProjectRepository) buildOrderClause(filter repository.ProjectFilter) string {
	if filter.OrderBy != nil {
		direction := "ASC"
		if filter.OrderDir != nil && strings.ToUpper(*filter.OrderDir) == "DESC" {
			direction = "DESC"
		}

		// Проверяем, что поле сортировки допустимо
		allowedFields := map[string]bool{
			"name":       true,
			"status":     true,
			"priority":   true,
			"progress":   true,
			"start_date": true,
			"end_date":   true,
			"created_at": true,
			"updated_at": true,
		}
		if allowedFields[*filter.OrderBy] {
			return fmt.Sprintf("ORDER BY %s %s", *filter.OrderBy, direction)
		}
	}
	return "ORDER BY created_at DESC"
}

// projectRow представляет строку таблицы projects с сырыми настройками
type projectRow struct {
	ID          string                 `db:"id"`
	Name        string                 `db:"name"`
	Description string                 `db:"description"`
	Status      domain.ProjectStatus   `db:"status"`
	Priority    domain.ProjectPriority `db:"priority"`
	OwnerID     string                 `db:"owner_id"`
	StartDate   *time.Time             `db:"start_date"`
	EndDate     *time.Time             `db:"end_date"`
	Budget      *float64               `db:"budget"`
	Color       string                 `db:"color"`
	Progress    int                    `db:"progress"`
	IsArchived  bool                   `db:"is_archived"`
	Settings    []byte                 `db:"settings"`
	CreatedAt   time.Time              `db:"created_at"`
	UpdatedAt   time.Time              `db:"updated_at"`
}

func (row projectRow) toDomain() (*domain.Project, error) {
	project := &domain.Project{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Status:      row.Status,
		Priority:    row.Priority,
		OwnerID:     row.OwnerID,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		Budget:      row.Budget,
		Color:       row.Color,
		Progress:    row.Progress,
		IsArchived:  row.IsArchived,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Settings) > 0 {
		if err := json.Unmarshal(row.Settings, &project.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}
	return project, nil
}
