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

// UserRepository реализует репозиторий пользователей с использованием PostgreSQL
type UserRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *sqlx.DB, logger logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, name, email, hashed_password, role, avatar, department,
			phone, bio, is_active, preferences, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.Role,
		user.Avatar,
		user.Department,
		user.Phone,
		user.Bio,
		user.IsActive,
		prefs,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") {
			return domain.ErrConflict
		}
		r.logger.Error("Failed to create user", err, map[string]interface{}{
			"email": user.Email,
		})
		return fmt.Errorf("failed to create user: %w", err)
	}

	if len(user.Skills) > 0 {
		if err := r.replaceSkills(ctx, user.ID, user.Skills); err != nil {
			return err
		}
	}

	return nil
}

// GetByID возвращает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT
			id, name, email, hashed_password, role, avatar, department,
			phone, bio, is_active, preferences, last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var row userRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get user by ID", err, map[string]interface{}{
			"id": id,
		})
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	user, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	skills, err := r.getSkills(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Skills = skills

	return user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT
			id, name, email, hashed_password, role, avatar, department,
			phone, bio, is_active, preferences, last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var row userRow
	err := r.db.GetContext(ctx, &row, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get user by email", err, map[string]interface{}{
			"email": email,
		})
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return row.toDomain()
}

// GetByIDs возвращает пользователей по списку ID
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT
			id, name, email, hashed_password, role, avatar, department,
			phone, bio, is_active, preferences, last_login_at, created_at, updated_at
		FROM users
		WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows := []userRow{}
	err = r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("Failed to get users by IDs", err)
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}

	return rowsToDomain(rows)
}

// Update обновляет данные пользователя
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET
			name = $1,
			hashed_password = $2,
			role = $3,
			avatar = $4,
			department = $5,
			phone = $6,
			bio = $7,
			is_active = $8,
			preferences = $9,
			updated_at = $10
		WHERE id = $11
	`

	user.UpdatedAt = time.Now()

	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.HashedPassword,
		user.Role,
		user.Avatar,
		user.Department,
		user.Phone,
		user.Bio,
		user.IsActive,
		prefs,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update user", err, map[string]interface{}{
			"id": user.ID,
		})
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	if user.Skills != nil {
		if err := r.replaceSkills(ctx, user.ID, user.Skills); err != nil {
			return err
		}
	}

	return nil
}

// UpdateLastLogin обновляет время последнего входа
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update last login", err, map[string]interface{}{
			"id": id,
		})
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// List возвращает список пользователей с фильтрацией
func (r *UserRepository) List(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error) {
	whereClause, args := r.buildWhereClause(filter)
	limitOffset := fmt.Sprintf("LIMIT %d OFFSET %d", filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT
			id, name, email, hashed_password, role, avatar, department,
			phone, bio, is_active, preferences, last_login_at, created_at, updated_at
		FROM users
		%s
		ORDER BY name ASC
		%s
	`, whereClause, limitOffset)

	rows := []userRow{}
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		r.logger.Error("Failed to list users", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return rowsToDomain(rows)
}

// Count возвращает количество пользователей с фильтрацией
func (r *UserRepository) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	whereClause, args := r.buildWhereClause(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM users
		%s
	`, whereClause)

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		r.logger.Error("Failed to count users", err)
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

func (r *UserRepository) getSkills(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT skill FROM user_skills WHERE user_id = $1 ORDER BY skill`

	skills := []string{}
	err := r.db.SelectContext(ctx, &skills, query, userID)
	if err != nil {
		r.logger.Error("Failed to get user skills", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to get user skills: %w", err)
	}

	return skills, nil
}

func (r *UserRepository) replaceSkills(ctx context.Context, userID string, skills []string) error {
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

	if _, err = tx.ExecContext(ctx, "DELETE FROM user_skills WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear user skills: %w", err)
	}

	for _, skill := range skills {
		if _, err = tx.ExecContext(
			ctx,
			"INSERT INTO user_skills (user_id, skill) VALUES ($1, $2)",
			userID,
			skill,
		); err != nil {
			return fmt.Errorf("failed to add user skill: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *UserRepository) buildWhereClause(filter repository.UserFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if len(filter.IDs) > 0 {
		placeholders := make([]string, len(filter.IDs))
		for i, id := range filter.IDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, id)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, *filter.Role)
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.SearchText != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIndex, argIndex+1))
		args = append(args, "%"+*filter.SearchText+"%", "%"+*filter.SearchText+"%")
		argIndex += 2
	}

	if len(conditions) > 0 {
		return "WHERE " + strings.Join(conditions, " AND "), args
	}
	return "", args
}

// userRow представляет строку таблицы users с сырыми настройками
type userRow struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	Email          string          `db:"email"`
	HashedPassword string          `db:"hashed_password"`
	Role           domain.UserRole `db:"role"`
	Avatar         *string         `db:"avatar"`
	Department     *string         `db:"department"`
	Phone          *string         `db:"phone"`
	Bio            *string         `db:"bio"`
	IsActive       bool            `db:"is_active"`
	Preferences    []byte          `db:"preferences"`
	LastLoginAt    *time.Time      `db:"last_login_at"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (row userRow) toDomain() (*domain.User, error) {
	user := &domain.User{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		HashedPassword: row.HashedPassword,
		Role:           row.Role,
		Avatar:         row.Avatar,
		Department:     row.Department,
		Phone:          row.Phone,
		Bio:            row.Bio,
		IsActive:       row.IsActive,
		LastLoginAt:    row.LastLoginAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if len(row.Preferences) > 0 {
		if err := json.Unmarshal(row.Preferences, &user.Preferences); err != nil {
			return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
	}
	return user, nil
}

func rowsToDomain(rows []userRow) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		user, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
