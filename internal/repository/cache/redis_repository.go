package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/pkg/logger"
)

// ErrCacheMiss возвращается, когда ключ отсутствует в кэше
var ErrCacheMiss = errors.New("cache miss")

// Префиксы ключей для разных типов данных
const (
	keyPrefixUser           = "user:"
	keyPrefixTask           = "task:"
	keyPrefixProject        = "project:"
	keyPrefixProjectMembers = "project:members:"
	keyPrefixUnreadCount    = "unread:count:"
	keyPrefixAnalytics      = "analytics:"
	keyPrefixLock           = "lock:"
)

// RedisRepository реализует репозиторий кэширования с использованием Redis
type RedisRepository struct {
	client *redis.Client
	logger logger.Logger
	ttl    time.Duration
}

// NewRedisRepository создает новый экземпляр RedisRepository
func NewRedisRepository(client *redis.Client, logger logger.Logger, ttl time.Duration) *RedisRepository {
	return &RedisRepository{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// CacheUser сохраняет пользователя в кэш
func (r *RedisRepository) CacheUser(ctx context.Context, user *domain.User) error {
	key := fmt.Sprintf("%s%s", keyPrefixUser, user.ID)
	return r.cacheValue(ctx, key, user, r.ttl)
}

// GetUser получает пользователя из кэша
func (r *RedisRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	key := fmt.Sprintf("%s%s", keyPrefixUser, id)
	var user domain.User
	if err := r.getValue(ctx, key, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// InvalidateUser удаляет пользователя из кэша
func (r *RedisRepository) InvalidateUser(ctx context.Context, id string) error {
	return r.deleteValue(ctx, fmt.Sprintf("%s%s", keyPrefixUser, id))
}

// CacheTask сохраняет задачу в кэш
func (r *RedisRepository) CacheTask(ctx context.Context, task *domain.Task) error {
	key := fmt.Sprintf("%s%s", keyPrefixTask, task.ID)
	return r.cacheValue(ctx, key, task, r.ttl)
}

// GetTask получает задачу из кэша
func (r *RedisRepository) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	key := fmt.Sprintf("%s%s", keyPrefixTask, id)
	var task domain.Task
	if err := r.getValue(ctx, key, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// InvalidateTask удаляет задачу из кэша
func (r *RedisRepository) InvalidateTask(ctx context.Context, id string) error {
	return r.deleteValue(ctx, fmt.Sprintf("%s%s", keyPrefixTask, id))
}

// CacheProject сохраняет проект в кэш
func (r *RedisRepository) CacheProject(ctx context.Context, project *domain.Project) error {
	key := fmt.Sprintf("%s%s", keyPrefixProject, project.ID)
	return r.cacheValue(ctx, key, project, r.ttl)
}

// GetProject получает проект из кэша
func (r *RedisRepository) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	key := fmt.Sprintf("%s%s", keyPrefixProject, id)
	var project domain.Project
	if err := r.getValue(ctx, key, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// InvalidateProject удаляет проект из кэша вместе со списком участников
func (r *RedisRepository) InvalidateProject(ctx context.Context, id string) error {
	if err := r.deleteValue(ctx, fmt.Sprintf("%s%s", keyPrefixProject, id)); err != nil {
		return err
	}
	return r.deleteValue(ctx, fmt.Sprintf("%s%s", keyPrefixProjectMembers, id))
}

// CacheProjectMembers сохраняет участников проекта в кэш
func (r *RedisRepository) CacheProjectMembers(ctx context.Context, projectID string, members []*domain.ProjectMember) error {
	key := fmt.Sprintf("%s%s", keyPrefixProjectMembers, projectID)
	return r.cacheValue(ctx, key, members, r.ttl)
}

// GetProjectMembers получает участников проекта из кэша
func (r *RedisRepository) GetProjectMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	key := fmt.Sprintf("%s%s", keyPrefixProjectMembers, projectID)
	var members []*domain.ProjectMember
	if err := r.getValue(ctx, key, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// CacheUnreadCount сохраняет количество непрочитанных уведомлений пользователя
func (r *RedisRepository) CacheUnreadCount(ctx context.Context, userID string, count int) error {
	key := fmt.Sprintf("%s%s", keyPrefixUnreadCount, userID)
	return r.client.Set(ctx, key, count, r.ttl).Err()
}

// GetUnreadCount получает количество непрочитанных уведомлений пользователя
func (r *RedisRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	key := fmt.Sprintf("%s%s", keyPrefixUnreadCount, userID)
	val, err := r.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, ErrCacheMiss
	}
	if err != nil {
		r.logger.Error("Failed to get unread count from Redis", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return val, nil
}

// InvalidateUnreadCount удаляет счетчик непрочитанных уведомлений
func (r *RedisRepository) InvalidateUnreadCount(ctx context.Context, userID string) error {
	return r.deleteValue(ctx, fmt.Sprintf("%s%s", keyPrefixUnreadCount, userID))
}

// CacheAnalytics сохраняет собранный аналитический ответ с указанным TTL
func (r *RedisRepository) CacheAnalytics(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.cacheValue(ctx, fmt.Sprintf("%s%s", keyPrefixAnalytics, key), value, ttl)
}

// GetAnalytics получает аналитический ответ из кэша
func (r *RedisRepository) GetAnalytics(ctx context.Context, key string, dest interface{}) error {
	return r.getValue(ctx, fmt.Sprintf("%s%s", keyPrefixAnalytics, key), dest)
}

// AcquireLock получает блокировку с таймаутом.
// Используется планировщиком, чтобы фоновые задания выполнял один экземпляр.
func (r *RedisRepository) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	lockKey := fmt.Sprintf("%s%s", keyPrefixLock, key)
	ok, err := r.client.SetNX(ctx, lockKey, 1, ttl).Result()
	if err != nil {
		r.logger.Error("Failed to acquire lock", err, map[string]interface{}{
			"key": key,
		})
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock освобождает блокировку
func (r *RedisRepository) ReleaseLock(ctx context.Context, key string) error {
	return r.deleteValue(ctx, fmt.Sprintf("%s%s", keyPrefixLock, key))
}

// Вспомогательные методы

func (r *RedisRepository) cacheValue(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Error("Failed to marshal value", err, map[string]interface{}{
			"key": key,
		})
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		r.logger.Error("Failed to set value in Redis", err, map[string]interface{}{
			"key": key,
		})
		return fmt.Errorf("failed to set value in Redis: %w", err)
	}

	return nil
}

func (r *RedisRepository) getValue(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		r.logger.Error("Failed to get value from Redis", err, map[string]interface{}{
			"key": key,
		})
		return fmt.Errorf("failed to get value from Redis: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		r.logger.Error("Failed to unmarshal value", err, map[string]interface{}{
			"key": key,
		})
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (r *RedisRepository) deleteValue(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete value from Redis", err, map[string]interface{}{
			"key": key,
		})
		return fmt.Errorf("failed to delete value from Redis: %w", err)
	}
	return nil
}
