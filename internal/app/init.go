package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yourusername/teamflow/internal/messaging"
	"github.com/yourusername/teamflow/internal/repository/cache"
	"github.com/yourusername/teamflow/internal/repository/postgres"
	redisClient "github.com/yourusername/teamflow/pkg/cache"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/database"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Repositories содержит все репозитории для работы с хранилищами данных
type Repositories struct {
	UserRepository         *postgres.UserRepository
	ProjectRepository      *postgres.ProjectRepository
	TaskRepository         *postgres.TaskRepository
	CommentRepository      *postgres.CommentRepository
	NotificationRepository *postgres.NotificationRepository
	AnalyticsRepository    *postgres.AnalyticsRepository
	CacheRepository        *cache.RedisRepository
}

// Messaging содержит все клиенты для работы с сообщениями
type Messaging struct {
	Producer *messaging.KafkaProducer
}

// Application содержит все компоненты приложения
type Application struct {
	Config       *config.Config
	DB           *sqlx.DB
	Redis        *redisClient.Redis
	Logger       logger.Logger
	Repositories *Repositories
	Messaging    *Messaging
}

// NewApplication создает новое приложение с инициализированными компонентами
func NewApplication(ctx context.Context, cfg *config.Config, log logger.Logger) (*Application, error) {
	// Инициализация базы данных PostgreSQL
	postgresDB, err := initPostgres(ctx, &cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	// Инициализация Redis
	redisCache, err := initRedis(ctx, &cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Инициализация репозиториев
	repos := initRepositories(postgresDB, redisCache, log, cfg)

	// Инициализация Kafka
	producer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, log)

	return &Application{
		Config:       cfg,
		DB:           postgresDB,
		Redis:        redisCache,
		Logger:       log,
		Repositories: repos,
		Messaging:    &Messaging{Producer: producer},
	}, nil
}

// Close закрывает все соединения с внешними сервисами
func (app *Application) Close() {
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Error closing PostgreSQL connection", err)
		}
	}

	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Error closing Redis connection", err)
		}
	}

	if app.Messaging != nil && app.Messaging.Producer != nil {
		if err := app.Messaging.Producer.Close(); err != nil {
			app.Logger.Error("Error closing Kafka producer", err)
		}
	}
}

// Инициализация PostgreSQL
func initPostgres(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*sqlx.DB, error) {
	return database.NewPostgres(ctx, cfg, log)
}

// Инициализация Redis
func initRedis(ctx context.Context, cfg *config.RedisConfig, log logger.Logger) (*redisClient.Redis, error) {
	redis, err := redisClient.NewRedis(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return redis, nil
}

// Инициализация репозиториев
func initRepositories(db *sqlx.DB, redis *redisClient.Redis, log logger.Logger, cfg *config.Config) *Repositories {
	return &Repositories{
		UserRepository:         postgres.NewUserRepository(db, log),
		ProjectRepository:      postgres.NewProjectRepository(db, log),
		TaskRepository:         postgres.NewTaskRepository(db, log),
		CommentRepository:      postgres.NewCommentRepository(db, log),
		NotificationRepository: postgres.NewNotificationRepository(db, log),
		AnalyticsRepository:    postgres.NewAnalyticsRepository(db, log),
		CacheRepository:        cache.NewRedisRepository(redis.Client, log, cfg.Redis.DefaultTTL),
	}
}
