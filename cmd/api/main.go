package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/api"
	"github.com/yourusername/teamflow/internal/app"
	"github.com/yourusername/teamflow/internal/realtime"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

func main() {
	// Создаем контекст с возможностью отмены
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.App.Context = ctx

	// Инициализируем логгер
	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment == "production")
	log.Info("Starting API server", map[string]interface{}{
		"app_name": cfg.App.Name,
		"env":      cfg.App.Environment,
	})

	// Инициализируем приложение
	application, err := app.NewApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", err)
	}
	defer application.Close()

	// Проверяем подключение к базе данных
	if err := application.DB.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database", err)
	}

	repos := application.Repositories
	jwtManager := auth.NewJWTManager(&cfg.JWT)
	resolver := access.NewResolver(repos.UserRepository, repos.ProjectRepository, log)

	// Канал реального времени
	hub := realtime.NewHub(cfg.Realtime.ConnectionTTL, log)
	hub.StartSweepTask(cfg.Realtime.SweepInterval, ctx.Done())
	broker := realtime.NewBroker(application.Redis, cfg.Realtime.ChannelPrefix, log)

	// Сервисы
	notificationService := service.NewNotificationService(repos.NotificationRepository, repos.CacheRepository, broker, log)
	services := &api.Services{
		UserService: service.NewUserService(repos.UserRepository, repos.AnalyticsRepository,
			jwtManager, repos.CacheRepository, log),
		ProjectService: service.NewProjectService(repos.ProjectRepository, repos.UserRepository,
			resolver, application.Messaging.Producer, repos.CacheRepository, log),
		TaskService: service.NewTaskService(repos.TaskRepository, repos.ProjectRepository,
			repos.UserRepository, resolver, application.Messaging.Producer, repos.CacheRepository, log),
		CommentService: service.NewCommentService(repos.CommentRepository, repos.TaskRepository,
			repos.ProjectRepository, repos.UserRepository, resolver, application.Messaging.Producer, log),
		NotificationService: notificationService,
		AnalyticsService: service.NewAnalyticsService(repos.AnalyticsRepository, repos.ProjectRepository,
			repos.UserRepository, resolver, repos.CacheRepository, cfg.Analytics, log),
	}

	server := api.NewServer(cfg, log, jwtManager, repos.UserRepository, services, &api.RealtimeDeps{
		Hub:      hub,
		Broker:   broker,
		Redis:    application.Redis,
		Resolver: resolver,
		Prefix:   cfg.Realtime.ChannelPrefix,
	})

	// Запуск сервера в горутине
	go func() {
		if err := server.Start(); err != nil {
			log.Error("HTTP server error", err)
			cancel()
		}
	}()

	// Настройка graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Ожидаем сигнал или отмену контекста
	select {
	case <-quit:
		log.Info("Shutting down server...")
	case <-ctx.Done():
		log.Info("Shutting down server due to context cancellation...")
	}

	// Создаем контекст с таймаутом для graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	// Останавливаем сервер
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server gracefully stopped")
}
