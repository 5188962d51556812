package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/teamflow/internal/app"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

func main() {
	// Инициализируем контекст приложения
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
	log.Info("Starting scheduler service", map[string]interface{}{
		"app_name": cfg.App.Name,
		"env":      cfg.App.Environment,
	})

	// Инициализируем основное приложение
	application, err := app.NewApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", err)
	}
	defer application.Close()

	schedulerService := service.NewSchedulerService(
		application.Repositories.TaskRepository,
		application.Repositories.ProjectRepository,
		application.Messaging.Producer,
		application.Repositories.CacheRepository,
		&cfg.Scheduler,
		log,
	)

	// Запускаем планировщик
	if err := schedulerService.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler service", err)
	}

	// Блокируем основную горутину до получения сигнала остановки
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info("Shutting down scheduler service")
	cancel()

	log.Info("Scheduler service stopped")
}
