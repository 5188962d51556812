package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/teamflow/internal/app"
	"github.com/yourusername/teamflow/internal/realtime"
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
	log.Info("Starting notifier service", map[string]interface{}{
		"app_name": cfg.App.Name,
		"env":      cfg.App.Environment,
	})

	// Инициализируем основное приложение
	application, err := app.NewApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", err)
	}
	defer application.Close()

	broker := realtime.NewBroker(application.Redis, cfg.Realtime.ChannelPrefix, log)
	notificationService := service.NewNotificationService(
		application.Repositories.NotificationRepository,
		application.Repositories.CacheRepository,
		broker,
		log,
	)

	notifierService := service.NewNotifierService(
		notificationService,
		broker,
		&cfg.Kafka,
		cfg.Realtime.ConsumerGroup,
		log,
	)

	// Запускаем чтение топиков
	if err := notifierService.Start(ctx); err != nil {
		log.Fatal("Failed to start notifier service", err)
	}

	// Блокируем основную горутину до получения сигнала остановки
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info("Shutting down notifier service")
	cancel()

	if err := notifierService.Stop(); err != nil {
		log.Error("Error stopping notifier service", err)
	}

	log.Info("Notifier service stopped")
}
