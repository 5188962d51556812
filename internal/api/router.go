package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/api/handlers"
	mw "github.com/yourusername/teamflow/internal/api/middleware"
	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/internal/realtime"
	"github.com/yourusername/teamflow/internal/repository"
	"github.com/yourusername/teamflow/internal/service"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/cache"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

// Services содержит сервисы, используемые HTTP-слоем
type Services struct {
	UserService         *service.UserService
	ProjectService      *service.ProjectService
	TaskService         *service.TaskService
	CommentService      *service.CommentService
	NotificationService *service.NotificationService
	AnalyticsService    *service.AnalyticsService
}

// RealtimeDeps содержит зависимости канала реального времени
type RealtimeDeps struct {
	Hub      *realtime.Hub
	Broker   *realtime.Broker
	Redis    *cache.Redis
	Resolver *access.Resolver
	Prefix   string
}

// Server представляет HTTP-сервер приложения
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     logger.Logger
	config     *config.Config
	jwtManager *auth.JWTManager
	userRepo   repository.UserRepository
	services   *Services
	rt         *RealtimeDeps
}

// NewServer создает новый экземпляр Server
func NewServer(
	cfg *config.Config,
	log logger.Logger,
	jwtManager *auth.JWTManager,
	userRepo repository.UserRepository,
	services *Services,
	rt *RealtimeDeps,
) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		logger:     log,
		config:     cfg,
		jwtManager: jwtManager,
		userRepo:   userRepo,
		services:   services,
		rt:         rt,
	}

	s.setupRoutes()

	return s
}

// setupRoutes настраивает маршруты сервера
func (s *Server) setupRoutes() {
	loggingMiddleware := mw.NewLoggingMiddleware(s.logger)
	authMiddleware := mw.NewAuthMiddleware(s.jwtManager, s.userRepo, s.logger)

	rateLimiter := mw.NewRateLimiter(mw.RateLimiterConfig{
		Limit:  100,
		Window: time.Minute,
	}, s.rt.Redis.Client, s.logger)
	go rateLimiter.StartCleanupTask(s.config.App.Context)

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(loggingMiddleware.LogRequest)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(rateLimiter.Limit)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(s.services.UserService, s.jwtManager, s.logger)
	userHandler := handlers.NewUserHandler(s.services.UserService, s.jwtManager, s.logger)
	projectHandler := handlers.NewProjectHandler(s.services.ProjectService, s.jwtManager, s.logger)
	taskHandler := handlers.NewTaskHandler(s.services.TaskService, s.jwtManager, s.logger)
	commentHandler := handlers.NewCommentHandler(s.services.CommentService, s.jwtManager, s.logger)
	notificationHandler := handlers.NewNotificationHandler(s.services.NotificationService, s.jwtManager, s.logger)
	analyticsHandler := handlers.NewAnalyticsHandler(s.services.AnalyticsService, s.jwtManager, s.logger)
	realtimeHandler := handlers.NewRealtimeHandler(s.rt.Hub, s.rt.Broker, s.rt.Redis, s.rt.Resolver, s.rt.Prefix, s.jwtManager, s.logger)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		// Публичные маршруты
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.Refresh)
		})

		// Маршруты, требующие аутентификации
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/change-password", authHandler.ChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Deactivate)
				r.Get("/{id}/stats", userHandler.Stats)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projectHandler.Create)
				r.Get("/", projectHandler.List)
				r.Get("/{id}", projectHandler.Get)
				r.Put("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
				r.Get("/{id}/members", projectHandler.Members)
				r.Post("/{id}/members", projectHandler.AddMember)
				r.Put("/{id}/members/{userID}", projectHandler.UpdateMember)
				r.Delete("/{id}/members/{userID}", projectHandler.RemoveMember)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/", taskHandler.List)
				r.Post("/reorder", taskHandler.Reorder)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Put("/{id}/status", taskHandler.UpdateStatus)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{id}/subtasks", taskHandler.AddSubtask)
				r.Put("/{id}/subtasks/{subtaskID}", taskHandler.UpdateSubtask)
				r.Delete("/{id}/subtasks/{subtaskID}", taskHandler.DeleteSubtask)
				r.Post("/{id}/time", taskHandler.LogTime)
				r.Post("/{id}/attachments", taskHandler.AddAttachment)
				r.Delete("/{id}/attachments/{attachmentID}", taskHandler.RemoveAttachment)
				r.Post("/{id}/watch", taskHandler.Watch)
				r.Delete("/{id}/watch", taskHandler.Unwatch)
				r.Get("/{id}/comments", commentHandler.ListByTask)
				r.Post("/{id}/comments", commentHandler.Create)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Put("/{id}", commentHandler.Update)
				r.Delete("/{id}", commentHandler.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/count", notificationHandler.UnreadCount)
				r.Put("/read-all", notificationHandler.MarkAllAsRead)
				r.Put("/{id}/read", notificationHandler.MarkAsRead)
				r.Delete("/{id}", notificationHandler.Delete)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.With(authMiddleware.RequireRole(domain.UserRoleManager)).Get("/dashboard", analyticsHandler.Dashboard)
				r.Get("/projects/{id}", analyticsHandler.Project)
				r.Get("/users/{id}", analyticsHandler.User)
				r.With(authMiddleware.RequireRole(domain.UserRoleManager)).Get("/team", analyticsHandler.Team)
			})

			r.Route("/realtime", func(r chi.Router) {
				r.Get("/stream", realtimeHandler.Stream)
				r.Post("/typing", realtimeHandler.Typing)
				r.Get("/online", realtimeHandler.Online)
			})
		})
	})
}

// Start запускает HTTP-сервер
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.HTTP.Port,
		Handler:      s.router,
		ReadTimeout:  s.config.HTTP.ReadTimeout,
		WriteTimeout: s.config.HTTP.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"port": s.config.HTTP.Port,
	})

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// ServeHTTP реализует интерфейс http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Shutdown корректно останавливает HTTP-сервер
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}
