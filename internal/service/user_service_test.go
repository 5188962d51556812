package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/config"
	"github.com/yourusername/teamflow/pkg/logger"
)

// recordingUserRepo дополняет stubUserRepo записью созданных пользователей
type recordingUserRepo struct {
	stubUserRepo
	created *domain.User
}

func (r *recordingUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.created = user
	return nil
}

func newTestUserService(repo *recordingUserRepo) *UserService {
	jwtManager := auth.NewJWTManager(&config.JWTConfig{
		Secret:           "test-secret",
		AccessExpiresIn:  time.Minute,
		RefreshExpiresIn: time.Hour,
		Issuer:           "test",
	})
	return &UserService{
		repo:       repo,
		jwtManager: jwtManager,
		logger:     logger.NewLogger("disabled", true),
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("роль по умолчанию member", func(t *testing.T) {
		repo := &recordingUserRepo{stubUserRepo: stubUserRepo{users: map[string]*domain.User{}}}
		svc := newTestUserService(repo)

		resp, err := svc.Register(ctx, domain.UserCreateRequest{
			Name:     "Test User",
			Email:    "new@example.com",
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if resp.Role != domain.UserRoleMember {
			t.Errorf("Role = %s, want %s", resp.Role, domain.UserRoleMember)
		}
		if repo.created == nil || !repo.created.IsActive {
			t.Error("created user should be active")
		}
	})

	t.Run("самоназначение admin блокируется", func(t *testing.T) {
		repo := &recordingUserRepo{stubUserRepo: stubUserRepo{users: map[string]*domain.User{}}}
		svc := newTestUserService(repo)

		resp, err := svc.Register(ctx, domain.UserCreateRequest{
			Name:     "Wannabe Admin",
			Email:    "admin@example.com",
			Password: "secret123",
			Role:     domain.UserRoleAdmin,
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if resp.Role != domain.UserRoleMember {
			t.Errorf("Role = %s, want %s", resp.Role, domain.UserRoleMember)
		}
	})

	t.Run("роль manager сохраняется", func(t *testing.T) {
		repo := &recordingUserRepo{stubUserRepo: stubUserRepo{users: map[string]*domain.User{}}}
		svc := newTestUserService(repo)

		resp, err := svc.Register(ctx, domain.UserCreateRequest{
			Name:     "Manager",
			Email:    "manager@example.com",
			Password: "secret123",
			Role:     domain.UserRoleManager,
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if resp.Role != domain.UserRoleManager {
			t.Errorf("Role = %s, want %s", resp.Role, domain.UserRoleManager)
		}
	})

	t.Run("повторный email отклоняется", func(t *testing.T) {
		repo := &recordingUserRepo{stubUserRepo: stubUserRepo{users: map[string]*domain.User{
			"u1": {ID: "u1", Email: "taken@example.com"},
		}}}
		svc := newTestUserService(repo)

		_, err := svc.Register(ctx, domain.UserCreateRequest{
			Name:     "Dup",
			Email:    "taken@example.com",
			Password: "secret123",
		})
		if err != ErrEmailAlreadyExists {
			t.Errorf("Register() error = %v, want %v", err, ErrEmailAlreadyExists)
		}
	})

	t.Run("пароль хранится в виде bcrypt-хэша", func(t *testing.T) {
		repo := &recordingUserRepo{stubUserRepo: stubUserRepo{users: map[string]*domain.User{}}}
		svc := newTestUserService(repo)

		if _, err := svc.Register(ctx, domain.UserCreateRequest{
			Name:     "Hash",
			Email:    "hash@example.com",
			Password: "secret123",
		}); err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		if repo.created.HashedPassword == "secret123" {
			t.Fatal("password stored in plain text")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(repo.created.HashedPassword), []byte("secret123")); err != nil {
			t.Errorf("stored hash does not match password: %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)

	newRepo := func(active bool) *recordingUserRepo {
		return &recordingUserRepo{stubUserRepo: stubUserRepo{users: map[string]*domain.User{
			"u1": {
				ID:             "u1",
				Email:          "user@example.com",
				HashedPassword: string(hash),
				Role:           domain.UserRoleMember,
				IsActive:       active,
			},
		}}}
	}

	t.Run("успешный вход", func(t *testing.T) {
		svc := newTestUserService(newRepo(true))

		resp, err := svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "secret123"})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("tokens should be issued")
		}
		if resp.User.ID != "u1" {
			t.Errorf("User.ID = %q, want u1", resp.User.ID)
		}
	})

	t.Run("неверный пароль", func(t *testing.T) {
		svc := newTestUserService(newRepo(true))

		if _, err := svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "wrong"}); err != ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("неизвестный email", func(t *testing.T) {
		svc := newTestUserService(newRepo(true))

		if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ghost@example.com", Password: "secret123"}); err != ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("деактивированный пользователь", func(t *testing.T) {
		svc := newTestUserService(newRepo(false))

		if _, err := svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "secret123"}); err != ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})
}
