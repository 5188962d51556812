package service

import (
	"context"
	"testing"

	"github.com/yourusername/teamflow/internal/domain"
	"github.com/yourusername/teamflow/pkg/logger"
)

func TestResolveMentions(t *testing.T) {
	ctx := context.Background()
	users := map[string]*domain.User{
		"u1": {ID: "u1", Email: "bob@example.com"},
		"u2": {ID: "u2", Email: "alice@example.com"},
	}
	svc := &CommentService{
		userRepo: &stubUserRepo{users: users},
		logger:   logger.NewLogger("disabled", true),
	}

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"упоминание по email", "Посмотри, пожалуйста, @bob@example.com", []string{"u1"}},
		{"несколько упоминаний", "@bob@example.com и @alice@example.com, нужен ревью", []string{"u1", "u2"}},
		{"повтор не дублируется", "@bob@example.com @bob@example.com", []string{"u1"}},
		{"простой хендл не сопоставляется", "спасибо @bob", nil},
		{"незарегистрированный email", "@ghost@example.com, взгляни", nil},
		{"без упоминаний", "обычный комментарий", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.resolveMentions(ctx, tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("resolveMentions() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("resolveMentions()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
