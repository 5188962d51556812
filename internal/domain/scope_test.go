package domain

import "testing"

func TestAccessScopeIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		scope AccessScope
		want  bool
	}{
		{"полный доступ", ScopeAll(), false},
		{"нет проектов", ScopeProjects(nil), true},
		{"пустой список", ScopeProjects([]string{}), true},
		{"есть проекты", ScopeProjects([]string{"p1"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessScopeContains(t *testing.T) {
	scope := ScopeProjects([]string{"p1", "p2"})

	if !scope.Contains("p1") {
		t.Error("Contains(p1) = false, want true")
	}
	if scope.Contains("p3") {
		t.Error("Contains(p3) = true, want false")
	}
	if !ScopeAll().Contains("anything") {
		t.Error("ScopeAll().Contains() = false, want true")
	}
}
