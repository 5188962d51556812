package postgres

import (
	"reflect"
	"testing"

	"github.com/yourusername/teamflow/internal/domain"
)

func TestScopeCondition(t *testing.T) {
	tests := []struct {
		name     string
		scope    domain.AccessScope
		column   string
		wantCond string
		wantArgs []interface{}
	}{
		{
			name:     "полная область не дает условия",
			scope:    domain.AccessScope{All: true},
			column:   "project_id",
			wantCond: "",
			wantArgs: nil,
		},
		{
			name:     "пустая область дает FALSE",
			scope:    domain.AccessScope{},
			column:   "project_id",
			wantCond: "FALSE",
			wantArgs: nil,
		},
		{
			name:     "один проект",
			scope:    domain.AccessScope{ProjectIDs: []string{"p1"}},
			column:   "project_id",
			wantCond: "project_id IN ($1)",
			wantArgs: []interface{}{"p1"},
		},
		{
			name:     "несколько проектов с префиксом таблицы",
			scope:    domain.AccessScope{ProjectIDs: []string{"p1", "p2", "p3"}},
			column:   "t.project_id",
			wantCond: "t.project_id IN ($1, $2, $3)",
			wantArgs: []interface{}{"p1", "p2", "p3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args []interface{}
			argIndex := 1

			cond := scopeCondition(tt.scope, tt.column, &args, &argIndex)
			if cond != tt.wantCond {
				t.Errorf("scopeCondition() = %q, want %q", cond, tt.wantCond)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
			if wantIndex := 1 + len(tt.wantArgs); argIndex != wantIndex {
				t.Errorf("argIndex = %d, want %d", argIndex, wantIndex)
			}
		})
	}
}

func TestScopeConditionContinuesNumbering(t *testing.T) {
	args := []interface{}{"existing"}
	argIndex := 2

	cond := scopeCondition(domain.AccessScope{ProjectIDs: []string{"p1", "p2"}}, "project_id", &args, &argIndex)
	if want := "project_id IN ($2, $3)"; cond != want {
		t.Errorf("scopeCondition() = %q, want %q", cond, want)
	}
	if argIndex != 4 {
		t.Errorf("argIndex = %d, want 4", argIndex)
	}
}
