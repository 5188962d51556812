package domain

import "testing"

func TestNewPagedResponse(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int
		page       int
		pageSize   int
		wantPages  int
	}{
		{"ровное деление", 40, 1, 20, 2},
		{"неполная страница", 41, 1, 20, 3},
		{"пусто", 0, 1, 20, 0},
		{"нулевой размер страницы", 10, 1, 0, 0},
		{"одна страница", 5, 1, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewPagedResponse(nil, tt.totalItems, tt.page, tt.pageSize)
			if resp.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", resp.TotalPages, tt.wantPages)
			}
			if resp.TotalItems != tt.totalItems || resp.Page != tt.page || resp.PageSize != tt.pageSize {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}
