package domain

import "testing"

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		completed int
		want      int
	}{
		{"без задач", 0, 0, 0},
		{"ничего не завершено", 5, 0, 0},
		{"треть", 3, 1, 33},
		{"две трети", 3, 2, 67},
		{"все завершены", 4, 4, 100},
		{"одна из шести", 6, 1, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateProgress(tt.total, tt.completed); got != tt.want {
				t.Errorf("CalculateProgress(%d, %d) = %d, want %d", tt.total, tt.completed, got, tt.want)
			}
		})
	}
}
