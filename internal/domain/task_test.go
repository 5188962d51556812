package domain

import (
	"testing"
	"time"
)

func subtasks(completed, total int) []Subtask {
	list := make([]Subtask, 0, total)
	for i := 0; i < total; i++ {
		list = append(list, Subtask{IsCompleted: i < completed})
	}
	return list
}

func TestSubtaskProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"без подзадач", 0, 0, -1},
		{"ни одна не завершена", 0, 4, 0},
		{"одна из трех", 1, 3, 33},
		{"две из трех", 2, 3, 67},
		{"все завершены", 3, 3, 100},
		{"половина", 1, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubtaskProgress(subtasks(tt.completed, tt.total))
			if got != tt.want {
				t.Errorf("SubtaskProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecalculateProgress(t *testing.T) {
	now := time.Now()

	t.Run("частичный прогресс переводит todo в in-progress", func(t *testing.T) {
		task := &Task{Status: TaskStatusTodo, Subtasks: subtasks(1, 3)}
		task.RecalculateProgress(now)

		if task.Progress != 33 {
			t.Errorf("Progress = %d, want 33", task.Progress)
		}
		if task.Status != TaskStatusInProgress {
			t.Errorf("Status = %s, want %s", task.Status, TaskStatusInProgress)
		}
		if task.CompletedAt != nil {
			t.Error("CompletedAt should not be set")
		}
	})

	t.Run("полный прогресс завершает задачу", func(t *testing.T) {
		task := &Task{Status: TaskStatusInProgress, Subtasks: subtasks(3, 3)}
		task.RecalculateProgress(now)

		if task.Progress != 100 {
			t.Errorf("Progress = %d, want 100", task.Progress)
		}
		if task.Status != TaskStatusCompleted {
			t.Errorf("Status = %s, want %s", task.Status, TaskStatusCompleted)
		}
		if task.CompletedAt == nil || !task.CompletedAt.Equal(now) {
			t.Errorf("CompletedAt = %v, want %v", task.CompletedAt, now)
		}
	})

	t.Run("review не понижается по прогрессу", func(t *testing.T) {
		task := &Task{Status: TaskStatusReview, Subtasks: subtasks(1, 3)}
		task.RecalculateProgress(now)

		if task.Status != TaskStatusReview {
			t.Errorf("Status = %s, want %s", task.Status, TaskStatusReview)
		}
	})

	t.Run("cancelled переводится в completed при полном прогрессе", func(t *testing.T) {
		task := &Task{Status: TaskStatusCancelled, Subtasks: subtasks(2, 2)}
		task.RecalculateProgress(now)

		if task.Progress != 100 {
			t.Errorf("Progress = %d, want 100", task.Progress)
		}
		if task.Status != TaskStatusCompleted {
			t.Errorf("Status = %s, want %s", task.Status, TaskStatusCompleted)
		}
		if task.CompletedAt == nil || !task.CompletedAt.Equal(now) {
			t.Errorf("CompletedAt = %v, want %v", task.CompletedAt, now)
		}
	})

	t.Run("без подзадач прогресс не меняется", func(t *testing.T) {
		task := &Task{Status: TaskStatusInProgress, Progress: 40}
		task.RecalculateProgress(now)

		if task.Progress != 40 {
			t.Errorf("Progress = %d, want 40", task.Progress)
		}
	})

	t.Run("существующий completed_at не перезаписывается", func(t *testing.T) {
		earlier := now.Add(-time.Hour)
		task := &Task{Status: TaskStatusInProgress, CompletedAt: &earlier, Subtasks: subtasks(2, 2)}
		task.RecalculateProgress(now)

		if !task.CompletedAt.Equal(earlier) {
			t.Errorf("CompletedAt = %v, want %v", task.CompletedAt, earlier)
		}
	})
}

func TestApplyStatus(t *testing.T) {
	now := time.Now()

	t.Run("перевод в completed форсирует прогресс 100", func(t *testing.T) {
		task := &Task{Status: TaskStatusInProgress, Progress: 60}
		task.ApplyStatus(TaskStatusCompleted, now)

		if task.Progress != 100 {
			t.Errorf("Progress = %d, want 100", task.Progress)
		}
		if task.CompletedAt == nil {
			t.Fatal("CompletedAt should be set")
		}
	})

	t.Run("прочие статусы не трогают прогресс", func(t *testing.T) {
		task := &Task{Status: TaskStatusTodo, Progress: 25}
		task.ApplyStatus(TaskStatusReview, now)

		if task.Status != TaskStatusReview {
			t.Errorf("Status = %s, want %s", task.Status, TaskStatusReview)
		}
		if task.Progress != 25 {
			t.Errorf("Progress = %d, want 25", task.Progress)
		}
	})
}

func TestApplyProgress(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		status       TaskStatus
		progress     int
		wantProgress int
		wantStatus   TaskStatus
	}{
		{"нулевой прогресс оставляет todo", TaskStatusTodo, 0, 0, TaskStatusTodo},
		{"частичный прогресс повышает todo", TaskStatusTodo, 30, 30, TaskStatusInProgress},
		{"полный прогресс завершает", TaskStatusInProgress, 100, 100, TaskStatusCompleted},
		{"прогресс ограничивается сверху", TaskStatusInProgress, 150, 100, TaskStatusCompleted},
		{"прогресс ограничивается снизу", TaskStatusInProgress, -10, 0, TaskStatusInProgress},
		{"review сохраняется при частичном прогрессе", TaskStatusReview, 50, 50, TaskStatusReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Status: tt.status}
			task.ApplyProgress(tt.progress, now)

			if task.Progress != tt.wantProgress {
				t.Errorf("Progress = %d, want %d", task.Progress, tt.wantProgress)
			}
			if task.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", task.Status, tt.wantStatus)
			}
		})
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		dueDate *time.Time
		status  TaskStatus
		want    bool
	}{
		{"без срока", nil, TaskStatusTodo, false},
		{"срок в будущем", &future, TaskStatusInProgress, false},
		{"срок прошел", &past, TaskStatusInProgress, true},
		{"завершенная не просрочена", &past, TaskStatusCompleted, false},
		{"отмененная с прошедшим сроком просрочена", &past, TaskStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{DueDate: tt.dueDate, Status: tt.status}
			if got := task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpentMinutes(t *testing.T) {
	task := &Task{TimeEntries: []TimeEntry{{Minutes: 30}, {Minutes: 45}, {Minutes: 15}}}
	if got := task.SpentMinutes(); got != 90 {
		t.Errorf("SpentMinutes() = %d, want 90", got)
	}

	empty := &Task{}
	if got := empty.SpentMinutes(); got != 0 {
		t.Errorf("SpentMinutes() = %d, want 0", got)
	}
}

func TestCustomFieldsValueScan(t *testing.T) {
	fields := CustomFields{
		{Name: "Среда", Type: CustomFieldText, Value: "staging"},
		{Name: "Оценка", Type: CustomFieldNumber, Value: "8"},
	}

	raw, err := fields.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var restored CustomFields
	if err := restored.Scan(raw); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(restored) != 2 || restored[0].Name != "Среда" || restored[1].Value != "8" {
		t.Errorf("Scan() = %+v, want исходные поля", restored)
	}

	var empty CustomFields
	raw, err = empty.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if raw != nil {
		t.Errorf("Value() для пустого списка = %v, want nil", raw)
	}

	var fromNil CustomFields
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if fromNil != nil {
		t.Errorf("Scan(nil) = %+v, want nil", fromNil)
	}
}
