package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus определяет статус задачи
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority определяет приоритет задачи
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// TaskCategory определяет категорию задачи
type TaskCategory string

const (
	TaskCategoryBug           TaskCategory = "bug"
	TaskCategoryFeature       TaskCategory = "feature"
	TaskCategoryImprovement   TaskCategory = "improvement"
	TaskCategoryDocumentation TaskCategory = "documentation"
	TaskCategoryTesting       TaskCategory = "testing"
	TaskCategoryOther         TaskCategory = "other"
)

// Subtask представляет подзадачу
type Subtask struct {
	ID          string     `json:"id" db:"id"`
	TaskID      string     `json:"task_id" db:"task_id"`
	Title       string     `json:"title" db:"title"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// TimeEntry представляет запись учета времени по задаче
type TimeEntry struct {
	ID          string    `json:"id" db:"id"`
	TaskID      string    `json:"task_id" db:"task_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Minutes     int       `json:"minutes" db:"minutes"`
	Description *string   `json:"description,omitempty" db:"description"`
	LoggedAt    time.Time `json:"logged_at" db:"logged_at"`
}

// TaskDependencyType представляет характер связи между задачами
type TaskDependencyType string

const (
	DependencyBlocks    TaskDependencyType = "blocks"
	DependencyBlockedBy TaskDependencyType = "blocked-by"
	DependencyRelated   TaskDependencyType = "related"
)

// Attachment представляет файл, прикрепленный к задаче.
// Хранятся только метаданные; сам файл лежит во внешнем хранилище.
type Attachment struct {
	ID         string    `json:"id" db:"id"`
	TaskID     string    `json:"task_id" db:"task_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	FileURL    string    `json:"file_url" db:"file_url"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	UploadedBy string    `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// AttachmentCreateRequest представляет метаданные загруженного файла
type AttachmentCreateRequest struct {
	FileName string `json:"file_name" validate:"required,min=1,max=255"`
	FileURL  string `json:"file_url" validate:"required,url"`
	FileSize int64  `json:"file_size" validate:"min=0"`
}

// CustomFieldType определяет тип значения пользовательского поля
type CustomFieldType string

const (
	CustomFieldText    CustomFieldType = "text"
	CustomFieldNumber  CustomFieldType = "number"
	CustomFieldDate    CustomFieldType = "date"
	CustomFieldBoolean CustomFieldType = "boolean"
)

// CustomField представляет типизированное пользовательское поле задачи
type CustomField struct {
	Name  string          `json:"name" validate:"required,min=1,max=100"`
	Type  CustomFieldType `json:"type" validate:"omitempty,oneof=text number date boolean"`
	Value string          `json:"value" validate:"max=500"`
}

// CustomFields хранится одной JSONB-колонкой
type CustomFields []CustomField

func (f CustomFields) Value() (driver.Value, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return json.Marshal(f)
}

func (f *CustomFields) Scan(src interface{}) error {
	if src == nil {
		*f = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported custom fields source type %T", src)
	}
	return json.Unmarshal(data, f)
}

// TaskDependency представляет связь задачи с задачей DependsOnID
type TaskDependency struct {
	DependsOnID string             `json:"depends_on_id" db:"depends_on_id" validate:"required,uuid"`
	Type        TaskDependencyType `json:"type" db:"type" validate:"omitempty,oneof=blocks blocked-by related"`
}

// Task представляет модель задачи
type Task struct {
	ID             string           `json:"id" db:"id"`
	Title          string           `json:"title" db:"title"`
	Description    string           `json:"description" db:"description"`
	Status         TaskStatus       `json:"status" db:"status"`
	Priority       TaskPriority     `json:"priority" db:"priority"`
	Category       TaskCategory     `json:"category" db:"category"`
	ProjectID      string           `json:"project_id" db:"project_id"`
	CreatedBy      string           `json:"created_by" db:"created_by"`
	AssignedTo     *string          `json:"assigned_to,omitempty" db:"assigned_to"`
	Progress       int              `json:"progress" db:"progress"`
	EstimatedHours *float64         `json:"estimated_hours,omitempty" db:"estimated_hours"`
	DueDate        *time.Time       `json:"due_date,omitempty" db:"due_date"`
	StartDate      *time.Time       `json:"start_date,omitempty" db:"start_date"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	IsArchived     bool             `json:"is_archived" db:"is_archived"`
	Subtasks       []Subtask        `json:"subtasks,omitempty" db:"-"`
	Labels         []string         `json:"labels,omitempty" db:"-"`
	Watchers       []string         `json:"watchers,omitempty" db:"-"`
	Dependencies   []TaskDependency `json:"dependencies,omitempty" db:"-"`
	Attachments    []Attachment     `json:"attachments,omitempty" db:"-"`
	TimeEntries    []TimeEntry      `json:"time_entries,omitempty" db:"-"`
	CustomFields   CustomFields     `json:"custom_fields,omitempty" db:"custom_fields"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// TaskCreateRequest представляет данные для создания задачи
type TaskCreateRequest struct {
	Title          string           `json:"title" validate:"required,min=3,max=200"`
	Description    string           `json:"description" validate:"max=2000"`
	Status         *TaskStatus      `json:"status,omitempty" validate:"omitempty,task_status"`
	Priority       *TaskPriority    `json:"priority,omitempty" validate:"omitempty,task_priority"`
	Category       *TaskCategory    `json:"category,omitempty" validate:"omitempty,task_category"`
	ProjectID      string           `json:"project_id" validate:"required,uuid"`
	AssignedTo     *string          `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
	EstimatedHours *float64         `json:"estimated_hours,omitempty" validate:"omitempty,min=0"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	StartDate      *time.Time       `json:"start_date,omitempty"`
	Labels         []string         `json:"labels,omitempty"`
	Watchers       []string         `json:"watchers,omitempty"`
	Dependencies   []TaskDependency `json:"dependencies,omitempty" validate:"omitempty,dive"`
	CustomFields   CustomFields     `json:"custom_fields,omitempty" validate:"omitempty,dive"`
}

// TaskUpdateRequest представляет данные для обновления задачи
type TaskUpdateRequest struct {
	Title          *string           `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description    *string           `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status         *TaskStatus       `json:"status,omitempty" validate:"omitempty,task_status"`
	Priority       *TaskPriority     `json:"priority,omitempty" validate:"omitempty,task_priority"`
	Category       *TaskCategory     `json:"category,omitempty" validate:"omitempty,task_category"`
	AssignedTo     *string           `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
	Progress       *int              `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	EstimatedHours *float64          `json:"estimated_hours,omitempty" validate:"omitempty,min=0"`
	DueDate        *time.Time        `json:"due_date,omitempty"`
	StartDate      *time.Time        `json:"start_date,omitempty"`
	IsArchived     *bool             `json:"is_archived,omitempty"`
	Labels         *[]string         `json:"labels,omitempty"`
	Dependencies   *[]TaskDependency `json:"dependencies,omitempty" validate:"omitempty,dive"`
	CustomFields   *CustomFields     `json:"custom_fields,omitempty" validate:"omitempty,dive"`
}

// SubtaskCreateRequest представляет данные для создания подзадачи
type SubtaskCreateRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// SubtaskUpdateRequest представляет данные для обновления подзадачи
type SubtaskUpdateRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// TimeEntryRequest представляет данные для записи времени по задаче
type TimeEntryRequest struct {
	Minutes     int     `json:"minutes" validate:"required,min=1"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// TaskResponse представляет данные задачи для API-ответов
type TaskResponse struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Status         TaskStatus       `json:"status"`
	Priority       TaskPriority     `json:"priority"`
	Category       TaskCategory     `json:"category"`
	ProjectID      string           `json:"project_id"`
	CreatedBy      *UserBrief       `json:"created_by,omitempty"`
	AssignedTo     *UserBrief       `json:"assigned_to,omitempty"`
	Progress       int              `json:"progress"`
	EstimatedHours *float64         `json:"estimated_hours,omitempty"`
	SpentMinutes   int              `json:"spent_minutes"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	StartDate      *time.Time       `json:"start_date,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	IsOverdue      bool             `json:"is_overdue"`
	IsArchived     bool             `json:"is_archived"`
	Subtasks       []Subtask        `json:"subtasks,omitempty"`
	Labels         []string         `json:"labels,omitempty"`
	Watchers       []string         `json:"watchers,omitempty"`
	Dependencies   []TaskDependency `json:"dependencies,omitempty"`
	Attachments    []Attachment     `json:"attachments,omitempty"`
	TimeEntries    []TimeEntry      `json:"time_entries,omitempty"`
	CustomFields   CustomFields     `json:"custom_fields,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToResponse преобразует Task в TaskResponse
func (t *Task) ToResponse(createdBy, assignedTo *UserBrief) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		Category:       t.Category,
		ProjectID:      t.ProjectID,
		CreatedBy:      createdBy,
		AssignedTo:     assignedTo,
		Progress:       t.Progress,
		EstimatedHours: t.EstimatedHours,
		SpentMinutes:   t.SpentMinutes(),
		DueDate:        t.DueDate,
		StartDate:      t.StartDate,
		CompletedAt:    t.CompletedAt,
		IsOverdue:      t.IsOverdue(time.Now()),
		IsArchived:     t.IsArchived,
		Subtasks:       t.Subtasks,
		Labels:         t.Labels,
		Watchers:       t.Watchers,
		Dependencies:   t.Dependencies,
		Attachments:    t.Attachments,
		TimeEntries:    t.TimeEntries,
		CustomFields:   t.CustomFields,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// IsOverdue проверяет, просрочена ли задача на момент now.
// Завершенная задача просроченной не считается.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == TaskStatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// SpentMinutes возвращает суммарное время по всем записям учета
func (t *Task) SpentMinutes() int {
	total := 0
	for _, e := range t.TimeEntries {
		total += e.Minutes
	}
	return total
}

// SubtaskProgress вычисляет прогресс по подзадачам:
// round(100 * завершенные / всего). При отсутствии подзадач возвращает -1.
func SubtaskProgress(subtasks []Subtask) int {
	if len(subtasks) == 0 {
		return -1
	}
	completed := 0
	for _, s := range subtasks {
		if s.IsCompleted {
			completed++
		}
	}
	return int(float64(completed)*100.0/float64(len(subtasks)) + 0.5)
}

// RecalculateProgress пересчитывает прогресс задачи по ее подзадачам
// и выводит статус по прогрессу. Правила:
//   - прогресс 100 переводит задачу в completed и проставляет completed_at;
//   - прогресс между 0 и 100 переводит todo в in-progress;
//   - обратных переходов по прогрессу нет: review и completed не понижаются;
//   - completed_at автоматически не очищается.
func (t *Task) RecalculateProgress(now time.Time) {
	if p := SubtaskProgress(t.Subtasks); p >= 0 {
		t.Progress = p
	}
	t.applyProgress(now)
}

// ApplyStatus применяет явную смену статуса. Перевод в completed
// форсирует прогресс 100 и проставляет completed_at.
func (t *Task) ApplyStatus(status TaskStatus, now time.Time) {
	t.Status = status
	if status == TaskStatusCompleted {
		t.Progress = 100
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	}
}

// ApplyProgress применяет явное изменение прогресса и выводит статус
func (t *Task) ApplyProgress(progress int, now time.Time) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	t.Progress = progress
	t.applyProgress(now)
}

func (t *Task) applyProgress(now time.Time) {
	switch {
	case t.Progress >= 100:
		// Прогресс 100 всегда означает completed, из какого бы статуса
		// задача ни пришла
		t.Progress = 100
		t.Status = TaskStatusCompleted
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	case t.Progress > 0:
		// Повышаем только из todo: review и completed по прогрессу не понижаются
		if t.Status == TaskStatusTodo {
			t.Status = TaskStatusInProgress
		}
	}
}

// TaskFilterOptions представляет параметры для фильтрации задач
type TaskFilterOptions struct {
	ProjectID  *string       `json:"project_id,omitempty"`
	Status     *TaskStatus   `json:"status,omitempty"`
	Priority   *TaskPriority `json:"priority,omitempty"`
	Category   *TaskCategory `json:"category,omitempty"`
	AssignedTo *string       `json:"assigned_to,omitempty"`
	CreatedBy  *string       `json:"created_by,omitempty"`
	SearchText *string       `json:"search_text,omitempty"`
	DueBefore  *time.Time    `json:"due_before,omitempty"`
	DueAfter   *time.Time    `json:"due_after,omitempty"`
	IsOverdue  *bool         `json:"is_overdue,omitempty"`
	IsArchived *bool         `json:"is_archived,omitempty"`
	Labels     []string      `json:"labels,omitempty"`
	SortBy     *string       `json:"sort_by,omitempty"`
	SortOrder  *string       `json:"sort_order,omitempty"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}
