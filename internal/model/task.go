package model

import "time"

// Task status constants.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on_hold"
)

// Task priority constants.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Statuses lists every task status in lifecycle order.
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted, StatusOnHold}

// Priorities lists every priority from lowest to highest.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Task is a unit of tracked work. A task may sit under one parent task.
type Task struct {
	ID             int64      `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	Assignee       string     `json:"assignee" db:"assignee"`
	OwnerID        *int64     `json:"owner_id,omitempty" db:"owner_id"`
	Category       *string    `json:"category,omitempty" db:"category"`
	Priority       string     `json:"priority" db:"priority"`
	Status         string     `json:"status" db:"status"`
	EstimatedHours float64    `json:"estimated_hours" db:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours" db:"actual_hours"`
	ParentID       *int64     `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// StartedAt is the first time a timer ran on this task. EndedAt is the
	// most recent stop and is cleared while a timer is running.
	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
}

// Efficiency returns actual time over estimated time, or 0 without an estimate.
func (t Task) Efficiency() float64 {
	if t.EstimatedHours <= 0 {
		return 0
	}
	return t.ActualHours / t.EstimatedHours
}

// CategoryLabel returns the category or "uncategorized" when unset.
func (t Task) CategoryLabel() string {
	if t.Category == nil || *t.Category == "" {
		return UncategorizedLabel
	}
	return *t.Category
}

// IsCompleted reports whether the task is in the completed state.
func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// UncategorizedLabel names the group of tasks without a category.
const UncategorizedLabel = "uncategorized"

// NewTask carries the caller-supplied fields for task creation.
type NewTask struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Description    string  `json:"description"`
	Assignee       string  `json:"assignee" validate:"max=120"`
	OwnerID        *int64  `json:"owner_id,omitempty"`
	Category       *string `json:"category,omitempty" validate:"omitempty,max=50"`
	Priority       string  `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	EstimatedHours float64 `json:"estimated_hours" validate:"gte=0"`
	ParentID       *int64  `json:"parent_id,omitempty"`
}

// TaskPatch is a partial update. Nil fields keep their current value.
type TaskPatch struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description    *string  `json:"description,omitempty"`
	Assignee       *string  `json:"assignee,omitempty" validate:"omitempty,max=120"`
	Category       *string  `json:"category,omitempty" validate:"omitempty,max=50"`
	Priority       *string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Status         *string  `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed on_hold"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	// ParentID of 0 detaches the task from its parent.
	ParentID *int64 `json:"parent_id,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Assignee == nil &&
		p.Category == nil && p.Priority == nil && p.Status == nil &&
		p.EstimatedHours == nil && p.ParentID == nil
}
