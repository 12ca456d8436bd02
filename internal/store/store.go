package store

import (
	"context"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

// TaskFilter controls filtering for task queries. Set fields combine with AND.
type TaskFilter struct {
	Status   *string
	OwnerID  *int64
	ParentID *int64
	Category *string
	// TopLevel restricts results to tasks without a parent.
	TopLevel bool
	Limit    int
}

// TimeEntryFilter controls filtering for time entry queries.
type TimeEntryFilter struct {
	TaskID   *int64
	UserID   *int64
	OpenOnly bool
	Limit    int
}

// Store defines the persistence interface for tasks, time entries,
// equipment, and subjects.
type Store interface {
	// === Tasks ===

	CreateTask(ctx context.Context, in model.NewTask) (*model.Task, error)
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	ListChildren(ctx context.Context, parentID int64) ([]model.Task, error)
	UpdateTask(ctx context.Context, id int64, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// === Timers ===

	StartTimer(ctx context.Context, taskID, userID int64, notes string) (*model.TimeEntry, error)
	StopTimer(ctx context.Context, entryID, userID int64) (*model.TimeEntry, error)
	StopTaskTimer(ctx context.Context, taskID, userID int64) (*model.TimeEntry, error)
	ActiveTimer(ctx context.Context, userID int64) (*model.TimeEntry, error)
	GetTimeEntry(ctx context.Context, id int64) (*model.TimeEntry, error)
	ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]model.TimeEntry, error)

	// === Equipment ===

	CreateEquipment(ctx context.Context, in model.NewEquipment) (*model.Equipment, error)
	UpdateEquipmentCounters(ctx context.Context, id int64, c model.EquipmentCounters) (*model.Equipment, error)
	GetEquipment(ctx context.Context, id int64) (*model.Equipment, error)
	ListEquipment(ctx context.Context) ([]model.Equipment, error)
	DeleteEquipment(ctx context.Context, id int64) error

	// === Users ===

	CreateUser(ctx context.Context, in model.NewUser) (*model.User, error)
	EnsureUser(ctx context.Context, handle, displayName string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetCredentialHash(ctx context.Context, id int64, hash string) error
}
