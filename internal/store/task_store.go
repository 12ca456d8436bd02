package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

// CreateTask inserts a new pending task with no recorded time.
func (s *SQLiteStore) CreateTask(ctx context.Context, in model.NewTask) (*model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = normalizeCategory(in.Category)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	var task model.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if in.ParentID != nil {
			if err := checkParent(ctx, tx, 0, *in.ParentID); err != nil {
				return err
			}
		}
		if in.OwnerID != nil {
			if err := checkUserExists(ctx, tx, *in.OwnerID, "owner_id"); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (
				title, description, assignee, owner_id, category,
				priority, status, estimated_hours, actual_hours,
				parent_id, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			in.Title, in.Description, strings.TrimSpace(in.Assignee), in.OwnerID, in.Category,
			in.Priority, model.StatusPending, in.EstimatedHours,
			in.ParentID, s.timestamp(),
		)
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading task id: %w", err)
		}
		return getTask(ctx, tx, id, &task)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task.created",
		zap.Int64("task_id", task.ID),
		zap.String("title", task.Title),
		zap.Int64p("parent_id", task.ParentID),
	)
	return &task, nil
}

// GetTask retrieves a single task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	if err := getTask(ctx, s.db, id, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns tasks matching the filter, most recently created first.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery(filter)

	var tasks []model.Task
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}

// ListChildren returns the direct children of a task in creation order.
func (s *SQLiteStore) ListChildren(ctx context.Context, parentID int64) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.SelectContext(ctx, &tasks,
		"SELECT * FROM tasks WHERE parent_id = ? ORDER BY created_at, id", parentID)
	if err != nil {
		return nil, fmt.Errorf("querying children of task %d: %w", parentID, err)
	}
	return tasks, nil
}

// UpdateTask applies the non-nil fields of patch. Moving into completed
// stamps CompletedAt the first time only.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, patch model.TaskPatch) (*model.Task, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	var task model.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := getTask(ctx, tx, id, &task); err != nil {
			return err
		}
		if patch.IsEmpty() {
			return nil
		}

		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.Assignee != nil {
			task.Assignee = strings.TrimSpace(*patch.Assignee)
		}
		if patch.Category != nil {
			task.Category = normalizeCategory(patch.Category)
		}
		if patch.Priority != nil {
			task.Priority = *patch.Priority
		}
		if patch.EstimatedHours != nil {
			task.EstimatedHours = *patch.EstimatedHours
		}
		if patch.ParentID != nil {
			if *patch.ParentID == 0 {
				task.ParentID = nil
			} else {
				if err := checkParent(ctx, tx, id, *patch.ParentID); err != nil {
					return err
				}
				pid := *patch.ParentID
				task.ParentID = &pid
			}
		}
		if patch.Status != nil {
			task.Status = *patch.Status
			if task.Status == model.StatusCompleted && task.CompletedAt == nil {
				now := s.timestamp()
				task.CompletedAt = &now
			}
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE tasks SET
				title = ?, description = ?, assignee = ?, category = ?,
				priority = ?, status = ?, estimated_hours = ?,
				parent_id = ?, completed_at = ?
			WHERE id = ?`,
			task.Title, task.Description, task.Assignee, task.Category,
			task.Priority, task.Status, task.EstimatedHours,
			task.ParentID, task.CompletedAt,
			id,
		)
		if err != nil {
			return fmt.Errorf("updating task %d: %w", id, err)
		}
		return getTask(ctx, tx, id, &task)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task.updated",
		zap.Int64("task_id", task.ID),
		zap.String("status", task.Status),
	)
	return &task, nil
}

// DeleteTask removes a task and, through the foreign key, its time entries.
// Child tasks are left in place.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	s.logger.Info("task.deleted", zap.Int64("task_id", id))
	return nil
}

func getTask(ctx context.Context, q sqlx.QueryerContext, id int64, dest *model.Task) error {
	err := sqlx.GetContext(ctx, q, dest, "SELECT * FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("getting task %d: %w", id, err)
	}
	return nil
}

// checkParent enforces one level of nesting. taskID is 0 for a task that
// does not exist yet.
func checkParent(ctx context.Context, tx *sqlx.Tx, taskID, parentID int64) error {
	if taskID != 0 && parentID == taskID {
		return invalid("parent_id", "self", "a task cannot be its own parent")
	}

	var parent model.Task
	err := sqlx.GetContext(ctx, tx, &parent, "SELECT * FROM tasks WHERE id = ?", parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return invalid("parent_id", "exists", fmt.Sprintf("task %d does not exist", parentID))
	}
	if err != nil {
		return fmt.Errorf("getting parent task %d: %w", parentID, err)
	}
	if parent.ParentID != nil {
		return invalid("parent_id", "depth", fmt.Sprintf("task %d is already a subtask", parentID))
	}

	if taskID != 0 {
		var children int
		err := tx.GetContext(ctx, &children,
			"SELECT COUNT(*) FROM tasks WHERE parent_id = ?", taskID)
		if err != nil {
			return fmt.Errorf("counting children of task %d: %w", taskID, err)
		}
		if children > 0 {
			return invalid("parent_id", "depth", fmt.Sprintf("task %d has subtasks", taskID))
		}
	}
	return nil
}

func checkUserExists(ctx context.Context, tx *sqlx.Tx, userID int64, field string) error {
	var n int
	if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM users WHERE id = ?", userID); err != nil {
		return fmt.Errorf("checking user %d: %w", userID, err)
	}
	if n == 0 {
		return invalid(field, "exists", fmt.Sprintf("user %d does not exist", userID))
	}
	return nil
}

// normalizeCategory trims the category and maps blank to nil.
func normalizeCategory(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.TrimSpace(*c)
	if v == "" {
		return nil
	}
	return &v
}

// buildTaskQuery constructs the SQL query and args for a TaskFilter.
func buildTaskQuery(filter TaskFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.OwnerID != nil {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.ParentID != nil {
		conditions = append(conditions, "parent_id = ?")
		args = append(args, *filter.ParentID)
	}
	if filter.TopLevel {
		conditions = append(conditions, "parent_id IS NULL")
	}
	if filter.Category != nil {
		if *filter.Category == model.UncategorizedLabel {
			conditions = append(conditions, "category IS NULL")
		} else {
			conditions = append(conditions, "category = ?")
			args = append(args, *filter.Category)
		}
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	return query, args
}
