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

// StartTimer opens a time entry for userID on taskID. A subject may only
// have one running timer; a second start fails with ErrConflict and
// changes nothing. A pending task moves to in_progress.
func (s *SQLiteStore) StartTimer(ctx context.Context, taskID, userID int64, notes string) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var task model.Task
		if err := getTask(ctx, tx, taskID, &task); err != nil {
			return err
		}
		var users int
		if err := tx.GetContext(ctx, &users, "SELECT COUNT(*) FROM users WHERE id = ?", userID); err != nil {
			return fmt.Errorf("checking user %d: %w", userID, err)
		}
		if users == 0 {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}

		var open int
		err := tx.GetContext(ctx, &open,
			"SELECT COUNT(*) FROM time_entries WHERE user_id = ? AND end_time IS NULL", userID)
		if err != nil {
			return fmt.Errorf("checking running timers: %w", err)
		}
		if open > 0 {
			return fmt.Errorf("user %d already has a running timer: %w", userID, ErrConflict)
		}

		now := s.timestamp()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO time_entries (task_id, user_id, start_time, notes)
			VALUES (?, ?, ?, ?)`,
			taskID, userID, now, strings.TrimSpace(notes),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("user %d already has a running timer: %w", userID, ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("starting timer: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading time entry id: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE tasks SET
				status = CASE WHEN status = ? THEN ? ELSE status END,
				started_at = COALESCE(started_at, ?),
				ended_at = NULL
			WHERE id = ?`,
			model.StatusPending, model.StatusInProgress, now, taskID,
		)
		if err != nil {
			return fmt.Errorf("marking task %d started: %w", taskID, err)
		}
		return getTimeEntry(ctx, tx, id, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("timer.started",
		zap.Int64("entry_id", entry.ID),
		zap.Int64("task_id", entry.TaskID),
		zap.Int64("user_id", entry.UserID),
	)
	return &entry, nil
}

// StopTimer closes an open entry owned by userID and recomputes the
// task's actual hours from all of its closed entries.
func (s *SQLiteStore) StopTimer(ctx context.Context, entryID, userID int64) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := getTimeEntry(ctx, tx, entryID, &entry); err != nil {
			return err
		}
		if entry.UserID != userID {
			return fmt.Errorf("time entry %d belongs to another user: %w", entryID, ErrForbidden)
		}
		if !entry.IsOpen() {
			return fmt.Errorf("time entry %d: %w", entryID, ErrEntryClosed)
		}
		return s.closeEntry(ctx, tx, &entry)
	})
	if err != nil {
		return nil, err
	}
	s.logStopped(entry)
	return &entry, nil
}

// StopTaskTimer stops userID's running timer on taskID. A task that was
// never started is put back to pending and (nil, nil) is returned.
func (s *SQLiteStore) StopTaskTimer(ctx context.Context, taskID, userID int64) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	var reset bool
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var task model.Task
		if err := getTask(ctx, tx, taskID, &task); err != nil {
			return err
		}

		err := tx.GetContext(ctx, &entry, `
			SELECT * FROM time_entries
			WHERE task_id = ? AND user_id = ? AND end_time IS NULL`,
			taskID, userID,
		)
		if err == nil {
			return s.closeEntry(ctx, tx, &entry)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("finding running timer on task %d: %w", taskID, err)
		}

		var entries int
		if err := tx.GetContext(ctx, &entries,
			"SELECT COUNT(*) FROM time_entries WHERE task_id = ?", taskID); err != nil {
			return fmt.Errorf("counting time entries of task %d: %w", taskID, err)
		}
		if task.StartedAt != nil || entries > 0 {
			return fmt.Errorf("no running timer on task %d: %w", taskID, ErrNotFound)
		}

		if task.Status != model.StatusCompleted {
			_, err = tx.ExecContext(ctx,
				"UPDATE tasks SET status = ? WHERE id = ?", model.StatusPending, taskID)
			if err != nil {
				return fmt.Errorf("resetting task %d: %w", taskID, err)
			}
		}
		reset = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if reset {
		s.logger.Info("task.reset", zap.Int64("task_id", taskID))
		return nil, nil
	}
	s.logStopped(entry)
	return &entry, nil
}

// ActiveTimer returns the subject's running entry, or nil when none runs.
func (s *SQLiteStore) ActiveTimer(ctx context.Context, userID int64) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	err := s.db.GetContext(ctx, &entry,
		"SELECT * FROM time_entries WHERE user_id = ? AND end_time IS NULL", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting active timer for user %d: %w", userID, err)
	}
	return &entry, nil
}

// GetTimeEntry retrieves a single time entry by ID.
func (s *SQLiteStore) GetTimeEntry(ctx context.Context, id int64) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := getTimeEntry(ctx, s.db, id, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListTimeEntries returns entries matching the filter, newest first.
func (s *SQLiteStore) ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]model.TimeEntry, error) {
	var conditions []string
	var args []any
	if filter.TaskID != nil {
		conditions = append(conditions, "task_id = ?")
		args = append(args, *filter.TaskID)
	}
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.OpenOnly {
		conditions = append(conditions, "end_time IS NULL")
	}

	query := "SELECT * FROM time_entries"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var entries []model.TimeEntry
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("querying time entries: %w", err)
	}
	return entries, nil
}

// closeEntry stamps the end time and duration on an open entry, then
// recomputes the owning task's totals. entry is refreshed in place.
func (s *SQLiteStore) closeEntry(ctx context.Context, tx *sqlx.Tx, entry *model.TimeEntry) error {
	end := s.timestamp()
	hours := end.Sub(entry.StartTime).Hours()
	if hours < 0 {
		hours = 0
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE time_entries SET end_time = ?, duration_hours = ?
		WHERE id = ? AND end_time IS NULL`,
		end, hours, entry.ID,
	)
	if err != nil {
		return fmt.Errorf("stopping time entry %d: %w", entry.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("time entry %d: %w", entry.ID, ErrEntryClosed)
	}

	// Totals are recomputed from every closed entry rather than incremented.
	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET
			actual_hours = (
				SELECT COALESCE(SUM(duration_hours), 0) FROM time_entries
				WHERE task_id = ? AND end_time IS NOT NULL
			),
			ended_at = CASE
				WHEN EXISTS (
					SELECT 1 FROM time_entries WHERE task_id = ? AND end_time IS NULL
				) THEN NULL
				ELSE ?
			END
		WHERE id = ?`,
		entry.TaskID, entry.TaskID, end, entry.TaskID,
	)
	if err != nil {
		return fmt.Errorf("recomputing task %d: %w", entry.TaskID, err)
	}
	return getTimeEntry(ctx, tx, entry.ID, entry)
}

func (s *SQLiteStore) logStopped(entry model.TimeEntry) {
	s.logger.Info("timer.stopped",
		zap.Int64("entry_id", entry.ID),
		zap.Int64("task_id", entry.TaskID),
		zap.Int64("user_id", entry.UserID),
		zap.Float64("hours", entry.Hours()),
	)
}

func getTimeEntry(ctx context.Context, q sqlx.QueryerContext, id int64, dest *model.TimeEntry) error {
	err := sqlx.GetContext(ctx, q, dest, "SELECT * FROM time_entries WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("time entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("getting time entry %d: %w", id, err)
	}
	return nil
}
