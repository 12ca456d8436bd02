package model

import "time"

// TimeEntry is one timed run of work on a task by a subject.
// EndTime and DurationHours are nil while the timer is running.
type TimeEntry struct {
	ID            int64      `json:"id" db:"id"`
	TaskID        int64      `json:"task_id" db:"task_id"`
	UserID        int64      `json:"user_id" db:"user_id"`
	StartTime     time.Time  `json:"start_time" db:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty" db:"end_time"`
	DurationHours *float64   `json:"duration_hours,omitempty" db:"duration_hours"`
	Notes         string     `json:"notes" db:"notes"`
}

// IsOpen reports whether the timer is still running.
func (e TimeEntry) IsOpen() bool { return e.EndTime == nil }

// Elapsed returns the recorded duration, or the running time as of now
// for an open entry.
func (e TimeEntry) Elapsed(now time.Time) time.Duration {
	if e.EndTime != nil {
		return e.EndTime.Sub(e.StartTime)
	}
	return now.Sub(e.StartTime)
}

// Hours returns the closed duration in hours, or 0 while open.
func (e TimeEntry) Hours() float64 {
	if e.DurationHours == nil {
		return 0
	}
	return *e.DurationHours
}
