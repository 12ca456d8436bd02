package analytics

import (
	"sort"
	"time"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

// GanttRow is one bar on the timeline.
type GanttRow struct {
	TaskID   int64     `json:"task_id" yaml:"task_id"`
	Label    string    `json:"label" yaml:"label"`
	Start    time.Time `json:"start" yaml:"start"`
	End      time.Time `json:"end" yaml:"end"`
	Assignee string    `json:"assignee" yaml:"assignee"`
}

// Duration returns the span of the bar.
func (r GanttRow) Duration() time.Duration { return r.End.Sub(r.Start) }

// GanttRows builds rows for tasks that have both a start and an end,
// ordered by start. Tasks missing either are skipped.
func GanttRows(tasks []model.Task) []GanttRow {
	var rows []GanttRow
	for _, t := range tasks {
		if t.StartedAt == nil || t.EndedAt == nil {
			continue
		}
		rows = append(rows, GanttRow{
			TaskID:   t.ID,
			Label:    t.Title,
			Start:    *t.StartedAt,
			End:      *t.EndedAt,
			Assignee: t.Assignee,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Start.Before(rows[j].Start)
	})
	return rows
}

// Span returns the earliest start and latest end across rows.
func Span(rows []GanttRow) (start, end time.Time) {
	for i, r := range rows {
		if i == 0 || r.Start.Before(start) {
			start = r.Start
		}
		if i == 0 || r.End.After(end) {
			end = r.End
		}
	}
	return start, end
}
