// Package analytics derives read-only views from stored tasks and equipment:
// category totals, completion summaries, Pareto rankings, Gantt rows, OEE,
// and parent/child rollups.
package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
)

// Reader is the slice of the store the engine needs.
type Reader interface {
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]model.Task, error)
	ListEquipment(ctx context.Context) ([]model.Equipment, error)
}

// Engine computes aggregate views over a Reader. It never writes.
type Engine struct {
	r Reader
}

// NewEngine returns an Engine reading through r.
func NewEngine(r Reader) *Engine {
	return &Engine{r: r}
}

// tasksFor loads the subject's tasks; userID 0 means every subject.
func (e *Engine) tasksFor(ctx context.Context, userID int64) ([]model.Task, error) {
	var filter store.TaskFilter
	if userID != 0 {
		filter.OwnerID = &userID
	}
	tasks, err := e.r.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return tasks, nil
}

// CategoryBreakdown returns hours per category for the subject's tasks.
func (e *Engine) CategoryBreakdown(ctx context.Context, userID int64) ([]CategoryTotal, error) {
	tasks, err := e.tasksFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CategoryBreakdown(tasks), nil
}

// Summary returns the subject's completion counts and total hours.
func (e *Engine) Summary(ctx context.Context, userID int64) (Summary, error) {
	tasks, err := e.tasksFor(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(tasks), nil
}

// Pareto ranks the subject's tasks by recorded hours.
func (e *Engine) Pareto(ctx context.Context, userID int64) (ParetoResult, error) {
	tasks, err := e.tasksFor(ctx, userID)
	if err != nil {
		return ParetoResult{}, err
	}
	return Pareto(ParetoInputs(tasks)), nil
}

// Gantt returns timeline rows for the subject's tasks.
func (e *Engine) Gantt(ctx context.Context, userID int64) ([]GanttRow, error) {
	tasks, err := e.tasksFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GanttRows(tasks), nil
}

// Rollup groups the subject's tasks under their parents. A child whose
// parent exists but is not a top-level task of the subject is flagged
// ParentElsewhere rather than Orphan.
func (e *Engine) Rollup(ctx context.Context, userID int64) ([]TaskNode, error) {
	all, err := e.tasksFor(ctx, 0)
	if err != nil {
		return nil, err
	}
	existing := make(map[int64]bool, len(all))
	for _, t := range all {
		existing[t.ID] = true
	}
	if userID == 0 {
		return RollupWithin(all, existing), nil
	}

	tasks, err := e.tasksFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RollupWithin(tasks, existing), nil
}

// OEEAll computes OEE for every machine plus the fleet average.
func (e *Engine) OEEAll(ctx context.Context) (Fleet, error) {
	items, err := e.r.ListEquipment(ctx)
	if err != nil {
		return Fleet{}, fmt.Errorf("loading equipment: %w", err)
	}
	return FleetOEE(items), nil
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
