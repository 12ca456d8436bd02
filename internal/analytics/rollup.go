package analytics

import "github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"

// TaskNode is a top-level task with its children and combined hours.
// A child whose parent is not among the rolled-up tasks becomes its own
// node: Orphan is set when the parent no longer exists, ParentElsewhere
// when it exists but falls outside the view (e.g. another subject's task).
type TaskNode struct {
	Task            model.Task   `json:"task" yaml:"task"`
	Children        []model.Task `json:"children,omitempty" yaml:"children,omitempty"`
	TotalHours      float64      `json:"total_hours" yaml:"total_hours"`
	Orphan          bool         `json:"orphan,omitempty" yaml:"orphan,omitempty"`
	ParentElsewhere bool         `json:"parent_elsewhere,omitempty" yaml:"parent_elsewhere,omitempty"`
}

// Rollup nests children under their parents and adds the children's
// actual hours to the parent's own. Order follows the input. tasks is
// taken to be complete, so a missing parent marks the child an orphan.
func Rollup(tasks []model.Task) []TaskNode {
	return RollupWithin(tasks, nil)
}

// RollupWithin is Rollup over a subset of tasks. existing holds the ids of
// every stored task; a child whose parent is in existing but not in tasks
// is not an orphan. A nil existing behaves like Rollup.
func RollupWithin(tasks []model.Task, existing map[int64]bool) []TaskNode {
	byID := make(map[int64]int, len(tasks))
	var nodes []TaskNode

	for _, t := range tasks {
		if t.ParentID == nil {
			byID[t.ID] = len(nodes)
			nodes = append(nodes, TaskNode{Task: t, TotalHours: t.ActualHours})
		}
	}
	for _, t := range tasks {
		if t.ParentID == nil {
			continue
		}
		i, ok := byID[*t.ParentID]
		if !ok {
			node := TaskNode{Task: t, TotalHours: t.ActualHours}
			if existing[*t.ParentID] {
				node.ParentElsewhere = true
			} else {
				node.Orphan = true
			}
			nodes = append(nodes, node)
			continue
		}
		nodes[i].Children = append(nodes[i].Children, t)
		nodes[i].TotalHours += t.ActualHours
	}

	for i := range nodes {
		nodes[i].TotalHours = round2(nodes[i].TotalHours)
	}
	return nodes
}
