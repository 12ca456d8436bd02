package analytics

import (
	"sort"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

// CategoryTotal is the recorded time of one category. Category is nil for
// the group of tasks without one.
type CategoryTotal struct {
	Category *string `json:"category" yaml:"category"`
	Label    string  `json:"label" yaml:"label"`
	Tasks    int     `json:"tasks" yaml:"tasks"`
	Hours    float64 `json:"hours" yaml:"hours"`
}

// Summary counts tasks by state. Pending is the residual of the other
// counts, so on-hold tasks fall into it and the four numbers always agree.
type Summary struct {
	Total      int     `json:"total" yaml:"total"`
	Completed  int     `json:"completed" yaml:"completed"`
	InProgress int     `json:"in_progress" yaml:"in_progress"`
	Pending    int     `json:"pending" yaml:"pending"`
	TotalHours float64 `json:"total_hours" yaml:"total_hours"`
}

// CompletionRate returns completed over total as a percentage.
func (s Summary) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return round2(float64(s.Completed) / float64(s.Total) * 100)
}

// Summarize counts tasks and sums their actual hours.
func Summarize(tasks []model.Task) Summary {
	var s Summary
	var hours float64
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case model.StatusCompleted:
			s.Completed++
		case model.StatusInProgress:
			s.InProgress++
		}
		hours += t.ActualHours
	}
	s.Pending = s.Total - s.Completed - s.InProgress
	s.TotalHours = round2(hours)
	return s
}

// CategoryBreakdown sums actual hours per category, largest first.
// Tasks without a category form their own group.
func CategoryBreakdown(tasks []model.Task) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	var raw []float64

	for _, t := range tasks {
		key := "\x00"
		if t.Category != nil {
			key = *t.Category
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			ct := CategoryTotal{Label: t.CategoryLabel()}
			if t.Category != nil {
				c := *t.Category
				ct.Category = &c
			}
			out = append(out, ct)
			raw = append(raw, 0)
		}
		out[i].Tasks++
		raw[i] += t.ActualHours
	}

	for i := range out {
		out[i].Hours = round2(raw[i])
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Hours != out[b].Hours {
			return out[a].Hours > out[b].Hours
		}
		return out[a].Label < out[b].Label
	})
	return out
}
