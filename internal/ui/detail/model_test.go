package detail

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/keys"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderShowsChildrenAndEntries(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	dur := 1.5

	out := Render(TaskDetail{
		Task: model.Task{
			ID: 1, Title: "Assemble gearbox", Status: model.StatusInProgress,
			Priority: model.PriorityHigh, EstimatedHours: 1, ActualHours: 1.5,
		},
		Children: []model.Task{{ID: 2, Title: "Fit bearings", Status: model.StatusPending}},
		Entries: []model.TimeEntry{
			{ID: 9, StartTime: start, EndTime: &end, DurationHours: &dur, Notes: "first shift"},
			{ID: 10, StartTime: end},
		},
	}, 80)

	assert.Contains(t, out, "#1 Assemble gearbox")
	assert.Contains(t, out, "uncategorized")
	assert.Contains(t, out, "150%")
	assert.Contains(t, out, "Subtasks (1)")
	assert.Contains(t, out, "#2 Fit bearings")
	assert.Contains(t, out, "Time Entries (2)")
	assert.Contains(t, out, "1.50h")
	assert.Contains(t, out, "first shift")
	assert.Contains(t, out, "running")
}

func TestModelBackAndCurrent(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	_, ok := m.Current()
	assert.False(t, ok)

	m, _ = m.Update(DetailLoadedMsg{Detail: &TaskDetail{Task: model.Task{ID: 3, Title: "x"}}})
	cur, ok := m.Current()
	assert.True(t, ok)
	assert.Equal(t, int64(3), cur.ID)
}
