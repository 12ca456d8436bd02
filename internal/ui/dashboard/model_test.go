package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func at(h int) *time.Time {
	t := time.Date(2024, 3, 4, h, 0, 0, 0, time.UTC)
	return &t
}

func TestComputeAndRender(t *testing.T) {
	prod := "production line"
	tasks := []model.Task{
		{ID: 1, Title: "Weld", Category: &prod, Status: model.StatusCompleted, ActualHours: 3, StartedAt: at(8), EndedAt: at(11)},
		{ID: 2, Title: "Inspect", Status: model.StatusInProgress, ActualHours: 1, StartedAt: at(11), EndedAt: at(12)},
		{ID: 3, Title: "Idle", Status: model.StatusPending},
	}
	eq := []model.Equipment{{Name: "CNC-01", PlannedHours: 8, DowntimeHours: 0.5, ActualOutput: 400, GoodUnits: 380, StandardRate: 60}}

	d := Compute(tasks, eq)
	assert.Equal(t, 3, d.Summary.Total)
	assert.Len(t, d.Gantt, 2)
	assert.Len(t, d.Fleet.Units, 1)

	out := Render(d, 100)
	assert.Contains(t, out, "Production Line", "category labels are title-cased")
	assert.Contains(t, out, "Uncategorized")
	assert.Contains(t, out, "1. Weld")
	assert.Contains(t, out, "CNC-01")
	assert.Contains(t, out, "Timeline")
}

func TestRenderEmpty(t *testing.T) {
	out := Render(Compute(nil, nil), 80)
	assert.Contains(t, out, "No recorded time yet.")
	assert.Contains(t, out, "No equipment registered.")
	assert.Contains(t, out, "No tasks with a start and end yet.")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10, 20))
	assert.Equal(t, strings.Repeat("█", 10), bar(5, 10, 20))
	assert.Equal(t, "█", bar(0.01, 10, 20), "tiny values still show")
}

func TestTimelineBarPlacement(t *testing.T) {
	start, end := *at(8), *at(12)
	got := timelineBar(*at(10), *at(12), start, end, 8)
	assert.Equal(t, "····████", got)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "short", fit("short", 10))
	assert.Equal(t, "long…", fit("longer name", 5))
}
