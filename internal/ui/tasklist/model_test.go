package tasklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/keys"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

func id(v int64) *int64 { return &v }

func ids(items []TaskItem) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.Task.ID
	}
	return out
}

func sample() []model.Task {
	// Newest first, the way the store lists them.
	return []model.Task{
		{ID: 5, Title: "orphan", ParentID: id(99), Status: model.StatusPending},
		{ID: 4, Title: "child b", ParentID: id(1), Status: model.StatusCompleted},
		{ID: 3, Title: "second", Status: model.StatusInProgress},
		{ID: 2, Title: "child a", ParentID: id(1), Status: model.StatusPending},
		{ID: 1, Title: "parent", Status: model.StatusPending},
	}
}

func TestArrangeNestsChildrenUnderParents(t *testing.T) {
	rows := Arrange(sample(), nil, "")

	assert.Equal(t, []int64{5, 3, 1, 2, 4}, ids(rows))
	assert.Equal(t, 0, rows[0].Depth, "missing parent shows at top level")
	assert.Equal(t, 1, rows[3].Depth)
	assert.Equal(t, 1, rows[4].Depth)
}

func TestArrangeFilterIsFlat(t *testing.T) {
	rows := Arrange(sample(), nil, model.StatusPending)

	assert.Equal(t, []int64{5, 2, 1}, ids(rows))
	for _, r := range rows {
		assert.Zero(t, r.Depth)
	}
}

func TestArrangeMarksRunningTask(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	rows := Arrange(sample(), &model.TimeEntry{TaskID: 3, StartTime: start}, "")

	for _, r := range rows {
		assert.Equal(t, r.Task.ID == 3, r.Running, "task %d", r.Task.ID)
	}
	assert.Equal(t, start, rows[1].Since)
}

func TestSetDataKeepsSelectionAndFilters(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	m.SetData(sample(), nil)

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(5), sel.ID)

	require.True(t, m.SetFilter(model.StatusInProgress))
	sel, ok = m.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(3), sel.ID)

	assert.False(t, m.SetFilter("archived"))
	assert.True(t, m.SetFilter("all"))
	assert.Equal(t, "", m.Filter())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:00:00", FormatElapsed(-time.Second))
	assert.Equal(t, "1:30:05", FormatElapsed(90*time.Minute+5*time.Second))
}
