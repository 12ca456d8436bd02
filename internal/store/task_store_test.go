package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/tests/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestCreateTaskDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, model.NewTask{
		Title:          "  Calibrate spindle  ",
		EstimatedHours: 2,
		Category:       ptr("  "),
	})
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.Equal(t, "Calibrate spindle", task.Title)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Zero(t, task.ActualHours)
	assert.Nil(t, task.Category, "blank category is stored as NULL")
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.StartedAt)
}

func TestCreateTaskIDsAreMonotonic(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := testutil.MustTask(t, s, model.NewTask{Title: "a"})
	b := testutil.MustTask(t, s, model.NewTask{Title: "b"})
	require.NoError(t, s.DeleteTask(ctx, b.ID))
	c := testutil.MustTask(t, s, model.NewTask{Title: "c"})

	assert.Greater(t, b.ID, a.ID)
	assert.Greater(t, c.ID, b.ID, "deleted ids are not reused")
}

func TestCreateTaskValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    model.NewTask
		field string
	}{
		{"blank title", model.NewTask{Title: "   "}, "title"},
		{"negative estimate", model.NewTask{Title: "x", EstimatedHours: -1}, "estimated_hours"},
		{"unknown priority", model.NewTask{Title: "x", Priority: "urgent"}, "priority"},
		{"missing parent", model.NewTask{Title: "x", ParentID: ptr(int64(999))}, "parent_id"},
		{"missing owner", model.NewTask{Title: "x", OwnerID: ptr(int64(42))}, "owner_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTask(ctx, tt.in)
			require.Error(t, err)

			var ve *store.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	tasks, err := s.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks, "failed creates leave nothing behind")
}

func TestNestingIsOneLevel(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	parent := testutil.MustTask(t, s, model.NewTask{Title: "CNC batch"})
	child := testutil.MustTask(t, s, model.NewTask{Title: "Setup", ParentID: &parent.ID})
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)

	_, err := s.CreateTask(ctx, model.NewTask{Title: "grandchild", ParentID: &child.ID})
	assert.True(t, store.IsValidation(err))

	// A task with children cannot itself become a child.
	other := testutil.MustTask(t, s, model.NewTask{Title: "other"})
	_, err = s.UpdateTask(ctx, parent.ID, model.TaskPatch{ParentID: &other.ID})
	assert.True(t, store.IsValidation(err))

	_, err = s.UpdateTask(ctx, other.ID, model.TaskPatch{ParentID: &other.ID})
	assert.True(t, store.IsValidation(err))

	children, err := s.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	detached, err := s.UpdateTask(ctx, child.ID, model.TaskPatch{ParentID: ptr(int64(0))})
	require.NoError(t, err)
	assert.Nil(t, detached.ParentID)
}

func TestListTasksOrderAndFilters(t *testing.T) {
	s, clock := testutil.NewClockedStore(t)
	ctx := context.Background()

	alice := testutil.MustUser(t, s, "alice")
	bob := testutil.MustUser(t, s, "bob")

	first := testutil.MustTask(t, s, model.NewTask{Title: "first", OwnerID: &alice.ID})
	clock.Advance(time.Minute)
	second := testutil.MustTask(t, s, model.NewTask{Title: "second", OwnerID: &bob.ID})
	clock.Advance(time.Minute)
	third := testutil.MustTask(t, s, model.NewTask{Title: "third", OwnerID: &alice.ID, Category: ptr("QUALITY")})

	_, err := s.UpdateTask(ctx, third.ID, model.TaskPatch{Status: ptr(model.StatusCompleted)})
	require.NoError(t, err)

	all, err := s.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID},
		[]int64{all[0].ID, all[1].ID, all[2].ID}, "newest first")

	mine, err := s.ListTasks(ctx, store.TaskFilter{OwnerID: &alice.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	both, err := s.ListTasks(ctx, store.TaskFilter{
		OwnerID: &alice.ID,
		Status:  ptr(model.StatusPending),
	})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, first.ID, both[0].ID)

	uncategorized, err := s.ListTasks(ctx, store.TaskFilter{Category: ptr(model.UncategorizedLabel)})
	require.NoError(t, err)
	assert.Len(t, uncategorized, 2)

	limited, err := s.ListTasks(ctx, store.TaskFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpdateTaskPartial(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	task := testutil.MustTask(t, s, model.NewTask{
		Title:          "Weld frame",
		Description:    "two seams",
		Category:       ptr("MANUFACTURING"),
		Priority:       model.PriorityHigh,
		EstimatedHours: 3,
	})

	updated, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{Title: ptr("Weld frame A")})
	require.NoError(t, err)
	assert.Equal(t, "Weld frame A", updated.Title)
	assert.Equal(t, "two seams", updated.Description)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "MANUFACTURING", *updated.Category)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.InDelta(t, 3.0, updated.EstimatedHours, 1e-9)

	cleared, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{Category: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Category)

	_, err = s.UpdateTask(ctx, task.ID, model.TaskPatch{Status: ptr("done")})
	assert.True(t, store.IsValidation(err))

	_, err = s.UpdateTask(ctx, 404, model.TaskPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompletingTwiceKeepsFirstTimestamp(t *testing.T) {
	s, clock := testutil.NewClockedStore(t)
	ctx := context.Background()

	task := testutil.MustTask(t, s, model.NewTask{Title: "Inspect"})

	clock.Advance(time.Hour)
	first, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{Status: ptr(model.StatusCompleted)})
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	clock.Advance(time.Hour)
	second, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{Status: ptr(model.StatusCompleted)})
	require.NoError(t, err)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(*second.CompletedAt))

	// Reopening and completing again still keeps the original stamp.
	_, err = s.UpdateTask(ctx, task.ID, model.TaskPatch{Status: ptr(model.StatusOnHold)})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	third, err := s.UpdateTask(ctx, task.ID, model.TaskPatch{Status: ptr(model.StatusCompleted)})
	require.NoError(t, err)
	assert.True(t, first.CompletedAt.Equal(*third.CompletedAt))
}

func TestDeleteTaskCascadesEntriesNotChildren(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	u := testutil.MustUser(t, s, "op")
	parent := testutil.MustTask(t, s, model.NewTask{Title: "parent"})
	child := testutil.MustTask(t, s, model.NewTask{Title: "child", ParentID: &parent.ID})

	entry, err := s.StartTimer(ctx, parent.ID, u.ID, "")
	require.NoError(t, err)
	_, err = s.StopTimer(ctx, entry.ID, u.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, parent.ID))

	_, err = s.GetTimeEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	entries, err := s.ListTimeEntries(ctx, store.TimeEntryFilter{TaskID: &parent.ID})
	require.NoError(t, err)
	assert.Empty(t, entries)

	orphan, err := s.GetTask(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, orphan.ParentID)
	assert.Equal(t, parent.ID, *orphan.ParentID, "children keep the dangling parent id")

	assert.ErrorIs(t, s.DeleteTask(ctx, parent.ID), store.ErrNotFound)
}
