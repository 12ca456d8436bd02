package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/report"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	appsync "github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/sync"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/command"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/tests/testutil"
)

type harness struct {
	t     *testing.T
	store *store.SQLiteStore
	fs    afero.Fs
	user  *model.User
	m     Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := testutil.NewTestStore(t)
	u := testutil.MustUser(t, s, "op")
	fs := afero.NewMemMapFs()

	m := New(Options{
		Store:     s,
		User:      *u,
		DBPath:    ":memory:",
		Exporter:  report.NewExporter(fs, s),
		ReportDir: "/reports",
	})
	t.Cleanup(m.poller.Stop)

	h := &harness{t: t, store: s, fs: fs, user: u, m: m}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send feeds msg to the model and returns the follow-up command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// key presses a single rune key and runs the resulting store command.
func (h *harness) key(r rune) {
	h.t.Helper()
	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	require.NotNil(h.t, cmd, "key %q", r)
	h.send(cmd())
}

// refresh reloads from the store the way the poller does.
func (h *harness) refresh() {
	h.t.Helper()
	msg, err := appsync.Load(context.Background(), h.store, h.user.ID)
	require.NoError(h.t, err)
	h.send(msg)
}

func TestStartAndStopTimerFromList(t *testing.T) {
	h := newHarness(t)
	task := testutil.MustTask(t, h.store, model.NewTask{Title: "Weld frame", OwnerID: &h.user.ID})
	h.refresh()

	h.key('s')
	require.NoError(t, h.m.err)
	require.NotNil(t, h.m.active)
	assert.Equal(t, task.ID, h.m.active.TaskID)
	assert.Contains(t, h.m.headerStatus(), "Weld frame")

	active, err := h.store.ActiveTimer(context.Background(), h.user.ID)
	require.NoError(t, err)
	require.NotNil(t, active)

	h.key('x')
	require.NoError(t, h.m.err)
	assert.Nil(t, h.m.active)
	assert.True(t, strings.HasPrefix(h.m.notice, "timer stopped"))
	assert.Contains(t, h.m.headerStatus(), "no timer")
}

func TestStopWithoutTimerShowsError(t *testing.T) {
	h := newHarness(t)
	h.key('x')
	assert.EqualError(t, h.m.err, "no timer is running")
}

func TestSecondTimerIsRejected(t *testing.T) {
	h := newHarness(t)
	a := testutil.MustTask(t, h.store, model.NewTask{Title: "a", OwnerID: &h.user.ID})
	testutil.MustTask(t, h.store, model.NewTask{Title: "b", OwnerID: &h.user.ID})
	_, err := h.store.StartTimer(context.Background(), a.ID, h.user.ID, "")
	require.NoError(t, err)
	h.refresh()

	// The newest task, b, is selected first.
	h.key('s')
	require.Error(t, h.m.err)
	assert.Contains(t, h.m.err.Error(), "already running")
}

func TestCompleteAndHoldKeys(t *testing.T) {
	h := newHarness(t)
	task := testutil.MustTask(t, h.store, model.NewTask{Title: "inspect", OwnerID: &h.user.ID})
	h.refresh()

	h.key('h')
	got, err := h.store.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnHold, got.Status)

	h.refresh()
	h.key('h')
	got, _ = h.store.GetTask(context.Background(), task.ID)
	assert.Equal(t, model.StatusPending, got.Status)

	h.key('c')
	got, _ = h.store.GetTask(context.Background(), task.ID)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestDeleteKey(t *testing.T) {
	h := newHarness(t)
	task := testutil.MustTask(t, h.store, model.NewTask{Title: "scrap", OwnerID: &h.user.ID})
	h.refresh()

	h.key('d')
	_, err := h.store.GetTask(context.Background(), task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPaletteCommands(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(command.CommandMsg{Name: "template", Args: []string{"welding"}})
	require.NotNil(t, cmd)
	h.send(cmd())
	require.NoError(t, h.m.err)
	assert.Contains(t, h.m.notice, "subtasks")

	tasks, err := h.store.ListTasks(context.Background(), store.TaskFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, tasks)

	assert.Nil(t, h.send(command.CommandMsg{Name: "start", Args: []string{"abc"}}))
	assert.Error(t, h.m.err)

	assert.Nil(t, h.send(command.CommandMsg{Name: "bogus"}))
	assert.EqualError(t, h.m.err, `unknown command "bogus"`)

	assert.Nil(t, h.send(command.CommandMsg{Name: "filter", Args: []string{"completed"}}))
	assert.Equal(t, model.StatusCompleted, h.m.taskList.Filter())
}

func TestExportCommandWritesReport(t *testing.T) {
	h := newHarness(t)
	testutil.MustTask(t, h.store, model.NewTask{Title: "t", OwnerID: &h.user.ID})

	cmd := h.send(command.CommandMsg{Name: "export", Args: []string{"yaml"}})
	require.NotNil(t, cmd)
	h.send(cmd())
	require.NoError(t, h.m.err)
	assert.Contains(t, h.m.notice, "/reports/report-")

	entries, err := afero.ReadDir(h.fs, "/reports")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestViewRendersFrame(t *testing.T) {
	h := newHarness(t)
	testutil.MustTask(t, h.store, model.NewTask{Title: "Calibrate gauge", OwnerID: &h.user.ID})
	h.refresh()

	out := h.m.View()
	assert.Contains(t, out, "Time Tracker")
	assert.Contains(t, out, "Calibrate gauge")

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}})
	assert.Equal(t, ViewDashboard, h.m.currentView)
	assert.Contains(t, h.m.View(), "Summary")
}

func TestFriendly(t *testing.T) {
	assert.Nil(t, friendly(nil))
	assert.Contains(t, friendly(store.ErrConflict).Error(), "already running")
	assert.Contains(t, friendly(store.ErrEntryClosed).Error(), "already stopped")
	assert.Contains(t, friendly(store.ErrNotFound).Error(), "no longer exists")
	other := errors.New("disk full")
	assert.Equal(t, other, friendly(other))
}
