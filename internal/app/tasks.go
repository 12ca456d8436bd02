package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/detail"
)

// taskSavedMsg is sent after a task is created, updated, or deleted.
type taskSavedMsg struct {
	notice string
	err    error
}

// timerMsg is sent after a timer starts or stops.
type timerMsg struct {
	entry   *model.TimeEntry
	started bool
	err     error
}

// templateAppliedMsg is sent after a template group is instantiated.
type templateAppliedMsg struct {
	parent   *model.Task
	children int
	err      error
}

// exportedMsg is sent after a report is written.
type exportedMsg struct {
	path string
	err  error
}

// createTask persists a new task.
func (m *Model) createTask(in model.NewTask) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		t, err := s.CreateTask(context.Background(), in)
		if err != nil {
			return taskSavedMsg{err: err}
		}
		return taskSavedMsg{notice: "created #" + itoa(t.ID)}
	}
}

// updateTask applies a partial update.
func (m *Model) updateTask(id int64, patch model.TaskPatch) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if patch.IsEmpty() {
			return taskSavedMsg{notice: "no changes"}
		}
		_, err := s.UpdateTask(context.Background(), id, patch)
		if err != nil {
			return taskSavedMsg{err: err}
		}
		return taskSavedMsg{notice: "updated #" + itoa(id)}
	}
}

// setStatus moves a task to the given status.
func (m *Model) setStatus(id int64, status string) tea.Cmd {
	return m.updateTask(id, model.TaskPatch{Status: &status})
}

// deleteTask removes a task and its time entries.
func (m *Model) deleteTask(id int64) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteTask(context.Background(), id)
		if err != nil {
			return taskSavedMsg{err: err}
		}
		return taskSavedMsg{notice: "deleted #" + itoa(id)}
	}
}

// startTimer starts the operator's timer on a task.
func (m *Model) startTimer(taskID int64) tea.Cmd {
	s := m.store
	userID := m.user.ID
	return func() tea.Msg {
		e, err := s.StartTimer(context.Background(), taskID, userID, "")
		return timerMsg{entry: e, started: true, err: err}
	}
}

// stopTimer stops the operator's running timer.
func (m *Model) stopTimer() tea.Cmd {
	s := m.store
	userID := m.user.ID
	return func() tea.Msg {
		ctx := context.Background()
		active, err := s.ActiveTimer(ctx, userID)
		if err != nil {
			return timerMsg{err: err}
		}
		if active == nil {
			return timerMsg{err: errNoTimer}
		}
		e, err := s.StopTimer(ctx, active.ID, userID)
		return timerMsg{entry: e, err: err}
	}
}

// applyTemplate creates a task group from the industrial catalog.
func (m *Model) applyTemplate(name string) tea.Cmd {
	s := m.store
	catalog := m.catalog
	owner := m.user.ID
	return func() tea.Msg {
		parent, children, err := catalog.Instantiate(context.Background(), s, name, &owner)
		return templateAppliedMsg{parent: parent, children: len(children), err: err}
	}
}

// exportReport writes a snapshot of the operator's figures.
func (m *Model) exportReport(format string) tea.Cmd {
	exp := m.exporter
	dir := m.reportDir
	user := m.user
	return func() tea.Msg {
		if exp == nil {
			return exportedMsg{err: errNoExporter}
		}
		path, err := exp.Export(context.Background(), dir, format, user.ID, user.Handle)
		return exportedMsg{path: path, err: err}
	}
}

// loadDetail loads a task with its parent, children, and time entries.
func (m *Model) loadDetail(id int64) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		task, err := s.GetTask(ctx, id)
		if err != nil {
			return detail.DetailLoadedMsg{Err: err}
		}
		d := &detail.TaskDetail{Task: *task}
		if task.ParentID != nil {
			if p, err := s.GetTask(ctx, *task.ParentID); err == nil {
				d.Parent = p
			}
		}
		if d.Children, err = s.ListChildren(ctx, id); err != nil {
			return detail.DetailLoadedMsg{Err: err}
		}
		if d.Entries, err = s.ListTimeEntries(ctx, store.TimeEntryFilter{TaskID: &id}); err != nil {
			return detail.DetailLoadedMsg{Err: err}
		}
		return detail.DetailLoadedMsg{Detail: d}
	}
}
