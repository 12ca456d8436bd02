package tasklist

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/keys"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/theme"
)

// SelectedTaskMsg is sent when a user selects a task.
type SelectedTaskMsg struct {
	TaskID int64
}

// filterModes is the status filter cycle. The empty string shows all.
var filterModes = []string{
	"",
	model.StatusPending,
	model.StatusInProgress,
	model.StatusOnHold,
	model.StatusCompleted,
}

// Model is the main task list view component.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	tasks       []model.Task
	active      *model.TimeEntry
	filterIndex int
	width       int
	height      int
}

// New creates a new task list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{now: time.Now}, width, height)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	// Quitting is handled by the root model.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetData replaces the tasks and the running timer and rebuilds the rows,
// keeping the cursor on the same task when it is still visible.
func (m *Model) SetData(tasks []model.Task, active *model.TimeEntry) tea.Cmd {
	var keep int64
	if sel, ok := m.Selected(); ok {
		keep = sel.ID
	}

	m.tasks = tasks
	m.active = active
	rows := Arrange(tasks, active, m.Filter())

	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	cmd := m.list.SetItems(items)

	for i, r := range rows {
		if r.Task.ID == keep {
			m.list.Select(i)
			break
		}
	}
	return cmd
}

// Filter returns the active status filter, or "" for all tasks.
func (m Model) Filter() string {
	return filterModes[m.filterIndex]
}

// SetFilter selects a status filter by name. "all" or "" clears it.
func (m *Model) SetFilter(status string) bool {
	if status == "all" {
		status = ""
	}
	for i, f := range filterModes {
		if f == status {
			m.filterIndex = i
			m.SetData(m.tasks, m.active)
			return true
		}
	}
	return false
}

// Selected returns the task under the cursor.
func (m Model) Selected() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Select):
			t, ok := m.Selected()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return SelectedTaskMsg{TaskID: t.ID}
			}

		case key.Matches(msg, m.keys.CycleFilter):
			m.filterIndex = (m.filterIndex + 1) % len(filterModes)
			cmd := m.SetData(m.tasks, m.active)
			return m, cmd
		}
	}

	// Delegate to the list for navigation keys
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when no tasks are visible.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.Filter() != "" {
		return style.Render("No " + m.Filter() + " tasks.\nPress tab to change the filter.")
	}
	return style.Render(
		"No tasks yet.\n\n" +
			"Press n to add one, or : then 'template <name>'.",
	)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

// Arrange orders tasks for display. Without a status filter, each top-level
// task is followed by its children in creation order, and tasks whose parent
// is missing are shown at the top level. With a filter, matching tasks are
// listed flat in their original order.
func Arrange(tasks []model.Task, active *model.TimeEntry, status string) []TaskItem {
	item := func(t model.Task, depth int) TaskItem {
		it := TaskItem{Task: t, Depth: depth}
		if active != nil && active.TaskID == t.ID {
			it.Running = true
			it.Since = active.StartTime
		}
		return it
	}

	if status != "" {
		var out []TaskItem
		for _, t := range tasks {
			if t.Status == status {
				out = append(out, item(t, 0))
			}
		}
		return out
	}

	known := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}
	children := make(map[int64][]model.Task)
	var roots []model.Task
	for _, t := range tasks {
		if t.ParentID != nil && known[*t.ParentID] {
			children[*t.ParentID] = append(children[*t.ParentID], t)
			continue
		}
		roots = append(roots, t)
	}

	out := make([]TaskItem, 0, len(tasks))
	for _, r := range roots {
		out = append(out, item(r, 0))
		kids := children[r.ID]
		sort.SliceStable(kids, func(i, j int) bool { return kids[i].ID < kids[j].ID })
		for _, c := range kids {
			out = append(out, item(c, 1))
		}
	}
	return out
}
