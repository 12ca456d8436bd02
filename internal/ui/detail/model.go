package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/keys"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// TaskDetail is a task with its children and recorded time.
type TaskDetail struct {
	Task     model.Task
	Parent   *model.Task
	Children []model.Task
	Entries  []model.TimeEntry
}

// DetailLoadedMsg carries the loaded task detail, or the load error.
type DetailLoadedMsg struct {
	Detail *TaskDetail
	Err    error
}

// Model is the task detail view component.
type Model struct {
	task     *TaskDetail
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.SetTask(msg.Detail)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg {
				return BackMsg{}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return placeholder.Render("Loading task details...")
	}
	if m.task == nil {
		return placeholder.Render("No task selected")
	}
	return m.viewport.View()
}

// Current returns the task on display.
func (m Model) Current() (model.Task, bool) {
	if m.task == nil {
		return model.Task{}, false
	}
	return m.task.Task, true
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}
	return Render(*m.task, m.width)
}

// Render lays out a task detail for the given width.
func Render(d TaskDetail, width int) string {
	task := d.Task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(fmt.Sprintf("#%d %s", task.ID, task.Title)))

	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.StatusStyle(task.Status).Render(task.Status),
		"  ",
		theme.PriorityStyle(task.Priority).Render(task.Priority),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		sections = append(sections, fmt.Sprintf("%s %s",
			metaStyle.Render(fmt.Sprintf("%-11s", label+":")),
			valStyle.Render(value),
		))
	}

	row("Category", task.CategoryLabel())
	if task.Assignee != "" {
		row("Assignee", task.Assignee)
	}
	if d.Parent != nil {
		row("Parent", fmt.Sprintf("#%d %s", d.Parent.ID, d.Parent.Title))
	}
	row("Estimated", fmt.Sprintf("%.2fh", task.EstimatedHours))
	row("Actual", fmt.Sprintf("%.2fh", task.ActualHours))
	if ratio := task.Efficiency(); ratio > 0 {
		sections = append(sections, fmt.Sprintf("%s %s",
			metaStyle.Render(fmt.Sprintf("%-11s", "Efficiency:")),
			theme.EfficiencyStyle(ratio).Render(fmt.Sprintf("%.0f%%", ratio*100)),
		))
	}
	row("Created", formatTime(task.CreatedAt))
	if task.StartedAt != nil {
		row("Started", formatTime(*task.StartedAt))
	}
	if task.EndedAt != nil {
		row("Ended", formatTime(*task.EndedAt))
	}
	if task.CompletedAt != nil {
		row("Completed", formatTime(*task.CompletedAt))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(width-4, 80), 10)))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	dim := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)

	sections = append(sections, "", separator, "", headerStyle.Render("Description"))
	if task.Description == "" {
		sections = append(sections, dim.Render("No description"))
	} else {
		sections = append(sections, task.Description)
	}

	if len(d.Children) > 0 {
		sections = append(sections, "", separator, "",
			headerStyle.Render(fmt.Sprintf("Subtasks (%d)", len(d.Children))))
		for _, c := range d.Children {
			sections = append(sections, fmt.Sprintf("  %s #%d %s  %s",
				theme.StatusStyle(c.Status).Render(c.Status), c.ID, c.Title,
				metaStyle.Render(fmt.Sprintf("%.2fh", c.ActualHours)),
			))
		}
	}

	sections = append(sections, "", separator, "",
		headerStyle.Render(fmt.Sprintf("Time Entries (%d)", len(d.Entries))))
	if len(d.Entries) == 0 {
		sections = append(sections, dim.Render("No time recorded"))
	}
	for _, e := range d.Entries {
		end := theme.TimerStyle.Render("running")
		dur := ""
		if e.EndTime != nil {
			end = formatTime(*e.EndTime)
			dur = fmt.Sprintf("%.2fh", e.Hours())
		}
		line := fmt.Sprintf("  %s → %s  %s", formatTime(e.StartTime), end, metaStyle.Render(dur))
		if e.Notes != "" {
			line += "  " + dim.Render(e.Notes)
		}
		sections = append(sections, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// SetTask updates the task being displayed and re-renders the content.
func (m *Model) SetTask(d *TaskDetail) {
	m.task = d
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
