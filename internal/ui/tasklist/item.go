package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
	// Depth is 1 for a subtask shown under its parent.
	Depth int
	// Running is set when the operator's timer is on this task.
	Running bool
	// Since is the start of the running timer.
	Since time.Time
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		i.Task.Status,
		i.Task.CategoryLabel(),
		formatHours(i.Task.ActualHours, i.Task.EstimatedHours),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TaskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderLine(it, index == m.Index()))
}

func (d ItemDelegate) renderLine(it TaskItem, isSelected bool) string {
	t := it.Task

	var prefix string
	switch {
	case it.Running:
		prefix = theme.TimerStyle.Render("▶")
	case t.IsCompleted():
		prefix = "✓"
	default:
		prefix = "○"
	}

	indent := ""
	if it.Depth > 0 {
		indent = strings.Repeat("  ", it.Depth-1) + "└ "
	}

	id := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(fmt.Sprintf("#%d", t.ID))
	statusBadge := theme.StatusStyle(t.Status).Render(statusLabel(t.Status))
	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))

	hours := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(formatHours(t.ActualHours, t.EstimatedHours))

	eff := ""
	if ratio := t.Efficiency(); ratio > 0 {
		eff = " " + theme.EfficiencyStyle(ratio).Render(fmt.Sprintf("%.0f%%", ratio*100))
	}

	timer := ""
	if it.Running && d.now != nil {
		timer = " " + theme.TimerStyle.Render(FormatElapsed(d.now().Sub(it.Since)))
	}

	line := fmt.Sprintf("%s %s%s %s %s %s  %s%s%s",
		prefix, indent, id, statusBadge, priBadge, t.Title, hours, eff, timer)

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// FormatElapsed renders a running duration as h:mm:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// formatHours renders actual over estimate, or just actual without one.
func formatHours(actual, estimated float64) string {
	if estimated > 0 {
		return fmt.Sprintf("%.2f/%.2fh", actual, estimated)
	}
	return fmt.Sprintf("%.2fh", actual)
}

func statusLabel(s string) string {
	switch s {
	case model.StatusPending:
		return "TODO"
	case model.StatusInProgress:
		return "WIP"
	case model.StatusCompleted:
		return "DONE"
	case model.StatusOnHold:
		return "HOLD"
	default:
		return "?"
	}
}

// priorityLabel returns a short label for the given priority level.
func priorityLabel(p string) string {
	switch p {
	case model.PriorityCritical:
		return "P1"
	case model.PriorityHigh:
		return "P2"
	case model.PriorityMedium:
		return "P3"
	case model.PriorityLow:
		return "P4"
	default:
		return "P?"
	}
}
