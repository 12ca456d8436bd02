// Package dashboard renders the analytics screen: status summary, hours per
// category, the Pareto ranking, a text timeline and equipment OEE.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/analytics"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/keys"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/theme"
)

// CloseMsg signals the parent to close the dashboard.
type CloseMsg struct{}

// Data is everything the dashboard draws.
type Data struct {
	Summary    analytics.Summary
	Categories []analytics.CategoryTotal
	Pareto     analytics.ParetoResult
	Gantt      []analytics.GanttRow
	Fleet      analytics.Fleet
}

// Compute derives dashboard data from the operator's tasks and the fleet.
func Compute(tasks []model.Task, equipment []model.Equipment) Data {
	return Data{
		Summary:    analytics.Summarize(tasks),
		Categories: analytics.CategoryBreakdown(tasks),
		Pareto:     analytics.Pareto(analytics.ParetoInputs(tasks)),
		Gantt:      analytics.GanttRows(tasks),
		Fleet:      analytics.FleetOEE(equipment),
	}
}

// Model is the scrollable dashboard view.
type Model struct {
	viewport viewport.Model
	keys     *keys.KeyMap
	data     Data
	width    int
	height   int
}

// New creates a dashboard model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// SetData replaces the figures and re-renders the content.
func (m *Model) SetData(d Data) {
	m.data = d
	m.viewport.SetContent(Render(d, m.width))
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles scrolling and closing.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Dashboard):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Down):
			m.viewport.ScrollDown(1)
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.viewport.ScrollUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	return m.viewport.View()
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(Render(m.data, width))
}

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	dimStyle     = lipgloss.NewStyle().Foreground(theme.ColorGray)
	barStyle     = lipgloss.NewStyle().Foreground(theme.ColorBlue)
	titleCaser   = cases.Title(language.English)
)

// labelWidth is the column reserved for names in bar charts.
const labelWidth = 22

// Render lays out every panel for the given terminal width.
func Render(d Data, width int) string {
	inner := width - 4
	if inner < 40 {
		inner = 40
	}
	panel := theme.PanelStyle.Width(inner)

	return lipgloss.JoinVertical(lipgloss.Left,
		panel.Render(renderSummary(d.Summary)),
		panel.Render(renderCategories(d.Categories, inner-2)),
		panel.Render(renderPareto(d.Pareto, inner-2)),
		panel.Render(renderGantt(d.Gantt, inner-2)),
		panel.Render(renderFleet(d.Fleet)),
	)
}

func renderSummary(s analytics.Summary) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d   %s %d   %s %d   %s %d\n",
		dimStyle.Render("total"), s.Total,
		theme.StatusStyle(model.StatusCompleted).Render("completed"), s.Completed,
		theme.StatusStyle(model.StatusInProgress).Render("in progress"), s.InProgress,
		theme.StatusStyle(model.StatusPending).Render("pending"), s.Pending,
	)
	fmt.Fprintf(&b, "%s %.2fh   %s %.2f%%",
		dimStyle.Render("tracked"), s.TotalHours,
		dimStyle.Render("completion"), s.CompletionRate(),
	)
	return b.String()
}

func renderCategories(cats []analytics.CategoryTotal, width int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Hours by Category"))
	if len(cats) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No tasks yet."))
		return b.String()
	}

	var max float64
	for _, c := range cats {
		if c.Hours > max {
			max = c.Hours
		}
	}
	barMax := width - labelWidth - 12
	for _, c := range cats {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-*s %s %6.2fh",
			labelWidth, fit(titleCaser.String(c.Label), labelWidth),
			barStyle.Render(bar(c.Hours, max, barMax)),
			c.Hours,
		)
	}
	return b.String()
}

func renderPareto(p analytics.ParetoResult, width int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Pareto (top %.0f%% of time)", analytics.ParetoThreshold)))
	if p.NoData {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No recorded time yet."))
		return b.String()
	}

	barMax := width - labelWidth - 20
	for i, pt := range p.Points {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%2d. %-*s %s %6.2fh %6.2f%%",
			i+1, labelWidth-4, fit(pt.Label, labelWidth-4),
			barStyle.Render(bar(pt.Hours, p.Points[0].Hours, barMax)),
			pt.Hours, pt.CumulativePercent,
		)
	}
	return b.String()
}

func renderGantt(rows []analytics.GanttRow, width int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Timeline"))
	if len(rows) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No tasks with a start and end yet."))
		return b.String()
	}

	start, end := analytics.Span(rows)
	track := width - labelWidth - 2
	if track < 10 {
		track = 10
	}
	fmt.Fprintf(&b, "\n%s", dimStyle.Render(fmt.Sprintf("%s → %s",
		start.Local().Format("Jan 02 15:04"), end.Local().Format("Jan 02 15:04"))))

	for _, r := range rows {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-*s %s",
			labelWidth, fit(r.Label, labelWidth),
			timelineBar(r.Start, r.End, start, end, track),
		)
	}
	return b.String()
}

func renderFleet(f analytics.Fleet) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Equipment OEE"))
	if len(f.Units) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No equipment registered."))
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%-*s %8s %8s %8s %9s", labelWidth, "machine", "avail", "perf", "qual", "oee")))
	for _, u := range f.Units {
		r := u.Result
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-*s %7.1f%% %7.1f%% %7.1f%% %s",
			labelWidth, fit(u.Equipment.Name, labelWidth),
			r.Availability*100, r.Performance*100, r.Quality*100,
			theme.OEEStyle(r.OEE).Render(fmt.Sprintf("%8.2f%%", r.OEE)),
		)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-*s %s", labelWidth+27, "average",
		theme.OEEStyle(f.Average).Render(fmt.Sprintf("%8.2f%%", f.Average)))
	return b.String()
}

// bar returns a block bar of value scaled so that max fills width.
func bar(value, max float64, width int) string {
	if width < 1 || max <= 0 || value <= 0 {
		return ""
	}
	n := int(value / max * float64(width))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// timelineBar places [from, to] on a track spanning [start, end].
func timelineBar(from, to, start, end time.Time, width int) string {
	total := end.Sub(start)
	if total <= 0 {
		return strings.Repeat("█", width)
	}
	offset := int(float64(from.Sub(start)) / float64(total) * float64(width))
	length := int(float64(to.Sub(from)) / float64(total) * float64(width))
	if length < 1 {
		length = 1
	}
	if offset+length > width {
		offset = width - length
	}
	return strings.Repeat("·", offset) +
		barStyle.Render(strings.Repeat("█", length)) +
		strings.Repeat("·", width-offset-length)
}

// fit truncates s to n cells.
func fit(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
