package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/theme"
)

// table renders rows in fixed-width columns for terminal output.
type table struct {
	headers  []string
	rows     [][]string
	maxWidth int
}

func newTable(headers ...string) *table {
	return &table{headers: headers, maxWidth: 40}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	if t.maxWidth > 0 {
		for i := range widths {
			if widths[i] > t.maxWidth {
				widths[i] = t.maxWidth
			}
		}
	}
	return widths
}

func (t *table) render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := t.widths()
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var sb strings.Builder
	cells := make([]string, len(t.headers))
	for i, h := range t.headers {
		cells[i] = headerStyle.Render(padRight(h, widths[i]))
	}
	sb.WriteString(strings.Join(cells, "  ") + "\n")

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = dimStyle.Render(strings.Repeat("─", w))
	}
	sb.WriteString(strings.Join(seps, "  ") + "\n")

	for _, row := range t.rows {
		for i := range t.headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cells[i] = padRight(truncate(val, widths[i]), widths[i])
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, "  "), " ") + "\n")
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
