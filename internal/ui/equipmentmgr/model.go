package equipmentmgr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/analytics"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/keys"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/theme"
)

// CloseMsg signals the parent to close the equipment view.
type CloseMsg struct{}

// ChangedMsg signals that equipment was created, updated, or deleted.
type ChangedMsg struct{}

// Store is the part of the store the manager needs.
type Store interface {
	ListEquipment(ctx context.Context) ([]model.Equipment, error)
	CreateEquipment(ctx context.Context, in model.NewEquipment) (*model.Equipment, error)
	UpdateEquipmentCounters(ctx context.Context, id int64, c model.EquipmentCounters) (*model.Equipment, error)
	DeleteEquipment(ctx context.Context, id int64) error
}

type mode int

const (
	modeList mode = iota
	modeCreate
	modeCounters
	modeConfirmDelete
)

type formBindings struct {
	name         string
	plannedHours string
	standardRate string
	downtime     string
	actualOutput string
	goodUnits    string
	confirm      bool
}

type loadedMsg struct {
	items []model.Equipment
	err   error
}

type savedMsg struct{ err error }
type deletedMsg struct{ err error }

// Model is the Bubble Tea model for equipment management.
type Model struct {
	mode        mode
	store       Store
	keys        *keys.KeyMap
	items       []model.Equipment
	selectedIdx int
	editingID   int64
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new equipment manager model.
func New(s Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		store: s,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads equipment from the store.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// SetItems replaces the list with freshly loaded equipment.
func (m *Model) SetItems(items []model.Equipment) {
	m.items = items
	if m.selectedIdx >= len(m.items) && m.selectedIdx > 0 {
		m.selectedIdx = len(m.items) - 1
	}
}

// Editing reports whether a form is open.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.SetItems(msg.items)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Equipment saved"
		}
		m.mode = modeList
		return m, tea.Batch(m.load(), func() tea.Msg { return ChangedMsg{} })

	case deletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Equipment deleted"
		}
		m.mode = modeList
		return m, tea.Batch(m.load(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.items) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.items)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.items) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.items) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		*m.fb = formBindings{}
		m.form = m.buildCreateForm()
		m.mode = modeCreate
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.items) == 0 {
			return m, nil
		}
		eq := m.items[m.selectedIdx]
		m.editingID = eq.ID
		*m.fb = formBindings{
			downtime:     strconv.FormatFloat(eq.DowntimeHours, 'f', -1, 64),
			actualOutput: strconv.FormatInt(eq.ActualOutput, 10),
			goodUnits:    strconv.FormatInt(eq.GoodUnits, 10),
		}
		m.form = m.buildCountersForm(eq.Name)
		m.mode = modeCounters
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.items) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("CNC-01").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Planned Hours").
				Placeholder("8").
				Value(&m.fb.plannedHours).
				Validate(validateNumber),
			huh.NewInput().
				Title("Standard Rate (units/hour)").
				Placeholder("60").
				Value(&m.fb.standardRate).
				Validate(validateNumber),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildCountersForm(name string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(name).Description("Update production counters"),
			huh.NewInput().
				Title("Downtime Hours").
				Value(&m.fb.downtime).
				Validate(validateNumber),
			huh.NewInput().
				Title("Actual Output").
				Value(&m.fb.actualOutput).
				Validate(validateCount),
			huh.NewInput().
				Title("Good Units").
				Value(&m.fb.goodUnits).
				Validate(validateCount),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.items) {
		name = m.items[m.selectedIdx].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete equipment %q?", name)).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeCreate, modeCounters:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		if m.mode == modeCreate {
			return m, m.create()
		}
		return m, m.saveCounters()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm {
			return m, m.remove(m.items[m.selectedIdx].ID)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the equipment manager.
func (m Model) View() string {
	switch m.mode {
	case modeCreate, modeCounters:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Equipment"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No equipment yet. Press 'n' to register a machine."))
	} else {
		fleet := analytics.FleetOEE(m.items)
		header := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
			fmt.Sprintf("  %-20s %8s %8s %8s %8s", "NAME", "AVAIL", "PERF", "QUAL", "OEE"))
		b.WriteString(header)
		b.WriteString("\n")
		for i, u := range fleet.Units {
			b.WriteString(renderRow(u, i == m.selectedIdx))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString("Average OEE: ")
		b.WriteString(theme.OEEStyle(fleet.Average).Render(fmt.Sprintf("%.2f%%", fleet.Average)))
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"n new | e counters | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func renderRow(u analytics.EquipmentOEE, selected bool) string {
	r := u.Result
	line := fmt.Sprintf("%-20s %7.1f%% %7.1f%% %7.1f%% %s",
		truncate(u.Equipment.Name, 20),
		r.Availability*100, r.Performance*100, r.Quality*100,
		theme.OEEStyle(r.OEE).Render(fmt.Sprintf("%7.2f%%", r.OEE)),
	)
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func (m Model) load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		items, err := s.ListEquipment(context.Background())
		return loadedMsg{items: items, err: err}
	}
}

func (m Model) create() tea.Cmd {
	s := m.store
	fb := *m.fb
	return func() tea.Msg {
		in := model.NewEquipment{Name: strings.TrimSpace(fb.name)}
		in.PlannedHours, _ = parseFloat(fb.plannedHours)
		in.StandardRate, _ = parseFloat(fb.standardRate)
		_, err := s.CreateEquipment(context.Background(), in)
		return savedMsg{err: err}
	}
}

func (m Model) saveCounters() tea.Cmd {
	s := m.store
	fb := *m.fb
	id := m.editingID
	return func() tea.Msg {
		var c model.EquipmentCounters
		c.DowntimeHours, _ = parseFloat(fb.downtime)
		c.ActualOutput, _ = parseInt(fb.actualOutput)
		c.GoodUnits, _ = parseInt(fb.goodUnits)
		_, err := s.UpdateEquipmentCounters(context.Background(), id, c)
		return savedMsg{err: err}
	}
}

func (m Model) remove(id int64) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteEquipment(context.Background(), id)
		return deletedMsg{err: err}
	}
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func validateNumber(s string) error {
	v, err := parseFloat(s)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if v < 0 {
		return fmt.Errorf("cannot be negative")
	}
	return nil
}

func validateCount(s string) error {
	v, err := parseInt(s)
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if v < 0 {
		return fmt.Errorf("cannot be negative")
	}
	return nil
}
