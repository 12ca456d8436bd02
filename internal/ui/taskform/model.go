package taskform

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/theme"
)

// TaskCreatedMsg is dispatched when the create form is submitted.
type TaskCreatedMsg struct {
	Task model.NewTask
}

// TaskUpdatedMsg is dispatched when the edit form is submitted.
type TaskUpdatedMsg struct {
	ID    int64
	Patch model.TaskPatch
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	category    string
	priority    string
	estimate    string
	assignee    string
	status      string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	editMode   bool
	editID     int64
	original   model.Task
	parentID   *int64
	parentName string
	ownerID    *int64
	categories []string
	width      int
	height     int
}

// New creates a new task form. categories feed the category suggestions.
func New(categories []string, width, height int) Model {
	return Model{
		fb:         &formBindings{priority: model.PriorityMedium},
		categories: categories,
		width:      width,
		height:     height,
	}
}

// StartCreate opens an empty form. parent is non-nil for a subtask, which
// inherits the parent's category.
func (m *Model) StartCreate(ownerID *int64, parent *model.Task) tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.original = model.Task{}
	m.ownerID = ownerID
	m.parentID = nil
	m.parentName = ""
	*m.fb = formBindings{priority: model.PriorityMedium}
	if parent != nil {
		id := parent.ID
		m.parentID = &id
		m.parentName = parent.Title
		if parent.Category != nil {
			m.fb.category = *parent.Category
		}
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit opens the form filled with an existing task.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	m.original = t
	m.parentID = nil
	m.parentName = ""
	*m.fb = formBindings{
		title:       t.Title,
		description: t.Description,
		priority:    t.Priority,
		assignee:    t.Assignee,
		status:      t.Status,
	}
	if t.Category != nil {
		m.fb.category = *t.Category
	}
	if t.EstimatedHours > 0 {
		m.fb.estimate = strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	switch {
	case m.editMode:
		titleText = fmt.Sprintf("Edit Task #%d", m.editID)
	case m.parentID != nil:
		titleText = fmt.Sprintf("New Subtask of %q", m.parentName)
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What is being worked on?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewInput().
			Title("Category").
			Placeholder("e.g. Production (optional)").
			Suggestions(m.categories).
			Value(&m.fb.category),
		huh.NewSelect[string]().
			Title("Priority").
			Options(
				huh.NewOption("P1 - Critical", model.PriorityCritical),
				huh.NewOption("P2 - High", model.PriorityHigh),
				huh.NewOption("P3 - Medium", model.PriorityMedium),
				huh.NewOption("P4 - Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Estimated Hours").
			Placeholder("0.5").
			Value(&m.fb.estimate).
			Validate(validateHours),
		huh.NewInput().
			Title("Assignee").
			Placeholder("Optional").
			Value(&m.fb.assignee),
	}

	if m.editMode {
		fields = append(fields,
			huh.NewSelect[string]().
				Title("Status").
				Options(
					huh.NewOption("Pending", model.StatusPending),
					huh.NewOption("In progress", model.StatusInProgress),
					huh.NewOption("On hold", model.StatusOnHold),
					huh.NewOption("Completed", model.StatusCompleted),
				).
				Value(&m.fb.status),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	if m.editMode {
		id := m.editID
		patch := buildPatch(m.original, *m.fb)
		return func() tea.Msg { return TaskUpdatedMsg{ID: id, Patch: patch} }
	}
	in := buildNewTask(*m.fb, m.ownerID, m.parentID)
	return func() tea.Msg { return TaskCreatedMsg{Task: in} }
}

// buildNewTask converts form values into a creation request.
func buildNewTask(fb formBindings, ownerID, parentID *int64) model.NewTask {
	in := model.NewTask{
		Title:       strings.TrimSpace(fb.title),
		Description: strings.TrimSpace(fb.description),
		Assignee:    strings.TrimSpace(fb.assignee),
		Priority:    fb.priority,
		OwnerID:     ownerID,
		ParentID:    parentID,
	}
	if c := strings.TrimSpace(fb.category); c != "" {
		in.Category = &c
	}
	in.EstimatedHours, _ = parseHours(fb.estimate)
	return in
}

// buildPatch returns a patch holding only the fields that changed.
func buildPatch(orig model.Task, fb formBindings) model.TaskPatch {
	var p model.TaskPatch

	if v := strings.TrimSpace(fb.title); v != orig.Title {
		p.Title = &v
	}
	if v := strings.TrimSpace(fb.description); v != orig.Description {
		p.Description = &v
	}
	if v := strings.TrimSpace(fb.assignee); v != orig.Assignee {
		p.Assignee = &v
	}
	origCategory := ""
	if orig.Category != nil {
		origCategory = *orig.Category
	}
	if v := strings.TrimSpace(fb.category); v != origCategory {
		p.Category = &v
	}
	if fb.priority != orig.Priority {
		v := fb.priority
		p.Priority = &v
	}
	if fb.status != orig.Status {
		v := fb.status
		p.Status = &v
	}
	if h, _ := parseHours(fb.estimate); h != orig.EstimatedHours {
		p.EstimatedHours = &h
	}
	return p
}

func parseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateHours(s string) error {
	h, err := parseHours(s)
	if err != nil {
		return fmt.Errorf("enter hours as a number, e.g. 1.5")
	}
	if h < 0 {
		return fmt.Errorf("hours cannot be negative")
	}
	return nil
}
