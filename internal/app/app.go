package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/keys"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/report"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	appsync "github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/sync"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/templates"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/command"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/dashboard"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/detail"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/equipmentmgr"
	helpview "github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/help"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/taskform"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewTaskCreate
	ViewTaskEdit
	ViewEquipment
	ViewDashboard
)

// tickMsg advances the running timer display.
type tickMsg time.Time

// Options configures the root model.
type Options struct {
	Store           store.Store
	User            model.User
	DBPath          string
	RefreshInterval time.Duration
	Catalog         *templates.Catalog
	Exporter        *report.Exporter
	ReportDir       string
	ReportFormat    string
	Logger          *zap.Logger
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the persistence layer.
type Model struct {
	currentView   ViewState
	previousView  ViewState
	layout        ui.Layout
	store         store.Store
	user          model.User
	keys          *keys.KeyMap
	catalog       *templates.Catalog
	exporter      *report.Exporter
	reportDir     string
	reportFormat  string
	logger        *zap.Logger
	taskList      tasklist.Model
	detail        detail.Model
	helpView      helpview.Model
	commandView   command.Model
	taskFormView  taskform.Model
	equipmentView equipmentmgr.Model
	dashboardView dashboard.Model
	poller        *appsync.Poller
	tasks         []model.Task
	active        *model.TimeEntry
	now           func() time.Time
	ready         bool
	notice        string
	err           error
}

// New creates a new root application model.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	if opts.Catalog == nil {
		opts.Catalog = templates.Builtin()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ReportFormat == "" {
		opts.ReportFormat = report.FormatJSON
	}

	return Model{
		currentView:   ViewList,
		store:         opts.Store,
		user:          opts.User,
		keys:          k,
		catalog:       opts.Catalog,
		exporter:      opts.Exporter,
		reportDir:     opts.ReportDir,
		reportFormat:  opts.ReportFormat,
		logger:        opts.Logger,
		taskList:      tasklist.New(k, 80, 24),
		detail:        detail.New(k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
		taskFormView:  taskform.New(opts.Catalog.Categories, 80, 24),
		equipmentView: equipmentmgr.New(opts.Store, k, 80, 24),
		dashboardView: dashboard.New(k, 80, 24),
		poller:        appsync.New(opts.Store, opts.User.ID, opts.DBPath, opts.RefreshInterval, opts.Logger),
		now:           time.Now,
	}
}

// Init starts the refresh loop and the timer tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.poller.Start(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.taskList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.taskFormView.SetSize(w, h)
		m.equipmentView.SetSize(w, h)
		m.dashboardView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tickMsg:
		return m, tick()

	case appsync.RefreshResultMsg:
		waitCmd := m.poller.WaitForNextResult()
		if msg.Error != nil {
			m.err = msg.Error
			m.logger.Warn("refresh failed", zap.String("reason", msg.Reason), zap.Error(msg.Error))
			return m, waitCmd
		}
		m.applyRefresh(msg)
		return m, waitCmd

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetLoading(true)
		return m, m.loadDetail(msg.TaskID)

	case detail.DetailLoadedMsg:
		if msg.Err != nil {
			m.err = friendly(msg.Err)
			m.currentView = ViewList
			return m, nil
		}
		m.detail.SetTask(msg.Detail)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case taskform.TaskCreatedMsg:
		m.currentView = ViewList
		return m, m.createTask(msg.Task)

	case taskform.TaskUpdatedMsg:
		m.currentView = ViewList
		return m, m.updateTask(msg.ID, msg.Patch)

	case taskform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case taskSavedMsg:
		m.setResult(msg.notice, msg.err)
		return m, m.poller.Refresh()

	case timerMsg:
		if msg.err == nil {
			if msg.started {
				m.active = msg.entry
				m.notice = "timer started"
			} else {
				m.active = nil
				m.notice = fmt.Sprintf("timer stopped: %.2fh", msg.entry.Hours())
			}
		}
		m.setResult(m.notice, msg.err)
		return m, m.poller.Refresh()

	case templateAppliedMsg:
		notice := ""
		if msg.parent != nil {
			notice = fmt.Sprintf("created #%d with %d subtasks", msg.parent.ID, msg.children)
		}
		m.setResult(notice, msg.err)
		return m, m.poller.Refresh()

	case exportedMsg:
		m.setResult("report written to "+msg.path, msg.err)
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case equipmentmgr.CloseMsg, dashboard.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case equipmentmgr.ChangedMsg:
		return m, m.poller.Refresh()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}
		if m.currentView == ViewList {
			m.notice, m.err = "", nil
			if next, cmd, ok := m.handleListKey(msg); ok {
				return next, cmd
			}
		}
		if m.currentView == ViewHelp && (key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back)) {
			m.currentView = m.previousView
			return m, nil
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleListKey handles the task list shortcuts. ok is false when the key
// belongs to the list itself.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	selected, hasSel := m.taskList.Selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.poller.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.poller.Refresh(), true

	case key.Matches(msg, m.keys.New):
		m.currentView = ViewTaskCreate
		return m, m.taskFormView.StartCreate(m.ownerID(), nil), true

	case key.Matches(msg, m.keys.AddChild):
		if !hasSel {
			return m, nil, true
		}
		m.currentView = ViewTaskCreate
		return m, m.taskFormView.StartCreate(m.ownerID(), &selected), true

	case key.Matches(msg, m.keys.Edit):
		if !hasSel {
			return m, nil, true
		}
		m.currentView = ViewTaskEdit
		return m, m.taskFormView.StartEdit(selected), true

	case key.Matches(msg, m.keys.StartTimer):
		if !hasSel {
			return m, nil, true
		}
		return m, m.startTimer(selected.ID), true

	case key.Matches(msg, m.keys.StopTimer):
		return m, m.stopTimer(), true

	case key.Matches(msg, m.keys.Complete):
		if !hasSel {
			return m, nil, true
		}
		return m, m.setStatus(selected.ID, model.StatusCompleted), true

	case key.Matches(msg, m.keys.Hold):
		if !hasSel {
			return m, nil, true
		}
		next := model.StatusOnHold
		if selected.Status == model.StatusOnHold {
			next = model.StatusPending
		}
		return m, m.setStatus(selected.ID, next), true

	case key.Matches(msg, m.keys.Delete):
		if !hasSel {
			return m, nil, true
		}
		return m, m.deleteTask(selected.ID), true

	case key.Matches(msg, m.keys.Dashboard):
		m.currentView = ViewDashboard
		return m, nil, true

	case key.Matches(msg, m.keys.Equipment):
		m.currentView = ViewEquipment
		return m, m.equipmentView.Init(), true
	}
	return m, nil, false
}

// applyRefresh pushes freshly loaded data into every view.
func (m *Model) applyRefresh(msg appsync.RefreshResultMsg) {
	m.tasks = msg.Tasks
	m.active = msg.Active
	m.taskList.SetData(msg.Tasks, msg.Active)
	if !m.equipmentView.Editing() {
		m.equipmentView.SetItems(msg.Equipment)
	}

	var own []model.Task
	for _, t := range msg.Tasks {
		if t.OwnerID != nil && *t.OwnerID == m.user.ID {
			own = append(own, t)
		}
	}
	m.dashboardView.SetData(dashboard.Compute(own, msg.Equipment))
}

// ownerID returns a fresh pointer to the operator's id for new tasks.
func (m Model) ownerID() *int64 {
	id := m.user.ID
	return &id
}

// setResult records the outcome of a background action for the status bar.
func (m *Model) setResult(notice string, err error) {
	if err != nil {
		m.err = friendly(err)
		m.notice = ""
		m.logger.Debug("action failed", zap.Error(err))
		return
	}
	m.err = nil
	m.notice = notice
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTaskCreate, ViewTaskEdit:
		m.taskFormView, cmd = m.taskFormView.Update(msg)
	case ViewEquipment:
		m.equipmentView, cmd = m.equipmentView.Update(msg)
	case ViewDashboard:
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Time Tracker", m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.err)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTaskCreate, ViewTaskEdit:
		return m.taskFormView.View()
	case ViewEquipment:
		return m.equipmentView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	default:
		return ""
	}
}

// headerStatus shows the operator, the running timer, and refresh state.
func (m Model) headerStatus() string {
	title := ""
	if m.active != nil {
		for _, t := range m.tasks {
			if t.ID == m.active.TaskID {
				title = t.Title
				break
			}
		}
	}
	parts := []string{m.user.Handle, timerLabel(m.active, title, m.now())}
	if st := m.poller.Status(); st.State == appsync.RefreshError {
		parts = append(parts, "refresh failed")
	}
	return strings.Join(parts, " | ")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc cancel"
	case ViewDetail:
		return "esc back | j/k scroll"
	case ViewTaskCreate, ViewTaskEdit:
		return "enter submit | esc cancel"
	case ViewEquipment:
		return "n new | e counters | d delete | esc back"
	case ViewDashboard:
		return "j/k scroll | esc back"
	default:
		if m.notice != "" {
			return m.notice
		}
		filter := m.taskList.Filter()
		if filter == "" {
			filter = "all"
		}
		return fmt.Sprintf("[%s] q quit | ? help | s start | x stop | n new | c complete | D dashboard | E equipment", filter)
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	arg := ""
	if len(c.Args) > 0 {
		arg = c.Args[0]
	}

	switch c.Name {
	case "refresh", "r":
		return m.poller.Refresh()
	case "quit", "q":
		m.poller.Stop()
		return tea.Quit
	case "start":
		id, err := parseID(arg)
		if err != nil {
			m.err = err
			return nil
		}
		return m.startTimer(id)
	case "stop":
		return m.stopTimer()
	case "template", "tpl":
		if arg == "" {
			m.notice = "templates: " + strings.Join(m.catalog.Names(), ", ")
			return nil
		}
		return m.applyTemplate(arg)
	case "export":
		format := m.reportFormat
		if arg != "" {
			format = arg
		}
		return m.exportReport(format)
	case "filter":
		if !m.taskList.SetFilter(arg) {
			m.err = fmt.Errorf("unknown status %q", arg)
		}
		return nil
	case "dashboard", "stats":
		m.currentView = ViewDashboard
		return nil
	case "equipment", "oee":
		m.currentView = ViewEquipment
		return m.equipmentView.Init()
	case "new":
		m.currentView = ViewTaskCreate
		return m.taskFormView.StartCreate(m.ownerID(), nil)
	default:
		m.err = fmt.Errorf("unknown command %q", c.Name)
		return nil
	}
}
