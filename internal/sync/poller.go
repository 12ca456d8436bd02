package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/analytics"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
)

// RefreshState represents the current state of the refresh loop.
type RefreshState int

const (
	RefreshIdle RefreshState = iota
	RefreshRunning
	RefreshError
)

// RefreshStatus holds the state of the last refresh.
type RefreshStatus struct {
	State    RefreshState
	LastLoad time.Time
	Error    error
}

// RefreshResultMsg is a tea.Msg carrying freshly loaded data.
type RefreshResultMsg struct {
	Tasks     []model.Task
	Active    *model.TimeEntry
	Summary   analytics.Summary
	Equipment []model.Equipment
	Error     error
	// Reason is "tick", "file", or "manual".
	Reason string
}

// loadTimeout is the maximum time allowed for a single load.
const loadTimeout = 10 * time.Second

// debounce collapses bursts of file events from one write.
const debounce = 150 * time.Millisecond

// Poller reloads the operator's view of the store on a ticker, whenever the
// database file changes, and on demand.
type Poller struct {
	store    store.Store
	userID   int64
	dbPath   string
	interval time.Duration
	logger   *zap.Logger

	status    RefreshStatus
	resultCh  chan RefreshResultMsg
	triggerCh chan string
	stopCh    chan struct{}
	watcher   *fsnotify.Watcher
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller for userID. dbPath may be empty or ":memory:", in
// which case only the ticker and manual refreshes apply.
func New(s store.Store, userID int64, dbPath string, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		store:     s,
		userID:    userID,
		dbPath:    dbPath,
		interval:  interval,
		logger:    logger,
		resultCh:  make(chan RefreshResultMsg, 16),
		triggerCh: make(chan string, 16),
		stopCh:    make(chan struct{}),
	}
}

// Start returns a tea.Cmd that starts the refresh goroutine and
// subscribes to results.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	if err := p.watch(); err != nil {
		// The ticker still refreshes; a missing watcher only adds latency.
		p.logger.Warn("file watch disabled", zap.Error(err))
	}

	go p.loop()

	return p.waitForResult()
}

// Stop halts the refresh goroutine and the file watcher.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	if p.watcher != nil {
		p.watcher.Close()
	}
	p.running = false
}

// Refresh triggers an immediate reload.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- "manual":
	default:
		// Channel full; a reload is already queued.
	}
	return nil
}

// Status returns the state of the last refresh.
func (p *Poller) Status() RefreshStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// watch subscribes to changes of the database file and its WAL siblings.
// SQLite replaces and appends these files, so the directory is watched.
func (p *Poller) watch() error {
	if p.dbPath == "" || p.dbPath == ":memory:" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(p.dbPath)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(p.dbPath), err)
	}
	p.mu.Lock()
	p.watcher = w
	p.mu.Unlock()

	go p.forwardEvents(w)
	return nil
}

func (p *Poller) forwardEvents(w *fsnotify.Watcher) {
	base := filepath.Base(p.dbPath)
	var pending <-chan time.Time

	for {
		select {
		case <-p.stopCh:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			// Readers touch the shared-memory index too; only data writes count.
			if !strings.HasPrefix(name, base) || strings.HasSuffix(name, "-shm") {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending = time.After(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			p.logger.Warn("file watch error", zap.Error(err))
		case <-pending:
			pending = nil
			select {
			case p.triggerCh <- "file":
			default:
			}
		}
	}
}

// loop runs the refresh loop until Stop.
func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial load immediately
	p.load("tick")

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.load("tick")
		case reason := <-p.triggerCh:
			p.load(reason)
		}
	}
}

// load reads the current data and sends a RefreshResultMsg.
func (p *Poller) load(reason string) {
	p.setStatus(RefreshRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	msg, err := Load(ctx, p.store, p.userID)
	msg.Reason = reason
	if err != nil {
		p.setStatus(RefreshError, err)
		p.sendResult(RefreshResultMsg{Error: err, Reason: reason})
		return
	}

	p.setStatus(RefreshIdle, nil)
	p.sendResult(msg)
}

// Load reads everything the TUI shows for userID in one pass.
func Load(ctx context.Context, s store.Store, userID int64) (RefreshResultMsg, error) {
	tasks, err := s.ListTasks(ctx, store.TaskFilter{})
	if err != nil {
		return RefreshResultMsg{}, err
	}
	active, err := s.ActiveTimer(ctx, userID)
	if err != nil {
		return RefreshResultMsg{}, err
	}
	equipment, err := s.ListEquipment(ctx)
	if err != nil {
		return RefreshResultMsg{}, err
	}

	var own []model.Task
	for _, t := range tasks {
		if t.OwnerID != nil && *t.OwnerID == userID {
			own = append(own, t)
		}
	}

	return RefreshResultMsg{
		Tasks:     tasks,
		Active:    active,
		Summary:   analytics.Summarize(own),
		Equipment: equipment,
	}, nil
}

// setStatus updates the refresh status.
func (p *Poller) setStatus(state RefreshState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == RefreshIdle && err == nil {
		p.status.LastLoad = time.Now()
	}
}

// sendResult sends a RefreshResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg RefreshResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh.
// Call it after handling a RefreshResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
