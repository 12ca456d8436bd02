package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/analytics"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/auth"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/credential"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/templates"
)

// harness runs commands against a temp database, an in-memory keyring and
// an in-memory report filesystem that persist across invocations.
type harness struct {
	t       *testing.T
	cfgPath string
	vault   *credential.Vault
	fs      afero.Fs
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`database:
  path: %s
operator:
  handle: tester
  display_name: Test Operator
log:
  level: debug
  file: %s
reports:
  dir: /reports
  format: json
`, filepath.Join(dir, "tracker.db"), filepath.Join(dir, "logs", "tracker.log"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	return &harness{
		t:       t,
		cfgPath: cfgPath,
		vault:   credential.NewVault(keyring.NewArrayKeyring(nil)),
		fs:      afero.NewMemMapFs(),
	}
}

// run executes one invocation with stdin fed from input.
func (h *harness) run(input string, args ...string) (string, error) {
	h.t.Helper()
	e := newEnv()
	e.fs = h.fs
	e.authCost = bcrypt.MinCost
	e.stdin = strings.NewReader(input)
	e.openVault = func(string) (*credential.Vault, error) { return h.vault, nil }

	root := newRootCmd(e)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", h.cfgPath}, args...))

	err := root.ExecuteContext(context.Background())
	e.close()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestTaskAddAndList(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("task", "add", "Weld", "frame", "--category", "welding", "-e", "2", "-p", "high")
	assert.Contains(t, out, `Created task #1 "Weld frame"`)
	h.mustRun("task", "add", "Grind seams", "--parent", "1")

	tasks := decode[[]model.Task](t, h.mustRun("--json", "task", "list"))
	require.Len(t, tasks, 2)
	// Newest first.
	assert.Equal(t, "Grind seams", tasks[0].Title)
	require.NotNil(t, tasks[0].ParentID)
	assert.Equal(t, int64(1), *tasks[0].ParentID)
	assert.Equal(t, "Weld frame", tasks[1].Title)
	assert.Equal(t, model.PriorityHigh, tasks[1].Priority)
	require.NotNil(t, tasks[1].Category)
	assert.Equal(t, "welding", *tasks[1].Category)

	top := decode[[]model.Task](t, h.mustRun("--json", "task", "list", "--top"))
	assert.Len(t, top, 1)

	out = h.mustRun("task", "list")
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Grind seams")
	assert.Contains(t, out, "#1")
}

func TestTaskListEmpty(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("task", "list"), "No tasks found.")
}

func TestTaskUpdateAndShow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Inspect weld")

	out := h.mustRun("task", "update", "1", "--status", "on_hold", "--assignee", "qa")
	assert.Contains(t, out, "Updated task #1 (on_hold)")

	out = h.mustRun("task", "show", "1")
	assert.Contains(t, out, "#1 Inspect weld")
	assert.Contains(t, out, "assignee:   qa")
	assert.Contains(t, out, "category:   uncategorized")
}

func TestTaskUpdateWithoutFlagsIsUsageError(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Inspect weld")

	_, err := h.run("", "task", "update", "1")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestTaskUpdateRejectsBadStatus(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Inspect weld")

	_, err := h.run("", "task", "update", "1", "--status", "done")
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))
	assert.Equal(t, exitFailure, ExitCode(err))
}

func TestTaskDeleteMissing(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "task", "delete", "42")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBadIDArgument(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "task", "show", "abc")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestTimerLifecycle(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Cut plate")
	h.mustRun("task", "add", "Drill holes")

	assert.Contains(t, h.mustRun("timer", "active"), "No timer is running.")

	out := h.mustRun("timer", "start", "1", "--notes", "first shift")
	assert.Contains(t, out, "Timer started on task #1")

	_, err := h.run("", "timer", "start", "2")
	require.ErrorIs(t, err, store.ErrConflict)
	assert.Contains(t, userMessage(err), "already running")

	assert.Contains(t, h.mustRun("timer", "active"), "#1 Cut plate")

	out = h.mustRun("timer", "stop")
	assert.Contains(t, out, "Timer stopped on task #1")

	_, err = h.run("", "timer", "stop")
	require.ErrorIs(t, err, errNoTimer)

	entries := decode[[]model.TimeEntry](t, h.mustRun("--json", "timer", "log"))
	require.Len(t, entries, 1)
	assert.Equal(t, "first shift", entries[0].Notes)
	assert.False(t, entries[0].IsOpen())
}

func TestTimerStopTaskNeverStarted(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Paint")

	out := h.mustRun("timer", "stop-task", "1")
	assert.Contains(t, out, "had no timer")

	task := decode[struct {
		Task model.Task `json:"task"`
	}](t, h.mustRun("--json", "task", "show", "1"))
	assert.Equal(t, model.StatusPending, task.Task.Status)
}

func TestStatsCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Weld", "--category", "welding")
	h.mustRun("task", "add", "Pack")
	h.mustRun("task", "update", "2", "--status", "completed")

	sum := decode[analytics.Summary](t, h.mustRun("--json", "stats", "summary"))
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 1, sum.Pending)

	cats := decode[[]analytics.CategoryTotal](t, h.mustRun("--json", "stats", "categories"))
	assert.Len(t, cats, 2)

	assert.Contains(t, h.mustRun("stats", "pareto"), "No time has been logged yet.")
	assert.Contains(t, h.mustRun("stats", "rollup"), "Weld")
}

func TestStatsScopedToOperator(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Mine")
	_, err := h.run("secret12\n", "user", "add", "other")
	require.NoError(t, err)
	h.mustRun("--as", "other", "task", "add", "Theirs")

	mine := decode[analytics.Summary](t, h.mustRun("--json", "stats", "summary"))
	assert.Equal(t, 1, mine.Total)

	all := decode[analytics.Summary](t, h.mustRun("--json", "stats", "summary", "--all"))
	assert.Equal(t, 2, all.Total)
}

func TestEquipmentOEE(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("equipment", "add", "Press", "7", "--planned", "8", "--rate", "100")
	assert.Contains(t, out, `Registered equipment #1 "Press 7"`)

	h.mustRun("equipment", "update", "1", "--downtime", "1", "--output", "600", "--good", "570")

	_, err := h.run("", "equipment", "update", "1", "--output", "10", "--good", "20")
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))

	fleet := decode[analytics.Fleet](t, h.mustRun("--json", "equipment", "oee"))
	require.Len(t, fleet.Units, 1)
	assert.Greater(t, fleet.Units[0].Result.OEE, 0.0)
	// The fleet average is rounded to two decimals.
	assert.InDelta(t, fleet.Units[0].Result.OEE, fleet.Average, 0.005)

	assert.Contains(t, h.mustRun("equipment", "oee"), "Fleet average OEE")
}

func TestUnknownOperatorHandle(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "--as", "ghost", "timer", "active")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), `operator "ghost"`)
}

func TestUnopenableDatabaseIsReported(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	raw, err := os.ReadFile(h.cfgPath)
	require.NoError(t, err)
	cfg := strings.Replace(string(raw), filepath.Join(filepath.Dir(h.cfgPath), "tracker.db"),
		filepath.Join(blocker, "tracker.db"), 1)
	require.NoError(t, os.WriteFile(h.cfgPath, []byte(cfg), 0o644))

	for _, args := range [][]string{
		{"timer", "active"},
		{"task", "list"},
		{"stats", "summary"},
	} {
		assert.NotPanics(t, func() {
			_, err := h.run("", args...)
			assert.Error(t, err, args)
		}, args)
	}
}

func TestTemplateApply(t *testing.T) {
	h := newHarness(t)
	group, ok := templates.Builtin().Group(templates.Builtin().Names()[0])
	require.True(t, ok)

	assert.Contains(t, h.mustRun("template", "list"), group.Name)

	out := h.mustRun("template", "apply", group.Name)
	assert.Contains(t, out, fmt.Sprintf("with %d subtasks", len(group.Tasks)))

	children := decode[[]model.Task](t, h.mustRun("--json", "task", "children", "1"))
	assert.Len(t, children, len(group.Tasks))

	_, err := h.run("", "template", "apply", "no-such-group")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestUserLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("hunter22\n", "user", "add", "alice", "--name", "Alice", "--role", "supervisor")
	require.NoError(t, err)

	_, err = h.run("wrong-pass\n", "user", "login", "alice")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	out, err := h.run("hunter22\n", "user", "login", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")

	u := decode[model.User](t, h.mustRun("--json", "user", "whoami"))
	assert.Equal(t, "alice", u.Handle)
	assert.Equal(t, model.RoleSupervisor, u.Role)

	h.mustRun("task", "add", "Alice's task")
	tasks := decode[[]model.Task](t, h.mustRun("--json", "task", "list"))
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].OwnerID)
	assert.Equal(t, u.ID, *tasks[0].OwnerID)

	h.mustRun("user", "logout")
	u = decode[model.User](t, h.mustRun("--json", "user", "whoami"))
	assert.Equal(t, "tester", u.Handle)
}

func TestUserAddRejectsShortPassword(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("abc\n", "user", "add", "bob")
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))
}

func TestReportExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Weld")

	out := h.mustRun("report", "export", "--format", "yml")
	require.True(t, strings.HasPrefix(out, "Report written to /reports/"), out)
	path := strings.TrimSpace(strings.TrimPrefix(out, "Report written to "))
	assert.True(t, strings.HasSuffix(path, ".yaml"))

	data, err := afero.ReadFile(h.fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "subject: tester")

	out = h.mustRun("report", "export", "--stdout")
	assert.Contains(t, out, `"subject": "tester"`)

	_, err = h.run("", "report", "export", "--format", "xml")
	require.Error(t, err)
}

func TestConfigShowAndInit(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("config", "show")
	assert.Contains(t, out, "tracker.db")
	assert.Contains(t, out, "handle: tester")

	_, err := h.run("", "config", "init")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))

	h.mustRun("config", "init", "--force")
	cfg, err := model.LoadConfig(h.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "tester", cfg.Operator.Handle)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	err := fmt.Errorf("task 3: %w", store.ErrNotFound)

	PrintError(&buf, err, false)
	assert.Contains(t, buf.String(), "not found")
	assert.NotContains(t, buf.String(), "task 3")

	buf.Reset()
	PrintError(&buf, err, true)
	assert.Contains(t, buf.String(), "task 3: not found")
}

func TestTableRender(t *testing.T) {
	tb := newTable("ID", "NAME")
	tb.add("1", "Press")
	tb.add("22", strings.Repeat("x", 50))

	lines := strings.Split(strings.TrimRight(tb.render(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "1   Press")
	assert.True(t, strings.HasSuffix(lines[3], "…"))
}
