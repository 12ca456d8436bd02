package report

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/tests/testutil"
)

func seed(t *testing.T) (*Exporter, afero.Fs, int64) {
	t.Helper()
	s, clock := testutil.NewClockedStore(t)
	ctx := context.Background()

	u := testutil.MustUser(t, s, "op")
	task := testutil.MustTask(t, s, model.NewTask{Title: "Inventory Count", OwnerID: &u.ID, EstimatedHours: 0.75})
	e, err := s.StartTimer(ctx, task.ID, u.ID, "")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = s.StopTimer(ctx, e.ID, u.ID)
	require.NoError(t, err)

	_, err = s.CreateEquipment(ctx, model.NewEquipment{Name: "forklift", PlannedHours: 8, StandardRate: 4})
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	exp := NewExporter(fs, s)
	exp.now = clock.Now
	return exp, fs, u.ID
}

func TestExportJSON(t *testing.T) {
	exp, fs, userID := seed(t)

	path, err := exp.Export(context.Background(), "/reports", "JSON", userID, "op")
	require.NoError(t, err)
	assert.Equal(t, "/reports", filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "report-20240304-090000-"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "op", snap.Subject)
	assert.Len(t, snap.ID, 36)
	assert.Equal(t, 1, snap.Summary.Total)
	require.Len(t, snap.Tasks, 1)
	assert.InDelta(t, 1.0, snap.Tasks[0].ActualHours, 1e-9)
	assert.InDelta(t, 1.0/0.75, snap.Tasks[0].Efficiency, 1e-9)
	require.Len(t, snap.Pareto.Points, 1)
	require.Len(t, snap.Gantt, 1)
	assert.Len(t, snap.Equipment.Units, 1)
}

func TestExportYAML(t *testing.T) {
	exp, fs, userID := seed(t)

	path, err := exp.Export(context.Background(), "out", "yml", userID, "op")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".yaml"))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "op", doc["subject"])
	assert.Contains(t, doc, "categories")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	exp, fs, userID := seed(t)

	_, err := exp.Export(context.Background(), "out", "csv", userID, "op")
	assert.ErrorContains(t, err, "unsupported")

	exists, err := afero.DirExists(fs, "out")
	require.NoError(t, err)
	assert.False(t, exists, "nothing is written for a bad format")
}
