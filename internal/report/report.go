// Package report writes point-in-time analytics snapshots to disk as JSON
// or YAML.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/analytics"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// TaskLine is a task row with its efficiency.
type TaskLine struct {
	ID             int64   `json:"id" yaml:"id"`
	Title          string  `json:"title" yaml:"title"`
	Category       string  `json:"category" yaml:"category"`
	Status         string  `json:"status" yaml:"status"`
	EstimatedHours float64 `json:"estimated_hours" yaml:"estimated_hours"`
	ActualHours    float64 `json:"actual_hours" yaml:"actual_hours"`
	Efficiency     float64 `json:"efficiency" yaml:"efficiency"`
}

// Snapshot is everything a report contains.
type Snapshot struct {
	ID          string                    `json:"id" yaml:"id"`
	GeneratedAt time.Time                 `json:"generated_at" yaml:"generated_at"`
	Subject     string                    `json:"subject" yaml:"subject"`
	Summary     analytics.Summary         `json:"summary" yaml:"summary"`
	Categories  []analytics.CategoryTotal `json:"categories" yaml:"categories"`
	Pareto      analytics.ParetoResult    `json:"pareto" yaml:"pareto"`
	Gantt       []analytics.GanttRow      `json:"gantt" yaml:"gantt"`
	Equipment   analytics.Fleet           `json:"equipment" yaml:"equipment"`
	Tasks       []TaskLine                `json:"tasks" yaml:"tasks"`
}

// Source supplies the data for a snapshot.
type Source interface {
	analytics.Reader
}

// Exporter builds snapshots and writes them to a filesystem.
type Exporter struct {
	fs  afero.Fs
	src Source
	now func() time.Time
}

// NewExporter returns an Exporter writing to fs. Pass afero.NewOsFs() for
// the real disk.
func NewExporter(fs afero.Fs, src Source) *Exporter {
	return &Exporter{fs: fs, src: src, now: time.Now}
}

// Build collects a snapshot for userID (0 for all subjects).
func (e *Exporter) Build(ctx context.Context, userID int64, subject string) (*Snapshot, error) {
	engine := analytics.NewEngine(e.src)

	var filter store.TaskFilter
	if userID != 0 {
		filter.OwnerID = &userID
	}
	tasks, err := e.src.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	fleet, err := engine.OEEAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: e.now().UTC(),
		Subject:     subject,
		Summary:     analytics.Summarize(tasks),
		Categories:  analytics.CategoryBreakdown(tasks),
		Pareto:      analytics.Pareto(analytics.ParetoInputs(tasks)),
		Gantt:       analytics.GanttRows(tasks),
		Equipment:   fleet,
		Tasks:       taskLines(tasks),
	}
	return snap, nil
}

// Export builds a snapshot and writes it under dir. It returns the file path.
func (e *Exporter) Export(ctx context.Context, dir, format string, userID int64, subject string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "yml" {
		format = FormatYAML
	}
	if format != FormatJSON && format != FormatYAML {
		return "", fmt.Errorf("unsupported report format %q", format)
	}

	snap, err := e.Build(ctx, userID, subject)
	if err != nil {
		return "", err
	}
	data, err := Encode(snap, format)
	if err != nil {
		return "", err
	}

	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("report-%s-%s.%s",
		snap.GeneratedAt.Format("20060102-150405"), snap.ID[:8], format)
	path := filepath.Join(dir, name)
	if err := afero.WriteFile(e.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}

// Encode serializes a snapshot in the given format.
func Encode(snap *Snapshot, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding report: %w", err)
		}
		return b, nil
	case FormatYAML:
		b, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encoding report: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported report format %q", format)
}

func taskLines(tasks []model.Task) []TaskLine {
	lines := make([]TaskLine, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, TaskLine{
			ID:             t.ID,
			Title:          t.Title,
			Category:       t.CategoryLabel(),
			Status:         t.Status,
			EstimatedHours: t.EstimatedHours,
			ActualHours:    t.ActualHours,
			Efficiency:     t.Efficiency(),
		})
	}
	return lines
}
