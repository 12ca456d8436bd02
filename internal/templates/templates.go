// Package templates ships the built-in industrial task groups and turns a
// group into a parent task with one subtask per step.
package templates

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

//go:embed industrial.yaml
var industrialYAML []byte

// Step is one templated task. StandardSeconds is the standard time.
type Step struct {
	Key             string `yaml:"key"`
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	StandardSeconds int    `yaml:"standard_seconds"`
	Assignee        string `yaml:"assignee"`
}

// EstimatedHours converts the standard time to hours.
func (s Step) EstimatedHours() float64 {
	return float64(s.StandardSeconds) / 3600
}

// Group is a named set of steps sharing a category.
type Group struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Tasks       []Step `yaml:"tasks"`
}

// StandardHours sums the group's standard times.
func (g Group) StandardHours() float64 {
	var total float64
	for _, s := range g.Tasks {
		total += s.EstimatedHours()
	}
	return total
}

// Catalog holds the categories and groups.
type Catalog struct {
	Categories []string `yaml:"categories"`
	Groups     []Group  `yaml:"groups"`
}

// Creator is the part of the store needed to instantiate a group.
type Creator interface {
	CreateTask(ctx context.Context, in model.NewTask) (*model.Task, error)
}

// Parse decodes a catalog and checks that every group is usable.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	seen := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("template group without a name")
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("duplicate template group %q", g.Name)
		}
		seen[g.Name] = true
		if len(g.Tasks) == 0 {
			return nil, fmt.Errorf("template group %q has no tasks", g.Name)
		}
		for _, s := range g.Tasks {
			if s.Title == "" || s.StandardSeconds < 0 {
				return nil, fmt.Errorf("template group %q: invalid step %q", g.Name, s.Key)
			}
		}
	}
	return &c, nil
}

// Builtin returns the embedded industrial catalog.
func Builtin() *Catalog {
	c, err := Parse(industrialYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Group looks a group up by name, case-insensitively.
func (c *Catalog) Group(name string) (Group, bool) {
	for _, g := range c.Groups {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Group{}, false
}

// Names lists group names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		names = append(names, g.Name)
	}
	return names
}

// Instantiate creates a parent task for the group and one subtask per step.
// The parent's estimate is the sum of its steps.
func (c *Catalog) Instantiate(ctx context.Context, creator Creator, name string, ownerID *int64) (*model.Task, []model.Task, error) {
	g, ok := c.Group(name)
	if !ok {
		return nil, nil, fmt.Errorf("unknown template group %q", name)
	}

	category := g.Category
	parent, err := creator.CreateTask(ctx, model.NewTask{
		Title:          strings.ReplaceAll(g.Name, "_", " "),
		Description:    g.Description,
		OwnerID:        ownerID,
		Category:       &category,
		EstimatedHours: g.StandardHours(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s parent: %w", g.Name, err)
	}

	children := make([]model.Task, 0, len(g.Tasks))
	for _, s := range g.Tasks {
		child, err := creator.CreateTask(ctx, model.NewTask{
			Title:          s.Title,
			Description:    s.Description,
			Assignee:       s.Assignee,
			OwnerID:        ownerID,
			Category:       &category,
			EstimatedHours: s.EstimatedHours(),
			ParentID:       &parent.ID,
		})
		if err != nil {
			return parent, children, fmt.Errorf("creating %s step %q: %w", g.Name, s.Key, err)
		}
		children = append(children, *child)
	}
	return parent, children, nil
}
