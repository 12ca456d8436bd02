package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/templates"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/tests/testutil"
)

func TestBuiltinCatalog(t *testing.T) {
	c := templates.Builtin()

	assert.Equal(t, []string{"MANUFACTURING", "MAINTENANCE", "QUALITY", "LOGISTICS", "ENGINEERING"}, c.Categories)
	assert.Equal(t, []string{
		"CNC_MACHINING", "WELDING", "MAINTENANCE", "ASSEMBLY_LINE",
		"QUALITY_CONTROL", "LOGISTICS", "ENGINEERING",
	}, c.Names())

	cnc, ok := c.Group("cnc_machining")
	require.True(t, ok)
	assert.Equal(t, "MANUFACTURING", cnc.Category)
	require.Len(t, cnc.Tasks, 5)
	assert.Equal(t, 900, cnc.Tasks[0].StandardSeconds)
	assert.InDelta(t, 0.25, cnc.Tasks[0].EstimatedHours(), 1e-9)
	assert.InDelta(t, 5220.0/3600, cnc.StandardHours(), 1e-9)

	_, ok = c.Group("painting")
	assert.False(t, ok)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	_, err := templates.Parse([]byte("groups: [{name: A, tasks: []}]"))
	assert.ErrorContains(t, err, "no tasks")

	_, err = templates.Parse([]byte(`
groups:
  - name: A
    tasks: [{key: x, title: X}]
  - name: A
    tasks: [{key: y, title: Y}]
`))
	assert.ErrorContains(t, err, "duplicate")

	_, err = templates.Parse([]byte("groups: ["))
	assert.Error(t, err)
}

func TestInstantiate(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	u := testutil.MustUser(t, s, "op")

	parent, children, err := templates.Builtin().Instantiate(ctx, s, "WELDING", &u.ID)
	require.NoError(t, err)

	assert.Equal(t, "WELDING", parent.Title)
	require.NotNil(t, parent.Category)
	assert.Equal(t, "MANUFACTURING", *parent.Category)
	assert.InDelta(t, 3480.0/3600, parent.EstimatedHours, 1e-9)

	require.Len(t, children, 4)
	for _, c := range children {
		require.NotNil(t, c.ParentID)
		assert.Equal(t, parent.ID, *c.ParentID)
		require.NotNil(t, c.OwnerID)
		assert.Equal(t, u.ID, *c.OwnerID)
	}
	assert.Equal(t, "Certified Welder", children[1].Assignee)

	stored, err := s.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 4)

	_, _, err = templates.Builtin().Instantiate(ctx, s, "PAINTING", nil)
	assert.ErrorContains(t, err, "unknown template group")
}
