package taskform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

func TestBuildNewTaskTrimsAndConverts(t *testing.T) {
	owner, parent := int64(3), int64(7)
	in := buildNewTask(formBindings{
		title:    "  Weld frame  ",
		category: " Production ",
		priority: model.PriorityHigh,
		estimate: "1.25",
		assignee: " Welder A ",
	}, &owner, &parent)

	assert.Equal(t, "Weld frame", in.Title)
	require.NotNil(t, in.Category)
	assert.Equal(t, "Production", *in.Category)
	assert.Equal(t, 1.25, in.EstimatedHours)
	assert.Equal(t, "Welder A", in.Assignee)
	assert.Equal(t, &owner, in.OwnerID)
	assert.Equal(t, &parent, in.ParentID)
}

func TestBuildNewTaskBlankCategoryIsNil(t *testing.T) {
	in := buildNewTask(formBindings{title: "x", priority: model.PriorityLow}, nil, nil)
	assert.Nil(t, in.Category)
	assert.Zero(t, in.EstimatedHours)
}

func TestBuildPatchOnlyChangedFields(t *testing.T) {
	cat := "Maintenance"
	orig := model.Task{
		ID: 1, Title: "Inspect", Priority: model.PriorityMedium,
		Status: model.StatusPending, Category: &cat, EstimatedHours: 2,
	}

	p := buildPatch(orig, formBindings{
		title:    "Inspect",
		category: "Maintenance",
		priority: model.PriorityMedium,
		status:   model.StatusPending,
		estimate: "2",
	})
	assert.True(t, p.IsEmpty())

	p = buildPatch(orig, formBindings{
		title:    "Inspect pump",
		category: "",
		priority: model.PriorityMedium,
		status:   model.StatusCompleted,
		estimate: "2",
	})
	require.NotNil(t, p.Title)
	assert.Equal(t, "Inspect pump", *p.Title)
	require.NotNil(t, p.Category)
	assert.Equal(t, "", *p.Category, "clearing the category is a change")
	require.NotNil(t, p.Status)
	assert.Equal(t, model.StatusCompleted, *p.Status)
	assert.Nil(t, p.Priority)
	assert.Nil(t, p.EstimatedHours)
}

func TestValidateHours(t *testing.T) {
	assert.NoError(t, validateHours(""))
	assert.NoError(t, validateHours("0.75"))
	assert.Error(t, validateHours("abc"))
	assert.Error(t, validateHours("-1"))
}
