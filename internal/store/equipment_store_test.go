package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/tests/testutil"
)

func TestEquipmentLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	press, err := s.CreateEquipment(ctx, model.NewEquipment{Name: " Press 2 ", PlannedHours: 8, StandardRate: 20})
	require.NoError(t, err)
	assert.Equal(t, "Press 2", press.Name)
	assert.Zero(t, press.ActualOutput)

	_, err = s.CreateEquipment(ctx, model.NewEquipment{Name: "Lathe", PlannedHours: 6, StandardRate: 12})
	require.NoError(t, err)

	updated, err := s.UpdateEquipmentCounters(ctx, press.ID, model.EquipmentCounters{
		DowntimeHours: 1, ActualOutput: 140, GoodUnits: 133,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(140), updated.ActualOutput)
	assert.Equal(t, int64(133), updated.GoodUnits)
	assert.InDelta(t, 1.0, updated.DowntimeHours, 1e-9)

	list, err := s.ListEquipment(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Lathe", list[0].Name, "ordered by name")

	require.NoError(t, s.DeleteEquipment(ctx, press.ID))
	_, err = s.GetEquipment(ctx, press.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteEquipment(ctx, press.ID), store.ErrNotFound)
}

func TestEquipmentValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.CreateEquipment(ctx, model.NewEquipment{Name: ""})
	assert.True(t, store.IsValidation(err))

	_, err = s.CreateEquipment(ctx, model.NewEquipment{Name: "x", PlannedHours: -1})
	assert.True(t, store.IsValidation(err))

	eq, err := s.CreateEquipment(ctx, model.NewEquipment{Name: "x", PlannedHours: 8})
	require.NoError(t, err)

	_, err = s.UpdateEquipmentCounters(ctx, eq.ID, model.EquipmentCounters{ActualOutput: 10, GoodUnits: 11})
	var ve *store.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "good_units", ve.Field)

	_, err = s.UpdateEquipmentCounters(ctx, 999, model.EquipmentCounters{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
