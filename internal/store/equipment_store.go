package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

// CreateEquipment registers a machine with zeroed production counters.
func (s *SQLiteStore) CreateEquipment(ctx context.Context, in model.NewEquipment) (*model.Equipment, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO equipment (name, planned_hours, standard_rate, created_at)
		VALUES (?, ?, ?, ?)`,
		in.Name, in.PlannedHours, in.StandardRate, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating equipment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading equipment id: %w", err)
	}

	s.logger.Info("equipment.created", zap.Int64("equipment_id", id), zap.String("name", in.Name))
	return s.GetEquipment(ctx, id)
}

// UpdateEquipmentCounters replaces the downtime and output counters.
func (s *SQLiteStore) UpdateEquipmentCounters(ctx context.Context, id int64, c model.EquipmentCounters) (*model.Equipment, error) {
	if err := validateStruct(c); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE equipment SET downtime_hours = ?, actual_output = ?, good_units = ?
		WHERE id = ?`,
		c.DowntimeHours, c.ActualOutput, c.GoodUnits, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating equipment %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("equipment %d: %w", id, ErrNotFound)
	}

	s.logger.Info("equipment.updated",
		zap.Int64("equipment_id", id),
		zap.Int64("actual_output", c.ActualOutput),
		zap.Int64("good_units", c.GoodUnits),
	)
	return s.GetEquipment(ctx, id)
}

// GetEquipment retrieves a machine by ID.
func (s *SQLiteStore) GetEquipment(ctx context.Context, id int64) (*model.Equipment, error) {
	var eq model.Equipment
	err := s.db.GetContext(ctx, &eq, "SELECT * FROM equipment WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("equipment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment %d: %w", id, err)
	}
	return &eq, nil
}

// ListEquipment returns all machines ordered by name.
func (s *SQLiteStore) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	var items []model.Equipment
	if err := s.db.SelectContext(ctx, &items, "SELECT * FROM equipment ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("querying equipment: %w", err)
	}
	return items, nil
}

// DeleteEquipment removes a machine by ID.
func (s *SQLiteStore) DeleteEquipment(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM equipment WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting equipment %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("equipment %d: %w", id, ErrNotFound)
	}
	s.logger.Info("equipment.deleted", zap.Int64("equipment_id", id))
	return nil
}
