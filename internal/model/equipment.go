package model

import "time"

// Equipment is a machine whose counters feed the OEE calculation.
// Times are in hours, rates in units per hour.
type Equipment struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	PlannedHours  float64   `json:"planned_hours" db:"planned_hours"`
	DowntimeHours float64   `json:"downtime_hours" db:"downtime_hours"`
	ActualOutput  int64     `json:"actual_output" db:"actual_output"`
	GoodUnits     int64     `json:"good_units" db:"good_units"`
	StandardRate  float64   `json:"standard_rate" db:"standard_rate"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NewEquipment carries the fields required to register a machine.
type NewEquipment struct {
	Name         string  `json:"name" validate:"required,max=120"`
	PlannedHours float64 `json:"planned_hours" validate:"gte=0"`
	StandardRate float64 `json:"standard_rate" validate:"gte=0"`
}

// EquipmentCounters are the mutable production counters of a machine.
type EquipmentCounters struct {
	DowntimeHours float64 `json:"downtime_hours" validate:"gte=0"`
	ActualOutput  int64   `json:"actual_output" validate:"gte=0"`
	GoodUnits     int64   `json:"good_units" validate:"gte=0,ltefield=ActualOutput"`
}
