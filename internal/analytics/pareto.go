package analytics

import (
	"sort"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

// ParetoThreshold is the cumulative share, in percent, that ends the ranking.
const ParetoThreshold = 80.0

// ParetoInput is one contributor to the ranking.
type ParetoInput struct {
	Label string
	Hours float64
}

// ParetoPoint is a ranked contributor and the running share up to it.
type ParetoPoint struct {
	Label             string  `json:"label" yaml:"label"`
	Hours             float64 `json:"hours" yaml:"hours"`
	CumulativePercent float64 `json:"cumulative_percent" yaml:"cumulative_percent"`
}

// ParetoResult holds the vital few. NoData is set when nothing had time.
type ParetoResult struct {
	Points     []ParetoPoint `json:"points" yaml:"points"`
	TotalHours float64       `json:"total_hours" yaml:"total_hours"`
	NoData     bool          `json:"no_data" yaml:"no_data"`
}

// ParetoInputs turns tasks into ranking inputs keyed by title.
func ParetoInputs(tasks []model.Task) []ParetoInput {
	in := make([]ParetoInput, 0, len(tasks))
	for _, t := range tasks {
		in = append(in, ParetoInput{Label: t.Title, Hours: t.ActualHours})
	}
	return in
}

// Pareto drops contributors without time, sorts the rest by hours
// descending (ties keep input order) and emits them until the cumulative
// share reaches ParetoThreshold. The crossing contributor is included.
func Pareto(in []ParetoInput) ParetoResult {
	ranked := make([]ParetoInput, 0, len(in))
	var total float64
	for _, p := range in {
		if p.Hours > 0 {
			ranked = append(ranked, p)
			total += p.Hours
		}
	}
	if len(ranked) == 0 || total <= 0 {
		return ParetoResult{NoData: true}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Hours > ranked[j].Hours
	})

	res := ParetoResult{TotalHours: round2(total)}
	var cumulative float64
	for _, p := range ranked {
		cumulative += p.Hours
		pct := cumulative * 100 / total
		res.Points = append(res.Points, ParetoPoint{
			Label:             p.Label,
			Hours:             p.Hours,
			CumulativePercent: pct,
		})
		if pct >= ParetoThreshold {
			break
		}
	}
	return res
}
