package reports

import (
	"sort"

	"elca-web/internal/models"
)

type SummaryRow struct {
	Indicator models.Indicator
	Values    map[string]float64 // life cycle phase -> value
	Total     float64
	Rec       float64
}

type Summary struct {
	Phases     []string // selected phases excluding D
	ShowRec    bool
	Normalized bool
	Rows       []SummaryRow
}

// SortIndicators orders indicators for display and drops hidden ones.
func SortIndicators(indicators []models.Indicator) []models.Indicator {
	out := make([]models.Indicator, 0, len(indicators))
	for _, ind := range indicators {
		if !ind.IsHidden {
			out = append(out, ind)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// variantTotals prefers stored variant totals and sums the element rows
// when none exist.
func variantTotals(results []models.IndicatorResult) []models.IndicatorResult {
	var totals []models.IndicatorResult
	for _, r := range results {
		if r.ElementID == nil {
			totals = append(totals, r)
		}
	}
	if len(totals) > 0 {
		return totals
	}
	return results
}

// Summarize builds the variant summary: one row per indicator with the
// value of every selected phase, the total and module D.
func Summarize(results []models.IndicatorResult, indicators []models.Indicator, p models.Project, f Filter) Summary {
	f = f.Normalize()
	div, normalized := Divisor(p, f)

	type cell struct {
		indicator uint
		phase     string
	}
	sums := make(map[cell]float64)
	for _, r := range FilterPhases(variantTotals(results), f) {
		sums[cell{r.IndicatorID, r.LifeCycleIdent}] += r.Value
	}

	s := Summary{
		Phases:     f.TotalPhases(),
		ShowRec:    f.Has(models.PhaseRec),
		Normalized: normalized,
	}
	for _, ind := range SortIndicators(indicators) {
		row := SummaryRow{Indicator: ind, Values: make(map[string]float64)}
		for _, phase := range s.Phases {
			v := sums[cell{ind.ID, phase}] / div
			row.Values[phase] = v
			row.Total += v
		}
		if s.ShowRec {
			row.Rec = sums[cell{ind.ID, models.PhaseRec}] / div
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}
