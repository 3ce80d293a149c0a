// Package reports shapes LCA indicator results into report tables and
// chart series.
package reports

import (
	"strings"

	"elca-web/internal/models"
)

// Filter holds the report settings a user picked. It lives in the session
// so that it survives switching between report tabs.
type Filter struct {
	Phases    []string `json:"phases"`
	PerM2Year bool     `json:"per_m2_year"`
	CostGroup string   `json:"cost_group"`
}

func DefaultFilter() Filter {
	return Filter{Phases: append([]string(nil), models.LifeCyclePhases...)}
}

// Normalize drops unknown and duplicate phases and puts the rest in report
// order. An empty selection falls back to all phases.
func (f Filter) Normalize() Filter {
	selected := make(map[string]bool, len(f.Phases))
	for _, p := range f.Phases {
		selected[strings.TrimSpace(p)] = true
	}

	var phases []string
	for _, p := range models.LifeCyclePhases {
		if selected[p] {
			phases = append(phases, p)
		}
	}
	if len(phases) == 0 {
		phases = append(phases, models.LifeCyclePhases...)
	}

	f.Phases = phases
	f.CostGroup = strings.TrimSpace(f.CostGroup)
	return f
}

func (f Filter) Has(phase string) bool {
	for _, p := range f.Phases {
		if p == phase {
			return true
		}
	}
	return false
}

// TotalPhases are the selected phases that add up to the total. Module D
// is reported beside the total, never in it.
func (f Filter) TotalPhases() []string {
	var out []string
	for _, p := range f.Phases {
		if p != models.PhaseRec {
			out = append(out, p)
		}
	}
	return out
}

// FilterPhases keeps results whose life cycle phase is selected.
func FilterPhases(results []models.IndicatorResult, f Filter) []models.IndicatorResult {
	out := make([]models.IndicatorResult, 0, len(results))
	for _, r := range results {
		if f.Has(r.LifeCycleIdent) {
			out = append(out, r)
		}
	}
	return out
}

// Divisor returns the factor results are divided by. Per m² and year
// normalisation needs a positive net floor space and life time, otherwise
// the raw values are reported.
func Divisor(p models.Project, f Filter) (float64, bool) {
	if !f.PerM2Year || p.NetFloorSpace <= 0 || p.LifeTime <= 0 {
		return 1, false
	}
	return p.NetFloorSpace * float64(p.LifeTime), true
}

// MatchesCostGroup reports whether a DIN 276 code falls under group.
// "300" matches 300-399, "330" matches 330-339, "" matches everything.
func MatchesCostGroup(code, group string) bool {
	prefix := strings.TrimRight(group, "0")
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(code, prefix)
}
