package reports

import (
	"sort"

	"elca-web/internal/models"
)

type ElementRow struct {
	Element models.Element
	Values  map[uint]float64 // indicator id -> total of selected phases
}

type GroupRow struct {
	Code     string
	Name     string
	Elements int
	Values   map[uint]float64
}

// ByElement totals the selected phases (D excluded) per element, limited
// to the filter's cost group. Elements keep DIN 276 then name order.
func ByElement(elements []models.Element, results []models.IndicatorResult, p models.Project, f Filter) []ElementRow {
	f = f.Normalize()
	div, _ := Divisor(p, f)

	inTotal := make(map[string]bool)
	for _, phase := range f.TotalPhases() {
		inTotal[phase] = true
	}

	perElement := make(map[uint]map[uint]float64)
	for _, r := range results {
		if r.ElementID == nil || !inTotal[r.LifeCycleIdent] {
			continue
		}
		m, ok := perElement[*r.ElementID]
		if !ok {
			m = make(map[uint]float64)
			perElement[*r.ElementID] = m
		}
		m[r.IndicatorID] += r.Value / div
	}

	var rows []ElementRow
	for _, e := range elements {
		if !MatchesCostGroup(e.ElementTypeCode, f.CostGroup) {
			continue
		}
		values := perElement[e.ID]
		if values == nil {
			values = make(map[uint]float64)
		}
		rows = append(rows, ElementRow{Element: e, Values: values})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Element, rows[j].Element
		if a.ElementTypeCode != b.ElementTypeCode {
			return a.ElementTypeCode < b.ElementTypeCode
		}
		return a.Name < b.Name
	})
	return rows
}

// GroupCode maps a DIN 276 code to its cost group at the given level:
// level 1 gives the hundreds ("330" -> "300"), level 2 the tens ("334" -> "330").
func GroupCode(code string, level int) string {
	if level < 1 {
		level = 1
	}
	if len(code) <= level {
		return code
	}
	out := []byte(code)
	for i := level; i < len(out); i++ {
		out[i] = '0'
	}
	return string(out)
}

// ByCostGroup aggregates element rows into DIN 276 cost groups. typeNames
// maps cost group codes to their names.
func ByCostGroup(rows []ElementRow, typeNames map[string]string, level int) []GroupRow {
	groups := make(map[string]*GroupRow)
	for _, r := range rows {
		code := GroupCode(r.Element.ElementTypeCode, level)
		g, ok := groups[code]
		if !ok {
			g = &GroupRow{Code: code, Name: typeNames[code], Values: make(map[uint]float64)}
			groups[code] = g
		}
		g.Elements++
		for id, v := range r.Values {
			g.Values[id] += v
		}
	}

	out := make([]GroupRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
