package reports

import (
	"math"

	"elca-web/internal/models"
)

type ChartPoint struct {
	Phase string  `json:"phase"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"` // percent of the total
}

type Chart struct {
	Indicator string       `json:"indicator"`
	Name      string       `json:"name"`
	Unit      string       `json:"unit"`
	Total     float64      `json:"total"`
	Points    []ChartPoint `json:"points"`
}

type Slice struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

// Charts turns a summary into one bar chart per indicator. D is appended
// as its own bar when selected; its share is relative to the total as well.
func Charts(s Summary) []Chart {
	charts := make([]Chart, 0, len(s.Rows))
	for _, row := range s.Rows {
		ch := Chart{
			Indicator: row.Indicator.Ident,
			Name:      row.Indicator.Name,
			Unit:      row.Indicator.Unit,
			Total:     row.Total,
		}
		for _, phase := range s.Phases {
			ch.Points = append(ch.Points, point(phase, row.Values[phase], row.Total))
		}
		if s.ShowRec {
			ch.Points = append(ch.Points, point(models.PhaseRec, row.Rec, row.Total))
		}
		charts = append(charts, ch)
	}
	return charts
}

func point(phase string, v, total float64) ChartPoint {
	return ChartPoint{
		Phase: phase,
		Label: models.PhaseLabel(phase),
		Value: v,
		Share: share(v, total),
	}
}

// Pie distributes one indicator over cost groups. Shares use absolute
// values so that negative groups do not produce shares above 100%.
func Pie(groups []GroupRow, indicatorID uint) []Slice {
	var sum float64
	for _, g := range groups {
		sum += math.Abs(g.Values[indicatorID])
	}

	var out []Slice
	for _, g := range groups {
		v := g.Values[indicatorID]
		if v == 0 {
			continue
		}
		out = append(out, Slice{Code: g.Code, Name: g.Name, Value: v, Share: share(math.Abs(v), sum)})
	}
	return out
}

func share(v, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(v/total*1000) / 10
}
