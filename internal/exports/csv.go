// Package exports assembles the CSV and XML downloads of a project variant.
package exports

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"elca-web/internal/models"
)

const (
	SetElements   = "elements"
	SetComponents = "components"
	SetResults    = "results"
)

const bom = "\ufeff"

var (
	ElementColumns   = []string{"element_id", "din276", "element_type", "name", "quantity", "ref_unit"}
	ComponentColumns = []string{"element_id", "element_name", "process_config", "quantity", "life_time", "is_layer", "layer_position"}
	resultColumns    = []string{"element_id", "din276", "name", "life_cycle"}
)

// Sets lists the CSV export actions.
var Sets = []string{SetElements, SetComponents, SetResults}

type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV writes t with a UTF-8 BOM and ';' separator, which is what
// spreadsheet applications in a decimal-comma locale expect.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func ElementsTable(elements []models.Element, typeNames map[string]string) Table {
	t := Table{Header: ElementColumns}
	for _, e := range elements {
		t.Rows = append(t.Rows, []string{
			id(e.ID),
			e.ElementTypeCode,
			Text(typeNames[e.ElementTypeCode]),
			Text(e.Name),
			Number(e.Quantity),
			Text(e.RefUnit),
		})
	}
	return t
}

// ComponentsTable expects elements with Components and their
// ProcessConfig preloaded.
func ComponentsTable(elements []models.Element) Table {
	t := Table{Header: ComponentColumns}
	for _, e := range elements {
		for _, c := range e.Components {
			t.Rows = append(t.Rows, []string{
				id(e.ID),
				Text(e.Name),
				Text(c.ProcessConfig.Name),
				Number(c.Quantity),
				strconv.Itoa(c.LifeTime),
				strconv.FormatBool(c.IsLayer),
				strconv.Itoa(c.LayerPosition),
			})
		}
	}
	return t
}

// ResultsTable has one row per element and life cycle phase, and one
// column per indicator titled "<name> [<unit>]". Indicators are expected
// in display order.
func ResultsTable(elements []models.Element, results []models.IndicatorResult, indicators []models.Indicator) Table {
	header := append([]string(nil), resultColumns...)
	for _, ind := range indicators {
		header = append(header, Text(ind.Name+" ["+ind.Unit+"]"))
	}

	type cell struct {
		element uint
		phase   string
	}
	values := make(map[cell]map[uint]float64)
	for _, r := range results {
		if r.ElementID == nil {
			continue
		}
		k := cell{*r.ElementID, r.LifeCycleIdent}
		if values[k] == nil {
			values[k] = make(map[uint]float64)
		}
		values[k][r.IndicatorID] += r.Value
	}

	t := Table{Header: header}
	for _, e := range elements {
		for _, phase := range models.LifeCyclePhases {
			v, ok := values[cell{e.ID, phase}]
			if !ok {
				continue
			}
			row := []string{id(e.ID), e.ElementTypeCode, Text(e.Name), phase}
			for _, ind := range indicators {
				row = append(row, Number(v[ind.ID]))
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// Text neutralises cells a spreadsheet would evaluate as a formula by
// prefixing them with an apostrophe.
func Text(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// Number formats v with a decimal comma and no exponent.
func Number(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
