package clean

import (
	"strings"

	"github.com/sells-group/district-etl/internal/model"
)

// Population table columns.
const (
	ColAge0to14        = "Age_0_14"
	ColAge15to64       = "Age_15_64"
	ColAge65Plus       = "Age_65_Plus"
	ColTotalPopulation = "Total_Population"
)

// ageBrackets maps source headers to canonical bracket columns, in output order.
var ageBrackets = []struct{ header, col string }{
	{"0-14 years old", ColAge0to14},
	{"15-64 years old", ColAge15to64},
	{"above 65 years old", ColAge65Plus},
}

type numericCol struct {
	idx int
	col string
}

// CleanPopulation normalizes the age-structure table. Rows with an empty
// district or an aggregate "total" label are dropped; unparseable counts stay
// missing and propagate into totals and percentages.
func CleanPopulation(raw *model.Raw) (*Result, error) {
	colIdx := raw.ColumnIndex()
	if _, ok := colIdx[model.KeyColumn]; !ok {
		return nil, missingColumn(SourcePopulation, model.KeyColumn)
	}
	for _, b := range ageBrackets {
		if _, ok := colIdx[b.header]; !ok {
			return nil, missingColumn(SourcePopulation, b.header)
		}
	}

	rename := make(map[string]string, len(ageBrackets))
	for _, b := range ageBrackets {
		rename[b.header] = b.col
	}

	// Every non-district column is kept, renamed where canonical.
	cols := []string{model.KeyColumn}
	var numeric []numericCol
	for i, h := range raw.Header {
		if h == model.KeyColumn || h == "" {
			continue
		}
		col := h
		if r, ok := rename[h]; ok {
			col = r
		}
		cols = append(cols, col)
		numeric = append(numeric, numericCol{idx: i, col: col})
	}
	cols = append(cols, ColTotalPopulation)
	for _, b := range ageBrackets {
		cols = append(cols, b.col+"_Pct")
	}

	t := model.NewTable(SourcePopulation, cols...)
	stats := Stats{Source: SourcePopulation, RowsRead: len(raw.Records)}

	for _, rec := range raw.Records {
		district := District(getCol(rec, colIdx, model.KeyColumn))
		if district == "" {
			stats.drop(DropEmptyDistrict)
			continue
		}
		if strings.Contains(strings.ToLower(district), "total") {
			stats.drop(DropAggregateRow)
			continue
		}

		row := model.Row{model.KeyColumn: model.Text(district)}
		for _, n := range numeric {
			cell := ""
			if n.idx < len(rec) {
				cell = rec[n.idx]
			}
			row[n.col] = stats.parse(cell)
		}

		total := SumAll(row[ColAge0to14], row[ColAge15to64], row[ColAge65Plus])
		row[ColTotalPopulation] = total
		for _, b := range ageBrackets {
			row[b.col+"_Pct"] = Percent(row[b.col], total)
		}
		t.Append(row)
	}

	var grand float64
	for _, v := range t.Column(ColTotalPopulation) {
		if f, ok := v.Float(); ok {
			grand += f
		}
	}
	stats.metric("total_population", grand)
	for _, b := range ageBrackets {
		if m, ok := mean(t, b.col+"_Pct"); ok {
			stats.metric("mean_"+b.col+"_Pct", Round2(m))
		}
	}

	return finish(t, stats)
}
