package clean

import (
	"github.com/sells-group/district-etl/internal/model"
)

// Revenue table columns.
const (
	ColHouseholds       = "Households"
	ColAvgPeoplePerHH   = "Avg_People_Per_HH"
	ColIncome           = "Income"
	ColDisposableIncome = "Disposable_Income"
	ColConsumption      = "Consumption"
)

// revenueColumns lists each canonical column with the headers it may appear
// under, in output order.
var revenueColumns = []struct {
	col     string
	headers []string
}{
	{model.KeyColumn, []string{"City", model.KeyColumn}},
	{ColHouseholds, []string{"Households"}},
	{ColAvgPeoplePerHH, []string{"Average people per household", ColAvgPeoplePerHH}},
	{ColIncome, []string{"Income"}},
	{ColDisposableIncome, []string{"Disposable income", ColDisposableIncome}},
	{ColConsumption, []string{"Consumption expenditure", ColConsumption}},
}

// CleanRevenue renames the household economics table to canonical columns
// and keeps only those six. Only rows without a district are dropped: revenue
// is the join anchor, so every named district here reaches the final table.
func CleanRevenue(raw *model.Raw) (*Result, error) {
	colIdx := raw.ColumnIndex()

	headers := make([]string, len(revenueColumns))
	cols := make([]string, len(revenueColumns))
	for i, rc := range revenueColumns {
		h, ok := findCol(colIdx, rc.headers...)
		if !ok {
			return nil, missingColumn(SourceRevenue, rc.headers[0])
		}
		headers[i] = h
		cols[i] = rc.col
	}

	t := model.NewTable(SourceRevenue, cols...)
	stats := Stats{Source: SourceRevenue, RowsRead: len(raw.Records)}

	for _, rec := range raw.Records {
		district := District(getCol(rec, colIdx, headers[0]))
		if district == "" {
			stats.drop(DropEmptyDistrict)
			continue
		}
		row := model.Row{model.KeyColumn: model.Text(district)}
		for i := 1; i < len(cols); i++ {
			row[cols[i]] = stats.parse(getCol(rec, colIdx, headers[i]))
		}
		t.Append(row)
	}

	if m, ok := mean(t, ColIncome); ok {
		stats.metric("mean_income", Round2(m))
	}
	if m, ok := mean(t, ColDisposableIncome); ok {
		stats.metric("mean_disposable_income", Round2(m))
	}

	return finish(t, stats)
}
