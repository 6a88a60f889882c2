package clean

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/district-etl/internal/model"
)

func populationRaw(records ...[]string) *model.Raw {
	return &model.Raw{
		Source:  SourcePopulation,
		Header:  []string{"District", "0-14 years old", "15-64 years old", "above 65 years old"},
		Records: records,
	}
}

func TestCleanPopulation_Basic(t *testing.T) {
	res, err := CleanPopulation(populationRaw([]string{"Taipei City", "250,000", "1,500,000", "750,000"}))
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())

	row := res.Table.Rows[0]
	assert.InDelta(t, 2500000, numOf(t, row, ColTotalPopulation), 1e-9)
	assert.InDelta(t, 10, numOf(t, row, "Age_0_14_Pct"), 1e-9)
	assert.InDelta(t, 60, numOf(t, row, "Age_15_64_Pct"), 1e-9)
	assert.InDelta(t, 30, numOf(t, row, "Age_65_Plus_Pct"), 1e-9)
	assert.Equal(t, []string{
		"District", "Age_0_14", "Age_15_64", "Age_65_Plus",
		"Total_Population", "Age_0_14_Pct", "Age_15_64_Pct", "Age_65_Plus_Pct",
	}, res.Table.Columns)
}

func TestCleanPopulation_DropsTotalRows(t *testing.T) {
	for _, label := range []string{"Total", "TOTAL", "total", "Grand Total", "  Total  "} {
		t.Run(label, func(t *testing.T) {
			res, err := CleanPopulation(populationRaw(
				[]string{"North", "1", "2", "3"},
				[]string{label, "10", "20", "30"},
			))
			require.NoError(t, err)
			assert.Equal(t, []string{"North"}, res.Table.Keys())
			assert.Equal(t, 1, res.Stats.Dropped[DropAggregateRow])
		})
	}
}

func TestCleanPopulation_DropsEmptyDistrict(t *testing.T) {
	res, err := CleanPopulation(populationRaw(
		[]string{"", "1", "2", "3"},
		[]string{"North", "1", "2", "3"},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Table.Len())
	assert.Equal(t, 1, res.Stats.Dropped[DropEmptyDistrict])
}

func TestCleanPopulation_KeepsRowsWithMissingNumbers(t *testing.T) {
	res, err := CleanPopulation(populationRaw(
		[]string{"North", "1", "n/a", "3"},
		[]string{"South", "", "2", "3"},
	))
	require.NoError(t, err)
	require.Equal(t, 2, res.Table.Len())
	assert.Empty(t, res.Stats.Dropped)
	assert.Equal(t, 1, res.Stats.MalformedCells)

	for _, row := range res.Table.Rows {
		assert.True(t, row.Get(ColTotalPopulation).IsMissing())
		assert.True(t, row.Get("Age_65_Plus_Pct").IsMissing())
	}
	assert.InDelta(t, 3, numOf(t, res.Table.Rows[0], ColAge65Plus), 1e-9)
}

func TestCleanPopulation_ZeroTotal(t *testing.T) {
	res, err := CleanPopulation(populationRaw([]string{"Empty", "0", "0", "0"}))
	require.NoError(t, err)
	row := res.Table.Rows[0]
	assert.InDelta(t, 0, numOf(t, row, ColTotalPopulation), 1e-9)
	assert.True(t, row.Get("Age_0_14_Pct").IsMissing())
}

func TestCleanPopulation_KeepsExtraColumns(t *testing.T) {
	raw := populationRaw([]string{"North", "1", "2", "3", "1,234"})
	raw.Header = append(raw.Header, "Households")

	res, err := CleanPopulation(raw)
	require.NoError(t, err)
	assert.True(t, res.Table.HasColumn("Households"))
	assert.InDelta(t, 1234, numOf(t, res.Table.Rows[0], "Households"), 1e-9)
}

func TestCleanPopulation_Metrics(t *testing.T) {
	res, err := CleanPopulation(populationRaw(
		[]string{"North", "10", "60", "30"},
		[]string{"South", "20", "60", "20"},
	))
	require.NoError(t, err)
	assert.Equal(t, []Metric{
		{Name: "total_population", Value: 200},
		{Name: "mean_Age_0_14_Pct", Value: 15},
		{Name: "mean_Age_15_64_Pct", Value: 60},
		{Name: "mean_Age_65_Plus_Pct", Value: 25},
	}, res.Stats.Metrics)
}

func TestCleanPopulation_MissingColumn(t *testing.T) {
	raw := &model.Raw{Header: []string{"District", "0-14 years old", "15-64 years old"}}
	_, err := CleanPopulation(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "above 65 years old")
}
