package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/district-etl/internal/clean"
	"github.com/sells-group/district-etl/internal/model"
)

// fixtureInputs is a small representative dataset: the two island counties
// have votes but no revenue row, Tainan has no population or education row.
func fixtureInputs(t *testing.T) Inputs {
	t.Helper()

	mustClean := func(res *clean.Result, err error) *model.Table {
		t.Helper()
		require.NoError(t, err)
		return res.Table
	}

	vote := mustClean(clean.CleanVote(&model.Raw{
		Header: []string{"District", "Ko/Wu", "Lai/Hsiao", "Hou/Chao"},
		Records: [][]string{
			{"Taipei City", "367,000", "587,000", "574,000"},
			{"New Taipei City", "665,000", "1,020,000", "932,000"},
			{"Kinmen County", "9,000", "6,000", "45,000"},
			{"Lienchiang County", "1,500", "800", "5,700"},
			{"Tainan City", "250,000", "650,000", "300,000"},
		},
	}, clean.DefaultCandidates))

	population := mustClean(clean.CleanPopulation(&model.Raw{
		Header: []string{"District", "0-14 years old", "15-64 years old", "above 65 years old"},
		Records: [][]string{
			{"Total", "2,800,000", "16,000,000", "4,300,000"},
			{"Taipei City", "300,000", "1,500,000", "700,000"},
			{"New Taipei City", "400,000", "2,800,000", "800,000"},
			{"Kinmen County", "15,000", "100,000", "25,000"},
			{"Lienchiang County", "1,000", "11,000", "2,000"},
		},
	}))

	revenue := mustClean(clean.CleanRevenue(&model.Raw{
		Header: []string{"City", "Households", "Average people per household", "Income",
			"Disposable income", "Consumption expenditure"},
		Records: [][]string{
			{"Taipei City", "1000000", "2.5", "1800000", "1400000", "1100000"},
			{"New Taipei City", "1500000", "2.7", "1400000", "1100000", "850000"},
			{"Tainan City", "650000", "2.8", "1200000", "950000", "750000"},
		},
	}))

	education := mustClean(clean.CleanEducation(&model.Raw{
		Header: []string{"District", "illiterate or selfstudy", "edu_primary", "edu_junior",
			"edu_highschool", "edu_junior_college", "edu_college", "edu_graudate"},
		Records: [][]string{
			{"Taipei City", "10", "90", "100", "300", "100", "300", "100"},
			{"New Taipei City", "20", "180", "200", "400", "100", "80", "20"},
			{"Kinmen County", "5", "20", "25", "30", "5", "10", "5"},
			{"Lienchiang County", "1", "2", "2", "3", "1", "1", "0"},
			{"", "1", "1", "1", "1", "1", "1", "1"},
		},
	}))

	return Inputs{Vote: vote, Population: population, Revenue: revenue, Education: education}
}

func defaultOptions() Options {
	return Options{Candidates: clean.DefaultCandidates, ExpectedExclusions: DefaultExpectedExclusions}
}

func TestMerge_RowCountMatchesRevenue(t *testing.T) {
	in := fixtureInputs(t)
	res, err := Merge(in, defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, in.Revenue.Len(), res.Table.Len())
	assert.Equal(t, []string{"Taipei City", "New Taipei City", "Tainan City"}, res.Table.Keys())
	assert.Equal(t, FinalName, res.Table.Name)
	assert.Empty(t, res.Report.RevenueUnmatched)
}

func TestMerge_ExcludesIslandCounties(t *testing.T) {
	res, err := Merge(fixtureInputs(t), defaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Report.Excluded, 2)
	assert.Equal(t, "Kinmen County", res.Report.Excluded[0].District)
	assert.Equal(t, "Lienchiang County", res.Report.Excluded[1].District)
	assert.InDelta(t, 60000, res.Report.Excluded[0].TotalVotes, 1e-9)

	// 60,000 of 5,413,000 votes
	assert.InDelta(t, 60000.0/5413000*100, res.Report.Excluded[0].SharePct, 1e-9)
	assert.Empty(t, res.Report.UnexpectedExclusions)
	assert.Empty(t, res.Report.UnexcludedExpected)

	for _, k := range res.Table.Keys() {
		assert.NotEqual(t, "Kinmen County", k)
		assert.NotEqual(t, "Lienchiang County", k)
	}
}

func TestMerge_ColumnOrder(t *testing.T) {
	res, err := Merge(fixtureInputs(t), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, FinalColumns(clean.DefaultCandidates), res.Table.Columns)
	assert.Equal(t, []string{
		"District", "Winner",
		"Total_Votes", "Ko_Wu", "Ko_Wu_Pct", "Lai_Hsiao", "Lai_Hsiao_Pct", "Hou_Chao", "Hou_Chao_Pct",
		"Total_Population", "Age_0_14", "Age_0_14_Pct", "Age_15_64", "Age_15_64_Pct", "Age_65_Plus", "Age_65_Plus_Pct",
		"Income", "Disposable_Income", "Consumption", "Households", "Avg_People_Per_HH",
		"Total_15Plus", "Higher_Education_Pct", "Graduate_Pct", "College_Pct", "JuniorCollege_Pct",
		"HighSchool_Pct", "Junior_Pct", "Primary_Pct", "Illiterate_Pct",
	}, res.Table.Columns)
	assert.Equal(t, 30, res.Report.Columns)
}

func TestMerge_LeftJoinsKeepUnmatched(t *testing.T) {
	res, err := Merge(fixtureInputs(t), defaultOptions())
	require.NoError(t, err)

	tainan := res.Table.Rows[2]
	assert.Equal(t, "Tainan City", tainan.Key())
	assert.True(t, tainan.Get(clean.ColTotalPopulation).IsMissing())
	assert.True(t, tainan.Get(clean.ColHigherEducation).IsMissing())
	income, ok := tainan.Get(clean.ColIncome).Float()
	require.True(t, ok)
	assert.InDelta(t, 1200000, income, 1e-9)

	// every population and education column is missing exactly once
	for _, m := range res.Report.Missing {
		assert.Equal(t, 1, m.Count, m.Column)
	}
	assert.Len(t, res.Report.Missing, 16) // 7 population + 9 education columns
}

func TestMerge_JoinSteps(t *testing.T) {
	res, err := Merge(fixtureInputs(t), defaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Report.Joins, 3)

	pop := res.Report.Joins[0]
	assert.Equal(t, clean.SourcePopulation, pop.Right)
	assert.Equal(t, Left, pop.Kind)
	assert.Equal(t, 5, pop.LeftRows)
	assert.Equal(t, 4, pop.Matched)
	assert.Equal(t, 5, pop.ResultRows)
	assert.Equal(t, []string{"Tainan City"}, pop.UnmatchedLeft)

	rev := res.Report.Joins[1]
	assert.Equal(t, Inner, rev.Kind)
	assert.Equal(t, 5, rev.LeftRows)
	assert.Equal(t, 3, rev.ResultRows)
	assert.Equal(t, []string{"Kinmen County", "Lienchiang County"}, rev.UnmatchedLeft)

	edu := res.Report.Joins[2]
	assert.Equal(t, 3, edu.ResultRows)
	assert.Equal(t, []string{"Tainan City"}, edu.UnmatchedLeft)
	assert.Equal(t, []string{"Kinmen County", "Lienchiang County"}, edu.UnmatchedRight)
}

func TestMerge_DistrictMissingFromRevenue(t *testing.T) {
	in := fixtureInputs(t)
	in.Revenue = in.Revenue.Select(in.Revenue.Columns)
	in.Revenue.Rows = in.Revenue.Rows[:2] // drop Tainan

	res, err := Merge(in, defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Table.Len())
	assert.NotContains(t, res.Table.Keys(), "Tainan City")
	require.Len(t, res.Report.Excluded, 3)
	assert.Equal(t, "Tainan City", res.Report.Excluded[2].District)
	assert.InDelta(t, 1200000.0/5413000*100, res.Report.Excluded[2].SharePct, 1e-9)
	assert.Equal(t, []string{"Tainan City"}, res.Report.UnexpectedExclusions)
}

func TestMerge_RevenueWithoutVote(t *testing.T) {
	in := fixtureInputs(t)
	in.Revenue.Append(model.Row{model.KeyColumn: model.Text("Taichung City"), clean.ColIncome: model.Num(1)})

	res, err := Merge(in, defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Taichung City"}, res.Report.RevenueUnmatched)
	assert.Equal(t, 3, res.Table.Len())
}

func TestMerge_ExpectedExclusionNotExcluded(t *testing.T) {
	opts := defaultOptions()
	opts.ExpectedExclusions = []string{"Kinmen County", "Lienchiang County", "Penghu County"}

	res, err := Merge(fixtureInputs(t), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Penghu County"}, res.Report.UnexcludedExpected)
}

func TestMerge_NoExpectationCheck(t *testing.T) {
	opts := defaultOptions()
	opts.ExpectedExclusions = nil

	res, err := Merge(fixtureInputs(t), opts)
	require.NoError(t, err)
	assert.Nil(t, res.Report.UnexpectedExclusions)
	assert.Nil(t, res.Report.UnexcludedExpected)
}

func TestMerge_SkipsAbsentColumns(t *testing.T) {
	in := fixtureInputs(t)
	in.Education = in.Education.Select([]string{model.KeyColumn, clean.ColHigherEducation})

	res, err := Merge(in, defaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Table.HasColumn(clean.ColHigherEducation))
	assert.False(t, res.Table.HasColumn(clean.ColGraduatePct))
	assert.Equal(t, 3, res.Table.Len())
}

func TestMerge_DuplicateRightKey(t *testing.T) {
	in := fixtureInputs(t)
	in.Population.Append(model.Row{model.KeyColumn: model.Text("Taipei City")})

	_, err := Merge(in, defaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDuplicateKey))
}

func TestMerge_NilInput(t *testing.T) {
	_, err := Merge(Inputs{}, defaultOptions())
	require.Error(t, err)
}

func TestJoin_CollidingColumnsLeftWins(t *testing.T) {
	left := model.NewTable("left", model.KeyColumn, "X")
	left.Append(model.Row{model.KeyColumn: model.Text("A"), "X": model.Num(1)})
	right := model.NewTable("right", model.KeyColumn, "X", "Y")
	right.Append(model.Row{model.KeyColumn: model.Text("A"), "X": model.Num(9), "Y": model.Num(2)})

	out, step, err := join(left, right, Left)
	require.NoError(t, err)
	assert.Equal(t, []string{model.KeyColumn, "X", "Y"}, out.Columns)
	assert.Equal(t, []string{"X"}, step.DroppedColumns)
	assert.Equal(t, model.Num(1), out.Rows[0].Get("X"))
	assert.Equal(t, model.Num(2), out.Rows[0].Get("Y"))
}

func TestJoin_DoesNotMutateInputs(t *testing.T) {
	left := model.NewTable("left", model.KeyColumn)
	left.Append(model.Row{model.KeyColumn: model.Text("A")})
	right := model.NewTable("right", model.KeyColumn, "Y")
	right.Append(model.Row{model.KeyColumn: model.Text("A"), "Y": model.Num(2)})

	_, _, err := join(left, right, Inner)
	require.NoError(t, err)
	assert.Equal(t, []string{model.KeyColumn}, left.Columns)
	_, has := left.Rows[0]["Y"]
	assert.False(t, has)
}
