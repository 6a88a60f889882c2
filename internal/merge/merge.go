// Package merge joins the four cleaned district tables into the final
// analytical table and reports what each join kept and lost.
package merge

import (
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-etl/internal/clean"
	"github.com/sells-group/district-etl/internal/model"
)

// FinalName is the name of the merged table.
const FinalName = "final"

// DefaultExpectedExclusions are the island counties the revenue survey does
// not cover.
var DefaultExpectedExclusions = []string{"Kinmen County", "Lienchiang County"}

// Inputs are the four cleaned tables.
type Inputs struct {
	Vote       *model.Table
	Population *model.Table
	Revenue    *model.Table
	Education  *model.Table
}

// Options configures a merge.
type Options struct {
	Candidates clean.Candidates
	// ExpectedExclusions names the vote districts the revenue inner join is
	// expected to remove. Nil disables the check.
	ExpectedExclusions []string
}

// Excluded is a vote district removed by the revenue join.
type Excluded struct {
	District   string  `json:"district" yaml:"district"`
	TotalVotes float64 `json:"total_votes" yaml:"total_votes"`
	SharePct   float64 `json:"share_pct" yaml:"share_pct"`
}

// Report holds the merge diagnostics.
type Report struct {
	Joins    []JoinStep          `json:"joins" yaml:"joins"`
	Rows     int                 `json:"rows" yaml:"rows"`
	Columns  int                 `json:"columns" yaml:"columns"`
	Missing  []model.ColumnCount `json:"missing,omitempty" yaml:"missing,omitempty"`
	Excluded []Excluded          `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	// RevenueUnmatched are revenue districts with no vote row. Any entry
	// means the final table is shorter than the revenue table.
	RevenueUnmatched []string `json:"revenue_unmatched,omitempty" yaml:"revenue_unmatched,omitempty"`
	// UnexpectedExclusions were excluded but not listed as expected.
	UnexpectedExclusions []string `json:"unexpected_exclusions,omitempty" yaml:"unexpected_exclusions,omitempty"`
	// UnexcludedExpected were listed as expected but not excluded.
	UnexcludedExpected []string `json:"unexcluded_expected,omitempty" yaml:"unexcluded_expected,omitempty"`
}

// Result is the final table and its diagnostics.
type Result struct {
	Table  *model.Table
	Report Report
}

// FinalColumns returns the output column order, grouped by topic.
func FinalColumns(c clean.Candidates) []string {
	cols := []string{model.KeyColumn, clean.ColWinner, clean.ColTotalVotes}
	for i, name := range c {
		cols = append(cols, name, c.PctColumn(i))
	}
	return append(cols,
		clean.ColTotalPopulation,
		clean.ColAge0to14, clean.ColAge0to14+"_Pct",
		clean.ColAge15to64, clean.ColAge15to64+"_Pct",
		clean.ColAge65Plus, clean.ColAge65Plus+"_Pct",

		clean.ColIncome, clean.ColDisposableIncome, clean.ColConsumption,
		clean.ColHouseholds, clean.ColAvgPeoplePerHH,

		clean.ColTotal15Plus, clean.ColHigherEducation,
		clean.ColGraduatePct, clean.ColCollegePct, clean.ColJuniorCollegePct,
		clean.ColHighSchoolPct, clean.ColJuniorPct, clean.ColPrimaryPct, clean.ColIlliteratePct,
	)
}

// Merge runs the join sequence:
//  1. vote LEFT JOIN population
//  2. INNER JOIN revenue (restricts the result to districts with revenue data)
//  3. LEFT JOIN education
//
// and projects the result onto FinalColumns.
func Merge(in Inputs, opts Options) (*Result, error) {
	if in.Vote == nil || in.Population == nil || in.Revenue == nil || in.Education == nil {
		return nil, eris.New("merge: all four tables are required")
	}

	var rep Report
	steps := []struct {
		right *model.Table
		kind  JoinKind
	}{
		{in.Population, Left},
		{in.Revenue, Inner},
		{in.Education, Left},
	}

	cur := in.Vote
	for _, s := range steps {
		next, step, err := join(cur, s.right, s.kind)
		if err != nil {
			return nil, err
		}
		rep.Joins = append(rep.Joins, step)
		cur = next
	}

	final := cur.Select(FinalColumns(opts.Candidates))
	final.Name = FinalName

	rep.Rows = final.Len()
	rep.Columns = len(final.Columns)
	rep.Missing = final.MissingCounts()
	rep.RevenueUnmatched = rep.Joins[1].UnmatchedRight
	rep.Excluded = excluded(in.Vote, final)
	if opts.ExpectedExclusions != nil {
		rep.UnexpectedExclusions, rep.UnexcludedExpected = compareExclusions(rep.Excluded, opts.ExpectedExclusions)
	}

	log := zap.L().With(zap.String("table", FinalName))
	log.Info("data merged", zap.Int("rows", rep.Rows), zap.Int("columns", rep.Columns))
	for _, m := range rep.Missing {
		log.Info("missing values", zap.String("column", m.Column), zap.Int("count", m.Count))
	}
	for _, e := range rep.Excluded {
		log.Info("excluded district",
			zap.String("district", e.District),
			zap.Float64("total_votes", e.TotalVotes),
			zap.Float64("share_pct", e.SharePct),
		)
	}
	if len(rep.RevenueUnmatched) > 0 {
		log.Warn("revenue districts missing from vote data", zap.Strings("districts", rep.RevenueUnmatched))
	}
	if len(rep.UnexpectedExclusions) > 0 || len(rep.UnexcludedExpected) > 0 {
		log.Warn("exclusions differ from expected",
			zap.Strings("unexpected", rep.UnexpectedExclusions),
			zap.Strings("not_excluded", rep.UnexcludedExpected),
		)
	}

	return &Result{Table: final, Report: rep}, nil
}

// excluded lists vote districts that did not reach the final table, with
// their share of all votes cast.
func excluded(vote, final *model.Table) []Excluded {
	kept := make(map[string]bool, final.Len())
	for _, k := range final.Keys() {
		kept[k] = true
	}

	var grand float64
	for _, v := range vote.Column(clean.ColTotalVotes) {
		if f, ok := v.Float(); ok {
			grand += f
		}
	}

	var out []Excluded
	for _, r := range vote.Rows {
		if kept[r.Key()] {
			continue
		}
		total, _ := r.Get(clean.ColTotalVotes).Float()
		e := Excluded{District: r.Key(), TotalVotes: total}
		if grand > 0 {
			e.SharePct = total / grand * 100
		}
		out = append(out, e)
	}
	return out
}

func compareExclusions(got []Excluded, expected []string) (unexpected, notExcluded []string) {
	var names []string
	for _, e := range got {
		names = append(names, e.District)
		if !slices.Contains(expected, e.District) {
			unexpected = append(unexpected, e.District)
		}
	}
	for _, d := range expected {
		if !slices.Contains(names, d) {
			notExcluded = append(notExcluded, d)
		}
	}
	return unexpected, notExcluded
}
