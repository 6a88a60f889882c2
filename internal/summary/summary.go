// Package summary computes read-only aggregate statistics over the final
// district table.
package summary

import (
	"math"
	"strings"

	"github.com/sells-group/district-etl/internal/clean"
	"github.com/sells-group/district-etl/internal/model"
)

// economicColumns are averaged alongside the percentage columns.
var economicColumns = []string{
	clean.ColIncome,
	clean.ColDisposableIncome,
	clean.ColConsumption,
	clean.ColHouseholds,
	clean.ColAvgPeoplePerHH,
}

// Wins is the number of districts a candidate carried.
type Wins struct {
	Candidate string `json:"candidate" yaml:"candidate"`
	Districts int    `json:"districts" yaml:"districts"`
}

// Mean is the average of a column over its non-missing cells.
type Mean struct {
	Column string  `json:"column" yaml:"column"`
	Mean   float64 `json:"mean" yaml:"mean"`
	N      int     `json:"n" yaml:"n"`
}

// Summary is the aggregate view of a final table.
type Summary struct {
	Districts int    `json:"districts" yaml:"districts"`
	Wins      []Wins `json:"wins" yaml:"wins"`
	Means     []Mean `json:"means" yaml:"means"`
	// IncomeStdDev is the sample standard deviation of Income, nil when
	// fewer than two districts report income.
	IncomeStdDev *float64 `json:"income_std_dev,omitempty" yaml:"income_std_dev,omitempty"`
}

// Summarize aggregates t. Means cover every percentage column and every
// economic column present, in table column order.
func Summarize(t *model.Table, c clean.Candidates) *Summary {
	s := &Summary{Districts: t.Len()}

	counts := make(map[string]int, len(c))
	for _, v := range t.Column(clean.ColWinner) {
		counts[v.Str()]++
	}
	for _, name := range c {
		s.Wins = append(s.Wins, Wins{Candidate: name, Districts: counts[name]})
	}

	for _, col := range t.Columns {
		if !strings.HasSuffix(col, "_Pct") && !isEconomic(col) {
			continue
		}
		if m, n := Average(t.Column(col)); n > 0 {
			s.Means = append(s.Means, Mean{Column: col, Mean: m, N: n})
		}
	}

	if sd := StdDev(t.Column(clean.ColIncome)); !math.IsNaN(sd) {
		s.IncomeStdDev = &sd
	}
	return s
}

// Average returns the mean of the numeric values and how many there were.
func Average(vals []model.Value) (float64, int) {
	var sum float64
	var n int
	for _, v := range vals {
		if f, ok := v.Float(); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// StdDev returns the sample standard deviation (n-1 denominator) of the
// numeric values, or NaN when there are fewer than two.
func StdDev(vals []model.Value) float64 {
	mean, n := Average(vals)
	if n < 2 {
		return math.NaN()
	}
	var ss float64
	for _, v := range vals {
		if f, ok := v.Float(); ok {
			ss += (f - mean) * (f - mean)
		}
	}
	return math.Sqrt(ss / float64(n-1))
}

func isEconomic(col string) bool {
	for _, c := range economicColumns {
		if c == col {
			return true
		}
	}
	return false
}
