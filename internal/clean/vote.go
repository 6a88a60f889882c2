package clean

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/district-etl/internal/model"
)

// Vote table columns.
const (
	ColTotalVotes = "Total_Votes"
	ColWinner     = "Winner"
)

// Candidates names the three candidate columns in their listed order. The
// order decides winner ties.
type Candidates [3]string

// DefaultCandidates are the 2024 presidential tickets.
var DefaultCandidates = Candidates{"Ko_Wu", "Lai_Hsiao", "Hou_Chao"}

// ParseCandidates validates a configured candidate list.
func ParseCandidates(names []string) (Candidates, error) {
	var c Candidates
	if len(names) != len(c) {
		return c, eris.Errorf("clean: need exactly %d candidates, got %d", len(c), len(names))
	}
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if n == "" || n == model.KeyColumn || n == ColTotalVotes || n == ColWinner {
			return c, eris.Errorf("clean: invalid candidate name %q", n)
		}
		if seen[n] {
			return c, eris.Errorf("clean: duplicate candidate name %q", n)
		}
		seen[n] = true
		c[i] = n
	}
	return c, nil
}

// PctColumn returns the percentage column of candidate i.
func (c Candidates) PctColumn(i int) string {
	return c[i] + "_Pct"
}

// Winner returns the index of the strictly largest count. Ties go to the
// first-listed candidate.
func Winner(counts [3]float64) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}

// CleanVote normalizes the election results. Columns are taken by position:
// district, then the three candidates. Rows without a district or missing any
// count are dropped, as are rows whose counts are all zero.
func CleanVote(raw *model.Raw, c Candidates) (*Result, error) {
	if len(raw.Header) < 1+len(c) {
		return nil, eris.Wrapf(ErrMissingColumn, "clean: %s: want %d positional columns, got %d",
			SourceVote, 1+len(c), len(raw.Header))
	}

	cols := []string{model.KeyColumn}
	cols = append(cols, c[:]...)
	cols = append(cols, ColTotalVotes)
	for i := range c {
		cols = append(cols, c.PctColumn(i))
	}
	cols = append(cols, ColWinner)

	t := model.NewTable(SourceVote, cols...)
	stats := Stats{Source: SourceVote, RowsRead: len(raw.Records)}

	var sums [3]float64
	for _, rec := range raw.Records {
		district := ""
		if len(rec) > 0 {
			district = District(rec[0])
		}
		if district == "" {
			stats.drop(DropEmptyDistrict)
			continue
		}

		var counts [3]float64
		complete := true
		for i := range c {
			cell := ""
			if 1+i < len(rec) {
				cell = rec[1+i]
			}
			f, ok := stats.parse(cell).Float()
			if !ok {
				complete = false
				continue
			}
			counts[i] = f
		}
		if !complete {
			stats.drop(DropMissingField)
			continue
		}

		total := counts[0] + counts[1] + counts[2]
		if total == 0 {
			stats.drop(DropZeroTotal)
			continue
		}

		row := model.Row{
			model.KeyColumn: model.Text(district),
			ColTotalVotes:   model.Num(total),
			ColWinner:       model.Text(c[Winner(counts)]),
		}
		for i, name := range c {
			row[name] = model.Num(counts[i])
			row[c.PctColumn(i)] = model.Num(Round2(counts[i] / total * 100))
			sums[i] += counts[i]
		}
		t.Append(row)
	}

	grand := sums[0] + sums[1] + sums[2]
	stats.metric("total_votes", grand)
	if grand > 0 {
		for i, name := range c {
			stats.metric(name+"_share_pct", Round2(sums[i]/grand*100))
		}
	}

	return finish(t, stats)
}
