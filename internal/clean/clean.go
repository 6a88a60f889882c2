// Package clean turns each raw district dataset into a normalized table keyed
// by District, with derived totals and percentage columns.
package clean

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-etl/internal/model"
)

// Source names.
const (
	SourceVote       = "vote"
	SourcePopulation = "population"
	SourceRevenue    = "revenue"
	SourceEducation  = "education"
)

var (
	// ErrMissingColumn is returned when a source lacks a required header.
	ErrMissingColumn = eris.New("missing required column")
	// ErrDuplicateDistrict is returned when a cleaned table repeats a district.
	ErrDuplicateDistrict = eris.New("duplicate district")
)

// DropReason names why a source row did not make it into a cleaned table.
type DropReason string

const (
	DropEmptyDistrict DropReason = "empty_district"
	DropAggregateRow  DropReason = "aggregate_row"
	DropMissingField  DropReason = "missing_required_field"
	DropZeroTotal     DropReason = "zero_total"
)

// Metric is a named aggregate reported alongside a cleaned table.
type Metric struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// Stats records what a cleaner did to its source.
type Stats struct {
	Source         string             `json:"source" yaml:"source"`
	RowsRead       int                `json:"rows_read" yaml:"rows_read"`
	RowsKept       int                `json:"rows_kept" yaml:"rows_kept"`
	Dropped        map[DropReason]int `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	MalformedCells int                `json:"malformed_cells" yaml:"malformed_cells"`
	Metrics        []Metric           `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

func (s *Stats) drop(reason DropReason) {
	if s.Dropped == nil {
		s.Dropped = make(map[DropReason]int)
	}
	s.Dropped[reason]++
}

func (s *Stats) metric(name string, v float64) {
	s.Metrics = append(s.Metrics, Metric{Name: name, Value: v})
}

// parse coerces a cell and counts it as malformed when non-blank text fails
// to become a number.
func (s *Stats) parse(cell string) model.Value {
	v := ParseNumber(cell)
	if v.IsMissing() && strings.TrimSpace(cell) != "" {
		s.MalformedCells++
	}
	return v
}

// Result is a cleaned table plus the cleaner's bookkeeping.
type Result struct {
	Table *model.Table
	Stats Stats
}

// finish enforces district uniqueness and logs the cleaner summary.
func finish(t *model.Table, stats Stats) (*Result, error) {
	if _, err := t.Index(); err != nil {
		if errors.Is(err, model.ErrDuplicateKey) {
			return nil, eris.Wrapf(ErrDuplicateDistrict, "clean: %s: %v", stats.Source, err)
		}
		return nil, eris.Wrapf(err, "clean: %s: index", stats.Source)
	}
	stats.RowsKept = t.Len()

	fields := []zap.Field{
		zap.String("source", stats.Source),
		zap.Int("rows_read", stats.RowsRead),
		zap.Int("rows_kept", stats.RowsKept),
		zap.Int("malformed_cells", stats.MalformedCells),
	}
	for reason, n := range stats.Dropped {
		fields = append(fields, zap.Int("dropped_"+string(reason), n))
	}
	zap.L().Info("source cleaned", fields...)

	return &Result{Table: t, Stats: stats}, nil
}

func missingColumn(source, col string) error {
	return eris.Wrapf(ErrMissingColumn, "clean: %s: %q", source, col)
}

// mean averages the numeric cells of col, skipping missing ones.
func mean(t *model.Table, col string) (float64, bool) {
	var sum float64
	var n int
	for _, r := range t.Rows {
		if f, ok := r[col].Float(); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
