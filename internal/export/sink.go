package export

import (
	"context"

	"github.com/sells-group/district-etl/internal/model"
)

// Sink receives the final table after the CSV is written.
type Sink interface {
	Name() string
	// Target identifies where rows go (file path or table name).
	Target() string
	// Write replaces the sink's copy of the table and returns the rows
	// stored.
	Write(ctx context.Context, t *model.Table) (int64, error)
}

// SinkResult records one sink write for the run report.
type SinkResult struct {
	Sink   string `json:"sink" yaml:"sink"`
	Target string `json:"target" yaml:"target"`
	Rows   int64  `json:"rows" yaml:"rows"`
}

// textColumns reports which columns hold text. A column with no text cells
// is numeric.
func textColumns(t *model.Table) map[string]bool {
	text := map[string]bool{model.KeyColumn: true}
	for _, r := range t.Rows {
		for c, v := range r {
			if v.Kind() == model.KindText {
				text[c] = true
			}
		}
	}
	return text
}

func rowValues(t *model.Table) [][]any {
	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			vals[j] = r.Get(c).Any()
		}
		rows[i] = vals
	}
	return rows
}
