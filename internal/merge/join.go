package merge

import (
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-etl/internal/model"
)

// JoinKind is the join semantics applied at a merge step.
type JoinKind string

const (
	// Left keeps every left row; right columns are missing when unmatched.
	Left JoinKind = "left"
	// Inner keeps only left rows with a right match.
	Inner JoinKind = "inner"
)

// JoinStep records one join so that key misses are visible.
type JoinStep struct {
	Right          string   `json:"right" yaml:"right"`
	Kind           JoinKind `json:"kind" yaml:"kind"`
	LeftRows       int      `json:"left_rows" yaml:"left_rows"`
	RightRows      int      `json:"right_rows" yaml:"right_rows"`
	Matched        int      `json:"matched" yaml:"matched"`
	ResultRows     int      `json:"result_rows" yaml:"result_rows"`
	UnmatchedLeft  []string `json:"unmatched_left,omitempty" yaml:"unmatched_left,omitempty"`
	UnmatchedRight []string `json:"unmatched_right,omitempty" yaml:"unmatched_right,omitempty"`
	DroppedColumns []string `json:"dropped_columns,omitempty" yaml:"dropped_columns,omitempty"`
}

// join combines left and right on model.KeyColumn. Result rows follow left
// order. A right column whose name the left side already has is dropped.
func join(left, right *model.Table, kind JoinKind) (*model.Table, JoinStep, error) {
	step := JoinStep{
		Right:     right.Name,
		Kind:      kind,
		LeftRows:  left.Len(),
		RightRows: right.Len(),
	}

	rightIdx, err := right.Index()
	if err != nil {
		return nil, step, eris.Wrapf(err, "merge: index %s", right.Name)
	}

	var extra []string
	for _, c := range right.Columns {
		if c == model.KeyColumn {
			continue
		}
		if left.HasColumn(c) {
			step.DroppedColumns = append(step.DroppedColumns, c)
			continue
		}
		extra = append(extra, c)
	}

	out := model.NewTable(left.Name, append(slices.Clone(left.Columns), extra...)...)
	seen := make(map[string]bool, left.Len())
	for _, lr := range left.Rows {
		key := lr.Key()
		seen[key] = true

		row := make(model.Row, len(out.Columns))
		for c, v := range lr {
			row[c] = v
		}

		i, ok := rightIdx[key]
		if !ok {
			step.UnmatchedLeft = append(step.UnmatchedLeft, key)
			if kind == Inner {
				continue
			}
		} else {
			step.Matched++
			rr := right.Rows[i]
			for _, c := range extra {
				if v, has := rr[c]; has {
					row[c] = v
				}
			}
		}
		out.Append(row)
	}

	for _, rr := range right.Rows {
		if !seen[rr.Key()] {
			step.UnmatchedRight = append(step.UnmatchedRight, rr.Key())
		}
	}
	step.ResultRows = out.Len()

	log := zap.L().With(zap.String("right", right.Name), zap.String("kind", string(kind)))
	log.Info("join complete",
		zap.Int("left_rows", step.LeftRows),
		zap.Int("right_rows", step.RightRows),
		zap.Int("matched", step.Matched),
		zap.Int("result_rows", step.ResultRows),
	)
	if len(step.UnmatchedLeft) > 0 {
		log.Info("left districts without a match", zap.Strings("districts", step.UnmatchedLeft))
	}
	if len(step.UnmatchedRight) > 0 {
		log.Warn("right districts without a match", zap.Strings("districts", step.UnmatchedRight))
	}
	if len(step.DroppedColumns) > 0 {
		log.Warn("dropped colliding right columns", zap.Strings("columns", step.DroppedColumns))
	}

	return out, step, nil
}
