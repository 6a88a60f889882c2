package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/district-etl/internal/db"
	"github.com/sells-group/district-etl/internal/model"
)

// PostgresSink stores the table in PostgreSQL using COPY.
type PostgresSink struct {
	Pool  db.Pool
	Table string
}

// NewPostgres returns a sink writing table through pool.
func NewPostgres(pool db.Pool, table string) *PostgresSink {
	return &PostgresSink{Pool: pool, Table: table}
}

func (s *PostgresSink) Name() string   { return "postgres" }
func (s *PostgresSink) Target() string { return s.Table }

// Write replaces the table and COPYs every row into it.
func (s *PostgresSink) Write(ctx context.Context, t *model.Table) (int64, error) {
	n, err := db.ReplaceTable(ctx, s.Pool, s.Table, PostgresColumns(t), rowValues(t))
	if err != nil {
		return 0, err
	}

	zap.L().Info("postgres sink written", zap.String("table", s.Table), zap.Int64("rows", n))
	return n, nil
}

// PostgresColumns maps table columns to TEXT or DOUBLE PRECISION.
func PostgresColumns(t *model.Table) []db.Column {
	text := textColumns(t)
	cols := make([]db.Column, len(t.Columns))
	for i, c := range t.Columns {
		typ := "DOUBLE PRECISION"
		if text[c] {
			typ = "TEXT"
		}
		cols[i] = db.Column{Name: c, Type: typ}
	}
	return cols
}
