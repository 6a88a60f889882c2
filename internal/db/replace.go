package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Column is a target column and its SQL type.
type Column struct {
	Name string
	Type string
}

// ReplaceTable drops and recreates table with the given columns, then
// COPYs rows into it. All of it happens in one transaction so readers never
// see a half-loaded table.
func ReplaceTable(ctx context.Context, pool Pool, table string, columns []Column, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+sanitizeTable(table)); err != nil {
		return 0, eris.Wrapf(err, "db: replace: drop %s", table)
	}
	if _, err := tx.Exec(ctx, createTableSQL(table, columns)); err != nil {
		return 0, eris.Wrapf(err, "db: replace: create %s", table)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	n, err := CopyFrom(ctx, tx, table, names, rows)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}
	return n, nil
}

func createTableSQL(table string, columns []Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("%s %s", pgx.Identifier{c.Name}.Sanitize(), c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", sanitizeTable(table), strings.Join(defs, ", "))
}
