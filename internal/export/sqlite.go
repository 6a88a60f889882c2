package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/district-etl/internal/model"
)

// SQLiteSink stores the table in a SQLite database file.
type SQLiteSink struct {
	Path  string
	Table string
}

// NewSQLite returns a sink writing table into the database at path.
func NewSQLite(path, table string) *SQLiteSink {
	return &SQLiteSink{Path: path, Table: table}
}

func (s *SQLiteSink) Name() string   { return "sqlite" }
func (s *SQLiteSink) Target() string { return s.Path }

// Write drops and recreates the table, then inserts every row in one
// transaction.
func (s *SQLiteSink) Write(ctx context.Context, t *model.Table) (int64, error) {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: open")
	}
	defer db.Close()

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return 0, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(s.Table)); err != nil {
		return 0, eris.Wrapf(err, "sqlite: drop %s", s.Table)
	}
	if _, err := tx.ExecContext(ctx, sqliteCreate(s.Table, t)); err != nil {
		return 0, eris.Wrapf(err, "sqlite: create %s", s.Table)
	}

	stmt, err := tx.PrepareContext(ctx, sqliteInsert(s.Table, t.Columns))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	var n int64
	for _, vals := range rowValues(t) {
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert into %s", s.Table)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}

	zap.L().Info("sqlite sink written",
		zap.String("path", s.Path),
		zap.String("table", s.Table),
		zap.Int64("rows", n),
	)
	return n, nil
}

func sqliteCreate(table string, t *model.Table) string {
	text := textColumns(t)
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		typ := "REAL"
		if text[c] {
			typ = "TEXT"
		}
		defs[i] = quoteIdent(c) + " " + typ
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func sqliteInsert(table string, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(quoted, ", "), marks)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
