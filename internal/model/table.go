// Package model defines the tabular types shared by the cleaners, the merger,
// and the exporters.
package model

import (
	"slices"

	"github.com/rotisserie/eris"
)

// KeyColumn is the join key shared by every cleaned table.
const KeyColumn = "District"

// ErrDuplicateKey is returned when a table holds the same key twice.
var ErrDuplicateKey = eris.New("duplicate key")

// Raw is a delimited source as read from disk, before any cleaning.
type Raw struct {
	Source  string     `json:"source"`
	Path    string     `json:"path,omitempty"`
	Header  []string   `json:"header"`
	Records [][]string `json:"records"`
}

// ColumnIndex maps each header name to its position. Later duplicates win.
func (r *Raw) ColumnIndex() map[string]int {
	m := make(map[string]int, len(r.Header))
	for i, col := range r.Header {
		m[col] = i
	}
	return m
}

// Row is one table row keyed by column name. Absent columns read as Missing.
type Row map[string]Value

// Get returns the named cell.
func (r Row) Get(col string) Value {
	return r[col]
}

// Key returns the row's district key.
func (r Row) Key() string {
	return r[KeyColumn].Str()
}

// ColumnCount pairs a column with a count.
type ColumnCount struct {
	Column string `json:"column" yaml:"column"`
	Count  int    `json:"count" yaml:"count"`
}

// Table is an ordered set of columns and rows.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: slices.Clone(columns)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether col is one of the table's columns.
func (t *Table) HasColumn(col string) bool {
	return slices.Contains(t.Columns, col)
}

// Append adds a row. Cells for columns the table does not declare are kept
// on the row but ignored by Select and the writers.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Keys returns the key of every row in order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		keys[i] = r.Key()
	}
	return keys
}

// Index maps each key to its row position. It fails on duplicate keys.
func (t *Table) Index() (map[string]int, error) {
	idx := make(map[string]int, len(t.Rows))
	for i, r := range t.Rows {
		k := r.Key()
		if _, dup := idx[k]; dup {
			return nil, eris.Wrapf(ErrDuplicateKey, "table %s: %q", t.Name, k)
		}
		idx[k] = i
	}
	return idx, nil
}

// Column returns every cell of col in row order.
func (t *Table) Column(col string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// Select projects the table onto cols in the given order. Columns the table
// does not have are skipped.
func (t *Table) Select(cols []string) *Table {
	var kept []string
	for _, c := range cols {
		if t.HasColumn(c) {
			kept = append(kept, c)
		}
	}

	out := NewTable(t.Name, kept...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := make(Row, len(kept))
		for _, c := range kept {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// MissingCounts returns, in column order, every column with at least one
// missing cell.
func (t *Table) MissingCounts() []ColumnCount {
	var out []ColumnCount
	for _, c := range t.Columns {
		n := 0
		for _, r := range t.Rows {
			if r[c].IsMissing() {
				n++
			}
		}
		if n > 0 {
			out = append(out, ColumnCount{Column: c, Count: n})
		}
	}
	return out
}
