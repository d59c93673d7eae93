package table

import (
	"fmt"
	"slices"

	"github.com/rendis/gridplaces/internal/model"
)

// Table is an ordered set of string rows under a named column list.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New returns an empty table with the given columns.
func New(columns []string) *Table {
	t := &Table{columns: slices.Clone(columns)}
	t.buildIndex()
	return t
}

// FromPlaces builds a table under Columns from normalized rows.
func FromPlaces(places []model.PlaceRow) *Table {
	t := New(Columns)
	for _, p := range places {
		t.rows = append(t.rows, p.Record())
	}
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

func (t *Table) Columns() []string { return slices.Clone(t.columns) }

func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th record. The slice must not be modified.
func (t *Table) Row(i int) []string { return t.rows[i] }

// Value returns the cell at row i, column col, or "" if the column is unknown.
func (t *Table) Value(i int, col string) string {
	j, ok := t.index[col]
	if !ok {
		return ""
	}
	return t.rows[i][j]
}

// Append adds a record. Its length must match the column count.
func (t *Table) Append(record []string) error {
	if len(record) != len(t.columns) {
		return fmt.Errorf("record has %d fields, table has %d columns", len(record), len(t.columns))
	}
	t.rows = append(t.rows, slices.Clone(record))
	return nil
}

// Reindex returns a copy laid out under schema. Missing columns are filled
// with "", columns not in schema are dropped.
func (t *Table) Reindex(schema []string) *Table {
	out := New(schema)
	src := make([]int, len(schema))
	for i, c := range schema {
		j, ok := t.index[c]
		if !ok {
			j = -1
		}
		src[i] = j
	}
	out.rows = make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		rec := make([]string, len(schema))
		for i, j := range src {
			if j >= 0 {
				rec[i] = r[j]
			}
		}
		out.rows = append(out.rows, rec)
	}
	return out
}

// Select reorders the table to schema and fails with ErrSchemaMismatch if any
// schema column is absent.
func (t *Table) Select(schema []string) (*Table, error) {
	var missing []string
	for _, c := range schema {
		if _, ok := t.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %v", ErrSchemaMismatch, missing)
	}
	return t.Reindex(schema), nil
}

// Concat appends b's rows after a's. Both tables must share the same columns.
func Concat(a, b *Table) (*Table, error) {
	if !slices.Equal(a.columns, b.columns) {
		return nil, fmt.Errorf("%w: cannot concat %d and %d columns", ErrSchemaMismatch, len(a.columns), len(b.columns))
	}
	out := New(a.columns)
	out.rows = make([][]string, 0, len(a.rows)+len(b.rows))
	out.rows = append(out.rows, a.rows...)
	out.rows = append(out.rows, b.rows...)
	return out, nil
}

// DedupeKeepLast keeps, for every value of key, only its last occurrence.
// Surviving rows stay in the order of their kept occurrence. It returns the
// deduplicated table and the number of rows dropped.
func (t *Table) DedupeKeepLast(key string) (*Table, int, error) {
	j, ok := t.index[key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: no %q column", ErrSchemaMismatch, key)
	}

	last := make(map[string]int, len(t.rows))
	for i, r := range t.rows {
		last[r[j]] = i
	}

	out := New(t.columns)
	out.rows = make([][]string, 0, len(last))
	for i, r := range t.rows {
		if last[r[j]] == i {
			out.rows = append(out.rows, r)
		}
	}
	return out, len(t.rows) - len(out.rows), nil
}
