// Package dataset fetches the registry export and turns it into an immutable Table.
//
// Loading is fail-soft: Loader.Load never returns an error. An unreachable or
// unparsable source yields an empty table, which callers present as "data unavailable".
package dataset

// Table is an ordered set of named columns and positional rows. Every row holds
// exactly one cell per column. A Table is never modified after construction; use
// WithColumn to derive a new one.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a table, padding short rows with empty cells and cutting long ones.
// Columns should be unique; on duplicates the first one wins for name lookups.
func NewTable(columns []string, rows [][]string) *Table {
	cols := append([]string(nil), columns...)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, len(cols))
		copy(r, row)
		out[i] = r
	}

	return &Table{columns: cols, index: index, rows: out}
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return &Table{index: map[string]int{}}
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return len(t.rows) == 0
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Value returns the cell of row in the named column, or "" when either is out of range.
func (t *Table) Value(row int, column string) string {
	i, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.Cell(row, i)
}

// Cell returns the cell at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.columns) {
		return ""
	}
	return t.rows[row][col]
}

// Row returns a copy of the cells of row i.
func (t *Table) Row(i int) []string {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return append([]string(nil), t.rows[i]...)
}

// WithColumn returns a new table with an extra column filled with fill.
// The receiver is left untouched.
func (t *Table) WithColumn(name, fill string) *Table {
	return t.WithColumns(fill, name)
}

// WithColumns returns a new table with the named columns appended, every cell set
// to fill. The receiver is left untouched.
func (t *Table) WithColumns(fill string, names ...string) *Table {
	cols := append(t.Columns(), names...)
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		r := make([]string, len(cols))
		copy(r, row)
		for j := len(row); j < len(r); j++ {
			r[j] = fill
		}
		rows[i] = r
	}

	index := make(map[string]int, len(cols))
	for k, v := range t.index {
		index[k] = v
	}
	for i := len(t.columns); i < len(cols); i++ {
		if _, dup := index[cols[i]]; !dup {
			index[cols[i]] = i
		}
	}

	return &Table{columns: cols, index: index, rows: rows}
}
