package schema

import (
	"github.com/minstroy46-sys/kursk-registry-sub000/dataset"
)

// Dataset is a table together with its field mapping. Rendering and filtering code
// reads records only through fields, never by raw column name.
type Dataset struct {
	table   *dataset.Table
	mapping Mapping
	index   map[Field]int
}

// NewDataset maps t and returns the resulting dataset. A nil table yields an empty
// dataset whose mapping is still total.
func NewDataset(t *dataset.Table) *Dataset {
	mapped, mapping := Map(t)

	index := make(map[Field]int, len(fields))
	for _, f := range fields {
		if i, ok := mapped.ColumnIndex(mapping.Column(f)); ok {
			index[f] = i
		}
	}

	return &Dataset{table: mapped, mapping: mapping, index: index}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return d.table.Len()
}

// IsEmpty reports whether the dataset has no records.
func (d *Dataset) IsEmpty() bool {
	return d.table.IsEmpty()
}

// Mapping returns the field mapping.
func (d *Dataset) Mapping() Mapping {
	return d.mapping
}

// Table returns the mapped table, including synthesized columns.
func (d *Dataset) Table() *dataset.Table {
	return d.table
}

// Value returns field f of record i.
func (d *Dataset) Value(i int, f Field) string {
	col, ok := d.index[f]
	if !ok {
		return ""
	}
	return d.table.Cell(i, col)
}

// Record returns the record at row i.
func (d *Dataset) Record(i int) Record {
	return Record{ds: d, row: i}
}

// Records returns every record in table order.
func (d *Dataset) Records() []Record {
	out := make([]Record, d.Len())
	for i := range out {
		out[i] = Record{ds: d, row: i}
	}
	return out
}

// Record is one row of a Dataset.
type Record struct {
	ds  *Dataset
	row int
}

// Get returns the value of f, "" when absent.
func (r Record) Get(f Field) string {
	if r.ds == nil {
		return ""
	}
	return r.ds.Value(r.row, f)
}

// Index returns the row position of the record in its dataset.
func (r Record) Index() int {
	return r.row
}
