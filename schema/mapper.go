package schema

import (
	"github.com/minstroy46-sys/kursk-registry-sub000/dataset"
)

// Mapping binds every field to a column of a table. It is total over Fields and
// never changes after Map returns it.
type Mapping struct {
	columns     map[Field]string
	synthesized map[Field]bool
}

// Column returns the column bound to f, or "" for an unknown field.
func (m Mapping) Column(f Field) string {
	return m.columns[f]
}

// Synthesized reports whether f had no matching header and was given an empty column.
func (m Mapping) Synthesized(f Field) bool {
	return m.synthesized[f]
}

// Gaps returns the synthesized fields in display order.
func (m Mapping) Gaps() []Field {
	var gaps []Field
	for _, f := range fields {
		if m.synthesized[f] {
			gaps = append(gaps, f)
		}
	}
	return gaps
}

// Fields returns the mapped fields in display order.
func (m Mapping) Fields() []Field {
	out := make([]Field, 0, len(m.columns))
	for _, f := range fields {
		if _, ok := m.columns[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Map resolves every field against the headers of t. Fields without a match get an
// empty column named after their canonical alias. t itself is not modified; the
// returned table carries any synthesized columns.
func Map(t *dataset.Table) (*dataset.Table, Mapping) {
	if t == nil {
		t = dataset.Empty()
	}

	headers := t.Columns()
	m := Mapping{
		columns:     make(map[Field]string, len(fields)),
		synthesized: make(map[Field]bool),
	}

	var missing []string
	for _, f := range fields {
		if column, ok := Resolve(headers, aliases[f]); ok {
			m.columns[f] = column
			continue
		}
		column := Canonical(f)
		m.columns[f] = column
		m.synthesized[f] = true
		missing = append(missing, column)
	}

	if len(missing) == 0 {
		return t, m
	}
	return t.WithColumns("", missing...), m
}
