package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTable_NormalizesRowWidth(t *testing.T) {
	table := NewTable([]string{"a", "b"}, [][]string{{"1"}, {"1", "2", "3"}})

	assert.Equal(t, []string{"1", ""}, table.Row(0))
	assert.Equal(t, []string{"1", "2"}, table.Row(1))
	assert.Nil(t, table.Row(5))
}

func TestTable_Accessors(t *testing.T) {
	table := NewTable([]string{"a", "b"}, [][]string{{"1", "2"}})

	assert.Equal(t, "2", table.Value(0, "b"))
	assert.Equal(t, "", table.Value(0, "missing"))
	assert.Equal(t, "", table.Value(3, "a"))
	assert.Equal(t, "", table.Cell(0, -1))

	i, ok := table.ColumnIndex("b")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	cols := table.Columns()
	cols[0] = "changed"
	assert.Equal(t, "a", table.Columns()[0])

	row := table.Row(0)
	row[0] = "changed"
	assert.Equal(t, "1", table.Cell(0, 0))
}

func TestTable_WithColumnLeavesReceiver(t *testing.T) {
	base := NewTable([]string{"a"}, [][]string{{"1"}, {"2"}})
	derived := base.WithColumn("b", "")

	assert.Equal(t, []string{"a"}, base.Columns())
	assert.Equal(t, []string{"1"}, base.Row(0))
	assert.Equal(t, []string{"a", "b"}, derived.Columns())
	assert.Equal(t, []string{"2", ""}, derived.Row(1))
	assert.Equal(t, 2, derived.Len())
}

func TestEmpty(t *testing.T) {
	table := Empty()
	assert.True(t, table.IsEmpty())
	assert.Empty(t, table.Columns())
	assert.Equal(t, "", table.Value(0, "a"))

	derived := table.WithColumn("Объект", "")
	assert.Equal(t, []string{"Объект"}, derived.Columns())
	assert.Equal(t, 0, derived.Len())
}
