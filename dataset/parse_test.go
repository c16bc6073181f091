package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/testutil"
)

func TestParse_CommaExport(t *testing.T) {
	table, err := Parse([]byte(testutil.RegistryCSV))
	require.NoError(t, err)

	assert.Equal(t, 9, len(table.Columns()))
	assert.Equal(t, 4, table.Len(), "blank row dropped")
	assert.Equal(t, "ул. Ленина, 1", table.Value(0, "Адрес"))
	assert.Equal(t, "", table.Value(1, "Ссылка на папку"))
	assert.Equal(t, "ФАП Поныри", table.Value(3, "Объект"))
}

func TestParse_SemicolonExport(t *testing.T) {
	table, err := Parse([]byte(testutil.RegistrySemicolonCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Наименование объекта", "Сфера", "Муниципальный район", "Адрес", "Куратор", "Состояние"},
		table.Columns())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "Льговский", table.Value(1, "Муниципальный район"))
}

func TestParse_SemicolonWithCommasInCells(t *testing.T) {
	body := "Объект;Адрес\nМост;ул. Ленина, 1\n"

	table, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Объект", "Адрес"}, table.Columns())
	assert.Equal(t, "ул. Ленина, 1", table.Value(0, "Адрес"))
}

func TestParse_HeaderCleanup(t *testing.T) {
	body := "\ufeff Объект ,,Статус,Статус,Статус\nА,x,1,2,3\n"

	table, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Объект", "Unnamed: 1", "Статус", "Статус.1", "Статус.2"}, table.Columns())
	assert.Equal(t, "3", table.Value(0, "Статус.2"))
}

func TestParse_CellCleanup(t *testing.T) {
	body := "Объект,Статус,Адрес\n  Мост  ,nan,None\nШкола,#N/A,<NA>\n"

	table, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Мост", "", ""}, table.Row(0))
	assert.Equal(t, []string{"Школа", "", ""}, table.Row(1))
}

func TestParse_ShortRowsPadded(t *testing.T) {
	table, err := Parse([]byte("a,b,c\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "", ""}, table.Row(0))
}

func TestParse_TrailingEmptyCellsAllowed(t *testing.T) {
	table, err := Parse([]byte("a,b\n1,2,,\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, table.Row(0))
}

func TestParse_Windows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("Объект,Район\nМост,Курский\n")
	require.NoError(t, err)

	table, err := Parse([]byte(encoded))
	require.NoError(t, err)
	assert.Equal(t, []string{"Объект", "Район"}, table.Columns())
	assert.Equal(t, "Курский", table.Value(0, "Район"))
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"whitespace", "  \n\n"},
		{"extra cells in both dialects", "a\n1,2;3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	table, err := Parse([]byte("Объект,Район\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, len(table.Columns()))
	assert.True(t, table.IsEmpty())
}
