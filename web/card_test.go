package web

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minstroy46-sys/kursk-registry-sub000/dataset"
	"github.com/minstroy46-sys/kursk-registry-sub000/schema"
)

func TestNewCard(t *testing.T) {
	ds := schema.NewDataset(dataset.NewTable(
		[]string{"Объект", "Район", "Ссылка на карточку", "Ссылка на папку"},
		[][]string{{" Мост ", "Курский", "https://cards.example/1", "нет"}},
	))

	card := NewCard(ds.Record(0))
	assert.Equal(t, "Мост", card.Name)
	assert.Equal(t, "Курский", card.District)
	assert.Equal(t, "", card.Sector, "synthesized field renders empty")
	assert.Equal(t, Link{URL: "https://cards.example/1", Enabled: true}, card.CardLink)
	assert.Equal(t, Link{}, card.FolderLink)
}

func TestActionable(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://cards.example/1", true},
		{"http://cards.example/1", true},
		{"HTTPS://CARDS.EXAMPLE/1", true},
		{"", false},
		{"-", false},
		{"нет", false},
		{"www.example.com", false},
		{"ftp://files.example/1", false},
		{"javascript:alert(1)", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, actionable(tt.url))
		})
	}
}

func TestNewCards_PreservesOrder(t *testing.T) {
	ds := schema.NewDataset(dataset.NewTable([]string{"Объект"}, [][]string{{"b"}, {"a"}, {"c"}}))
	cards := NewCards(ds.Records())

	assert.Equal(t, []string{"b", "a", "c"}, []string{cards[0].Name, cards[1].Name, cards[2].Name})
	assert.Empty(t, NewCards(nil))
}
