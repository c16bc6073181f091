package schema

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		candidates []string
		want       string
		found      bool
	}{
		{"exact", []string{"Объект", "Район"}, []string{"Объект", "Наименование"}, "Объект", true},
		{"case and spaces", []string{"  РАЙОН "}, []string{"Район"}, "  РАЙОН ", true},
		{"english alias", []string{"ID", "Status"}, []string{"Статус", "status"}, "Status", true},
		{"exact beats substring", []string{"Адрес объекта", "Объект"}, []string{"Объект"}, "Объект", true},
		{"exact on later candidate beats substring on first", []string{"Сфера деятельности", "Отрасль"},
			[]string{"Сфера", "Отрасль"}, "Отрасль", true},
		{"substring", []string{"Ответственный исполнитель"}, []string{"Ответственный"}, "Ответственный исполнитель", true},
		{"candidate order wins", []string{"Папка", "Ссылка на папку"}, []string{"Ссылка на папку", "Папка"},
			"Ссылка на папку", true},
		{"header order tie-break", []string{"Адрес 1", "Адрес 2"}, []string{"Адрес"}, "Адрес 1", true},
		{"no match", []string{"Объект", "Район"}, []string{"Ссылка на карточку", "card"}, "", false},
		{"no headers", nil, []string{"Объект"}, "", false},
		{"blank candidate ignored", []string{"Объект"}, []string{"  "}, "", false},
		{"compatibility forms", []string{"Ｓｔａｔｕｓ"}, []string{"status"}, "Ｓｔａｔｕｓ", true},
		{"numero sign folds to letters", []string{"№ п/п"}, []string{"no п/п"}, "№ п/п", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.headers, tt.candidates)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_SubstringWeakness(t *testing.T) {
	// Short aliases bind to any header containing them.
	got, ok := Resolve([]string{"Адрес объекта"}, Aliases(Name))
	require.True(t, ok)
	assert.Equal(t, "Адрес объекта", got)
}

func TestResolve_ResultIsAlwaysAHeader(t *testing.T) {
	pool := []string{"Объект", "объект", " Район", "Адрес", "Статус работ", "", "x", "Ссылка", "name", "Card URL"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		headers := pick(rng, pool)
		candidates := pick(rng, pool)

		got, ok := Resolve(headers, candidates)
		if !ok {
			assert.Empty(t, got)
			continue
		}
		assert.Contains(t, headers, got, fmt.Sprintf("headers=%q candidates=%q", headers, candidates))
	}
}

func TestResolve_Deterministic(t *testing.T) {
	headers := []string{"Адрес объекта", "Объект строительства", "Район"}
	first, _ := Resolve(headers, Aliases(Name))
	for i := 0; i < 20; i++ {
		got, _ := Resolve(headers, Aliases(Name))
		assert.Equal(t, first, got)
	}
}

func pick(rng *rand.Rand, pool []string) []string {
	n := rng.Intn(len(pool))
	out := make([]string, n)
	for i := range out {
		out[i] = pool[rng.Intn(len(pool))]
	}
	return out
}
