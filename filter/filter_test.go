package filter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minstroy46-sys/kursk-registry-sub000/dataset"
	"github.com/minstroy46-sys/kursk-registry-sub000/schema"
	"github.com/minstroy46-sys/kursk-registry-sub000/testutil"
)

func scenarioDataset() *schema.Dataset {
	table := dataset.NewTable(
		[]string{"name", "sector", "district", "address", "status"},
		[][]string{
			{"Bridge A", "Roads", "North", "Main St 1", "In progress"},
			{"School B", "Education", "South", "Oak Ave 2", "Done"},
		})
	return schema.NewDataset(table)
}

func registryDataset(t *testing.T) *schema.Dataset {
	t.Helper()
	table, err := dataset.Parse([]byte(testutil.RegistryCSV))
	require.NoError(t, err)
	return schema.NewDataset(table)
}

func names(records []schema.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Get(schema.Name)
	}
	return out
}

func indexes(records []schema.Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Index()
	}
	return out
}

func TestApply_Scenario(t *testing.T) {
	ds := scenarioDataset()

	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"sector", State{Sector: "Roads"}, []string{"Bridge A"}},
		{"query on address", State{Query: "oak"}, []string{"School B"}},
		{"sector and query", State{Sector: "Roads", Query: "oak"}, []string{}},
		{"status", State{Status: "Done"}, []string{"School B"}},
		{"district", State{District: "North"}, []string{"Bridge A"}},
		{"padded selection", State{Sector: "  Roads ", Query: "  "}, []string{"Bridge A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Apply(ds, tt.state))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_AllReturnsEverythingInOrder(t *testing.T) {
	ds := registryDataset(t)

	for _, state := range []State{{}, {Sector: All, Status: All, District: All}} {
		got := indexes(Apply(ds, state))
		assert.Equal(t, []int{0, 1, 2, 3}, got)
	}
}

func TestApply_Idempotent(t *testing.T) {
	ds := registryDataset(t)
	states := []State{
		{},
		{Sector: "Образование"},
		{Status: "В работе", Query: "ул"},
		{District: "Курский", Query: "иванов"},
	}

	for _, s := range states {
		first := indexes(Apply(ds, s))
		second := indexes(Apply(ds, s))
		assert.Empty(t, cmp.Diff(first, second))
	}
}

func TestApply_QueryCaseInsensitive(t *testing.T) {
	ds := scenarioDataset()
	assert.Equal(t, names(Apply(ds, State{Query: "school"})), names(Apply(ds, State{Query: "SCHOOL"})))

	reg := registryDataset(t)
	lower := indexes(Apply(reg, State{Query: "школа"}))
	upper := indexes(Apply(reg, State{Query: "ШКОЛА"}))
	assert.Equal(t, []int{1}, lower)
	assert.Equal(t, lower, upper)
}

func TestApply_QueryFields(t *testing.T) {
	ds := registryDataset(t)

	assert.Equal(t, []int{0}, indexes(Apply(ds, State{Query: "иванов"})), "responsible")
	assert.Equal(t, []int{2}, indexes(Apply(ds, State{Query: "победы"})), "address")
	assert.Empty(t, Apply(ds, State{Query: "капремонт"}), "works is not searched")
}

func TestApply_EmptyDataset(t *testing.T) {
	ds := schema.NewDataset(dataset.Empty())
	assert.Empty(t, Apply(ds, State{Sector: "Roads", Query: "x"}))
	assert.Equal(t, Options{Sectors: []string{}, Statuses: []string{}, Districts: []string{}},
		ComputeOptions(ds, State{}))
}

func TestComputeOptions(t *testing.T) {
	ds := registryDataset(t)

	opts := ComputeOptions(ds, State{})
	assert.Equal(t, []string{"Дороги", "Здравоохранение", "Образование"}, opts.Sectors)
	assert.Equal(t, []string{"В работе", "Завершено", "Проектирование"}, opts.Statuses)
	assert.Equal(t, []string{"Железногорский", "Курский", "Поныровский"}, opts.Districts)

	opts = ComputeOptions(ds, State{Sector: "Образование"})
	assert.Equal(t, []string{"Железногорский", "Курский"}, opts.Districts)
	assert.Len(t, opts.Sectors, 3, "sectors ignore the sector selection")

	opts = ComputeOptions(ds, State{Sector: "Образование", Status: "В работе"})
	assert.Equal(t, []string{"Курский"}, opts.Districts)
}

func TestComputeOptions_DistrictsNarrowMonotonically(t *testing.T) {
	ds := registryDataset(t)
	full := ComputeOptions(ds, State{})

	for _, sector := range append([]string{All}, full.Sectors...) {
		bySector := ComputeOptions(ds, State{Sector: sector})
		assert.Subset(t, full.Districts, bySector.Districts)

		for _, status := range full.Statuses {
			narrowed := ComputeOptions(ds, State{Sector: sector, Status: status})
			assert.Subset(t, bySector.Districts, narrowed.Districts)
			assert.LessOrEqual(t, len(narrowed.Districts), len(bySector.Districts))
		}
	}
}

func TestComputeOptions_SkipsBlankAndTrims(t *testing.T) {
	table := dataset.NewTable([]string{"Отрасль", "Статус", "Район"}, [][]string{
		{" Дороги ", "", "Курский"},
		{"Дороги", "В работе", " "},
		{"", "В работе", "Курский "},
	})
	opts := ComputeOptions(schema.NewDataset(table), State{})

	assert.Equal(t, []string{"Дороги"}, opts.Sectors)
	assert.Equal(t, []string{"В работе"}, opts.Statuses)
	assert.Equal(t, []string{"Курский"}, opts.Districts)
}

func TestComputeOptions_CollationOrder(t *testing.T) {
	table := dataset.NewTable([]string{"Отрасль"}, [][]string{
		{"ёлки"}, {"Жильё"}, {"еда"}, {"Благоустройство"}, {"благоустройство"},
	})
	got := ComputeOptions(schema.NewDataset(table), State{}).Sectors

	require.Len(t, got, 5)
	pos := func(v string) int {
		for i, s := range got {
			if s == v {
				return i
			}
		}
		return -1
	}
	assert.Less(t, pos("еда"), pos("ёлки"))
	assert.Less(t, pos("ёлки"), pos("Жильё"), "ё sorts with е, not after я")
	assert.Less(t, pos("благоустройство"), pos("еда"))
}

func TestApply_ValueSpelledAll(t *testing.T) {
	table := dataset.NewTable(
		[]string{"name", "sector", "district", "status"},
		[][]string{
			{"Depot", "All", "North", "Done"},
			{"Clinic", "Health", "South", "Done"},
		})
	ds := schema.NewDataset(table)

	state := State{Sector: "All"}.Reconcile(ComputeOptions(ds, State{Sector: "All"}))
	assert.Equal(t, "All", state.Sector)
	assert.True(t, state.Active())
	assert.Equal(t, []string{"Depot"}, names(Apply(ds, state)))
	assert.Equal(t, []string{"North"}, ComputeOptions(ds, state).Districts)
}

func TestState_Reconcile(t *testing.T) {
	opts := Options{
		Sectors:   []string{"Дороги"},
		Statuses:  []string{"В работе"},
		Districts: []string{"Курский"},
	}

	got := State{Sector: "Дороги", Status: "Снят", District: "Льговский", Query: " мост "}.Reconcile(opts)
	assert.Equal(t, State{Sector: "Дороги", Status: All, District: All, Query: "мост"}, got)

	kept := State{Sector: "Дороги", Status: "В работе", District: "Курский"}.Reconcile(opts)
	assert.Equal(t, "Курский", kept.District)
}

func TestState_CascadingReset(t *testing.T) {
	ds := registryDataset(t)

	state := State{District: "Железногорский"}
	state.Sector = "Здравоохранение"
	state = state.Reconcile(ComputeOptions(ds, state))

	assert.Equal(t, All, state.District)
	assert.Equal(t, []int{3}, indexes(Apply(ds, state)))
}

func TestState_Active(t *testing.T) {
	assert.False(t, State{}.Active())
	assert.False(t, State{Sector: All, Query: "  "}.Active())
	assert.True(t, State{Query: "мост"}.Active())
	assert.True(t, State{District: "Курский"}.Active())
}

func TestState_NormalizedIsStable(t *testing.T) {
	s := State{Sector: " a ", Status: "", District: "\t", Query: " q "}.Normalized()
	assert.Equal(t, s, s.Normalized())
	assert.False(t, strings.HasPrefix(s.Sector, " "))
}
