// Package filter implements the cascading registry filters: sector and status are
// independent, district depends on both, and a free-text query narrows the result.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/minstroy46-sys/kursk-registry-sub000/schema"
)

// All is the empty selection and disables a filter. Options never contain the
// empty string, so All cannot be mistaken for a value from the data.
const All = ""

// State holds the active selections.
type State struct {
	Sector   string `json:"sector"`
	Status   string `json:"status"`
	District string `json:"district"`
	Query    string `json:"query"`
}

// Normalized trims every selection, so blank ones become All.
func (s State) Normalized() State {
	return State{
		Sector:   selection(s.Sector),
		Status:   selection(s.Status),
		District: selection(s.District),
		Query:    strings.TrimSpace(s.Query),
	}
}

// Reconcile resets selections that are not among opts to All. District is the one
// that usually goes stale, after the sector or status changes; sector and status can
// only go stale after a reload.
func (s State) Reconcile(opts Options) State {
	s = s.Normalized()
	if !contains(opts.Sectors, s.Sector) {
		s.Sector = All
	}
	if !contains(opts.Statuses, s.Status) {
		s.Status = All
	}
	if !contains(opts.Districts, s.District) {
		s.District = All
	}
	return s
}

// Active reports whether any filter narrows the result.
func (s State) Active() bool {
	s = s.Normalized()
	return s.Sector != All || s.Status != All || s.District != All || s.Query != ""
}

// Options are the selectable values for each filter, sorted, without All.
type Options struct {
	Sectors   []string `json:"sectors"`
	Statuses  []string `json:"statuses"`
	Districts []string `json:"districts"`
}

// ComputeOptions collects sectors and statuses over the whole dataset and districts
// over the records that match the selected sector and status.
func ComputeOptions(ds *schema.Dataset, state State) Options {
	state = state.Normalized()

	sectors := newValueSet()
	statuses := newValueSet()
	districts := newValueSet()

	for i := 0; i < ds.Len(); i++ {
		sector := clean(ds.Value(i, schema.Sector))
		status := clean(ds.Value(i, schema.Status))
		sectors.add(sector)
		statuses.add(status)

		if matches(state.Sector, sector) && matches(state.Status, status) {
			districts.add(clean(ds.Value(i, schema.District)))
		}
	}

	return Options{
		Sectors:   sectors.sorted(),
		Statuses:  statuses.sorted(),
		Districts: districts.sorted(),
	}
}

// Apply returns the records matching state in dataset order.
func Apply(ds *schema.Dataset, state State) []schema.Record {
	state = state.Normalized()
	query := strings.ToLower(state.Query)

	out := make([]schema.Record, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		if !matches(state.Sector, clean(ds.Value(i, schema.Sector))) ||
			!matches(state.Status, clean(ds.Value(i, schema.Status))) ||
			!matches(state.District, clean(ds.Value(i, schema.District))) {
			continue
		}
		if query != "" && !matchesQuery(ds, i, query) {
			continue
		}
		out = append(out, ds.Record(i))
	}
	return out
}

var searchFields = []schema.Field{schema.Name, schema.Address, schema.Responsible}

func matchesQuery(ds *schema.Dataset, row int, query string) bool {
	for _, f := range searchFields {
		v := clean(ds.Value(row, f))
		if v != "" && strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}

func matches(selected, value string) bool {
	return selected == All || selected == value
}

func selection(v string) string {
	return strings.TrimSpace(v)
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

func contains(values []string, v string) bool {
	if v == All {
		return true
	}
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

type valueSet map[string]struct{}

func newValueSet() valueSet {
	return make(valueSet)
}

func (s valueSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

// sorted orders values by Russian collation, falling back to byte order for values
// the collator considers equal.
func (s valueSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}

	col := collate.New(language.Russian)
	sort.Slice(out, func(i, j int) bool {
		if c := col.CompareString(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i] < out[j]
	})
	return out
}
