package web

import (
	"strings"

	"github.com/minstroy46-sys/kursk-registry-sub000/schema"
)

// Link is an action on a card. Disabled links are rendered as inactive controls.
type Link struct {
	URL     string `json:"url,omitempty"`
	Enabled bool   `json:"enabled"`
}

// Card is the display form of one record.
type Card struct {
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	District    string `json:"district"`
	Address     string `json:"address"`
	Responsible string `json:"responsible"`
	Status      string `json:"status"`
	Works       string `json:"works"`
	CardLink    Link   `json:"card_link"`
	FolderLink  Link   `json:"folder_link"`
}

// NewCard builds the card for rec.
func NewCard(rec schema.Record) Card {
	get := func(f schema.Field) string {
		return strings.TrimSpace(rec.Get(f))
	}

	return Card{
		Name:        get(schema.Name),
		Sector:      get(schema.Sector),
		District:    get(schema.District),
		Address:     get(schema.Address),
		Responsible: get(schema.Responsible),
		Status:      get(schema.Status),
		Works:       get(schema.Works),
		CardLink:    newLink(get(schema.CardURL)),
		FolderLink:  newLink(get(schema.FolderURL)),
	}
}

// NewCards builds cards for records in order.
func NewCards(records []schema.Record) []Card {
	cards := make([]Card, len(records))
	for i, rec := range records {
		cards[i] = NewCard(rec)
	}
	return cards
}

func newLink(raw string) Link {
	if !actionable(raw) {
		return Link{}
	}
	return Link{URL: raw, Enabled: true}
}

// actionable reports whether raw is an absolute http(s) link. Spreadsheet cells often
// hold placeholders like "нет" or "-" instead of a link.
func actionable(raw string) bool {
	lower := strings.ToLower(raw)
	return (strings.HasPrefix(lower, "http://") && len(lower) > len("http://")) ||
		(strings.HasPrefix(lower, "https://") && len(lower) > len("https://"))
}
