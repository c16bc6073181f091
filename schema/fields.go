// Package schema maps the free-form headers of a registry export onto the fixed set
// of fields the viewer renders.
//
// Headers in the source spreadsheet are typed by hand and drift over time, so each
// field carries an ordered alias list. Fields without a matching header get an empty
// synthesized column; every consumer can rely on all fields being present.
package schema

// Field identifies a logical attribute of a registry record.
type Field string

const (
	Name        Field = "name"
	Sector      Field = "sector"
	District    Field = "district"
	Address     Field = "address"
	Responsible Field = "responsible"
	Status      Field = "status"
	Works       Field = "works"
	CardURL     Field = "card_url"
	FolderURL   Field = "folder_url"
)

var fields = []Field{Name, Sector, District, Address, Responsible, Status, Works, CardURL, FolderURL}

// aliases lists candidate headers per field in priority order. The first entry is the
// header used when the column has to be synthesized.
var aliases = map[Field][]string{
	Name:        {"Объект", "Наименование объекта", "Наименование", "Название", "name", "object"},
	Sector:      {"Отрасль", "Сфера", "Направление", "sector", "industry"},
	District:    {"Район", "Муниципальное образование", "Муниципальный район", "district", "municipality"},
	Address:     {"Адрес", "Местоположение", "address", "location"},
	Responsible: {"Ответственный", "Ответственное лицо", "Куратор", "responsible", "curator"},
	Status:      {"Статус", "Состояние", "status", "state"},
	Works:       {"Работы", "Виды работ", "Перечень работ", "works", "work"},
	CardURL:     {"Ссылка на карточку", "Карточка", "card_url", "card"},
	FolderURL:   {"Ссылка на папку", "Папка", "folder_url", "folder"},
}

// Fields returns every field in display order.
func Fields() []Field {
	return append([]Field(nil), fields...)
}

// Aliases returns the candidate headers for f, highest priority first.
func Aliases(f Field) []string {
	return append([]string(nil), aliases[f]...)
}

// Canonical returns the header used for a synthesized column of f.
func Canonical(f Field) string {
	if a := aliases[f]; len(a) > 0 {
		return a[0]
	}
	return string(f)
}

// Valid reports whether f is one of Fields.
func (f Field) Valid() bool {
	_, ok := aliases[f]
	return ok
}

func (f Field) String() string {
	return string(f)
}
