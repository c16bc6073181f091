package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// missingMarkers are spreadsheet placeholders for an absent value.
var missingMarkers = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"<na>": {},
	"#n/a": {},
}

// Parse decodes a delimited export. Comma is tried first, then semicolon.
func Parse(data []byte) (*Table, error) {
	text := decode(data)
	if strings.TrimSpace(text) == "" {
		return nil, errors.WrapInvalid(errors.ErrEmptySource, "dataset", "Parse", "read body")
	}

	table, commaErr := parseDelimited(text, ',')
	if commaErr == nil && !semicolonExport(table) {
		return table, nil
	}

	table, semiErr := parseDelimited(text, ';')
	if semiErr == nil {
		return table, nil
	}

	if commaErr == nil {
		commaErr = fmt.Errorf("single column header contains ';'")
	}
	return nil, errors.WrapInvalid(
		fmt.Errorf("%w: comma: %v; semicolon: %v", errors.ErrParsingFailed, commaErr, semiErr),
		"dataset", "Parse", "delimited decode")
}

// decode returns the body as NFC-normalized UTF-8. Bodies that are not valid UTF-8
// are taken to be Windows-1251, the usual encoding of regional spreadsheet exports.
func decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		if decoded, err := charmap.Windows1251.NewDecoder().Bytes(data); err == nil {
			data = decoded
		}
	}
	return norm.NFC.String(string(data))
}

// semicolonExport catches a semicolon file that the comma reader swallowed whole.
func semicolonExport(t *Table) bool {
	cols := t.Columns()
	return len(cols) == 1 && strings.Contains(cols[0], ";")
}

func parseDelimited(text string, comma rune) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ErrEmptySource
	}
	if err != nil {
		return nil, err
	}
	columns := headerNames(header)

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make([]string, len(columns))
		for i, cell := range record {
			value := cleanCell(cell)
			if i >= len(columns) {
				if value != "" {
					line, _ := reader.FieldPos(0)
					return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(columns), len(record))
				}
				continue
			}
			row[i] = value
		}

		if blankRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	return NewTable(columns, rows), nil
}

// headerNames trims headers, names blank ones after their position and suffixes
// repeated names with .1, .2, ...
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	suffix := make(map[string]int)
	for i, h := range raw {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for used[name] {
			suffix[base]++
			name = base + "." + strconv.Itoa(suffix[base])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	if _, missing := missingMarkers[strings.ToLower(v)]; missing {
		return ""
	}
	return v
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
