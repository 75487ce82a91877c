package importer

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMissingNameColumn aborts the whole upload: without a resolvable name
// column no row can be matched against the catalog.
var ErrMissingNameColumn = errors.New("no product name column found")

// Row is one data row after header normalization, typed once so the
// reconciler never touches raw column indexes. Nil pointers mean the column
// was absent or its value unparsable; on update those fields are left
// untouched, on create they take defaults.
type Row struct {
	Line          int // 1-based file line, header is line 1
	Name          string
	Category      string
	Unit          string
	Stock         *int
	Price         *float64
	OriginalPrice *float64
}

// BuildRows resolves the sheet's headers to canonical fields and converts
// every data row into a typed Row. Returns ErrMissingNameColumn when no
// header normalizes to the name field.
func BuildRows(sheet *Sheet) ([]Row, error) {
	columns := make(map[string]int)
	for i, header := range sheet.Headers {
		canonical := NormalizeHeader(header)
		if _, taken := columns[canonical]; !taken {
			columns[canonical] = i
		}
	}
	if _, ok := columns[FieldName]; !ok {
		return nil, ErrMissingNameColumn
	}

	rows := make([]Row, 0, len(sheet.Rows))
	for i, record := range sheet.Rows {
		row := Row{
			Line:     i + 2,
			Name:     cell(record, columns, FieldName),
			Category: cell(record, columns, FieldCategory),
			Unit:     cell(record, columns, FieldUnit),
		}
		row.Stock = parseIntCell(cell(record, columns, FieldStock))
		row.Price = parseFloatCell(cell(record, columns, FieldPrice))
		row.OriginalPrice = parseFloatCell(cell(record, columns, FieldOriginalPrice))
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(record []string, columns map[string]int, field string) string {
	idx, ok := columns[field]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseIntCell(value string) *int {
	if value == "" {
		return nil
	}
	if num, err := strconv.Atoi(value); err == nil {
		return &num
	}
	// Spreadsheets frequently export integers as "50.0"
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		num := int(f)
		return &num
	}
	return nil
}

func parseFloatCell(value string) *float64 {
	if value == "" {
		return nil
	}
	// Strip currency symbols and thousands separators
	cleaned := strings.NewReplacer("₹", "", "$", "", ",", "").Replace(value)
	if f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64); err == nil {
		return &f
	}
	return nil
}
