// Package importer implements the inventory upload pipeline: spreadsheet
// parsing, header normalization and reconciliation of incoming rows against
// the existing catalog into minimal update/create instructions.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is a parsed spreadsheet: one header row plus data rows.
type Sheet struct {
	Headers []string
	Rows    [][]string
}

// ParseCSV parses CSV content into a Sheet. Headers are lower-cased and
// trimmed. An empty file yields an empty Sheet rather than an error; the
// caller treats zero rows as a validation failure.
// LazyQuotes accepts the loosely-quoted exports real spreadsheet tools
// produce, and variable field counts keep one short row from aborting the
// whole file.
func ParseCSV(file io.Reader) (*Sheet, error) {
	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return &Sheet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaderRow(headers)

	sheet := &Sheet{Headers: headers}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row %d: %w", len(sheet.Rows)+2, err)
		}
		if isBlankRecord(record) {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		sheet.Rows = append(sheet.Rows, record)
	}

	return sheet, nil
}

// ParseXLSX parses the first worksheet of an Excel file into a Sheet.
func ParseXLSX(file io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Sheet{}, nil
	}

	sheetName := sheets[0]
	// Prefer a "Products" sheet if one exists (the template ships one)
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) == 0 {
		return &Sheet{}, nil
	}

	headers := excelRows[0]
	normalizeHeaderRow(headers)

	sheet := &Sheet{Headers: headers}
	for _, excelRow := range excelRows[1:] {
		if isBlankRecord(excelRow) {
			continue
		}
		row := make([]string, len(excelRow))
		for i, value := range excelRow {
			row[i] = strings.TrimSpace(value)
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

func normalizeHeaderRow(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		// Remove required marker if present (template headers carry it)
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}

func isBlankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
