package census

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FromRecords builds a typed table from raw string records, typing
// each cell by its canonical column: date columns become date values,
// numeric columns become numbers, everything unparsable stays a string
// so the detectors can flag it. Empty cells become null.
func FromRecords(headers []string, records [][]string) *Table {
	t := NewTable(headers)
	for _, record := range records {
		row := make([]Value, len(headers))
		for i := range headers {
			raw := ""
			if i < len(record) {
				raw = strings.TrimSpace(record[i])
			}
			row[i] = typeCell(headers[i], raw)
		}
		t.AppendRow(row)
	}
	return t
}

// typeCell converts one raw cell. Only values already in canonical form
// are typed; malformed values are kept verbatim as strings so that a
// later run still sees the original text.
func typeCell(column, raw string) Value {
	if raw == "" {
		return Null()
	}
	switch {
	case IsDateField(column):
		if d, err := parseCanonicalDate(raw); err == nil {
			return Date(d)
		}
	case IsNumericField(column):
		if f, err := parseCanonicalNumber(raw); err == nil {
			return Number(f)
		}
	}
	return String(raw)
}

// LoadCSV reads a table from CSV. The first record is the header row of
// canonical column names.
func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV contains no header row")
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	}
	return FromRecords(headers, records[1:]), nil
}

// LoadXLSX reads a table from the first sheet of an Excel workbook on
// disk.
func LoadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return fromWorkbook(f)
}

// LoadXLSXReader reads a table from the first sheet of a workbook
// stream, such as an upload body.
func LoadXLSXReader(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return fromWorkbook(f)
}

func fromWorkbook(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheets[0])
	}

	slog.Debug("loaded workbook sheet",
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(rows)-1))

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return FromRecords(headers, rows[1:]), nil
}
