package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	dErrors "mandata/pkg/domain-errors"
)

// Table is a parsed delimited-text feed with header-based column access.
// Column names are matched case-insensitively because sources are not
// consistent about header casing between exports.
type Table struct {
	columns map[string]int
	rows    [][]string
}

// ParseCSV reads a delimited feed with a mandatory header row. sep is ','
// or ';' depending on the source.
func ParseCSV(data []byte, sep rune) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.FieldsPerRecord = -1 // tolerate ragged rows; Row.Get returns "" past the end
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "feed has no header row")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[normalizeHeader(name)] = i
	}
	return &Table{columns: columns, rows: records[1:]}, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row accesses one data row by index.
func (t *Table) Row(i int) Row {
	return Row{table: t, fields: t.rows[i], index: i}
}

// HasColumn reports whether the header declared the column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[normalizeHeader(name)]
	return ok
}

// Row is one data row with named access.
type Row struct {
	table  *Table
	fields []string
	index  int
}

// Get returns the trimmed value of the named column, empty when the column
// is missing or the row is short.
func (r Row) Get(column string) string {
	i, ok := r.table.columns[normalizeHeader(column)]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// Index is the zero-based data row number, used in row-level error messages.
func (r Row) Index() int {
	return r.index
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
}
