package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Table is a row-oriented in-memory table as parsed from an uploaded file.
type Table struct {
	Header []string
	Rows   [][]string
}

// Read parses a CSV stream into a Table. The header row is required.
// Rows with a different field count than the header are kept as-is; callers
// index defensively through Cell.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// ColumnIndex maps header names to their position.
func (t *Table) ColumnIndex() map[string]int {
	colMap := make(map[string]int, len(t.Header))
	for i, col := range t.Header {
		colMap[col] = i
	}
	return colMap
}

// Cell returns the trimmed value at (row, col), or "" when the row is short.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// IndexOf returns the position of a header name, or -1 when absent.
func (t *Table) IndexOf(name string) int {
	for i, col := range t.Header {
		if col == name {
			return i
		}
	}
	return -1
}
