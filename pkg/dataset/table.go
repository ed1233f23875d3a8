package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Table is a header-addressed CSV matrix. Merging per-day files means
// reconciling column sets whose order must stay stable, so rows are
// kept positional and addressed through the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Col returns the index of a column, or -1.
func (t *Table) Col(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the named column of a row, "" when absent.
func (t *Table) Cell(row int, name string) string {
	col := t.Col(name)
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][col]
}

// ReadTable loads a CSV file into a Table.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	table := &Table{Header: records[0]}
	for _, rec := range records[1:] {
		// Ragged rows are padded rather than rejected so one short
		// row cannot poison a whole day's dataset.
		row := make([]string, len(table.Header))
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// WriteTable writes a Table atomically: content goes to a temp file in
// the destination directory which is then renamed over the target, so
// a failed write can never truncate an existing dataset.
func WriteTable(table *Table, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(table.Header)
	if writeErr == nil {
		writeErr = writer.WriteAll(table.Rows)
	}
	if writeErr == nil {
		writer.Flush()
		writeErr = writer.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write dataset: %w", writeErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace dataset: %w", err)
	}
	return nil
}

// Project remaps a table onto a target header. Columns the table lacks
// become empty cells.
func (t *Table) Project(header []string) *Table {
	src := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		src[h] = i
	}

	out := &Table{Header: header}
	for _, row := range t.Rows {
		projected := make([]string, len(header))
		for i, h := range header {
			if j, ok := src[h]; ok && j < len(row) {
				projected[i] = row[j]
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}
