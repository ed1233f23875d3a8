package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/carclinic/pipeline/models"
)

// Cleaned dataset column names, identity last.
var cleanedColumns = []string{"is_valid", "problem", "solution", "extra_help", "post_id"}

// WriteCleaned writes the day's cleaned dataset atomically. Only
// validated records are ever passed in; invalid rows are not
// represented at all.
func WriteCleaned(records []models.CleanedRecord, path string) error {
	table := &Table{Header: append([]string(nil), cleanedColumns...)}
	for _, rec := range records {
		table.Rows = append(table.Rows, []string{
			"true", rec.Problem, rec.Solution, rec.ExtraHelp, rec.PostID,
		})
	}
	return WriteTable(table, path)
}

// WriteFailureLog overwrites the day's failure log with the given
// entries as one JSON array. Callers only invoke this when at least one
// failure occurred.
func WriteFailureLog(failures []models.RowFailure, path string) error {
	data, err := json.MarshalIndent(failures, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode failure log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create failure log directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write failure log: %w", err)
	}
	return nil
}

// Exists reports whether a dataset file is already present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
