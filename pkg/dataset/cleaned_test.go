package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/carclinic/pipeline/models"
)

func TestWriteCleaned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")

	records := []models.CleanedRecord{
		{PostID: "abc123", Problem: "dead battery", Solution: "replace it", ExtraHelp: "check terminals"},
		{PostID: "def456", Problem: "glazed belt", Solution: "new serpentine belt", ExtraHelp: ""},
	}
	if err := WriteCleaned(records, path); err != nil {
		t.Fatalf("WriteCleaned() error = %v", err)
	}

	table, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	wantHeader := []string{"is_valid", "problem", "solution", "extra_help", "post_id"}
	for i, want := range wantHeader {
		if table.Header[i] != want {
			t.Errorf("column %d = %q, want %q", i, table.Header[i], want)
		}
	}
	if len(table.Rows) != 2 {
		t.Fatalf("cleaned rows = %d, want 2", len(table.Rows))
	}
	if got := table.Cell(0, "is_valid"); got != "true" {
		t.Errorf("is_valid = %q, want %q", got, "true")
	}
	if got := table.Cell(1, "post_id"); got != "def456" {
		t.Errorf("post_id = %q, want %q", got, "def456")
	}
}

func TestWriteFailureLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.error_log.json")

	failures := []models.RowFailure{
		{Row: 4, Kind: models.FailureGatewayTimeout, Detail: "context deadline exceeded"},
	}
	if err := WriteFailureLog(failures, path); err != nil {
		t.Fatalf("WriteFailureLog() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var parsed []models.RowFailure
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("failure log is not a JSON array: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Row != 4 || parsed[0].Kind != models.FailureGatewayTimeout {
		t.Errorf("parsed failure log = %+v", parsed)
	}
}
