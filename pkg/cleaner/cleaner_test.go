package cleaner

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carclinic/pipeline/models"
	"github.com/carclinic/pipeline/pkg/dataset"
)

var testDay = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	respond func(prompt string) (string, error)
}

func (f *fakeGateway) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.respond(prompt)
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRawFixture(t *testing.T, dataDir string, threads []models.Thread) {
	t.Helper()
	if _, err := dataset.MergeAndSave(threads, dataset.RawPath(dataDir, testDay)); err != nil {
		t.Fatalf("MergeAndSave() error = %v", err)
	}
}

func validReply(problem, solution string) string {
	return `{"is_valid": true, "problem": "` + problem + `", "solution": "` + solution + `", "extra_help": ""}`
}

func TestClean_MixedRows(t *testing.T) {
	dataDir := t.TempDir()
	writeRawFixture(t, dataDir, []models.Thread{
		{ID: "p1", Title: "brake squeal", Body: "squeals when stopping"},
		{ID: "p2", Title: "rough idle", Body: "shakes at stoplights"},
		{ID: "p3", Title: "coolant leak", Body: "puddle under the car"},
		{ID: "p4", Title: "", Body: ""},
		{ID: "p5", Title: "engine stall", Body: "dies on the highway"},
	})

	gw := &fakeGateway{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "brake squeal"):
			return validReply("worn brake pads", "replace the pads"), nil
		case strings.Contains(prompt, "rough idle"):
			return validReply("dirty throttle body", "clean it"), nil
		case strings.Contains(prompt, "coolant leak"):
			return validReply("cracked reservoir", "replace the reservoir"), nil
		case strings.Contains(prompt, "engine stall"):
			return "", context.DeadlineExceeded
		default:
			t.Errorf("unexpected prompt: %q", prompt)
			return "", nil
		}
	}}

	c := New(gw, discardLogger(), dataDir, time.Second, 2)
	stats, err := c.Clean(context.Background(), testDay)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if stats.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5", stats.TotalRows)
	}
	if stats.Cleaned != 3 {
		t.Errorf("Cleaned = %d, want 3", stats.Cleaned)
	}
	if stats.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", stats.Skipped)
	}
	if stats.Failures != 1 {
		t.Errorf("Failures = %d, want 1", stats.Failures)
	}
	if stats.Negatives != 0 {
		t.Errorf("Negatives = %d, want 0", stats.Negatives)
	}
	if gw.callCount() != 4 {
		t.Errorf("gateway calls = %d, want 4 (empty row must not reach the gateway)", gw.callCount())
	}

	cleanedPath := dataset.CleanedPath(dataDir, testDay)
	table, err := dataset.ReadTable(cleanedPath)
	if err != nil {
		t.Fatalf("ReadTable(%q) error = %v", cleanedPath, err)
	}
	if len(table.Rows) != 3 {
		t.Errorf("cleaned rows = %d, want 3", len(table.Rows))
	}

	failures := readFailureLog(t, dataset.FailureLogPath(cleanedPath))
	if len(failures) != 1 {
		t.Fatalf("failure log entries = %d, want 1", len(failures))
	}
	if failures[0].Row != 4 {
		t.Errorf("failure row = %d, want 4", failures[0].Row)
	}
	if failures[0].Kind != models.FailureGatewayTimeout {
		t.Errorf("failure kind = %q, want %q", failures[0].Kind, models.FailureGatewayTimeout)
	}
}

func TestClean_IdempotentPerDay(t *testing.T) {
	dataDir := t.TempDir()
	writeRawFixture(t, dataDir, []models.Thread{
		{ID: "p1", Title: "flat tire", Body: "nail in the sidewall"},
	})

	gw := &fakeGateway{respond: func(string) (string, error) {
		return validReply("punctured tire", "replace the tire"), nil
	}}
	c := New(gw, discardLogger(), dataDir, time.Second, 1)

	if _, err := c.Clean(context.Background(), testDay); err != nil {
		t.Fatalf("first Clean() error = %v", err)
	}
	callsAfterFirst := gw.callCount()

	stats, err := c.Clean(context.Background(), testDay)
	if err != nil {
		t.Fatalf("second Clean() error = %v", err)
	}
	if !stats.AlreadyDone {
		t.Error("second run AlreadyDone = false, want true")
	}
	if gw.callCount() != callsAfterFirst {
		t.Errorf("gateway calls after second run = %d, want %d (no calls on rerun)", gw.callCount(), callsAfterFirst)
	}
}

func TestClean_MalformedResponseIsolatesRow(t *testing.T) {
	dataDir := t.TempDir()
	writeRawFixture(t, dataDir, []models.Thread{
		{ID: "p1", Title: "dead battery", Body: "no crank"},
		{ID: "p2", Title: "check engine light", Body: "code P0420"},
		{ID: "p3", Title: "squeaky belt", Body: "chirps on cold start"},
	})

	gw := &fakeGateway{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "check engine light") {
			return "I cannot help with this one.", nil
		}
		return validReply("generic problem", "generic fix"), nil
	}}

	c := New(gw, discardLogger(), dataDir, time.Second, 2)
	stats, err := c.Clean(context.Background(), testDay)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if stats.Cleaned != 2 {
		t.Errorf("Cleaned = %d, want 2", stats.Cleaned)
	}
	if stats.Failures != 1 {
		t.Errorf("Failures = %d, want 1", stats.Failures)
	}

	failures := readFailureLog(t, dataset.FailureLogPath(dataset.CleanedPath(dataDir, testDay)))
	if len(failures) != 1 {
		t.Fatalf("failure log entries = %d, want 1", len(failures))
	}
	if failures[0].Row != 1 {
		t.Errorf("failure row = %d, want 1", failures[0].Row)
	}
	if failures[0].Kind != models.FailureParseError {
		t.Errorf("failure kind = %q, want %q", failures[0].Kind, models.FailureParseError)
	}
	if !strings.Contains(failures[0].Detail, "raw response:") {
		t.Errorf("failure detail %q should carry the raw response", failures[0].Detail)
	}
}

func TestClean_NegativeClassificationIsNotAFailure(t *testing.T) {
	dataDir := t.TempDir()
	writeRawFixture(t, dataDir, []models.Thread{
		{ID: "p1", Title: "what oil should I buy", Body: "just shopping around"},
	})

	gw := &fakeGateway{respond: func(string) (string, error) {
		return `{"is_valid": false, "problem": null, "solution": null}`, nil
	}}

	c := New(gw, discardLogger(), dataDir, time.Second, 1)
	stats, err := c.Clean(context.Background(), testDay)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if stats.Negatives != 1 || stats.Skipped != 1 || stats.Failures != 0 {
		t.Errorf("stats = %+v, want 1 negative, 1 skipped, 0 failures", stats)
	}
	logPath := dataset.FailureLogPath(dataset.CleanedPath(dataDir, testDay))
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Errorf("failure log %q should not exist for negatives", logPath)
	}
}

func TestClean_MissingRawDataset(t *testing.T) {
	dataDir := t.TempDir()
	gw := &fakeGateway{respond: func(string) (string, error) {
		t.Error("gateway must not be called without input")
		return "", nil
	}}

	c := New(gw, discardLogger(), dataDir, time.Second, 1)
	stats, err := c.Clean(context.Background(), testDay)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if !stats.NoInput {
		t.Error("NoInput = false, want true")
	}
	if dataset.Exists(dataset.CleanedPath(dataDir, testDay)) {
		t.Error("cleaned dataset should not be created without input")
	}
}

func readFailureLog(t *testing.T, path string) []models.RowFailure {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", path, err)
	}
	var failures []models.RowFailure
	if err := json.Unmarshal(data, &failures); err != nil {
		t.Fatalf("failure log is not a JSON array: %v", err)
	}
	return failures
}
