// Package summary writes a per-run YAML summary so each day's pipeline
// output is accompanied by a human-readable record of what happened.
package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary is the per-stage run report written under data/summary/.
type Summary struct {
	Day       string            `yaml:"day"`
	Stage     string            `yaml:"stage"`
	StartedAt time.Time         `yaml:"started_at"`
	Elapsed   string            `yaml:"elapsed"`
	Counters  map[string]int64  `yaml:"counters"`
	Outputs   []string          `yaml:"outputs,omitempty"`
	Notes     string            `yaml:"notes,omitempty"`
}

// Write stores the summary as data/summary/<day>_<stage>.yaml,
// overwriting a previous run of the same stage for the same day.
func Write(dataDir string, s Summary) (string, error) {
	dir := filepath.Join(dataDir, "summary")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.yaml", s.Day, s.Stage))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}
