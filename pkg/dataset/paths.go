package dataset

import (
	"path/filepath"
	"time"
)

const (
	rawPrefix     = "Reddit_CarAdvice_"
	cleanedPrefix = "Reddit_CarAdvice_Cleaned_"
	dayLayout     = "2006-01-02"
)

// RawPath returns the per-day raw dataset path under dataDir.
func RawPath(dataDir string, day time.Time) string {
	return filepath.Join(dataDir, "raw", rawPrefix+day.UTC().Format(dayLayout)+".csv")
}

// CleanedPath returns the per-day cleaned dataset path under dataDir.
func CleanedPath(dataDir string, day time.Time) string {
	return filepath.Join(dataDir, "cleaned", cleanedPrefix+day.UTC().Format(dayLayout)+".csv")
}

// FailureLogPath derives the failure-log path from its cleaned dataset.
func FailureLogPath(cleanedPath string) string {
	ext := filepath.Ext(cleanedPath)
	return cleanedPath[:len(cleanedPath)-len(ext)] + ".error_log.json"
}
