package common

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger used by every command. Quiet mode
// keeps errors only, so piped output stays machine-readable.
func NewLogger(quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
