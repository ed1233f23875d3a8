// Package common holds small helpers shared by the CLI actions.
package common

import (
	"fmt"
	"time"

	"github.com/carclinic/pipeline/models"
)

const dayLayout = "2006-01-02"

// Yesterday returns yesterday's date at UTC midnight, the default day
// for both pipeline stages.
func Yesterday() time.Time {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -1)
}

// ParseDay parses a YYYY-MM-DD date as UTC midnight.
func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (want YYYY-MM-DD): %w", s, err)
	}
	return day, nil
}

// FormatDay renders a day in the filename form used by the datasets.
func FormatDay(day time.Time) string {
	return day.UTC().Format(dayLayout)
}

// DayWindow returns the inclusive unix-seconds window covering the full
// UTC calendar day.
func DayWindow(day time.Time) models.Window {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)
	return models.Window{Start: start.Unix(), End: end.Unix()}
}

// ResolveDay picks the configured day: an explicit --day value when
// given, yesterday UTC otherwise.
func ResolveDay(flagValue string) (time.Time, error) {
	if flagValue == "" {
		return Yesterday(), nil
	}
	return ParseDay(flagValue)
}
