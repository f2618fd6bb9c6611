package core

import (
	"fmt"
	"time"

	"plt.tracker/internal/core/model"
)

// CheckInInstant parses the stored date and time of a check-in as wall-clock
// time in loc.
func CheckInInstant(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid check-in %q %q: %w", date, clock, err)
	}
	return t, nil
}

// Elapsed returns the time between checkIn and now. When now is before
// checkIn the check-in is assumed to belong to the previous day. Spans longer
// than that single correction are not detected; the result never goes below zero.
func Elapsed(checkIn, now time.Time) time.Duration {
	if now.Before(checkIn) {
		checkIn = checkIn.AddDate(0, 0, -1)
	}
	d := now.Sub(checkIn)
	if d < 0 {
		return 0
	}
	return d
}

// FormatDuration renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
