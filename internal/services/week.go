package services

import (
	"fmt"
	"time"

	"droptrack/internal/models"
)

// Tracking weeks begin on Wednesday, the day weekly drops reset.
const weekAnchorDay = time.Wednesday

// MostRecentWeekStart returns the start of the tracking week containing
// today: midnight UTC of the most recent Wednesday, today included when
// today itself is a Wednesday.
func MostRecentWeekStart(today time.Time) time.Time {
	t := today.UTC()
	daysSinceAnchor := (int(t.Weekday()) - int(weekAnchorDay) + 7) % 7
	start := t.AddDate(0, 0, -daysSinceAnchor)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}

// PreviousWeekStart returns the start of the week before the given one.
func PreviousWeekStart(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, -7)
}

// NormalizeWeekStart truncates a timestamp to midnight UTC of its calendar
// date. Stored week starts carry no sub-day precision.
func NormalizeWeekStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseWeekStart parses a YYYY-MM-DD date into a normalized week start.
func ParseWeekStart(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, models.ErrValidation)
	}
	return NormalizeWeekStart(t), nil
}
