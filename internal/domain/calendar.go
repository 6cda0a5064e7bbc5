package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidClock is returned when a clock string is not HH:MM.
var ErrInvalidClock = errors.New("invalid clock value, expected HH:MM")

const minutesPerDay = 24 * 60

// ParseClock converts an "HH:MM" string into minutes since midnight.
func ParseClock(value string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(value, "%2d:%2d", &hh, &mm); err != nil {
		return 0, ErrInvalidClock
	}
	if len(value) != 5 || value[2] != ':' || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, ErrInvalidClock
	}
	return hh*60 + mm, nil
}

// FormatClock converts minutes since midnight into an "HH:MM" string.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	minutes = minutes % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DateOnly normalizes a timestamp to midnight UTC so that calendar
// comparisons ignore the time-of-day component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the ISO week containing t, at midnight UTC.
// Hour-bank entries and weekly reports are keyed by this value.
func WeekStart(t time.Time) time.Time {
	d := DateOnly(t)
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDate(0, 0, -offset)
}

// WeekDays returns the seven calendar days of the week starting at weekStart.
func WeekDays(weekStart time.Time) []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = weekStart.AddDate(0, 0, i)
	}
	return days
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// ParseDate parses a date in "2006-01-02" form, normalized to midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return DateOnly(t), nil
}

// FormatDate renders a date in "2006-01-02" form.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
