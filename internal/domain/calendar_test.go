package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseClock tests clock string parsing
func TestParseClock(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expected    int
		expectError bool
	}{
		{name: "Midnight", value: "00:00", expected: 0},
		{name: "Morning opening", value: "08:30", expected: 510},
		{name: "Last minute of day", value: "23:59", expected: 1439},
		{name: "Hour out of range", value: "24:00", expectError: true},
		{name: "Minute out of range", value: "12:60", expectError: true},
		{name: "Missing separator", value: "1230", expectError: true},
		{name: "Empty", value: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.value)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidClock)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

// TestFormatClock tests minutes-to-clock rendering
func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "08:30", FormatClock(510))
	assert.Equal(t, "23:59", FormatClock(1439))
}

// TestWeekStart tests Monday week keys
func TestWeekStart(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "Monday maps to itself",
			input:    time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
			expected: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Wednesday maps back to Monday",
			input:    time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Sunday maps back six days",
			input:    time.Date(2025, 3, 16, 23, 59, 0, 0, time.UTC),
			expected: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, WeekStart(tt.input).Equal(tt.expected))
		})
	}
}

// TestWeekDays tests week enumeration
func TestWeekDays(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	days := WeekDays(start)

	require.Len(t, days, 7)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, time.Sunday, days[6].Weekday())
	assert.True(t, days[6].Equal(start.AddDate(0, 0, 6)))
}

// TestParseDate tests ISO date parsing
func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))

	_, err = ParseDate("10/03/2025")
	assert.Error(t, err)
}
