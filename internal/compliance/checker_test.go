package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrops-platform/scheduling-service/internal/domain"
)

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func shift(t *testing.T, id string, day time.Time, start, end string) *domain.Shift {
	t.Helper()
	s, err := domain.NewShift(id, "EMP-001", "STORE-001", "cashier", day, start, end, 0)
	require.NoError(t, err)
	return s
}

// TestCheckWeekCompliant tests a clean five-day week
func TestCheckWeekCompliant(t *testing.T) {
	c := NewChecker(DefaultRuleSet())
	shifts := []*domain.Shift{
		shift(t, "S1", monday, "08:00", "16:00"),
		shift(t, "S2", monday.AddDate(0, 0, 1), "08:00", "16:00"),
		shift(t, "S3", monday.AddDate(0, 0, 2), "08:00", "16:00"),
		shift(t, "S4", monday.AddDate(0, 0, 3), "08:00", "16:00"),
		shift(t, "S5", monday.AddDate(0, 0, 4), "08:00", "16:00"),
	}

	report := c.CheckWeek("EMP-001", shifts, monday)

	assert.Empty(t, report.Violations)
	assert.Equal(t, StatusCompliant, report.Status)
	assert.Equal(t, 100.0, report.Score)
	assert.True(t, report.WeeklyRestOK)
	assert.Equal(t, 5, report.ConsecutiveDays)
}

// TestCheckWeekDailyRest tests the 11h daily rest rule
func TestCheckWeekDailyRest(t *testing.T) {
	tests := []struct {
		name           string
		prevEnd        string
		nextStart      string
		expectViolated bool
	}{
		{name: "Ten hour gap violates", prevEnd: "22:00", nextStart: "08:00", expectViolated: true},
		{name: "Exactly eleven hours complies", prevEnd: "21:00", nextStart: "08:00", expectViolated: false},
		{name: "Twelve hour gap complies", prevEnd: "20:00", nextStart: "08:00", expectViolated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(DefaultRuleSet())
			shifts := []*domain.Shift{
				shift(t, "S1", monday, "14:00", tt.prevEnd),
				shift(t, "S2", monday.AddDate(0, 0, 1), tt.nextStart, "19:00"),
			}

			report := c.CheckWeek("EMP-001", shifts, monday)

			if !tt.expectViolated {
				assert.Empty(t, report.Violations)
				return
			}
			require.Len(t, report.Violations, 1)
			v := report.Violations[0]
			assert.Equal(t, RuleDailyRest, v.Rule)
			assert.Equal(t, SeverityCritical, v.Severity)
			assert.Equal(t, []string{"S1", "S2"}, v.ShiftIDs)
			assert.NotEmpty(t, v.ArticleRef)
			assert.False(t, report.DailyRestOK[domain.FormatDate(monday.AddDate(0, 0, 1))])
			assert.Equal(t, StatusMajorViolations, report.Status)
		})
	}
}

// TestCheckWeekShiftGap tests the same-day gap variant
func TestCheckWeekShiftGap(t *testing.T) {
	c := NewChecker(DefaultRuleSet())
	shifts := []*domain.Shift{
		shift(t, "S1", monday, "08:00", "12:00"),
		shift(t, "S2", monday, "16:00", "20:00"),
	}

	report := c.CheckWeek("EMP-001", shifts, monday)

	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, RuleShiftGap, v.Rule)
	assert.InDelta(t, 4, v.MeasuredHours, 0.001)
	// Same-day split shifts do not mark the nightly rest as broken.
	assert.True(t, report.DailyRestOK[domain.FormatDate(monday)])
}

// TestCheckWeekConsecutiveDays tests the six-day limit
func TestCheckWeekConsecutiveDays(t *testing.T) {
	tests := []struct {
		name           string
		days           int
		expectViolated bool
	}{
		{name: "Six consecutive days comply", days: 6, expectViolated: false},
		{name: "Seven consecutive days violate once", days: 7, expectViolated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(DefaultRuleSet())
			var shifts []*domain.Shift
			for i := 0; i < tt.days; i++ {
				shifts = append(shifts, shift(t, "S"+domain.FormatDate(monday.AddDate(0, 0, i)), monday.AddDate(0, 0, i), "08:00", "14:00"))
			}

			report := c.CheckWeek("EMP-001", shifts, monday)

			assert.Equal(t, tt.days, report.ConsecutiveDays)
			var consecutive []Violation
			for _, v := range report.Violations {
				if v.Rule == RuleConsecutiveDays {
					consecutive = append(consecutive, v)
				}
			}
			if tt.expectViolated {
				require.Len(t, consecutive, 1)
				assert.Equal(t, float64(tt.days), consecutive[0].MeasuredHours)
				assert.Len(t, consecutive[0].ShiftIDs, tt.days)
			} else {
				assert.Empty(t, consecutive)
			}
		})
	}
}

// TestCheckWeekWeeklyRest tests the 35h contiguous rest rule
func TestCheckWeekWeeklyRest(t *testing.T) {
	c := NewChecker(DefaultRuleSet())

	// Bounded on both sides by adjacent-week context shifts, every
	// nightly gap is short of 35h.
	var shifts []*domain.Shift
	for i := -1; i <= 7; i++ {
		shifts = append(shifts, shift(t, "S"+domain.FormatDate(monday.AddDate(0, 0, i)), monday.AddDate(0, 0, i), "08:00", "18:00"))
	}

	report := c.CheckWeek("EMP-001", shifts, monday)

	assert.False(t, report.WeeklyRestOK)
	var weekly []Violation
	for _, v := range report.Violations {
		if v.Rule == RuleWeeklyRest {
			weekly = append(weekly, v)
		}
	}
	require.Len(t, weekly, 1)
	assert.InDelta(t, 14, weekly[0].MeasuredHours, 0.001)
	assert.Equal(t, SeverityCritical, weekly[0].Severity)
}

// TestCheckWeekWeeklyRestFreeSunday tests that a free day plus its
// adjacent nights satisfies the weekly rest rule
func TestCheckWeekWeeklyRestFreeSunday(t *testing.T) {
	c := NewChecker(DefaultRuleSet())

	// Worked Monday through Saturday, free Sunday, with context shifts
	// on the previous Sunday and the next Monday bounding both edges.
	// The rest from Saturday evening to the next Monday morning is 38h.
	var shifts []*domain.Shift
	for i := -1; i < 6; i++ {
		shifts = append(shifts, shift(t, "S"+domain.FormatDate(monday.AddDate(0, 0, i)), monday.AddDate(0, 0, i), "08:00", "18:00"))
	}
	shifts = append(shifts, shift(t, "S-NEXT", monday.AddDate(0, 0, 7), "08:00", "18:00"))

	report := c.CheckWeek("EMP-001", shifts, monday)

	assert.True(t, report.WeeklyRestOK)
	for _, v := range report.Violations {
		assert.NotEqual(t, RuleWeeklyRest, v.Rule)
	}
}

// TestCheckWeekScore tests penalty accumulation and the score floor
func TestCheckWeekScore(t *testing.T) {
	c := NewChecker(DefaultRuleSet())

	// Five nights in a row with only 10.5h rest each.
	var shifts []*domain.Shift
	for i := 0; i < 6; i++ {
		shifts = append(shifts, shift(t, "S"+domain.FormatDate(monday.AddDate(0, 0, i)), monday.AddDate(0, 0, i), "10:00", "23:30"))
	}

	report := c.CheckWeek("EMP-001", shifts, monday)

	assert.Equal(t, StatusMajorViolations, report.Status)
	assert.GreaterOrEqual(t, report.Score, 0.0)
	assert.Less(t, report.Score, 60.0)
}

// TestCheckWeekIgnoresOtherEmployees tests employee filtering
func TestCheckWeekIgnoresOtherEmployees(t *testing.T) {
	c := NewChecker(DefaultRuleSet())
	other, err := domain.NewShift("S-OTHER", "EMP-999", "STORE-001", "cashier", monday, "08:00", "12:00", 0)
	require.NoError(t, err)

	report := c.CheckWeek("EMP-001", []*domain.Shift{other}, monday)

	assert.Empty(t, report.Violations)
	assert.Equal(t, StatusCompliant, report.Status)
	assert.Zero(t, report.ConsecutiveDays)
}
