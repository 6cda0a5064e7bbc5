package coverage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrops-platform/scheduling-service/internal/domain"
)

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func weekdayStore() *domain.Store {
	store := domain.NewStore("STORE-001", "Centro")
	store.OpeningHours = domain.OpeningHours{
		"monday":  {Open: "08:00", Close: "20:00"},
		"tuesday": {Open: "08:00", Close: "20:00"},
	}
	return store
}

func cashierRequirement(day string, minStaff, maxStaff int) *domain.StaffRequirement {
	return &domain.StaffRequirement{
		RequirementID: "REQ-" + day,
		StoreID:       "STORE-001",
		DayOfWeek:     day,
		Roles:         []domain.RoleRequirement{{RoleName: "cashier", MinStaff: minStaff, MaxStaff: maxStaff}},
	}
}

func cashierShift(t *testing.T, id string, day time.Time, start, end string) *domain.Shift {
	t.Helper()
	s, err := domain.NewShift(id, "EMP-"+id, "STORE-001", "cashier", day, start, end, 0)
	require.NoError(t, err)
	return s
}

// TestValidateWeekUnconfigured tests that missing configuration never
// produces a critical result
func TestValidateWeekUnconfigured(t *testing.T) {
	v := NewValidator()
	report := v.ValidateWeek(weekdayStore(), nil, nil, nil, monday)

	require.Len(t, report.Days, 7)
	assert.Equal(t, DayNotConfigured, report.Days[0].Status)
	assert.Equal(t, DayNotApplicable, report.Days[2].Status)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 100.0, report.Score)
	assert.Equal(t, "A", report.Grade)
}

// TestValidateWeekFullCoverage tests a fully covered day
func TestValidateWeekFullCoverage(t *testing.T) {
	v := NewValidator()
	reqs := []*domain.StaffRequirement{cashierRequirement("monday", 2, 4)}
	shifts := []*domain.Shift{
		cashierShift(t, "S1", monday, "08:00", "20:00"),
		cashierShift(t, "S2", monday, "08:00", "20:00"),
	}

	report := v.ValidateWeek(weekdayStore(), reqs, nil, shifts, monday)

	assert.Equal(t, DayValid, report.Days[0].Status)
	assert.Equal(t, 720, report.Days[0].OpenMinutes)
	assert.Equal(t, 720, report.Days[0].AdequateMinutes)
	assert.Empty(t, report.Issues)
}

// TestValidateWeekNoStaff tests the zero-staff critical case
func TestValidateWeekNoStaff(t *testing.T) {
	v := NewValidator()
	reqs := []*domain.StaffRequirement{cashierRequirement("monday", 2, 4)}

	report := v.ValidateWeek(weekdayStore(), reqs, nil, nil, monday)

	require.NotEmpty(t, report.Issues)
	issue := report.Issues[0]
	assert.Equal(t, KindNoStaff, issue.Kind)
	assert.Equal(t, SeverityCritical, issue.Severity)
	assert.Equal(t, "08:00", issue.StartTime)
	assert.Equal(t, "20:00", issue.EndTime)
	assert.Equal(t, DayIssues, report.Days[0].Status)
	assert.Zero(t, report.Days[0].AdequateMinutes)
}

// TestValidateWeekPartialGap tests issue grouping on a partially covered day
func TestValidateWeekPartialGap(t *testing.T) {
	v := NewValidator()
	reqs := []*domain.StaffRequirement{cashierRequirement("monday", 1, 4)}
	shifts := []*domain.Shift{cashierShift(t, "S1", monday, "08:00", "14:00")}

	report := v.ValidateWeek(weekdayStore(), reqs, nil, shifts, monday)

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, KindNoStaff, issue.Kind)
	assert.Equal(t, "14:00", issue.StartTime)
	assert.Equal(t, "20:00", issue.EndTime)
	assert.Equal(t, 360, report.Days[0].AdequateMinutes)
}

// TestValidateWeekWeighting tests that a multiplier raises the band so a
// previously valid roster drops below minimum
func TestValidateWeekWeighting(t *testing.T) {
	v := NewValidator()
	reqs := []*domain.StaffRequirement{cashierRequirement("monday", 2, 4)}
	shifts := []*domain.Shift{
		cashierShift(t, "S1", monday, "08:00", "20:00"),
		cashierShift(t, "S2", monday, "08:00", "20:00"),
	}

	surge, err := domain.NewWeightingEvent("EVT-001", "holiday", monday, monday, 1.5)
	require.NoError(t, err)
	surge.DaysOfWeek = []string{"monday"}

	// Without the event two cashiers satisfy the 2-4 band.
	clean := v.ValidateWeek(weekdayStore(), reqs, nil, shifts, monday)
	assert.Empty(t, clean.Issues)

	// With the 1.5x event the band becomes 3-6 and two cashiers warn.
	weighted := v.ValidateWeek(weekdayStore(), reqs, []*domain.WeightingEvent{surge}, shifts, monday)
	require.NotEmpty(t, weighted.Issues)
	issue := weighted.Issues[0]
	assert.Equal(t, KindUnderstaffed, issue.Kind)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Equal(t, 3, issue.RequiredMin)
	assert.Equal(t, 2, issue.Observed)
}

// TestValidateWeekOverstaffed tests the above-maximum warning
func TestValidateWeekOverstaffed(t *testing.T) {
	v := NewValidator()
	reqs := []*domain.StaffRequirement{cashierRequirement("monday", 1, 2)}
	shifts := []*domain.Shift{
		cashierShift(t, "S1", monday, "08:00", "20:00"),
		cashierShift(t, "S2", monday, "08:00", "20:00"),
		cashierShift(t, "S3", monday, "10:00", "16:00"),
	}

	report := v.ValidateWeek(weekdayStore(), reqs, nil, shifts, monday)

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, KindOverstaffed, issue.Kind)
	assert.Equal(t, SeverityWarning, issue.Severity)
	assert.Equal(t, "10:00", issue.StartTime)
	assert.Equal(t, "16:00", issue.EndTime)
	assert.Equal(t, 3, issue.Observed)
}

// TestValidateWeekPeakWindow tests that a peak window raises the minimum
// inside its sub-range only
func TestValidateWeekPeakWindow(t *testing.T) {
	v := NewValidator()
	req := cashierRequirement("monday", 1, 4)
	req.Roles[0].PeakWindows = []domain.PeakWindow{{StartTime: "12:00", EndTime: "14:00", AdditionalStaff: 1}}
	shifts := []*domain.Shift{cashierShift(t, "S1", monday, "08:00", "20:00")}

	report := v.ValidateWeek(weekdayStore(), []*domain.StaffRequirement{req}, nil, shifts, monday)

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, KindUnderstaffed, issue.Kind)
	assert.Equal(t, "12:00", issue.StartTime)
	assert.Equal(t, "14:00", issue.EndTime)
	assert.Equal(t, 2, issue.RequiredMin)
}

// TestValidateWeekIgnoresCancelled tests that cancelled shifts do not count
func TestValidateWeekIgnoresCancelled(t *testing.T) {
	v := NewValidator()
	reqs := []*domain.StaffRequirement{cashierRequirement("monday", 1, 4)}
	shift := cashierShift(t, "S1", monday, "08:00", "20:00")
	require.NoError(t, shift.Cancel(domain.RolePlanner))

	report := v.ValidateWeek(weekdayStore(), reqs, nil, []*domain.Shift{shift}, monday)

	require.NotEmpty(t, report.Issues)
	assert.Equal(t, KindNoStaff, report.Issues[0].Kind)
}

// TestWeekScoreAveragesDays tests equal day weighting in the score
func TestWeekScoreAveragesDays(t *testing.T) {
	v := NewValidator()
	reqs := []*domain.StaffRequirement{
		cashierRequirement("monday", 1, 4),
		cashierRequirement("tuesday", 1, 4),
	}
	// Monday fully covered, Tuesday half covered.
	shifts := []*domain.Shift{
		cashierShift(t, "S1", monday, "08:00", "20:00"),
		cashierShift(t, "S2", monday.AddDate(0, 0, 1), "08:00", "14:00"),
	}

	report := v.ValidateWeek(weekdayStore(), reqs, nil, shifts, monday)

	assert.InDelta(t, 75.0, report.Score, 0.01)
	assert.Equal(t, "B", report.Grade)
}
