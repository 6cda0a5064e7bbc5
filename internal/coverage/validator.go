// Package coverage compares configured staffing requirements against
// scheduled shifts and scores store weeks. The validator is a pure
// function of its inputs: it performs no I/O and never mutates the
// caller's records.
package coverage

import (
	"fmt"
	"time"

	"github.com/hrops-platform/scheduling-service/internal/domain"
)

// Severity classifies a coverage issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// IssueKind names the violation type.
type IssueKind string

const (
	KindNoStaff      IssueKind = "no_staff"
	KindUnderstaffed IssueKind = "understaffed"
	KindOverstaffed  IssueKind = "overstaffed"
)

// DayStatus classifies one store day.
type DayStatus string

const (
	DayValid         DayStatus = "valid"
	DayIssues        DayStatus = "issues"
	DayNotApplicable DayStatus = "not_applicable"
	DayNotConfigured DayStatus = "not_configured"
)

// Issue is one violating sub-interval for one role on one day.
type Issue struct {
	Kind            IssueKind `json:"kind"`
	Severity        Severity  `json:"severity"`
	Date            time.Time `json:"date"`
	RoleName        string    `json:"roleName"`
	StartTime       string    `json:"startTime"`
	EndTime         string    `json:"endTime"`
	RequiredMin     int       `json:"requiredMin"`
	RequiredMax     int       `json:"requiredMax"`
	Observed        int       `json:"observed"`
	Message         string    `json:"message"`
	SuggestedAction string    `json:"suggestedAction"`
}

// DayReport is the coverage outcome for one calendar day.
type DayReport struct {
	Date            time.Time `json:"date"`
	Status          DayStatus `json:"status"`
	OpenMinutes     int       `json:"openMinutes"`
	AdequateMinutes int       `json:"adequateMinutes"`
	Issues          []Issue   `json:"issues"`
}

// WeekReport is the coverage outcome for one store week.
type WeekReport struct {
	StoreID   string      `json:"storeId"`
	WeekStart time.Time   `json:"weekStart"`
	Days      []DayReport `json:"days"`
	Issues    []Issue     `json:"issues"`
	Score     float64     `json:"score"`
	Grade     string      `json:"grade"`
}

// Validator evaluates staffing coverage for store weeks.
type Validator struct{}

// NewValidator creates a coverage validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateWeek computes the day-by-day coverage report for one store week.
// Missing configuration degrades to informational statuses, never errors.
func (v *Validator) ValidateWeek(store *domain.Store, reqs []*domain.StaffRequirement, events []*domain.WeightingEvent, shifts []*domain.Shift, weekStart time.Time) *WeekReport {
	weekStart = domain.WeekStart(weekStart)
	report := &WeekReport{
		StoreID:   store.StoreID,
		WeekStart: weekStart,
		Days:      make([]DayReport, 0, 7),
	}

	reqByDay := make(map[string]*domain.StaffRequirement, len(reqs))
	for _, r := range reqs {
		if r.StoreID == store.StoreID {
			reqByDay[r.DayOfWeek] = r
		}
	}

	scoredDays := 0
	scoreSum := 0.0
	for _, day := range domain.WeekDays(weekStart) {
		dr := v.validateDay(store, reqByDay[domain.WeekdayKey(day)], events, shifts, day)
		report.Days = append(report.Days, dr)
		report.Issues = append(report.Issues, dr.Issues...)

		if dr.Status == DayNotApplicable || dr.Status == DayNotConfigured {
			continue
		}
		scoredDays++
		if dr.OpenMinutes > 0 {
			scoreSum += float64(dr.AdequateMinutes) / float64(dr.OpenMinutes)
		}
	}

	if scoredDays == 0 {
		report.Score = 100
	} else {
		report.Score = scoreSum / float64(scoredDays) * 100
	}
	report.Grade = gradeFor(report.Score)
	return report
}

func (v *Validator) validateDay(store *domain.Store, req *domain.StaffRequirement, events []*domain.WeightingEvent, shifts []*domain.Shift, day time.Time) DayReport {
	dr := DayReport{Date: day, Issues: make([]Issue, 0)}

	openMin, closeMin, open := store.OpenSpan(day)
	if !open {
		dr.Status = DayNotApplicable
		return dr
	}
	dr.OpenMinutes = closeMin - openMin

	if req == nil || len(req.Roles) == 0 {
		dr.Status = DayNotConfigured
		return dr
	}

	dayShifts := shiftsForDay(shifts, store.StoreID, day)

	inadequate := make([]bool, closeMin-openMin)
	for _, role := range req.Roles {
		issues := v.sweepRole(store.StoreID, role, events, dayShifts, day, openMin, closeMin, inadequate)
		dr.Issues = append(dr.Issues, issues...)
	}

	for _, bad := range inadequate {
		if !bad {
			dr.AdequateMinutes++
		}
	}

	if len(dr.Issues) == 0 {
		dr.Status = DayValid
	} else {
		dr.Status = DayIssues
	}
	return dr
}

// sweepRole walks the open span minute by minute for one role, comparing
// concurrent staff against the weighted band, and groups violating
// minutes into contiguous issues.
func (v *Validator) sweepRole(storeID string, role domain.RoleRequirement, events []*domain.WeightingEvent, shifts []*domain.Shift, day time.Time, openMin, closeMin int, inadequate []bool) []Issue {
	weightedMin, weightedMax := domain.WeightedBand(role.MinStaff, role.MaxStaff, storeID, day, events)

	type minuteState struct {
		kind     IssueKind
		min, max int
		observed int
	}

	span := closeMin - openMin
	states := make([]*minuteState, span)

	roleShifts := make([]*domain.Shift, 0, len(shifts))
	for _, s := range shifts {
		if s.RoleName == role.RoleName {
			roleShifts = append(roleShifts, s)
		}
	}

	for m := 0; m < span; m++ {
		minute := openMin + m
		requiredMin := weightedMin + peakAddition(role.PeakWindows, minute)
		count := 0
		for _, s := range roleShifts {
			if s.StartMinutes() <= minute && minute < s.EndMinutes() {
				count++
			}
		}

		switch {
		case requiredMin > 0 && count == 0:
			states[m] = &minuteState{kind: KindNoStaff, min: requiredMin, max: weightedMax, observed: 0}
		case count < requiredMin:
			states[m] = &minuteState{kind: KindUnderstaffed, min: requiredMin, max: weightedMax, observed: count}
		case weightedMax > 0 && count > weightedMax:
			states[m] = &minuteState{kind: KindOverstaffed, min: requiredMin, max: weightedMax, observed: count}
		}
		if states[m] != nil {
			inadequate[m] = true
		}
	}

	// Group contiguous minutes with the same classification.
	var issues []Issue
	for m := 0; m < span; {
		st := states[m]
		if st == nil {
			m++
			continue
		}
		end := m + 1
		for end < span && states[end] != nil && *states[end] == *st {
			end++
		}
		issues = append(issues, buildIssue(role.RoleName, day, st.kind, openMin+m, openMin+end, st.min, st.max, st.observed))
		m = end
	}
	return issues
}

func buildIssue(roleName string, day time.Time, kind IssueKind, startMin, endMin, reqMin, reqMax, observed int) Issue {
	start := domain.FormatClock(startMin)
	end := domain.FormatClock(endMin)

	issue := Issue{
		Kind:        kind,
		Date:        day,
		RoleName:    roleName,
		StartTime:   start,
		EndTime:     end,
		RequiredMin: reqMin,
		RequiredMax: reqMax,
		Observed:    observed,
	}

	switch kind {
	case KindNoStaff:
		issue.Severity = SeverityCritical
		issue.Message = fmt.Sprintf("no %s staff scheduled between %s and %s, %d required", roleName, start, end, reqMin)
		issue.SuggestedAction = fmt.Sprintf("schedule at least %d %s staff between %s and %s", reqMin, roleName, start, end)
	case KindUnderstaffed:
		issue.Severity = SeverityWarning
		issue.Message = fmt.Sprintf("%d %s staff scheduled between %s and %s, minimum is %d", observed, roleName, start, end, reqMin)
		issue.SuggestedAction = fmt.Sprintf("schedule %d more %s staff between %s and %s", reqMin-observed, roleName, start, end)
	case KindOverstaffed:
		issue.Severity = SeverityWarning
		issue.Message = fmt.Sprintf("%d %s staff scheduled between %s and %s, maximum is %d", observed, roleName, start, end, reqMax)
		issue.SuggestedAction = fmt.Sprintf("remove %d %s staff between %s and %s", observed-reqMax, roleName, start, end)
	}
	return issue
}

func peakAddition(windows []domain.PeakWindow, minute int) int {
	add := 0
	for _, w := range windows {
		start, err1 := domain.ParseClock(w.StartTime)
		end, err2 := domain.ParseClock(w.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if start <= minute && minute < end {
			add += w.AdditionalStaff
		}
	}
	return add
}

func shiftsForDay(shifts []*domain.Shift, storeID string, day time.Time) []*domain.Shift {
	out := make([]*domain.Shift, 0, len(shifts))
	for _, s := range shifts {
		if s.StoreID != storeID || !s.CountsForWork() {
			continue
		}
		if domain.SameDay(s.Date, day) {
			out = append(out, s)
		}
	}
	return out
}

func gradeFor(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}
