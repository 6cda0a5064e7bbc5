// Package compliance evaluates CCNL rest-period rules over one
// employee's shifts. The checker is purely computational: it consumes an
// in-memory shift list and emits structured violations, never errors.
package compliance

import (
	"fmt"
	"sort"
	"time"

	"github.com/hrops-platform/scheduling-service/internal/domain"
)

// Status is the overall compliance classification of a report.
type Status string

const (
	StatusCompliant       Status = "compliant"
	StatusMinorViolations Status = "minor_violations"
	StatusMajorViolations Status = "major_violations"
)

// Violation is one rule breach for one employee.
type Violation struct {
	Rule            RuleName  `json:"rule"`
	Severity        Severity  `json:"severity"`
	EmployeeID      string    `json:"employeeId"`
	Date            time.Time `json:"date"`
	ShiftIDs        []string  `json:"shiftIds"`
	MeasuredHours   float64   `json:"measuredHours"`
	RequiredHours   float64   `json:"requiredHours"`
	ArticleRef      string    `json:"articleRef"`
	Message         string    `json:"message"`
	SuggestedAction string    `json:"suggestedAction"`
}

// Report is the weekly compliance outcome for one employee.
type Report struct {
	EmployeeID      string          `json:"employeeId"`
	WeekStart       time.Time       `json:"weekStart"`
	Violations      []Violation     `json:"violations"`
	DailyRestOK     map[string]bool `json:"dailyRestOk"`
	WeeklyRestOK    bool            `json:"weeklyRestOk"`
	ConsecutiveDays int             `json:"consecutiveDays"`
	Score           float64         `json:"score"`
	Status          Status          `json:"status"`
}

// Checker evaluates a RuleSet against employee shift lists.
type Checker struct {
	rules RuleSet
}

// NewChecker creates a checker with the given rule set.
func NewChecker(rules RuleSet) *Checker {
	return &Checker{rules: rules}
}

// CheckWeek evaluates one employee's week. The shift list should include
// the adjacent days' shifts so boundary rest periods can be measured;
// violations are only reported for dates inside the week.
func (c *Checker) CheckWeek(employeeID string, shifts []*domain.Shift, weekStart time.Time) *Report {
	weekStart = domain.WeekStart(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	report := &Report{
		EmployeeID:   employeeID,
		WeekStart:    weekStart,
		Violations:   make([]Violation, 0),
		DailyRestOK:  make(map[string]bool),
		WeeklyRestOK: true,
	}
	for _, day := range domain.WeekDays(weekStart) {
		report.DailyRestOK[domain.FormatDate(day)] = true
	}

	own := make([]*domain.Shift, 0, len(shifts))
	for _, s := range shifts {
		if s.EmployeeID == employeeID && s.CountsForWork() {
			own = append(own, s)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].StartAt().Before(own[j].StartAt()) })

	c.checkRestGaps(report, own, weekStart, weekEnd)
	c.checkWeeklyRest(report, own, weekStart, weekEnd)
	c.checkConsecutiveDays(report, own, weekStart, weekEnd)

	report.Score = c.score(report.Violations)
	report.Status = c.status(report)
	return report
}

// checkRestGaps evaluates the gap between every pair of consecutive
// shifts. Same-day pairs breach the shift-gap rule; pairs across a day
// boundary breach the daily-rest rule. The threshold is inclusive: a gap
// of exactly the required hours complies.
func (c *Checker) checkRestGaps(report *Report, shifts []*domain.Shift, weekStart, weekEnd time.Time) {
	for i := 0; i+1 < len(shifts); i++ {
		prev, next := shifts[i], shifts[i+1]
		gap := next.StartAt().Sub(prev.EndAt()).Hours()

		sameDay := domain.SameDay(prev.Date, next.Date)
		rule, required, article := RuleDailyRest, c.rules.DailyRestHours, c.rules.DailyRestArticle
		if sameDay {
			rule, required, article = RuleShiftGap, c.rules.ShiftGapHours, c.rules.ShiftGapArticle
		}
		if gap >= required {
			continue
		}

		date := domain.DateOnly(next.Date)
		if date.Before(weekStart) || !date.Before(weekEnd) {
			continue
		}
		if rule == RuleDailyRest {
			report.DailyRestOK[domain.FormatDate(date)] = false
		}

		earliest := prev.EndAt().Add(time.Duration(required * float64(time.Hour)))
		report.Violations = append(report.Violations, Violation{
			Rule:          rule,
			Severity:      SeverityCritical,
			EmployeeID:    report.EmployeeID,
			Date:          date,
			ShiftIDs:      []string{prev.ShiftID, next.ShiftID},
			MeasuredHours: gap,
			RequiredHours: required,
			ArticleRef:    article,
			Message: fmt.Sprintf("rest of %.1fh between shifts %s and %s, minimum is %.0fh",
				gap, prev.ShiftID, next.ShiftID, required),
			SuggestedAction: fmt.Sprintf("move shift start to no earlier than %s", earliest.Format("2006-01-02 15:04")),
		})
	}
}

// checkWeeklyRest verifies a contiguous rest interval of at least the
// required hours touches the week. Rest gaps are measured over the full
// shift list, adjacent-day context included, so a free weekend spanning
// the week boundary counts. A week edge with no known shift beyond it is
// treated as open rest and complies.
func (c *Checker) checkWeeklyRest(report *Report, shifts []*domain.Shift, weekStart, weekEnd time.Time) {
	inWeek := false
	for _, s := range shifts {
		if s.EndAt().After(weekStart) && s.StartAt().Before(weekEnd) {
			inWeek = true
			break
		}
	}
	if !inWeek {
		return
	}

	// Shifts are sorted by start. The first gap runs from before the
	// earliest known shift, the last one past the latest; both are open
	// ended and satisfy any threshold.
	if shifts[0].StartAt().After(weekStart) || shifts[len(shifts)-1].EndAt().Before(weekEnd) {
		return
	}

	longest := 0.0
	cursorEnd := shifts[0].EndAt()
	for _, s := range shifts[1:] {
		gapStart, gapEnd := cursorEnd, s.StartAt()
		if gapEnd.After(gapStart) && gapEnd.After(weekStart) && gapStart.Before(weekEnd) {
			if gap := gapEnd.Sub(gapStart).Hours(); gap > longest {
				longest = gap
			}
		}
		if s.EndAt().After(cursorEnd) {
			cursorEnd = s.EndAt()
		}
	}

	if longest >= c.rules.WeeklyRestHours {
		return
	}

	report.WeeklyRestOK = false
	report.Violations = append(report.Violations, Violation{
		Rule:          RuleWeeklyRest,
		Severity:      SeverityCritical,
		EmployeeID:    report.EmployeeID,
		Date:          weekStart,
		MeasuredHours: longest,
		RequiredHours: c.rules.WeeklyRestHours,
		ArticleRef:    c.rules.WeeklyRestArticle,
		Message: fmt.Sprintf("longest contiguous rest in the week is %.1fh, minimum is %.0fh",
			longest, c.rules.WeeklyRestHours),
		SuggestedAction: "free a full rest day plus the adjacent night within the week",
	})
}

// checkConsecutiveDays finds runs of calendar days each containing at
// least one shift. A run longer than the maximum produces one violation
// for the whole run.
func (c *Checker) checkConsecutiveDays(report *Report, shifts []*domain.Shift, weekStart, weekEnd time.Time) {
	if len(shifts) == 0 {
		return
	}

	daySet := make(map[time.Time][]string)
	for _, s := range shifts {
		d := domain.DateOnly(s.Date)
		daySet[d] = append(daySet[d], s.ShiftID)
	}
	days := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	runStart := 0
	flush := func(start, end int) {
		length := end - start
		if length > report.ConsecutiveDays {
			report.ConsecutiveDays = length
		}
		if length <= c.rules.MaxConsecutiveDays {
			return
		}
		last := days[end-1]
		if last.Before(weekStart) || !last.Before(weekEnd) {
			return
		}
		ids := make([]string, 0, length)
		for i := start; i < end; i++ {
			ids = append(ids, daySet[days[i]]...)
		}
		report.Violations = append(report.Violations, Violation{
			Rule:          RuleConsecutiveDays,
			Severity:      SeverityCritical,
			EmployeeID:    report.EmployeeID,
			Date:          last,
			ShiftIDs:      ids,
			MeasuredHours: float64(length),
			RequiredHours: float64(c.rules.MaxConsecutiveDays),
			ArticleRef:    c.rules.ConsecutiveArticle,
			Message: fmt.Sprintf("%d consecutive working days ending %s, maximum is %d",
				length, domain.FormatDate(last), c.rules.MaxConsecutiveDays),
			SuggestedAction: "remove one shift from the consecutive run",
		})
	}

	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) != 24*time.Hour {
			flush(runStart, i)
			runStart = i
		}
	}
	flush(runStart, len(days))
}

func (c *Checker) score(violations []Violation) float64 {
	score := 100.0
	for _, v := range violations {
		switch v.Severity {
		case SeverityCritical:
			score -= c.rules.CriticalPenalty
		default:
			score -= c.rules.WarningPenalty
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

func (c *Checker) status(report *Report) Status {
	if len(report.Violations) == 0 {
		return StatusCompliant
	}
	for _, v := range report.Violations {
		if v.Severity == SeverityCritical {
			return StatusMajorViolations
		}
	}
	if report.Score < 60 {
		return StatusMajorViolations
	}
	return StatusMinorViolations
}
