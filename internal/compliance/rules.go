package compliance

// RuleName identifies a rest rule.
type RuleName string

const (
	RuleDailyRest       RuleName = "daily_rest"
	RuleWeeklyRest      RuleName = "weekly_rest"
	RuleConsecutiveDays RuleName = "consecutive_days"
	RuleShiftGap        RuleName = "shift_gap"
)

// Severity classifies a violation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// RuleSet carries the thresholds and collective-agreement article
// references the checker evaluates. Article references are configuration
// data, not logic.
type RuleSet struct {
	DailyRestHours     float64
	DailyRestArticle   string
	WeeklyRestHours    float64
	WeeklyRestArticle  string
	MaxConsecutiveDays int
	ConsecutiveArticle string
	ShiftGapHours      float64
	ShiftGapArticle    string

	CriticalPenalty float64
	WarningPenalty  float64
}

// DefaultRuleSet returns the statutory CCNL thresholds for retail
// collective agreements.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		DailyRestHours:     11,
		DailyRestArticle:   "CCNL Art. 32 / D.Lgs. 66/2003 Art. 7",
		WeeklyRestHours:    35,
		WeeklyRestArticle:  "CCNL Art. 33 / D.Lgs. 66/2003 Art. 9",
		MaxConsecutiveDays: 6,
		ConsecutiveArticle: "CCNL Art. 33",
		ShiftGapHours:      11,
		ShiftGapArticle:    "CCNL Art. 32",
		CriticalPenalty:    25,
		WarningPenalty:     10,
	}
}
