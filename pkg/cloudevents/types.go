package cloudevents

import (
	"time"
)

// EventType constants for scheduling domain events
const (
	// Shift events
	ShiftCreated   = "hrops.scheduling.shift-created"
	ShiftUpdated   = "hrops.scheduling.shift-updated"
	ShiftDeleted   = "hrops.scheduling.shift-deleted"
	ShiftsCopied   = "hrops.scheduling.shifts-copied"
	ShiftsReplaced = "hrops.scheduling.shifts-replaced"

	// Schedule workflow events
	ScheduleValidated = "hrops.scheduling.schedule-validated"
	SchedulePublished = "hrops.scheduling.schedule-published"
	ScheduleLocked    = "hrops.scheduling.schedule-locked"
	ScheduleReverted  = "hrops.scheduling.schedule-reverted"

	// Validation events
	CoverageChecked   = "hrops.validation.coverage-checked"
	ComplianceChecked = "hrops.validation.compliance-checked"
	ViolationDetected = "hrops.validation.violation-detected"

	// Hour bank events
	HourBankEntryPosted     = "hrops.hourbank.entry-posted"
	HourBankRecalculated    = "hrops.hourbank.recalculated"
	RecoveryRequestCreated  = "hrops.hourbank.recovery-requested"
	RecoveryRequestApproved = "hrops.hourbank.recovery-approved"
	RecoveryRequestRejected = "hrops.hourbank.recovery-rejected"
	RecoveryRequestUsed     = "hrops.hourbank.recovery-used"

	// Employee sync events
	EmployeesSynced  = "hrops.employees.synced"
	EmployeeMatched  = "hrops.employees.store-matched"
	EmployeeImported = "hrops.employees.imported"

	// Inbound notification from the external HR system
	HREmployeeChanged = "hrops.hrsync.employee-changed"
)

// Source constants for event sources
const (
	SourceScheduling = "/hrops/scheduling-service"
	SourceHourBank   = "/hrops/scheduling-service/hourbank"
	SourceValidation = "/hrops/scheduling-service/validation"
	SourceHRSync     = "/hrops/scheduling-service/hrsync"
)

// CloudEvent represents a CloudEvents v1.0 compliant event
type CloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	// hrops-specific extensions
	CorrelationID string `json:"hropscorrelationid,omitempty"`
	StoreID       string `json:"hropsstoreid,omitempty"`
	WeekStart     string `json:"hropsweekstart,omitempty"`
}

// ShiftCreatedData represents the data payload for ShiftCreated event
type ShiftCreatedData struct {
	ShiftID    string  `json:"shiftId"`
	EmployeeID string  `json:"employeeId"`
	StoreID    string  `json:"storeId"`
	Date       string  `json:"date"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Hours      float64 `json:"hours"`
	Status     string  `json:"status"`
}

// ScheduleTransitionData represents the data payload for schedule workflow events
type ScheduleTransitionData struct {
	StoreID   string `json:"storeId"`
	WeekStart string `json:"weekStart"`
	FromState string `json:"fromState"`
	ToState   string `json:"toState"`
	ActorID   string `json:"actorId"`
	ActorRole string `json:"actorRole"`
}

// CoverageCheckedData represents the data payload for CoverageChecked event
type CoverageCheckedData struct {
	StoreID    string  `json:"storeId"`
	WeekStart  string  `json:"weekStart"`
	Status     string  `json:"status"`
	Score      float64 `json:"score"`
	Grade      string  `json:"grade"`
	IssueCount int     `json:"issueCount"`
}

// ComplianceCheckedData represents the data payload for ComplianceChecked event
type ComplianceCheckedData struct {
	StoreID        string  `json:"storeId"`
	WeekStart      string  `json:"weekStart"`
	Status         string  `json:"status"`
	Score          float64 `json:"score"`
	ViolationCount int     `json:"violationCount"`
	CriticalCount  int     `json:"criticalCount"`
}

// ViolationDetectedData represents the data payload for ViolationDetected event
type ViolationDetectedData struct {
	EmployeeID string `json:"employeeId"`
	StoreID    string `json:"storeId"`
	Rule       string `json:"rule"`
	Severity   string `json:"severity"`
	ArticleRef string `json:"articleRef,omitempty"`
	Message    string `json:"message"`
}

// HourBankEntryData represents the data payload for HourBankEntryPosted event
type HourBankEntryData struct {
	EntryID       string  `json:"entryId"`
	EmployeeID    string  `json:"employeeId"`
	WeekStart     string  `json:"weekStart"`
	EntryType     string  `json:"entryType"`
	Hours         float64 `json:"hours"`
	BalanceAfter  float64 `json:"balanceAfter"`
	ContractHours float64 `json:"contractHours"`
	WorkedHours   float64 `json:"workedHours"`
}

// RecoveryRequestData represents the data payload for recovery request events
type RecoveryRequestData struct {
	RequestID  string  `json:"requestId"`
	EmployeeID string  `json:"employeeId"`
	Hours      float64 `json:"hours"`
	Status     string  `json:"status"`
	Date       string  `json:"date,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// EmployeesSyncedData represents the data payload for EmployeesSynced event
type EmployeesSyncedData struct {
	Imported  int    `json:"imported"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Source    string `json:"source"`
	SyncedAt  string `json:"syncedAt"`
	Endpoint  string `json:"endpoint,omitempty"`
	Unmatched int    `json:"unmatched"`
}
