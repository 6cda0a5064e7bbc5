package application

import (
	"time"

	"github.com/hrops-platform/scheduling-service/internal/compliance"
	"github.com/hrops-platform/scheduling-service/internal/coverage"
	"github.com/hrops-platform/scheduling-service/internal/domain"
)

// EmployeeDTO represents an employee in responses
type EmployeeDTO struct {
	EmployeeID    string     `json:"employeeId"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Position      string     `json:"position,omitempty"`
	Role          string     `json:"role"`
	ContractHours float64    `json:"contractHours"`
	FixedHours    float64    `json:"fixedHours"`
	StoreID       string     `json:"storeId,omitempty"`
	HireDate      *time.Time `json:"hireDate,omitempty"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// StoreDTO represents a store in responses
type StoreDTO struct {
	StoreID      string                `json:"storeId"`
	Name         string                `json:"name"`
	OpeningHours domain.OpeningHours   `json:"openingHours"`
	ClosureDays  []domain.ClosureDay   `json:"closureDays,omitempty"`
	IsDefault    bool                  `json:"isDefault"`
	IsActive     bool                  `json:"isActive"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// ShiftDTO represents a shift in responses
type ShiftDTO struct {
	ShiftID          string    `json:"shiftId"`
	EmployeeID       string    `json:"employeeId"`
	StoreID          string    `json:"storeId"`
	RoleName         string    `json:"roleName"`
	Date             time.Time `json:"date"`
	StartTime        string    `json:"startTime"`
	EndTime          string    `json:"endTime"`
	BreakMinutes     int       `json:"breakMinutes"`
	ActualHours      float64   `json:"actualHours"`
	Status           string    `json:"status"`
	ValidationStatus string    `json:"validationStatus"`
	IsLocked         bool      `json:"isLocked"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// RequirementDTO represents a staffing requirement in responses
type RequirementDTO struct {
	RequirementID string                   `json:"requirementId"`
	StoreID       string                   `json:"storeId"`
	DayOfWeek     string                   `json:"dayOfWeek"`
	Roles         []domain.RoleRequirement `json:"roles"`
}

// WeightingEventDTO represents a weighting event in responses
type WeightingEventDTO struct {
	EventID    string    `json:"eventId"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Multiplier float64   `json:"multiplier"`
	DaysOfWeek []string  `json:"daysOfWeek,omitempty"`
	StoreIDs   []string  `json:"storeIds,omitempty"`
	IsActive   bool      `json:"isActive"`
}

// AccountDTO represents an hour-bank account in responses
type AccountDTO struct {
	AccountID        string     `json:"accountId"`
	EmployeeID       string     `json:"employeeId"`
	StoreID          string     `json:"storeId"`
	CurrentBalance   float64    `json:"currentBalance"`
	ReservedHours    float64    `json:"reservedHours"`
	AvailableBalance float64    `json:"availableBalance"`
	TotalAccumulated float64    `json:"totalAccumulated"`
	TotalRecovered   float64    `json:"totalRecovered"`
	LastCalculatedAt *time.Time `json:"lastCalculatedAt,omitempty"`
}

// EntryDTO represents one weekly hour-bank entry in responses
type EntryDTO struct {
	EntryID       string    `json:"entryId"`
	WeekStart     time.Time `json:"weekStart"`
	ContractHours float64   `json:"contractHours"`
	ActualHours   float64   `json:"actualHours"`
	Difference    float64   `json:"difference"`
	Type          string    `json:"type"`
}

// RecoveryRequestDTO represents a recovery request in responses
type RecoveryRequestDTO struct {
	RequestID      string     `json:"requestId"`
	EmployeeID     string     `json:"employeeId"`
	StoreID        string     `json:"storeId"`
	RequestedHours float64    `json:"requestedHours"`
	ScheduledDate  time.Time  `json:"scheduledDate"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason,omitempty"`
	DecidedBy      string     `json:"decidedBy,omitempty"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// CalculationResultDTO reports the outcome of an hour-bank run
type CalculationResultDTO struct {
	EntriesCreated  int     `json:"entriesCreated"`
	AccountsUpdated int     `json:"accountsUpdated"`
	WeeksSkipped    int     `json:"weeksSkipped"`
	Failures        int     `json:"failures"`
	DurationMillis  int64   `json:"durationMillis"`
	Success         bool    `json:"success"`
	Errors          []string `json:"errors,omitempty"`
}

// StoreSummaryDTO aggregates a store's hour-bank accounts
type StoreSummaryDTO struct {
	StoreID        string       `json:"storeId"`
	AccountCount   int          `json:"accountCount"`
	TotalCredit    float64      `json:"totalCredit"`
	TotalDebt      float64      `json:"totalDebt"`
	NetBalance     float64      `json:"netBalance"`
	AverageBalance float64      `json:"averageBalance"`
	TopCreditors   []AccountDTO `json:"topCreditors"`
	TopDebtors     []AccountDTO `json:"topDebtors"`
}

// EmployeeReportDTO is one employee's hour-bank history
type EmployeeReportDTO struct {
	Account  *AccountDTO          `json:"account"`
	Entries  []EntryDTO           `json:"entries"`
	Requests []RecoveryRequestDTO `json:"requests"`
}

// StatisticsDTO is the global hour-bank aggregate view
type StatisticsDTO struct {
	AccountCount   int     `json:"accountCount"`
	TotalCredit    float64 `json:"totalCredit"`
	TotalDebt      float64 `json:"totalDebt"`
	NetBalance     float64 `json:"netBalance"`
	AverageBalance float64 `json:"averageBalance"`
	PendingRequests int    `json:"pendingRequests"`
}

// ResetResultDTO reports deletion counts after a reset
type ResetResultDTO struct {
	AccountsDeleted int64 `json:"accountsDeleted"`
	EntriesDeleted  int64 `json:"entriesDeleted"`
	RequestsDeleted int64 `json:"requestsDeleted"`
}

// ValidationReportDTO combines coverage, compliance and hour-bank deltas
// for one store week
type ValidationReportDTO struct {
	StoreID    string                     `json:"storeId"`
	WeekStart  time.Time                  `json:"weekStart"`
	Coverage   *coverage.WeekReport       `json:"coverage"`
	Compliance []*compliance.Report       `json:"compliance"`
	HourBank   []WeeklyDeltaDTO           `json:"hourBank"`
	GeneratedAt time.Time                 `json:"generatedAt"`
}

// WeeklyDeltaDTO is the projected hour-bank movement for one employee in
// the reported week
type WeeklyDeltaDTO struct {
	EmployeeID    string  `json:"employeeId"`
	ContractHours float64 `json:"contractHours"`
	ActualHours   float64 `json:"actualHours"`
	Difference    float64 `json:"difference"`
}

// SyncResultDTO reports per-record outcomes of an HR sync run
type SyncResultDTO struct {
	Imported int               `json:"imported"`
	Updated  int               `json:"updated"`
	Skipped  int               `json:"skipped"`
	Records  []SyncRecordDTO   `json:"records"`
}

// SyncRecordDTO is the outcome for one synchronized employee record
type SyncRecordDTO struct {
	ExternalID      string  `json:"externalId"`
	EmployeeID      string  `json:"employeeId,omitempty"`
	Outcome         string  `json:"outcome"`
	StoreID         string  `json:"storeId,omitempty"`
	MatchConfidence float64 `json:"matchConfidence,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}
