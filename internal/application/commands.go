package application

import (
	"time"

	"github.com/hrops-platform/scheduling-service/internal/domain"
)

// CreateEmployeeCommand creates a new employee
type CreateEmployeeCommand struct {
	EmployeeID    string
	Name          string
	Email         string
	Position      string
	Role          domain.Role
	ContractHours float64
	FixedHours    float64
	StoreID       string
}

// UpdateEmployeeCommand updates an employee's contract or assignment
type UpdateEmployeeCommand struct {
	EmployeeID    string
	Name          string
	ContractHours float64
	FixedHours    float64
	StoreID       string
}

// GetEmployeeQuery retrieves an employee by ID
type GetEmployeeQuery struct {
	EmployeeID string
}

// ListEmployeesQuery retrieves employees with pagination
type ListEmployeesQuery struct {
	StoreID string
	Limit   int
	Offset  int
}

// CreateStoreCommand creates a new store
type CreateStoreCommand struct {
	StoreID      string
	Name         string
	OpeningHours domain.OpeningHours
	IsDefault    bool
}

// UpdateStoreCommand updates store hours, overrides and closures
type UpdateStoreCommand struct {
	StoreID      string
	Name         string
	OpeningHours domain.OpeningHours
	WeekOverride *domain.WeekOverride
	ClosureDay   *domain.ClosureDay
}

// GetStoreQuery retrieves a store by ID
type GetStoreQuery struct {
	StoreID string
}

// ListStoresQuery retrieves stores with pagination
type ListStoresQuery struct {
	Limit  int
	Offset int
}

// SaveRequirementCommand creates or replaces a staffing requirement
type SaveRequirementCommand struct {
	RequirementID string
	StoreID       string
	DayOfWeek     string
	Roles         []domain.RoleRequirement
}

// DuplicateRequirementsCommand copies one weekday's requirement onto others
type DuplicateRequirementsCommand struct {
	StoreID    string
	SourceDay  string
	TargetDays []string
}

// CreateWeightingEventCommand creates a demand weighting event
type CreateWeightingEventCommand struct {
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Multiplier float64
	DaysOfWeek []string
	StoreIDs   []string
}

// CreateShiftCommand creates a shift in draft status
type CreateShiftCommand struct {
	EmployeeID   string
	StoreID      string
	RoleName     string
	Date         time.Time
	StartTime    string
	EndTime      string
	BreakMinutes int
	ActorRole    domain.Role
}

// UpdateShiftCommand changes shift times
type UpdateShiftCommand struct {
	ShiftID      string
	StartTime    string
	EndTime      string
	BreakMinutes int
	ActorRole    domain.Role
}

// TransitionShiftCommand moves one shift through the workflow
type TransitionShiftCommand struct {
	ShiftID   string
	Target    domain.ValidationStatus
	ActorRole domain.Role
}

// BulkTransitionCommand moves a store week's shifts through the workflow
// as a single atomic update
type BulkTransitionCommand struct {
	StoreID   string
	WeekStart time.Time
	Target    domain.ValidationStatus
	ActorRole domain.Role
}

// DeleteShiftCommand removes a shift
type DeleteShiftCommand struct {
	ShiftID   string
	ActorRole domain.Role
}

// ListShiftsQuery retrieves a store week's shifts
type ListShiftsQuery struct {
	StoreID   string
	WeekStart time.Time
}

// CoverageQuery runs the coverage validator for a store week
type CoverageQuery struct {
	StoreID   string
	WeekStart time.Time
}

// ComplianceQuery runs the rest-rule checker for an employee week
type ComplianceQuery struct {
	EmployeeID string
	WeekStart  time.Time
}

// CalculateHourBankCommand runs the weekly hour-bank calculation. An
// empty Statuses list means every operational status counts.
type CalculateHourBankCommand struct {
	StoreID              string
	EmployeeIDs          []string
	From                 time.Time
	To                   time.Time
	OnlyLockedShifts     bool
	Statuses             []domain.ShiftStatus
	RecalculateFromStart bool
	ActorRole            domain.Role
}

// RecalculateAllCommand destructively rebuilds hour-bank data. The
// rebuild always starts from the earliest stored shift, so only the
// upper bound is caller supplied.
type RecalculateAllCommand struct {
	StoreID   string
	To        time.Time
	ActorRole domain.Role
}

// CreateRecoveryRequestCommand requests consumption of banked hours.
// Creation carries no role gate: employees file their own requests and
// the decision step enforces rank.
type CreateRecoveryRequestCommand struct {
	EmployeeID     string
	StoreID        string
	RequestedHours float64
	ScheduledDate  time.Time
	Reason         string
}

// DecideRecoveryRequestCommand approves or rejects a pending request
type DecideRecoveryRequestCommand struct {
	RequestID string
	Approve   bool
	DecidedBy string
	ActorRole domain.Role
}

// UseRecoveryRequestCommand settles an approved request
type UseRecoveryRequestCommand struct {
	RequestID string
	ActorRole domain.Role
}

// StoreSummaryQuery aggregates hour-bank accounts for a store
type StoreSummaryQuery struct {
	StoreID string
}

// EmployeeReportQuery retrieves one employee's hour-bank history
type EmployeeReportQuery struct {
	EmployeeID string
	StoreID    string
}

// ResetHourBankCommand deletes hour-bank data for a store, or globally
// when StoreID is empty
type ResetHourBankCommand struct {
	StoreID   string
	ActorRole domain.Role
}

// ValidationReportQuery builds the combined weekly report for a store
type ValidationReportQuery struct {
	StoreID   string
	WeekStart time.Time
}

// SyncEmployeesCommand pulls employees from the HR system
type SyncEmployeesCommand struct {
	ActorRole domain.Role
}
