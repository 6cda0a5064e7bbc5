package domain

import (
	"context"
	"time"
)

// EmployeeRepository defines the interface for employee persistence
type EmployeeRepository interface {
	Save(ctx context.Context, employee *Employee) error
	FindByID(ctx context.Context, employeeID string) (*Employee, error)
	FindByExternalRef(ctx context.Context, ref string) (*Employee, error)
	FindByStore(ctx context.Context, storeID string) ([]*Employee, error)
	FindActive(ctx context.Context) ([]*Employee, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Employee, error)
	Delete(ctx context.Context, employeeID string) error
}

// StoreRepository defines the interface for store persistence
type StoreRepository interface {
	Save(ctx context.Context, store *Store) error
	FindByID(ctx context.Context, storeID string) (*Store, error)
	FindDefault(ctx context.Context) (*Store, error)
	FindActive(ctx context.Context) ([]*Store, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Store, error)
	Delete(ctx context.Context, storeID string) error
}

// ShiftRepository defines the interface for shift persistence
type ShiftRepository interface {
	Save(ctx context.Context, shift *Shift) error
	SaveAll(ctx context.Context, shifts []*Shift) error
	FindByID(ctx context.Context, shiftID string) (*Shift, error)
	FindByStoreWeek(ctx context.Context, storeID string, weekStart time.Time) ([]*Shift, error)
	FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]*Shift, error)
	FindByEmployeeStore(ctx context.Context, employeeID, storeID string, from, to time.Time) ([]*Shift, error)
	FindEarliestDate(ctx context.Context, storeID string) (time.Time, error)
	Delete(ctx context.Context, shiftID string) error
}

// RequirementRepository defines the interface for staffing requirement
// and weighting event persistence
type RequirementRepository interface {
	SaveRequirement(ctx context.Context, req *StaffRequirement) error
	ReplaceStoreRequirements(ctx context.Context, storeID string, reqs []*StaffRequirement) error
	FindRequirementsByStore(ctx context.Context, storeID string) ([]*StaffRequirement, error)
	DeleteRequirement(ctx context.Context, requirementID string) error

	SaveWeightingEvent(ctx context.Context, event *WeightingEvent) error
	FindWeightingEvents(ctx context.Context, storeID string, from, to time.Time) ([]*WeightingEvent, error)
	DeleteWeightingEvent(ctx context.Context, eventID string) error
}

// HourBankRepository defines the interface for hour bank persistence
type HourBankRepository interface {
	SaveAccount(ctx context.Context, account *HourBankAccount) error
	FindAccount(ctx context.Context, employeeID, storeID string) (*HourBankAccount, error)
	FindAccountsByStore(ctx context.Context, storeID string) ([]*HourBankAccount, error)
	FindAllAccounts(ctx context.Context) ([]*HourBankAccount, error)

	SaveEntry(ctx context.Context, entry *HourBankEntry) error
	FindEntries(ctx context.Context, accountID string) ([]*HourBankEntry, error)
	FindEntryForWeek(ctx context.Context, accountID string, weekStart time.Time) (*HourBankEntry, error)

	SaveRequest(ctx context.Context, request *HourRecoveryRequest) error
	FindRequest(ctx context.Context, requestID string) (*HourRecoveryRequest, error)
	FindRequestsByEmployee(ctx context.Context, employeeID string) ([]*HourRecoveryRequest, error)
	FindRequestsByStatus(ctx context.Context, status RecoveryStatus) ([]*HourRecoveryRequest, error)

	DeleteByStore(ctx context.Context, storeID string) (accounts, entries, requests int64, err error)
	DeleteAll(ctx context.Context) (accounts, entries, requests int64, err error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}
