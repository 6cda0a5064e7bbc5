package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryType classifies a weekly hour-bank entry.
type EntryType string

const (
	EntryTypeExcess  EntryType = "excess"
	EntryTypeDeficit EntryType = "deficit"
)

// RecoveryStatus is the state of an hour recovery request.
type RecoveryStatus string

const (
	RecoveryPending  RecoveryStatus = "pending"
	RecoveryApproved RecoveryStatus = "approved"
	RecoveryRejected RecoveryStatus = "rejected"
	RecoveryUsed     RecoveryStatus = "used"
)

// HourBankAccount tracks the running worked-vs-contracted balance for one
// employee at one store. Created lazily on first calculation.
type HourBankAccount struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	AccountID        string             `bson:"accountId" json:"accountId"`
	EmployeeID       string             `bson:"employeeId" json:"employeeId"`
	StoreID          string             `bson:"storeId" json:"storeId"`
	CurrentBalance   float64            `bson:"currentBalance" json:"currentBalance"`
	ReservedHours    float64            `bson:"reservedHours" json:"reservedHours"`
	TotalAccumulated float64            `bson:"totalAccumulated" json:"totalAccumulated"`
	TotalRecovered   float64            `bson:"totalRecovered" json:"totalRecovered"`
	LastCalculatedAt *time.Time         `bson:"lastCalculatedAt,omitempty" json:"lastCalculatedAt,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents     []DomainEvent      `bson:"-" json:"-"`
}

// HourBankEntry records one employee-week: contracted vs actual hours and
// the signed difference. Immutable once created except for IsProcessed.
type HourBankEntry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EntryID        string             `bson:"entryId" json:"entryId"`
	AccountID      string             `bson:"accountId" json:"accountId"`
	EmployeeID     string             `bson:"employeeId" json:"employeeId"`
	StoreID        string             `bson:"storeId" json:"storeId"`
	WeekStart      time.Time          `bson:"weekStart" json:"weekStart"`
	ContractHours  float64            `bson:"contractHours" json:"contractHours"`
	ActualHours    float64            `bson:"actualHours" json:"actualHours"`
	Difference     float64            `bson:"difference" json:"difference"`
	Type           EntryType          `bson:"type" json:"type"`
	IsProcessed    bool               `bson:"isProcessed" json:"isProcessed"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// HourRecoveryRequest is an employee's request to consume banked credit
// hours on a future date. State machine: pending -> approved -> used,
// or pending -> rejected.
type HourRecoveryRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RequestID      string             `bson:"requestId" json:"requestId"`
	AccountID      string             `bson:"accountId" json:"accountId"`
	EmployeeID     string             `bson:"employeeId" json:"employeeId"`
	StoreID        string             `bson:"storeId" json:"storeId"`
	RequestedHours float64            `bson:"requestedHours" json:"requestedHours"`
	ScheduledDate  time.Time          `bson:"scheduledDate" json:"scheduledDate"`
	Status         RecoveryStatus     `bson:"status" json:"status"`
	Reason         string             `bson:"reason,omitempty" json:"reason,omitempty"`
	DecidedBy      string             `bson:"decidedBy,omitempty" json:"decidedBy,omitempty"`
	DecidedAt      *time.Time         `bson:"decidedAt,omitempty" json:"decidedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewHourBankAccount creates an empty account for an employee at a store.
func NewHourBankAccount(accountID, employeeID, storeID string) *HourBankAccount {
	now := time.Now()
	return &HourBankAccount{
		AccountID:    accountID,
		EmployeeID:   employeeID,
		StoreID:      storeID,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}
}

// AvailableBalance is the spendable credit: current balance minus hours
// soft-held by pending or approved recovery requests.
func (a *HourBankAccount) AvailableBalance() float64 {
	return a.CurrentBalance - a.ReservedHours
}

// PostEntry applies a weekly entry to the account balance. Positive
// differences also accumulate into TotalAccumulated.
func (a *HourBankAccount) PostEntry(entry *HourBankEntry) {
	a.CurrentBalance += entry.Difference
	if entry.Difference > 0 {
		a.TotalAccumulated += entry.Difference
	}
	now := time.Now()
	a.LastCalculatedAt = &now
	a.UpdatedAt = now

	a.AddDomainEvent(&HourBankEntryPostedEvent{
		AccountID:  a.AccountID,
		EmployeeID: a.EmployeeID,
		StoreID:    a.StoreID,
		WeekStart:  entry.WeekStart,
		Difference: entry.Difference,
		EntryType:  string(entry.Type),
		NewBalance: a.CurrentBalance,
		PostedAt:   now,
	})
}

// Reset zeroes the account before a full rebuild.
func (a *HourBankAccount) Reset() {
	a.CurrentBalance = 0
	a.ReservedHours = 0
	a.TotalAccumulated = 0
	a.TotalRecovered = 0
	a.LastCalculatedAt = nil
	a.UpdatedAt = time.Now()
}

// NewHourBankEntry builds the weekly entry for contracted vs actual hours.
// The week key is normalized to the Monday of the week. Only a strictly
// positive difference is excess; an exactly met contract is a deficit
// entry of zero.
func NewHourBankEntry(entryID, accountID, employeeID, storeID string, weekStart time.Time, contractHours, actualHours float64) *HourBankEntry {
	diff := actualHours - contractHours
	entryType := EntryTypeDeficit
	if diff > 0 {
		entryType = EntryTypeExcess
	}
	return &HourBankEntry{
		EntryID:       entryID,
		AccountID:     accountID,
		EmployeeID:    employeeID,
		StoreID:       storeID,
		WeekStart:     WeekStart(weekStart),
		ContractHours: contractHours,
		ActualHours:   actualHours,
		Difference:    diff,
		Type:          entryType,
		IsProcessed:   true,
		CreatedAt:     time.Now(),
	}
}

// NewRecoveryRequest validates and creates a pending recovery request and
// reserves the requested hours on the account so the same credit cannot
// be spent twice. The account mutation and the request creation succeed
// or fail together.
func NewRecoveryRequest(requestID string, account *HourBankAccount, requestedHours float64, scheduledDate time.Time, reason string, now time.Time) (*HourRecoveryRequest, error) {
	if requestedHours <= 0 {
		return nil, ErrInvalidRecoveryHours
	}
	if requestedHours > account.AvailableBalance() {
		return nil, ErrInsufficientBalance
	}
	if !DateOnly(scheduledDate).After(DateOnly(now)) {
		return nil, ErrPastScheduledDate
	}

	account.ReservedHours += requestedHours
	account.UpdatedAt = now
	account.AddDomainEvent(&RecoveryRequestEvent{
		RequestID:  requestID,
		AccountID:  account.AccountID,
		EmployeeID: account.EmployeeID,
		Hours:      requestedHours,
		Status:     string(RecoveryPending),
		OccurredOn: now,
	})

	return &HourRecoveryRequest{
		RequestID:      requestID,
		AccountID:      account.AccountID,
		EmployeeID:     account.EmployeeID,
		StoreID:        account.StoreID,
		RequestedHours: requestedHours,
		ScheduledDate:  DateOnly(scheduledDate),
		Status:         RecoveryPending,
		Reason:         reason,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Approve moves a pending request to approved. Manager rank or above.
// The reservation placed at creation time stays in effect.
func (r *HourRecoveryRequest) Approve(actor Role, decidedBy string) error {
	if !actor.AtLeast(RoleManager) {
		return ErrRoleNotAllowed
	}
	if r.Status != RecoveryPending {
		return ErrInvalidRequestState
	}
	now := time.Now()
	r.Status = RecoveryApproved
	r.DecidedBy = decidedBy
	r.DecidedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject moves a pending request to rejected and releases the reserved
// hours back to the account.
func (r *HourRecoveryRequest) Reject(actor Role, decidedBy string, account *HourBankAccount) error {
	if !actor.AtLeast(RoleManager) {
		return ErrRoleNotAllowed
	}
	if r.Status != RecoveryPending {
		return ErrInvalidRequestState
	}
	now := time.Now()
	r.Status = RecoveryRejected
	r.DecidedBy = decidedBy
	r.DecidedAt = &now
	r.UpdatedAt = now

	account.ReservedHours -= r.RequestedHours
	if account.ReservedHours < 0 {
		account.ReservedHours = 0
	}
	account.UpdatedAt = now
	account.AddDomainEvent(&RecoveryRequestEvent{
		RequestID:  r.RequestID,
		AccountID:  account.AccountID,
		EmployeeID: account.EmployeeID,
		Hours:      r.RequestedHours,
		Status:     string(RecoveryRejected),
		OccurredOn: now,
	})
	return nil
}

// MarkUsed settles an approved request: the balance is debited, the
// reservation released, and TotalRecovered incremented. Used is terminal.
func (r *HourRecoveryRequest) MarkUsed(actor Role, account *HourBankAccount) error {
	if !actor.AtLeast(RolePlanner) {
		return ErrRoleNotAllowed
	}
	if r.Status != RecoveryApproved {
		return ErrInvalidRequestState
	}
	now := time.Now()
	r.Status = RecoveryUsed
	r.UpdatedAt = now

	account.CurrentBalance -= r.RequestedHours
	account.ReservedHours -= r.RequestedHours
	if account.ReservedHours < 0 {
		account.ReservedHours = 0
	}
	account.TotalRecovered += r.RequestedHours
	account.UpdatedAt = now
	account.AddDomainEvent(&RecoveryRequestEvent{
		RequestID:  r.RequestID,
		AccountID:  account.AccountID,
		EmployeeID: account.EmployeeID,
		Hours:      r.RequestedHours,
		Status:     string(RecoveryUsed),
		OccurredOn: now,
	})
	return nil
}

// AddDomainEvent records a domain event for later publication.
func (a *HourBankAccount) AddDomainEvent(event DomainEvent) {
	a.DomainEvents = append(a.DomainEvents, event)
}

// ClearDomainEvents clears all pending domain events.
func (a *HourBankAccount) ClearDomainEvents() {
	a.DomainEvents = make([]DomainEvent, 0)
}
