package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// ShiftCreatedEvent is published when a shift is created
type ShiftCreatedEvent struct {
	ShiftID    string    `json:"shiftId"`
	EmployeeID string    `json:"employeeId"`
	StoreID    string    `json:"storeId"`
	Date       time.Time `json:"date"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *ShiftCreatedEvent) EventType() string     { return "hrops.scheduling.shift-created" }
func (e *ShiftCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// ShiftUpdatedEvent is published when shift times change
type ShiftUpdatedEvent struct {
	ShiftID   string    `json:"shiftId"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *ShiftUpdatedEvent) EventType() string     { return "hrops.scheduling.shift-updated" }
func (e *ShiftUpdatedEvent) OccurredAt() time.Time { return e.UpdatedAt }

// ShiftTransitionedEvent is published when a shift moves through the
// validation workflow
type ShiftTransitionedEvent struct {
	ShiftID      string    `json:"shiftId"`
	FromStatus   string    `json:"fromStatus"`
	ToStatus     string    `json:"toStatus"`
	Actor        string    `json:"actor"`
	TransitionAt time.Time `json:"transitionAt"`
}

func (e *ShiftTransitionedEvent) EventType() string     { return "hrops.scheduling.shift-transitioned" }
func (e *ShiftTransitionedEvent) OccurredAt() time.Time { return e.TransitionAt }

// HourBankEntryPostedEvent is published when a weekly entry is applied
// to an account balance
type HourBankEntryPostedEvent struct {
	AccountID  string    `json:"accountId"`
	EmployeeID string    `json:"employeeId"`
	StoreID    string    `json:"storeId"`
	WeekStart  time.Time `json:"weekStart"`
	Difference float64   `json:"difference"`
	EntryType  string    `json:"entryType"`
	NewBalance float64   `json:"newBalance"`
	PostedAt   time.Time `json:"postedAt"`
}

func (e *HourBankEntryPostedEvent) EventType() string     { return "hrops.hourbank.entry-posted" }
func (e *HourBankEntryPostedEvent) OccurredAt() time.Time { return e.PostedAt }

// RecoveryRequestEvent is published on every recovery request state change
type RecoveryRequestEvent struct {
	RequestID  string    `json:"requestId"`
	AccountID  string    `json:"accountId"`
	EmployeeID string    `json:"employeeId"`
	Hours      float64   `json:"hours"`
	Status     string    `json:"status"`
	OccurredOn time.Time `json:"occurredOn"`
}

func (e *RecoveryRequestEvent) EventType() string     { return "hrops.hourbank.recovery-request" }
func (e *RecoveryRequestEvent) OccurredAt() time.Time { return e.OccurredOn }

// EmployeesSyncedEvent is published after an HR system sync run
type EmployeesSyncedEvent struct {
	Imported   int       `json:"imported"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (e *EmployeesSyncedEvent) EventType() string     { return "hrops.employees.synced" }
func (e *EmployeesSyncedEvent) OccurredAt() time.Time { return e.FinishedAt }
