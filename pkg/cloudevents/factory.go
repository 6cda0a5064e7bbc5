package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for scheduling domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new CloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *CloudEvent {
	event := &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
		Extensions:      make(map[string]interface{}),
	}

	return event
}

// CreateEventWithCorrelation creates an event with correlation tracking
func (f *EventFactory) CreateEventWithCorrelation(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
	correlationID string,
) *CloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.CorrelationID = correlationID
	return event
}

// CreateShiftCreatedEvent creates a ShiftCreated event
func (f *EventFactory) CreateShiftCreatedEvent(
	ctx context.Context,
	shiftID string,
	employeeID string,
	storeID string,
	date string,
	startTime string,
	endTime string,
	hours float64,
	status string,
) *CloudEvent {
	data := ShiftCreatedData{
		ShiftID:    shiftID,
		EmployeeID: employeeID,
		StoreID:    storeID,
		Date:       date,
		StartTime:  startTime,
		EndTime:    endTime,
		Hours:      hours,
		Status:     status,
	}
	event := f.CreateEvent(ctx, ShiftCreated, "shift/"+shiftID, data)
	event.StoreID = storeID
	return event
}

// CreateScheduleTransitionEvent creates an event for a schedule workflow transition
func (f *EventFactory) CreateScheduleTransitionEvent(
	ctx context.Context,
	eventType string,
	storeID string,
	weekStart string,
	fromState string,
	toState string,
	actorID string,
	actorRole string,
) *CloudEvent {
	data := ScheduleTransitionData{
		StoreID:   storeID,
		WeekStart: weekStart,
		FromState: fromState,
		ToState:   toState,
		ActorID:   actorID,
		ActorRole: actorRole,
	}
	event := f.CreateEvent(ctx, eventType, "schedule/"+storeID+"/"+weekStart, data)
	event.StoreID = storeID
	event.WeekStart = weekStart
	return event
}

// CreateCoverageCheckedEvent creates a CoverageChecked event
func (f *EventFactory) CreateCoverageCheckedEvent(
	ctx context.Context,
	storeID string,
	weekStart string,
	status string,
	score float64,
	grade string,
	issueCount int,
) *CloudEvent {
	data := CoverageCheckedData{
		StoreID:    storeID,
		WeekStart:  weekStart,
		Status:     status,
		Score:      score,
		Grade:      grade,
		IssueCount: issueCount,
	}
	event := f.CreateEvent(ctx, CoverageChecked, "schedule/"+storeID+"/"+weekStart, data)
	event.StoreID = storeID
	event.WeekStart = weekStart
	return event
}

// CreateComplianceCheckedEvent creates a ComplianceChecked event
func (f *EventFactory) CreateComplianceCheckedEvent(
	ctx context.Context,
	storeID string,
	weekStart string,
	status string,
	score float64,
	violationCount int,
	criticalCount int,
) *CloudEvent {
	data := ComplianceCheckedData{
		StoreID:        storeID,
		WeekStart:      weekStart,
		Status:         status,
		Score:          score,
		ViolationCount: violationCount,
		CriticalCount:  criticalCount,
	}
	event := f.CreateEvent(ctx, ComplianceChecked, "schedule/"+storeID+"/"+weekStart, data)
	event.StoreID = storeID
	event.WeekStart = weekStart
	return event
}

// CreateHourBankEntryEvent creates an HourBankEntryPosted event
func (f *EventFactory) CreateHourBankEntryEvent(
	ctx context.Context,
	entryID string,
	employeeID string,
	weekStart string,
	entryType string,
	hours float64,
	balanceAfter float64,
) *CloudEvent {
	data := HourBankEntryData{
		EntryID:      entryID,
		EmployeeID:   employeeID,
		WeekStart:    weekStart,
		EntryType:    entryType,
		Hours:        hours,
		BalanceAfter: balanceAfter,
	}
	event := f.CreateEvent(ctx, HourBankEntryPosted, "hourbank/"+employeeID, data)
	event.WeekStart = weekStart
	return event
}

// CreateRecoveryRequestEvent creates a recovery request lifecycle event
func (f *EventFactory) CreateRecoveryRequestEvent(
	ctx context.Context,
	eventType string,
	requestID string,
	employeeID string,
	hours float64,
	status string,
) *CloudEvent {
	data := RecoveryRequestData{
		RequestID:  requestID,
		EmployeeID: employeeID,
		Hours:      hours,
		Status:     status,
	}
	return f.CreateEvent(ctx, eventType, "recovery-request/"+requestID, data)
}

// CreateEmployeesSyncedEvent creates an EmployeesSynced event
func (f *EventFactory) CreateEmployeesSyncedEvent(
	ctx context.Context,
	imported int,
	updated int,
	skipped int,
	unmatched int,
	source string,
) *CloudEvent {
	data := EmployeesSyncedData{
		Imported:  imported,
		Updated:   updated,
		Skipped:   skipped,
		Unmatched: unmatched,
		Source:    source,
		SyncedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	return f.CreateEvent(ctx, EmployeesSynced, "employees/sync", data)
}
