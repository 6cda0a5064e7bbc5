package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShiftStatus is the operational status of a shift.
type ShiftStatus string

const (
	ShiftStatusScheduled ShiftStatus = "scheduled"
	ShiftStatusConfirmed ShiftStatus = "confirmed"
	ShiftStatusCompleted ShiftStatus = "completed"
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

// ValidationStatus is the workflow gate controlling who may edit a shift.
type ValidationStatus string

const (
	ValidationDraft       ValidationStatus = "draft"
	ValidationValidated   ValidationStatus = "validated"
	ValidationPublished   ValidationStatus = "published"
	ValidationLockedFinal ValidationStatus = "locked_final"
)

// workflowTransitions maps each validation status to the statuses it may
// move to and the minimum role allowed to perform the transition.
var workflowTransitions = map[ValidationStatus]map[ValidationStatus]Role{
	ValidationDraft: {
		ValidationValidated: RolePlanner,
	},
	ValidationValidated: {
		ValidationDraft:     RolePlanner,
		ValidationPublished: RoleManager,
	},
	ValidationPublished: {
		ValidationValidated:   RoleManager,
		ValidationLockedFinal: RoleManager,
	},
	ValidationLockedFinal: {
		ValidationPublished: RoleAdmin,
	},
}

// Shift is an aggregate root in the scheduling bounded context.
type Shift struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ShiftID          string             `bson:"shiftId" json:"shiftId"`
	EmployeeID       string             `bson:"employeeId" json:"employeeId"`
	StoreID          string             `bson:"storeId" json:"storeId"`
	RoleName         string             `bson:"roleName" json:"roleName"`
	Date             time.Time          `bson:"date" json:"date"`
	StartTime        string             `bson:"startTime" json:"startTime"`
	EndTime          string             `bson:"endTime" json:"endTime"`
	BreakMinutes     int                `bson:"breakMinutes" json:"breakMinutes"`
	Status           ShiftStatus        `bson:"status" json:"status"`
	ValidationStatus ValidationStatus   `bson:"validationStatus" json:"validationStatus"`
	IsLocked         bool               `bson:"isLocked" json:"isLocked"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents     []DomainEvent      `bson:"-" json:"-"`
}

// NewShift creates a new Shift aggregate in draft status.
func NewShift(shiftID, employeeID, storeID, roleName string, date time.Time, startTime, endTime string, breakMinutes int) (*Shift, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return nil, err
	}
	if end <= start || breakMinutes < 0 || breakMinutes >= end-start {
		return nil, ErrInvalidShiftTimes
	}

	now := time.Now()
	s := &Shift{
		ShiftID:          shiftID,
		EmployeeID:       employeeID,
		StoreID:          storeID,
		RoleName:         roleName,
		Date:             DateOnly(date),
		StartTime:        startTime,
		EndTime:          endTime,
		BreakMinutes:     breakMinutes,
		Status:           ShiftStatusScheduled,
		ValidationStatus: ValidationDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
		DomainEvents:     make([]DomainEvent, 0),
	}
	s.AddDomainEvent(&ShiftCreatedEvent{
		ShiftID:    shiftID,
		EmployeeID: employeeID,
		StoreID:    storeID,
		Date:       s.Date,
		StartTime:  startTime,
		EndTime:    endTime,
		CreatedAt:  now,
	})
	return s, nil
}

// StartMinutes returns the shift start in minutes since midnight.
func (s *Shift) StartMinutes() int {
	m, _ := ParseClock(s.StartTime)
	return m
}

// EndMinutes returns the shift end in minutes since midnight.
func (s *Shift) EndMinutes() int {
	m, _ := ParseClock(s.EndTime)
	return m
}

// StartAt returns the absolute start instant of the shift.
func (s *Shift) StartAt() time.Time {
	return s.Date.Add(time.Duration(s.StartMinutes()) * time.Minute)
}

// EndAt returns the absolute end instant of the shift.
func (s *Shift) EndAt() time.Time {
	return s.Date.Add(time.Duration(s.EndMinutes()) * time.Minute)
}

// ActualHours returns the paid hours: span minus break, in hours.
func (s *Shift) ActualHours() float64 {
	worked := s.EndMinutes() - s.StartMinutes() - s.BreakMinutes
	if worked < 0 {
		return 0
	}
	return float64(worked) / 60.0
}

// Editable reports whether the shift accepts edits at all.
func (s *Shift) Editable() bool {
	return !s.IsLocked && s.ValidationStatus != ValidationLockedFinal
}

// Update changes the shift times. Edits are rejected on locked shifts.
func (s *Shift) Update(actor Role, startTime, endTime string, breakMinutes int) error {
	if s.ValidationStatus == ValidationLockedFinal {
		return ErrRoleNotAllowed
	}
	if s.IsLocked && !actor.AtLeast(RoleManager) {
		return ErrShiftLocked
	}
	start, err := ParseClock(startTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return err
	}
	if end <= start || breakMinutes < 0 || breakMinutes >= end-start {
		return ErrInvalidShiftTimes
	}

	s.StartTime = startTime
	s.EndTime = endTime
	s.BreakMinutes = breakMinutes
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(&ShiftUpdatedEvent{
		ShiftID:   s.ShiftID,
		StartTime: startTime,
		EndTime:   endTime,
		UpdatedAt: s.UpdatedAt,
	})
	return nil
}

// Transition moves the shift through the validation workflow. The actor
// role must be at least the rank required for the specific transition.
func (s *Shift) Transition(actor Role, target ValidationStatus) error {
	allowed, ok := workflowTransitions[s.ValidationStatus]
	if !ok {
		return ErrInvalidTransition
	}
	minRole, ok := allowed[target]
	if !ok {
		return ErrInvalidTransition
	}
	if !actor.AtLeast(minRole) {
		return ErrRoleNotAllowed
	}

	from := s.ValidationStatus
	s.ValidationStatus = target
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(&ShiftTransitionedEvent{
		ShiftID:      s.ShiftID,
		FromStatus:   string(from),
		ToStatus:     string(target),
		Actor:        string(actor),
		TransitionAt: s.UpdatedAt,
	})
	return nil
}

// Lock sets the manual edit lock. Planner rank or above.
func (s *Shift) Lock(actor Role) error {
	if !actor.AtLeast(RolePlanner) {
		return ErrRoleNotAllowed
	}
	s.IsLocked = true
	s.UpdatedAt = time.Now()
	return nil
}

// Unlock clears the manual edit lock. Manager rank or above.
func (s *Shift) Unlock(actor Role) error {
	if !actor.AtLeast(RoleManager) {
		return ErrRoleNotAllowed
	}
	s.IsLocked = false
	s.UpdatedAt = time.Now()
	return nil
}

// Cancel marks the shift cancelled. Cancelled shifts stay in the
// collection but are ignored by coverage and hour-bank runs.
func (s *Shift) Cancel(actor Role) error {
	if s.ValidationStatus == ValidationLockedFinal {
		return ErrRoleNotAllowed
	}
	if !actor.AtLeast(RolePlanner) {
		return ErrRoleNotAllowed
	}
	s.Status = ShiftStatusCancelled
	s.UpdatedAt = time.Now()
	return nil
}

// CountsForWork reports whether the shift contributes worked hours.
func (s *Shift) CountsForWork() bool {
	return s.Status != ShiftStatusCancelled
}

// AddDomainEvent records a domain event for later publication.
func (s *Shift) AddDomainEvent(event DomainEvent) {
	s.DomainEvents = append(s.DomainEvents, event)
}

// ClearDomainEvents clears all pending domain events.
func (s *Shift) ClearDomainEvents() {
	s.DomainEvents = make([]DomainEvent, 0)
}
