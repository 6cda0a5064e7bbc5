package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PeakWindow raises the minimum staff inside a sub-range of the day.
type PeakWindow struct {
	StartTime       string `bson:"startTime" json:"startTime"`
	EndTime         string `bson:"endTime" json:"endTime"`
	AdditionalStaff int    `bson:"additionalStaff" json:"additionalStaff"`
}

// RoleRequirement is the staffing band for one role on one weekday.
type RoleRequirement struct {
	RoleName    string       `bson:"roleName" json:"roleName"`
	MinStaff    int          `bson:"minStaff" json:"minStaff"`
	MaxStaff    int          `bson:"maxStaff" json:"maxStaff"`
	PeakWindows []PeakWindow `bson:"peakWindows,omitempty" json:"peakWindows,omitempty"`
}

// StaffRequirement holds the staffing configuration for one store on one
// weekday. Keys into the week via DayOfWeek, a lowercase weekday name.
type StaffRequirement struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RequirementID string            `bson:"requirementId" json:"requirementId"`
	StoreID      string             `bson:"storeId" json:"storeId"`
	DayOfWeek    string             `bson:"dayOfWeek" json:"dayOfWeek"`
	Roles        []RoleRequirement  `bson:"roles" json:"roles"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WeightingEvent is a date-ranged demand multiplier applied to staffing
// requirements. Multiplier is bounded to [0.1, 3.0].
type WeightingEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EventID    string             `bson:"eventId" json:"eventId"`
	Name       string             `bson:"name" json:"name"`
	StartDate  time.Time          `bson:"startDate" json:"startDate"`
	EndDate    time.Time          `bson:"endDate" json:"endDate"`
	Multiplier float64            `bson:"multiplier" json:"multiplier"`
	DaysOfWeek []string           `bson:"daysOfWeek,omitempty" json:"daysOfWeek,omitempty"`
	StoreIDs   []string           `bson:"storeIds,omitempty" json:"storeIds,omitempty"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewWeightingEvent creates a weighting event after validating its bounds.
func NewWeightingEvent(eventID, name string, start, end time.Time, multiplier float64) (*WeightingEvent, error) {
	if multiplier < 0.1 || multiplier > 3.0 {
		return nil, ErrInvalidMultiplier
	}
	now := time.Now()
	return &WeightingEvent{
		EventID:    eventID,
		Name:       name,
		StartDate:  DateOnly(start),
		EndDate:    DateOnly(end),
		Multiplier: multiplier,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AppliesTo reports whether the event is active for a store on a date.
// An empty DaysOfWeek or StoreIDs list matches everything.
func (w *WeightingEvent) AppliesTo(storeID string, date time.Time) bool {
	if !w.IsActive {
		return false
	}
	d := DateOnly(date)
	if d.Before(w.StartDate) || d.After(w.EndDate) {
		return false
	}
	if len(w.DaysOfWeek) > 0 {
		key := WeekdayKey(d)
		found := false
		for _, dow := range w.DaysOfWeek {
			if dow == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(w.StoreIDs) > 0 {
		found := false
		for _, id := range w.StoreIDs {
			if id == storeID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// WeightedBand applies every matching weighting event to a base staffing
// band. Multipliers compose multiplicatively and the result rounds to the
// nearest integer. A positive base minimum never weights down to zero,
// and a zero base maximum stays zero, meaning no upper bound.
func WeightedBand(baseMin, baseMax int, storeID string, date time.Time, events []*WeightingEvent) (int, int) {
	factor := 1.0
	for _, ev := range events {
		if ev.AppliesTo(storeID, date) {
			factor *= ev.Multiplier
		}
	}
	if factor == 1.0 {
		return baseMin, baseMax
	}

	min := int(math.Round(float64(baseMin) * factor))
	if baseMin > 0 && min < 1 {
		min = 1
	}
	if baseMax == 0 {
		return min, 0
	}
	max := int(math.Round(float64(baseMax) * factor))
	if max < min {
		max = min
	}
	return min, max
}

// RoleFor returns the requirement for a role name, if configured.
func (r *StaffRequirement) RoleFor(roleName string) (RoleRequirement, bool) {
	for _, rr := range r.Roles {
		if rr.RoleName == roleName {
			return rr, true
		}
	}
	return RoleRequirement{}, false
}

// DuplicateRequirements produces a copy of a store's requirements for a
// target weekday list, applied as a single transform so callers can swap
// the result in atomically. Source entries without the requested source
// day are skipped.
func DuplicateRequirements(existing []*StaffRequirement, storeID, sourceDay string, targetDays []string, idGen func() string) []*StaffRequirement {
	var source *StaffRequirement
	for _, r := range existing {
		if r.StoreID == storeID && r.DayOfWeek == sourceDay {
			source = r
			break
		}
	}
	if source == nil {
		return existing
	}

	next := make([]*StaffRequirement, 0, len(existing)+len(targetDays))
	replaced := make(map[string]bool, len(targetDays))
	for _, day := range targetDays {
		replaced[day] = true
	}

	for _, r := range existing {
		if r.StoreID == storeID && replaced[r.DayOfWeek] && r.DayOfWeek != sourceDay {
			continue
		}
		next = append(next, r)
	}

	now := time.Now()
	for _, day := range targetDays {
		if day == sourceDay {
			continue
		}
		roles := make([]RoleRequirement, len(source.Roles))
		copy(roles, source.Roles)
		next = append(next, &StaffRequirement{
			RequirementID: idGen(),
			StoreID:       storeID,
			DayOfWeek:     day,
			Roles:         roles,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return next
}
