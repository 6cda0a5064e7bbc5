package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayHours holds the opening span for a single day. A closed day is
// represented by Closed=true; Open/Close are "HH:MM" strings otherwise.
type DayHours struct {
	Open   string `bson:"open,omitempty" json:"open,omitempty"`
	Close  string `bson:"close,omitempty" json:"close,omitempty"`
	Closed bool   `bson:"closed" json:"closed"`
}

// OpeningHours maps the seven days of the week to their base opening span.
// Keys are lowercase weekday names as produced by WeekdayKey.
type OpeningHours map[string]DayHours

// WeekOverride replaces the base opening hours for one specific week.
type WeekOverride struct {
	WeekStart time.Time    `bson:"weekStart" json:"weekStart"`
	Hours     OpeningHours `bson:"hours" json:"hours"`
}

// ClosureDay marks a full or partial closure on a specific date.
// A partial closure carries custom hours for that date.
type ClosureDay struct {
	Date        time.Time `bson:"date" json:"date"`
	FullDay     bool      `bson:"fullDay" json:"fullDay"`
	CustomOpen  string    `bson:"customOpen,omitempty" json:"customOpen,omitempty"`
	CustomClose string    `bson:"customClose,omitempty" json:"customClose,omitempty"`
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Store is an aggregate root in the scheduling bounded context.
type Store struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StoreID       string             `bson:"storeId" json:"storeId"`
	Name          string             `bson:"name" json:"name"`
	OpeningHours  OpeningHours       `bson:"openingHours" json:"openingHours"`
	WeekOverrides []WeekOverride     `bson:"weekOverrides,omitempty" json:"weekOverrides,omitempty"`
	ClosureDays   []ClosureDay       `bson:"closureDays,omitempty" json:"closureDays,omitempty"`
	IsDefault     bool               `bson:"isDefault" json:"isDefault"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents  []DomainEvent      `bson:"-" json:"-"`
}

// NewStore creates a new Store aggregate with empty opening hours.
func NewStore(storeID, name string) *Store {
	now := time.Now()
	return &Store{
		StoreID:      storeID,
		Name:         name,
		OpeningHours: make(OpeningHours),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}
}

// WeekdayKey returns the lowercase weekday name used as OpeningHours key.
func WeekdayKey(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// HoursOn resolves the effective opening span for a calendar date.
// Resolution order: closure day, week override, base hours. The second
// return value is false when the store is closed that day or no hours
// are configured.
func (s *Store) HoursOn(date time.Time) (DayHours, bool) {
	date = DateOnly(date)

	for _, c := range s.ClosureDays {
		if SameDay(c.Date, date) {
			if c.FullDay {
				return DayHours{Closed: true}, false
			}
			return DayHours{Open: c.CustomOpen, Close: c.CustomClose}, true
		}
	}

	key := WeekdayKey(date)
	ws := WeekStart(date)
	for _, o := range s.WeekOverrides {
		if o.WeekStart.Equal(ws) {
			return resolveDayHours(o.Hours, key)
		}
	}

	return resolveDayHours(s.OpeningHours, key)
}

func resolveDayHours(hours OpeningHours, key string) (DayHours, bool) {
	dh, ok := hours[key]
	if !ok || dh.Closed || dh.Open == "" || dh.Close == "" {
		return DayHours{Closed: true}, false
	}
	return dh, true
}

// OpenSpan returns the open span for a date in minutes since midnight.
// ok is false when the store is closed or unconfigured that day.
func (s *Store) OpenSpan(date time.Time) (openMin, closeMin int, ok bool) {
	dh, open := s.HoursOn(date)
	if !open {
		return 0, 0, false
	}
	om, err := ParseClock(dh.Open)
	if err != nil {
		return 0, 0, false
	}
	cm, err := ParseClock(dh.Close)
	if err != nil || cm <= om {
		return 0, 0, false
	}
	return om, cm, true
}

// AddClosureDay registers a closure, replacing any existing closure on
// the same date.
func (s *Store) AddClosureDay(c ClosureDay) {
	c.Date = DateOnly(c.Date)
	for i := range s.ClosureDays {
		if SameDay(s.ClosureDays[i].Date, c.Date) {
			s.ClosureDays[i] = c
			s.UpdatedAt = time.Now()
			return
		}
	}
	s.ClosureDays = append(s.ClosureDays, c)
	s.UpdatedAt = time.Now()
}

// SetWeekOverride installs override hours for one week, replacing any
// existing override for the same week.
func (s *Store) SetWeekOverride(o WeekOverride) {
	o.WeekStart = WeekStart(o.WeekStart)
	for i := range s.WeekOverrides {
		if s.WeekOverrides[i].WeekStart.Equal(o.WeekStart) {
			s.WeekOverrides[i] = o
			s.UpdatedAt = time.Now()
			return
		}
	}
	s.WeekOverrides = append(s.WeekOverrides, o)
	s.UpdatedAt = time.Now()
}

// Deactivate marks the store as inactive.
func (s *Store) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}

// AddDomainEvent records a domain event for later publication.
func (s *Store) AddDomainEvent(event DomainEvent) {
	s.DomainEvents = append(s.DomainEvents, event)
}

// ClearDomainEvents clears all pending domain events.
func (s *Store) ClearDomainEvents() {
	s.DomainEvents = make([]DomainEvent, 0)
}
