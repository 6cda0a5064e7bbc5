package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate() time.Time {
	return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

// TestNewShift tests shift creation
func TestNewShift(t *testing.T) {
	tests := []struct {
		name         string
		startTime    string
		endTime      string
		breakMinutes int
		expectError  error
	}{
		{name: "Regular day shift", startTime: "08:00", endTime: "17:00", breakMinutes: 60},
		{name: "No break", startTime: "09:00", endTime: "13:00", breakMinutes: 0},
		{name: "End before start", startTime: "17:00", endTime: "08:00", expectError: ErrInvalidShiftTimes},
		{name: "Break swallows the shift", startTime: "08:00", endTime: "09:00", breakMinutes: 60, expectError: ErrInvalidShiftTimes},
		{name: "Bad clock value", startTime: "8am", endTime: "17:00", expectError: ErrInvalidClock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift, err := NewShift("SHIFT-001", "EMP-001", "STORE-001", "cashier", testDate(), tt.startTime, tt.endTime, tt.breakMinutes)
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ShiftStatusScheduled, shift.Status)
			assert.Equal(t, ValidationDraft, shift.ValidationStatus)

			events := shift.DomainEvents
			require.NotEmpty(t, events)
			created, ok := events[0].(*ShiftCreatedEvent)
			require.True(t, ok)
			assert.Equal(t, "SHIFT-001", created.ShiftID)
		})
	}
}

// TestShiftActualHours tests paid hour computation
func TestShiftActualHours(t *testing.T) {
	tests := []struct {
		name         string
		startTime    string
		endTime      string
		breakMinutes int
		expected     float64
	}{
		{name: "Nine to five with lunch", startTime: "08:00", endTime: "17:00", breakMinutes: 60, expected: 8},
		{name: "Half day no break", startTime: "09:00", endTime: "13:30", breakMinutes: 0, expected: 4.5},
		{name: "Long day with break", startTime: "08:00", endTime: "19:00", breakMinutes: 60, expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift, err := NewShift("SHIFT-001", "EMP-001", "STORE-001", "cashier", testDate(), tt.startTime, tt.endTime, tt.breakMinutes)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, shift.ActualHours(), 0.001)
		})
	}
}

// TestShiftTransition tests the validation workflow
func TestShiftTransition(t *testing.T) {
	tests := []struct {
		name        string
		path        []ValidationStatus
		actor       Role
		target      ValidationStatus
		expectError error
	}{
		{
			name:   "Planner validates draft",
			actor:  RolePlanner,
			target: ValidationValidated,
		},
		{
			name:        "Employee cannot validate",
			actor:       RoleEmployee,
			target:      ValidationValidated,
			expectError: ErrRoleNotAllowed,
		},
		{
			name:        "Draft cannot skip to published",
			actor:       RoleManager,
			target:      ValidationPublished,
			expectError: ErrInvalidTransition,
		},
		{
			name:   "Manager publishes validated schedule",
			path:   []ValidationStatus{ValidationValidated},
			actor:  RoleManager,
			target: ValidationPublished,
		},
		{
			name:        "Planner cannot publish",
			path:        []ValidationStatus{ValidationValidated},
			actor:       RolePlanner,
			target:      ValidationPublished,
			expectError: ErrRoleNotAllowed,
		},
		{
			name:   "Manager locks published schedule",
			path:   []ValidationStatus{ValidationValidated, ValidationPublished},
			actor:  RoleManager,
			target: ValidationLockedFinal,
		},
		{
			name:        "Manager cannot revert locked final",
			path:        []ValidationStatus{ValidationValidated, ValidationPublished, ValidationLockedFinal},
			actor:       RoleManager,
			target:      ValidationPublished,
			expectError: ErrRoleNotAllowed,
		},
		{
			name:   "Admin reverts locked final",
			path:   []ValidationStatus{ValidationValidated, ValidationPublished, ValidationLockedFinal},
			actor:  RoleAdmin,
			target: ValidationPublished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift, err := NewShift("SHIFT-001", "EMP-001", "STORE-001", "cashier", testDate(), "08:00", "17:00", 60)
			require.NoError(t, err)
			for _, step := range tt.path {
				require.NoError(t, shift.Transition(RoleAdmin, step))
			}

			err = shift.Transition(tt.actor, tt.target)
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.target, shift.ValidationStatus)
			}
		})
	}
}

// TestShiftUpdateLockedFinal tests that locked final shifts reject edits
func TestShiftUpdateLockedFinal(t *testing.T) {
	shift, err := NewShift("SHIFT-001", "EMP-001", "STORE-001", "cashier", testDate(), "08:00", "17:00", 60)
	require.NoError(t, err)
	require.NoError(t, shift.Transition(RoleAdmin, ValidationValidated))
	require.NoError(t, shift.Transition(RoleAdmin, ValidationPublished))
	require.NoError(t, shift.Transition(RoleAdmin, ValidationLockedFinal))

	err = shift.Update(RoleAdmin, "09:00", "18:00", 60)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
	assert.Equal(t, "08:00", shift.StartTime)
}

// TestShiftManualLock tests the advisory lock flag
func TestShiftManualLock(t *testing.T) {
	shift, err := NewShift("SHIFT-001", "EMP-001", "STORE-001", "cashier", testDate(), "08:00", "17:00", 60)
	require.NoError(t, err)

	assert.ErrorIs(t, shift.Lock(RoleEmployee), ErrRoleNotAllowed)
	require.NoError(t, shift.Lock(RolePlanner))

	assert.ErrorIs(t, shift.Update(RolePlanner, "09:00", "18:00", 60), ErrShiftLocked)
	require.NoError(t, shift.Update(RoleManager, "09:00", "18:00", 60))

	assert.ErrorIs(t, shift.Unlock(RolePlanner), ErrRoleNotAllowed)
	require.NoError(t, shift.Unlock(RoleManager))
	assert.False(t, shift.IsLocked)
}
