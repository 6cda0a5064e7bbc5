package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewHourBankEntry tests entry classification
func TestNewHourBankEntry(t *testing.T) {
	week := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		contractHours float64
		actualHours   float64
		expectedDiff  float64
		expectedType  EntryType
	}{
		{name: "Overtime week", contractHours: 40, actualHours: 45, expectedDiff: 5, expectedType: EntryTypeExcess},
		{name: "Deficit week", contractHours: 40, actualHours: 36, expectedDiff: -4, expectedType: EntryTypeDeficit},
		{name: "Exact week is a zero deficit, not excess", contractHours: 40, actualHours: 40, expectedDiff: 0, expectedType: EntryTypeDeficit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := NewHourBankEntry("ENTRY-001", "ACC-001", "EMP-001", "STORE-001", week, tt.contractHours, tt.actualHours)
			assert.InDelta(t, tt.expectedDiff, entry.Difference, 0.001)
			assert.Equal(t, tt.expectedType, entry.Type)
			assert.True(t, entry.IsProcessed)
			// Week key normalizes to the Monday.
			assert.Equal(t, time.Monday, entry.WeekStart.Weekday())
		})
	}
}

// TestAccountPostEntry tests balance accumulation
func TestAccountPostEntry(t *testing.T) {
	account := NewHourBankAccount("ACC-001", "EMP-001", "STORE-001")
	week := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	account.PostEntry(NewHourBankEntry("ENTRY-001", "ACC-001", "EMP-001", "STORE-001", week, 40, 45))
	assert.InDelta(t, 5, account.CurrentBalance, 0.001)
	assert.InDelta(t, 5, account.TotalAccumulated, 0.001)

	account.PostEntry(NewHourBankEntry("ENTRY-002", "ACC-001", "EMP-001", "STORE-001", week.AddDate(0, 0, 7), 40, 37))
	assert.InDelta(t, 2, account.CurrentBalance, 0.001)
	// Deficits do not reduce the accumulated total.
	assert.InDelta(t, 5, account.TotalAccumulated, 0.001)
	require.NotNil(t, account.LastCalculatedAt)

	events := account.DomainEvents
	require.Len(t, events, 2)
	posted, ok := events[1].(*HourBankEntryPostedEvent)
	require.True(t, ok)
	assert.InDelta(t, -3, posted.Difference, 0.001)
	assert.InDelta(t, 2, posted.NewBalance, 0.001)
}

// TestNewRecoveryRequest tests request validation and reservation
func TestNewRecoveryRequest(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 5)

	tests := []struct {
		name           string
		balance        float64
		reserved       float64
		requestedHours float64
		scheduledDate  time.Time
		expectError    error
	}{
		{name: "Valid request", balance: 10, requestedHours: 4, scheduledDate: future},
		{name: "Zero hours rejected", balance: 10, requestedHours: 0, scheduledDate: future, expectError: ErrInvalidRecoveryHours},
		{name: "Negative hours rejected", balance: 10, requestedHours: -2, scheduledDate: future, expectError: ErrInvalidRecoveryHours},
		{name: "Exceeds balance", balance: 3, requestedHours: 4, scheduledDate: future, expectError: ErrInsufficientBalance},
		{name: "Reservation counts against balance", balance: 10, reserved: 8, requestedHours: 4, scheduledDate: future, expectError: ErrInsufficientBalance},
		{name: "Past date rejected", balance: 10, requestedHours: 4, scheduledDate: now.AddDate(0, 0, -1), expectError: ErrPastScheduledDate},
		{name: "Same day rejected", balance: 10, requestedHours: 4, scheduledDate: now, expectError: ErrPastScheduledDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := NewHourBankAccount("ACC-001", "EMP-001", "STORE-001")
			account.CurrentBalance = tt.balance
			account.ReservedHours = tt.reserved

			request, err := NewRecoveryRequest("REQ-001", account, tt.requestedHours, tt.scheduledDate, "day off", now)
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				// A rejected request must not mutate the account.
				assert.InDelta(t, tt.balance, account.CurrentBalance, 0.001)
				assert.InDelta(t, tt.reserved, account.ReservedHours, 0.001)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, RecoveryPending, request.Status)
			assert.InDelta(t, tt.reserved+tt.requestedHours, account.ReservedHours, 0.001)
			// Balance itself is not debited until the request is used.
			assert.InDelta(t, tt.balance, account.CurrentBalance, 0.001)
		})
	}
}

// TestRecoveryRequestLifecycle tests the full pending->approved->used path
func TestRecoveryRequestLifecycle(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	account := NewHourBankAccount("ACC-001", "EMP-001", "STORE-001")
	account.CurrentBalance = 10

	request, err := NewRecoveryRequest("REQ-001", account, 4, now.AddDate(0, 0, 5), "day off", now)
	require.NoError(t, err)

	assert.ErrorIs(t, request.Approve(RolePlanner, "PLN-001"), ErrRoleNotAllowed)
	assert.ErrorIs(t, request.MarkUsed(RolePlanner, account), ErrInvalidRequestState)

	require.NoError(t, request.Approve(RoleManager, "MGR-001"))
	assert.Equal(t, RecoveryApproved, request.Status)
	assert.Equal(t, "MGR-001", request.DecidedBy)

	require.NoError(t, request.MarkUsed(RolePlanner, account))
	assert.Equal(t, RecoveryUsed, request.Status)
	assert.InDelta(t, 6, account.CurrentBalance, 0.001)
	assert.InDelta(t, 0, account.ReservedHours, 0.001)
	assert.InDelta(t, 4, account.TotalRecovered, 0.001)

	// Used is terminal.
	assert.ErrorIs(t, request.Approve(RoleManager, "MGR-001"), ErrInvalidRequestState)
	assert.ErrorIs(t, request.MarkUsed(RoleManager, account), ErrInvalidRequestState)
}

// TestRecoveryRequestReject tests reservation release on rejection
func TestRecoveryRequestReject(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	account := NewHourBankAccount("ACC-001", "EMP-001", "STORE-001")
	account.CurrentBalance = 10

	request, err := NewRecoveryRequest("REQ-001", account, 4, now.AddDate(0, 0, 5), "day off", now)
	require.NoError(t, err)
	assert.InDelta(t, 4, account.ReservedHours, 0.001)

	require.NoError(t, request.Reject(RoleManager, "MGR-001", account))
	assert.Equal(t, RecoveryRejected, request.Status)
	assert.InDelta(t, 0, account.ReservedHours, 0.001)
	assert.InDelta(t, 10, account.CurrentBalance, 0.001)

	// Rejected is terminal.
	assert.ErrorIs(t, request.Approve(RoleManager, "MGR-001"), ErrInvalidRequestState)
}

// TestAccountReset tests zeroing before a rebuild
func TestAccountReset(t *testing.T) {
	account := NewHourBankAccount("ACC-001", "EMP-001", "STORE-001")
	account.CurrentBalance = 12
	account.ReservedHours = 3
	account.TotalAccumulated = 20
	account.TotalRecovered = 8
	now := time.Now()
	account.LastCalculatedAt = &now

	account.Reset()

	assert.Zero(t, account.CurrentBalance)
	assert.Zero(t, account.ReservedHours)
	assert.Zero(t, account.TotalAccumulated)
	assert.Zero(t, account.TotalRecovered)
	assert.Nil(t, account.LastCalculatedAt)
}
