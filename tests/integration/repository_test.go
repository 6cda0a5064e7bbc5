package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrops-platform/scheduling-service/internal/domain"
	infra "github.com/hrops-platform/scheduling-service/internal/infrastructure/mongodb"
	"github.com/hrops-platform/scheduling-service/pkg/cloudevents"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
	"github.com/hrops-platform/scheduling-service/pkg/metrics"
	sharedmongo "github.com/hrops-platform/scheduling-service/pkg/mongodb"
	sharedtesting "github.com/hrops-platform/scheduling-service/pkg/testing"
)

func setupTestDatabase(t *testing.T) (*sharedmongo.InstrumentedClient, func()) {
	ctx := context.Background()

	mongoContainer, err := sharedtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)

	config := sharedmongo.DefaultConfig()
	config.URI = mongoContainer.URI
	config.Database = "test_scheduling_db"

	client, err := sharedmongo.NewClient(ctx, config)
	require.NoError(t, err)

	logger := logging.New(logging.DefaultConfig("test"))
	instrumented := sharedmongo.NewInstrumentedClient(client, metrics.New(metrics.DefaultConfig("test")), logger)

	cleanup := func() {
		if err := instrumented.Close(ctx); err != nil {
			t.Logf("Failed to disconnect MongoDB client: %v", err)
		}
		if err := mongoContainer.Close(ctx); err != nil {
			t.Logf("Failed to close MongoDB container: %v", err)
		}
	}

	return instrumented, cleanup
}

func testEventFactory() *cloudevents.EventFactory {
	return cloudevents.NewEventFactory("/scheduling-service")
}

func createTestShift(t *testing.T, shiftID, employeeID string, date time.Time) *domain.Shift {
	t.Helper()
	shift, err := domain.NewShift(shiftID, employeeID, "ST-1", "cashier", date, "09:00", "17:00", 30)
	require.NoError(t, err)
	return shift
}

func TestShiftRepository_Save(t *testing.T) {
	client, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := infra.NewShiftRepository(client, testEventFactory())
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Save new shift with outbox event", func(t *testing.T) {
		shift := createTestShift(t, "SH-001", "E-001", monday)

		err := repo.Save(ctx, shift)
		assert.NoError(t, err)
		assert.Empty(t, shift.DomainEvents, "domain events must be cleared after save")

		found, err := repo.FindByID(ctx, "SH-001")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "E-001", found.EmployeeID)
		assert.Equal(t, domain.ValidationDraft, found.ValidationStatus)
		assert.Equal(t, 7.5, found.ActualHours())

		outboxEvents, err := repo.GetOutboxRepository().FindByAggregateID(ctx, "SH-001")
		require.NoError(t, err)
		assert.Len(t, outboxEvents, 1)
	})

	t.Run("Upsert after workflow transition", func(t *testing.T) {
		shift := createTestShift(t, "SH-002", "E-002", monday)
		require.NoError(t, repo.Save(ctx, shift))

		require.NoError(t, shift.Transition(domain.RolePlanner, domain.ValidationValidated))
		require.NoError(t, repo.Save(ctx, shift))

		found, err := repo.FindByID(ctx, "SH-002")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, domain.ValidationValidated, found.ValidationStatus)

		outboxEvents, err := repo.GetOutboxRepository().FindByAggregateID(ctx, "SH-002")
		require.NoError(t, err)
		assert.Len(t, outboxEvents, 2, "one created plus one transitioned event")
	})

	t.Run("Find non-existent shift", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "SH-MISSING")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestShiftRepository_SaveAll(t *testing.T) {
	client, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := infra.NewShiftRepository(client, testEventFactory())
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	shifts := make([]*domain.Shift, 0, 3)
	for i := 0; i < 3; i++ {
		shift := createTestShift(t, fmt.Sprintf("SH-W%d", i+1), "E-001", monday.AddDate(0, 0, i))
		shifts = append(shifts, shift)
	}

	err := repo.SaveAll(ctx, shifts)
	require.NoError(t, err)
	for _, shift := range shifts {
		assert.Empty(t, shift.DomainEvents)
	}

	t.Run("FindByStoreWeek returns the stored week in order", func(t *testing.T) {
		found, err := repo.FindByStoreWeek(ctx, "ST-1", monday)
		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, "SH-W1", found[0].ShiftID)
		assert.Equal(t, "SH-W3", found[2].ShiftID)
	})

	t.Run("FindByStoreWeek excludes other weeks", func(t *testing.T) {
		found, err := repo.FindByStoreWeek(ctx, "ST-1", monday.AddDate(0, 0, 7))
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("FindByEmployeeRange spans weeks", func(t *testing.T) {
		found, err := repo.FindByEmployeeRange(ctx, "E-001", monday, monday.AddDate(0, 0, 14))
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})
}

func TestEmployeeRepository(t *testing.T) {
	client, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := infra.NewEmployeeRepository(client)

	t.Run("Save and find by ID", func(t *testing.T) {
		employee, err := domain.NewEmployee("E-001", "Maria Rossi", 40, 0)
		require.NoError(t, err)
		employee.AssignToStore("ST-1")
		employee.ExternalRef = "HR-1001"

		require.NoError(t, repo.Save(ctx, employee))

		found, err := repo.FindByID(ctx, "E-001")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Maria Rossi", found.Name)
		assert.Equal(t, "ST-1", found.StoreID)
		assert.True(t, found.IsActive)
	})

	t.Run("Find by external reference", func(t *testing.T) {
		found, err := repo.FindByExternalRef(ctx, "HR-1001")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "E-001", found.EmployeeID)

		missing, err := repo.FindByExternalRef(ctx, "HR-9999")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("FindActive excludes deactivated employees", func(t *testing.T) {
		former, err := domain.NewEmployee("E-002", "Luca Verdi", 32, 0)
		require.NoError(t, err)
		former.Deactivate()
		require.NoError(t, repo.Save(ctx, former))

		active, err := repo.FindActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "E-001", active[0].EmployeeID)
	})

	t.Run("Upsert preserves a single document", func(t *testing.T) {
		employee, err := repo.FindByID(ctx, "E-001")
		require.NoError(t, err)
		require.NotNil(t, employee)

		require.NoError(t, employee.UpdateContract(38, 0))
		require.NoError(t, repo.Save(ctx, employee))

		all, err := repo.FindAll(ctx, 10, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		found, err := repo.FindByID(ctx, "E-001")
		require.NoError(t, err)
		assert.Equal(t, 38.0, found.ContractHours)
	})
}

func TestStoreRepository(t *testing.T) {
	client, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := infra.NewStoreRepository(client)

	milano := domain.NewStore("ST-MI", "Milano Centro")
	require.NoError(t, repo.Save(ctx, milano))

	hq := domain.NewStore("ST-HQ", "Sede Centrale")
	hq.IsDefault = true
	require.NoError(t, repo.Save(ctx, hq))

	t.Run("FindDefault", func(t *testing.T) {
		found, err := repo.FindDefault(ctx)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "ST-HQ", found.StoreID)
	})

	t.Run("FindActive", func(t *testing.T) {
		stores, err := repo.FindActive(ctx)
		require.NoError(t, err)
		assert.Len(t, stores, 2)
	})
}

func TestRequirementRepository_ReplaceStoreRequirements(t *testing.T) {
	client, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := infra.NewRequirementRepository(client)

	seed := &domain.StaffRequirement{
		RequirementID: "RQ-SEED",
		StoreID:       "ST-1",
		DayOfWeek:     "monday",
		Roles: []domain.RoleRequirement{
			{RoleName: "cashier", MinStaff: 1, MaxStaff: 3},
		},
	}
	require.NoError(t, repo.SaveRequirement(ctx, seed))

	replacement := []*domain.StaffRequirement{
		{RequirementID: "RQ-MON", StoreID: "ST-1", DayOfWeek: "monday", Roles: seed.Roles},
		{RequirementID: "RQ-TUE", StoreID: "ST-1", DayOfWeek: "tuesday", Roles: seed.Roles},
	}
	require.NoError(t, repo.ReplaceStoreRequirements(ctx, "ST-1", replacement))

	found, err := repo.FindRequirementsByStore(ctx, "ST-1")
	require.NoError(t, err)
	require.Len(t, found, 2, "seed requirement must be replaced, not appended")
	for _, req := range found {
		assert.NotEqual(t, "RQ-SEED", req.RequirementID)
	}
}

func TestRequirementRepository_WeightingEvents(t *testing.T) {
	client, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := infra.NewRequirementRepository(client)

	everywhere, err := domain.NewWeightingEvent("EV-1", "Saldi", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC), 1.5)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWeightingEvent(ctx, everywhere))

	scoped, err := domain.NewWeightingEvent("EV-2", "Fiera Milano", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC), 2.0)
	require.NoError(t, err)
	scoped.StoreIDs = []string{"ST-MI"}
	require.NoError(t, repo.SaveWeightingEvent(ctx, scoped))

	t.Run("Overlapping window for a scoped store", func(t *testing.T) {
		events, err := repo.FindWeightingEvents(ctx, "ST-MI", time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("Other stores only see global events", func(t *testing.T) {
		events, err := repo.FindWeightingEvents(ctx, "ST-RM", time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "EV-1", events[0].EventID)
	})

	t.Run("Disjoint window returns nothing", func(t *testing.T) {
		events, err := repo.FindWeightingEvents(ctx, "ST-MI", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestHourBankRepository(t *testing.T) {
	client, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := infra.NewHourBankRepository(client, testEventFactory())
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	account := domain.NewHourBankAccount("AC-001", "E-001", "ST-1")
	account.CurrentBalance = 5
	require.NoError(t, repo.SaveAccount(ctx, account))

	t.Run("FindAccount by employee and store", func(t *testing.T) {
		found, err := repo.FindAccount(ctx, "E-001", "ST-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 5.0, found.CurrentBalance)

		missing, err := repo.FindAccount(ctx, "E-001", "ST-2")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("Entry per account week", func(t *testing.T) {
		entry := &domain.HourBankEntry{
			EntryID:       "EN-001",
			AccountID:     "AC-001",
			EmployeeID:    "E-001",
			StoreID:       "ST-1",
			WeekStart:     monday,
			ContractHours: 40,
			ActualHours:   45,
			Difference:    5,
			Type:          domain.EntryTypeExcess,
			IsProcessed:   true,
			CreatedAt:     time.Now(),
		}
		require.NoError(t, repo.SaveEntry(ctx, entry))

		found, err := repo.FindEntryForWeek(ctx, "AC-001", monday)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.IsProcessed)

		other, err := repo.FindEntryForWeek(ctx, "AC-001", monday.AddDate(0, 0, 7))
		assert.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("Recovery request round trip", func(t *testing.T) {
		request, err := domain.NewRecoveryRequest("RR-001", account, 2, time.Now().AddDate(0, 0, 7), "visita medica", time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.SaveRequest(ctx, request))
		require.NoError(t, repo.SaveAccount(ctx, account))

		pending, err := repo.FindRequestsByStatus(ctx, domain.RecoveryPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 2.0, pending[0].RequestedHours)

		reloaded, err := repo.FindAccount(ctx, "E-001", "ST-1")
		require.NoError(t, err)
		assert.Equal(t, 2.0, reloaded.ReservedHours)
	})

	t.Run("DeleteByStore reports counts", func(t *testing.T) {
		accounts, entries, requests, err := repo.DeleteByStore(ctx, "ST-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), accounts)
		assert.Equal(t, int64(1), entries)
		assert.Equal(t, int64(1), requests)
	})
}
