package application

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hrops-platform/scheduling-service/internal/compliance"
	"github.com/hrops-platform/scheduling-service/internal/coverage"
	"github.com/hrops-platform/scheduling-service/internal/domain"
)

func newSchedulingService(
	employees *stubEmployeeRepo,
	stores *stubStoreRepo,
	shifts *stubShiftRepo,
	requirements *stubRequirementRepo,
) *SchedulingApplicationService {
	return NewSchedulingApplicationService(
		employees, stores, shifts, requirements,
		coverage.NewValidator(),
		compliance.NewChecker(compliance.DefaultRuleSet()),
		testLogger(),
	)
}

func testEmployee(t *testing.T, id, storeID string) *domain.Employee {
	t.Helper()
	employee, err := domain.NewEmployee(id, "Test Employee", 40, 0)
	if err != nil {
		t.Fatalf("NewEmployee failed: %v", err)
	}
	employee.StoreID = storeID
	return employee
}

func draftShift(t *testing.T, id string) *domain.Shift {
	t.Helper()
	shift, err := domain.NewShift(id, "EMP-1", "ST-1", "cashier",
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "09:00", "17:00", 30)
	if err != nil {
		t.Fatalf("NewShift failed: %v", err)
	}
	return shift
}

func TestSchedulingApplicationService_CreateShift(t *testing.T) {
	var saved *domain.Shift
	employees := &stubEmployeeRepo{
		FindByIDFn: func(_ context.Context, id string) (*domain.Employee, error) {
			return testEmployee(t, id, "ST-1"), nil
		},
	}
	shifts := &stubShiftRepo{
		SaveFn: func(_ context.Context, shift *domain.Shift) error {
			saved = shift
			return nil
		},
	}
	service := newSchedulingService(employees, &stubStoreRepo{}, shifts, &stubRequirementRepo{})

	dto, err := service.CreateShift(context.Background(), CreateShiftCommand{
		EmployeeID: "EMP-1",
		RoleName:   "cashier",
		Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:  "09:00",
		EndTime:    "17:00",
	})
	if err != nil {
		t.Fatalf("CreateShift failed: %v", err)
	}
	if saved == nil {
		t.Fatal("expected shift to be saved")
	}
	if dto.StoreID != "ST-1" {
		t.Errorf("expected store from employee assignment, got %q", dto.StoreID)
	}
	if dto.ValidationStatus != string(domain.ValidationDraft) {
		t.Errorf("expected new shift in draft, got %q", dto.ValidationStatus)
	}
	if dto.ActualHours != 8.0 {
		t.Errorf("expected 8 actual hours, got %v", dto.ActualHours)
	}
}

func TestSchedulingApplicationService_CreateShift_EmployeeNotFound(t *testing.T) {
	employees := &stubEmployeeRepo{
		FindByIDFn: func(_ context.Context, _ string) (*domain.Employee, error) {
			return nil, nil
		},
	}
	service := newSchedulingService(employees, &stubStoreRepo{}, &stubShiftRepo{}, &stubRequirementRepo{})

	_, err := service.CreateShift(context.Background(), CreateShiftCommand{EmployeeID: "missing"})
	if err == nil {
		t.Fatal("expected error for unknown employee")
	}
}

func TestSchedulingApplicationService_CreateShift_NoStoreAssignment(t *testing.T) {
	employees := &stubEmployeeRepo{
		FindByIDFn: func(_ context.Context, id string) (*domain.Employee, error) {
			return testEmployee(t, id, ""), nil
		},
	}
	service := newSchedulingService(employees, &stubStoreRepo{}, &stubShiftRepo{}, &stubRequirementRepo{})

	_, err := service.CreateShift(context.Background(), CreateShiftCommand{EmployeeID: "EMP-1"})
	if err == nil {
		t.Fatal("expected error when neither command nor employee carries a store")
	}
}

func TestSchedulingApplicationService_TransitionShift_RoleGate(t *testing.T) {
	shifts := &stubShiftRepo{
		FindByIDFn: func(_ context.Context, id string) (*domain.Shift, error) {
			return draftShift(t, id), nil
		},
		SaveFn: func(_ context.Context, _ *domain.Shift) error {
			t.Fatal("shift must not be saved when the transition is refused")
			return nil
		},
	}
	service := newSchedulingService(&stubEmployeeRepo{}, &stubStoreRepo{}, shifts, &stubRequirementRepo{})

	_, err := service.TransitionShift(context.Background(), TransitionShiftCommand{
		ShiftID:   "SH-1",
		Target:    domain.ValidationValidated,
		ActorRole: domain.RoleEmployee,
	})
	if err == nil {
		t.Fatal("expected role gate to refuse employee actor")
	}
}

func TestSchedulingApplicationService_TransitionShift(t *testing.T) {
	var saved *domain.Shift
	shifts := &stubShiftRepo{
		FindByIDFn: func(_ context.Context, id string) (*domain.Shift, error) {
			return draftShift(t, id), nil
		},
		SaveFn: func(_ context.Context, shift *domain.Shift) error {
			saved = shift
			return nil
		},
	}
	service := newSchedulingService(&stubEmployeeRepo{}, &stubStoreRepo{}, shifts, &stubRequirementRepo{})

	dto, err := service.TransitionShift(context.Background(), TransitionShiftCommand{
		ShiftID:   "SH-1",
		Target:    domain.ValidationValidated,
		ActorRole: domain.RolePlanner,
	})
	if err != nil {
		t.Fatalf("TransitionShift failed: %v", err)
	}
	if dto.ValidationStatus != string(domain.ValidationValidated) {
		t.Errorf("expected validated status, got %q", dto.ValidationStatus)
	}
	if saved == nil {
		t.Fatal("expected transitioned shift to be saved")
	}
}

func TestSchedulingApplicationService_GetCompliance_WeeklyRestViolation(t *testing.T) {
	weekStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// Nine consecutive days of 09:00-18:00 leave at most 15h of rest
	// between any two shifts, well under the 35h weekly minimum. The
	// stub applies the repository's date filter (inclusive lower bound,
	// exclusive upper) so the query range itself is under test: the
	// range must reach past the week or the final day's shift is
	// dropped and the trailing rest window stays open ended.
	var stored []*domain.Shift
	for offset := -1; offset <= 7; offset++ {
		date := weekStart.AddDate(0, 0, offset)
		shift, err := domain.NewShift(
			fmt.Sprintf("SH-%d", offset+1), "EMP-1", "ST-1", "cashier",
			date, "09:00", "18:00", 30)
		if err != nil {
			t.Fatalf("NewShift failed: %v", err)
		}
		stored = append(stored, shift)
	}

	employees := &stubEmployeeRepo{
		FindByIDFn: func(_ context.Context, id string) (*domain.Employee, error) {
			return testEmployee(t, id, "ST-1"), nil
		},
	}
	shifts := &stubShiftRepo{
		FindByEmployeeRangeFn: func(_ context.Context, _ string, from, to time.Time) ([]*domain.Shift, error) {
			var matched []*domain.Shift
			for _, s := range stored {
				if !s.Date.Before(from) && s.Date.Before(to) {
					matched = append(matched, s)
				}
			}
			return matched, nil
		},
	}
	service := newSchedulingService(employees, &stubStoreRepo{}, shifts, &stubRequirementRepo{})

	report, err := service.GetCompliance(context.Background(), ComplianceQuery{
		EmployeeID: "EMP-1",
		WeekStart:  weekStart,
	})
	if err != nil {
		t.Fatalf("GetCompliance failed: %v", err)
	}
	if report.WeeklyRestOK {
		t.Fatal("expected weekly rest violation for nine consecutive working days")
	}
	found := false
	for _, v := range report.Violations {
		if v.Rule == compliance.RuleWeeklyRest {
			found = true
		}
	}
	if !found {
		t.Error("expected a weekly rest violation in the report")
	}
}

func TestSchedulingApplicationService_BulkTransition(t *testing.T) {
	week := []*domain.Shift{draftShift(t, "SH-1"), draftShift(t, "SH-2"), draftShift(t, "SH-3")}
	saveAllCalls := 0
	shifts := &stubShiftRepo{
		FindByStoreWeekFn: func(_ context.Context, _ string, _ time.Time) ([]*domain.Shift, error) {
			return week, nil
		},
		SaveAllFn: func(_ context.Context, batch []*domain.Shift) error {
			saveAllCalls++
			if len(batch) != 3 {
				t.Errorf("expected all 3 shifts in one batch, got %d", len(batch))
			}
			return nil
		},
	}
	service := newSchedulingService(&stubEmployeeRepo{}, &stubStoreRepo{}, shifts, &stubRequirementRepo{})

	dtos, err := service.BulkTransition(context.Background(), BulkTransitionCommand{
		StoreID:   "ST-1",
		WeekStart: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Target:    domain.ValidationValidated,
		ActorRole: domain.RolePlanner,
	})
	if err != nil {
		t.Fatalf("BulkTransition failed: %v", err)
	}
	if saveAllCalls != 1 {
		t.Errorf("expected one SaveAll call, got %d", saveAllCalls)
	}
	for _, dto := range dtos {
		if dto.ValidationStatus != string(domain.ValidationValidated) {
			t.Errorf("shift %s not validated: %q", dto.ShiftID, dto.ValidationStatus)
		}
	}
}

func TestSchedulingApplicationService_BulkTransition_FailsWithoutPartialWrite(t *testing.T) {
	blocked := draftShift(t, "SH-2")
	if err := blocked.Transition(domain.RoleManager, domain.ValidationValidated); err != nil {
		t.Fatalf("setup transition failed: %v", err)
	}
	week := []*domain.Shift{draftShift(t, "SH-1"), blocked}
	shifts := &stubShiftRepo{
		FindByStoreWeekFn: func(_ context.Context, _ string, _ time.Time) ([]*domain.Shift, error) {
			return week, nil
		},
		SaveAllFn: func(_ context.Context, _ []*domain.Shift) error {
			t.Fatal("SaveAll must not run when a transition fails")
			return nil
		},
	}
	service := newSchedulingService(&stubEmployeeRepo{}, &stubStoreRepo{}, shifts, &stubRequirementRepo{})

	_, err := service.BulkTransition(context.Background(), BulkTransitionCommand{
		StoreID:   "ST-1",
		WeekStart: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Target:    domain.ValidationValidated,
		ActorRole: domain.RolePlanner,
	})
	if err == nil {
		t.Fatal("expected bulk transition to fail on the already validated shift")
	}
	if !strings.Contains(err.Error(), "SH-2") {
		t.Errorf("expected error to name the failing shift, got %v", err)
	}
}

func TestSchedulingApplicationService_DuplicateRequirements(t *testing.T) {
	existing := []*domain.StaffRequirement{
		{
			RequirementID: "REQ-MON",
			StoreID:       "ST-1",
			DayOfWeek:     "monday",
			Roles:         []domain.RoleRequirement{{RoleName: "cashier", MinStaff: 2, MaxStaff: 4}},
		},
	}
	var replaced []*domain.StaffRequirement
	requirements := &stubRequirementRepo{
		FindRequirementsByStoreFn: func(_ context.Context, _ string) ([]*domain.StaffRequirement, error) {
			return existing, nil
		},
		ReplaceStoreRequirementsFn: func(_ context.Context, _ string, reqs []*domain.StaffRequirement) error {
			replaced = reqs
			return nil
		},
	}
	service := newSchedulingService(&stubEmployeeRepo{}, &stubStoreRepo{}, &stubShiftRepo{}, requirements)

	dtos, err := service.DuplicateRequirements(context.Background(), DuplicateRequirementsCommand{
		StoreID:    "ST-1",
		SourceDay:  "monday",
		TargetDays: []string{"tuesday", "wednesday"},
	})
	if err != nil {
		t.Fatalf("DuplicateRequirements failed: %v", err)
	}
	if len(replaced) != 3 {
		t.Fatalf("expected 3 requirements after duplication, got %d", len(replaced))
	}
	if len(dtos) != 3 {
		t.Fatalf("expected 3 requirement DTOs, got %d", len(dtos))
	}
	days := map[string]bool{}
	for _, r := range replaced {
		days[r.DayOfWeek] = true
		if len(r.Roles) != 1 || r.Roles[0].MinStaff != 2 {
			t.Errorf("day %s did not inherit the source band", r.DayOfWeek)
		}
	}
	for _, day := range []string{"monday", "tuesday", "wednesday"} {
		if !days[day] {
			t.Errorf("missing requirement for %s", day)
		}
	}
}

func TestSchedulingApplicationService_DuplicateRequirements_MissingSource(t *testing.T) {
	requirements := &stubRequirementRepo{
		FindRequirementsByStoreFn: func(_ context.Context, _ string) ([]*domain.StaffRequirement, error) {
			return nil, nil
		},
		ReplaceStoreRequirementsFn: func(_ context.Context, _ string, _ []*domain.StaffRequirement) error {
			t.Fatal("replace must not run without a source requirement")
			return nil
		},
	}
	service := newSchedulingService(&stubEmployeeRepo{}, &stubStoreRepo{}, &stubShiftRepo{}, requirements)

	_, err := service.DuplicateRequirements(context.Background(), DuplicateRequirementsCommand{
		StoreID:    "ST-1",
		SourceDay:  "monday",
		TargetDays: []string{"tuesday"},
	})
	if err == nil {
		t.Fatal("expected error when the source day has no requirement")
	}
}

func TestSchedulingApplicationService_CreateEmployee_InvalidRole(t *testing.T) {
	service := newSchedulingService(&stubEmployeeRepo{}, &stubStoreRepo{}, &stubShiftRepo{}, &stubRequirementRepo{})

	_, err := service.CreateEmployee(context.Background(), CreateEmployeeCommand{
		Name:          "Someone",
		ContractHours: 40,
		Role:          "superuser",
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}
