package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hrops-platform/scheduling-service/internal/compliance"
	"github.com/hrops-platform/scheduling-service/internal/coverage"
	"github.com/hrops-platform/scheduling-service/internal/domain"
	"github.com/hrops-platform/scheduling-service/pkg/errors"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
)

// SchedulingApplicationService handles employee, store, requirement and
// shift use cases, including the coverage and compliance queries.
type SchedulingApplicationService struct {
	employees    domain.EmployeeRepository
	stores       domain.StoreRepository
	shifts       domain.ShiftRepository
	requirements domain.RequirementRepository
	validator    *coverage.Validator
	checker      *compliance.Checker
	logger       *logging.Logger
}

// NewSchedulingApplicationService creates a new SchedulingApplicationService
func NewSchedulingApplicationService(
	employees domain.EmployeeRepository,
	stores domain.StoreRepository,
	shifts domain.ShiftRepository,
	requirements domain.RequirementRepository,
	validator *coverage.Validator,
	checker *compliance.Checker,
	logger *logging.Logger,
) *SchedulingApplicationService {
	return &SchedulingApplicationService{
		employees:    employees,
		stores:       stores,
		shifts:       shifts,
		requirements: requirements,
		validator:    validator,
		checker:      checker,
		logger:       logger,
	}
}

// CreateEmployee creates a new employee
func (s *SchedulingApplicationService) CreateEmployee(ctx context.Context, cmd CreateEmployeeCommand) (*EmployeeDTO, error) {
	existing, err := s.employees.FindByID(ctx, cmd.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check employee: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("employee %s already exists", cmd.EmployeeID))
	}

	employee, err := domain.NewEmployee(cmd.EmployeeID, cmd.Name, cmd.ContractHours, cmd.FixedHours)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}
	employee.Email = cmd.Email
	employee.Position = cmd.Position
	if cmd.Role != "" {
		if !cmd.Role.IsValid() {
			return nil, errors.ErrValidation(fmt.Sprintf("invalid role %q", cmd.Role))
		}
		employee.Role = cmd.Role
	}
	if cmd.StoreID != "" {
		employee.AssignToStore(cmd.StoreID)
	}

	if err := s.employees.Save(ctx, employee); err != nil {
		s.logger.WithError(err).Error("Failed to save employee", "employeeId", cmd.EmployeeID)
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}

	s.logger.Info("Created employee", "employeeId", employee.EmployeeID)
	return ToEmployeeDTO(employee), nil
}

// UpdateEmployee updates an employee's contract and assignment
func (s *SchedulingApplicationService) UpdateEmployee(ctx context.Context, cmd UpdateEmployeeCommand) (*EmployeeDTO, error) {
	employee, err := s.employees.FindByID(ctx, cmd.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if employee == nil {
		return nil, errors.ErrNotFound("employee")
	}

	if cmd.Name != "" {
		employee.Name = cmd.Name
	}
	if cmd.ContractHours > 0 {
		if err := employee.UpdateContract(cmd.ContractHours, cmd.FixedHours); err != nil {
			return nil, errors.MapDomainError(err)
		}
	}
	if cmd.StoreID != "" {
		employee.AssignToStore(cmd.StoreID)
	}

	if err := s.employees.Save(ctx, employee); err != nil {
		s.logger.WithError(err).Error("Failed to save employee", "employeeId", cmd.EmployeeID)
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}

	s.logger.Info("Updated employee", "employeeId", employee.EmployeeID)
	return ToEmployeeDTO(employee), nil
}

// GetEmployee retrieves an employee by ID
func (s *SchedulingApplicationService) GetEmployee(ctx context.Context, query GetEmployeeQuery) (*EmployeeDTO, error) {
	employee, err := s.employees.FindByID(ctx, query.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if employee == nil {
		return nil, errors.ErrNotFound("employee")
	}
	return ToEmployeeDTO(employee), nil
}

// ListEmployees retrieves employees, optionally scoped to a store
func (s *SchedulingApplicationService) ListEmployees(ctx context.Context, query ListEmployeesQuery) ([]EmployeeDTO, error) {
	if query.StoreID != "" {
		employees, err := s.employees.FindByStore(ctx, query.StoreID)
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}
		return ToEmployeeDTOs(employees), nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	employees, err := s.employees.FindAll(ctx, limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return ToEmployeeDTOs(employees), nil
}

// DeactivateEmployee marks an employee inactive
func (s *SchedulingApplicationService) DeactivateEmployee(ctx context.Context, query GetEmployeeQuery) error {
	employee, err := s.employees.FindByID(ctx, query.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if employee == nil {
		return errors.ErrNotFound("employee")
	}

	employee.Deactivate()
	if err := s.employees.Save(ctx, employee); err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}

	s.logger.Info("Deactivated employee", "employeeId", query.EmployeeID)
	return nil
}

// CreateStore creates a new store
func (s *SchedulingApplicationService) CreateStore(ctx context.Context, cmd CreateStoreCommand) (*StoreDTO, error) {
	existing, err := s.stores.FindByID(ctx, cmd.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to check store: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("store %s already exists", cmd.StoreID))
	}

	store := domain.NewStore(cmd.StoreID, cmd.Name)
	if cmd.OpeningHours != nil {
		store.OpeningHours = cmd.OpeningHours
	}
	store.IsDefault = cmd.IsDefault

	if err := s.stores.Save(ctx, store); err != nil {
		s.logger.WithError(err).Error("Failed to save store", "storeId", cmd.StoreID)
		return nil, fmt.Errorf("failed to save store: %w", err)
	}

	s.logger.Info("Created store", "storeId", store.StoreID)
	return ToStoreDTO(store), nil
}

// UpdateStore updates store hours, closures and week overrides
func (s *SchedulingApplicationService) UpdateStore(ctx context.Context, cmd UpdateStoreCommand) (*StoreDTO, error) {
	store, err := s.stores.FindByID(ctx, cmd.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return nil, errors.ErrNotFound("store")
	}

	if cmd.Name != "" {
		store.Name = cmd.Name
	}
	if cmd.OpeningHours != nil {
		store.OpeningHours = cmd.OpeningHours
	}
	if cmd.WeekOverride != nil {
		store.SetWeekOverride(*cmd.WeekOverride)
	}
	if cmd.ClosureDay != nil {
		store.AddClosureDay(*cmd.ClosureDay)
	}
	store.UpdatedAt = time.Now()

	if err := s.stores.Save(ctx, store); err != nil {
		s.logger.WithError(err).Error("Failed to save store", "storeId", cmd.StoreID)
		return nil, fmt.Errorf("failed to save store: %w", err)
	}

	s.logger.Info("Updated store", "storeId", store.StoreID)
	return ToStoreDTO(store), nil
}

// GetStore retrieves a store by ID
func (s *SchedulingApplicationService) GetStore(ctx context.Context, query GetStoreQuery) (*StoreDTO, error) {
	store, err := s.stores.FindByID(ctx, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return nil, errors.ErrNotFound("store")
	}
	return ToStoreDTO(store), nil
}

// ListStores retrieves stores with pagination
func (s *SchedulingApplicationService) ListStores(ctx context.Context, query ListStoresQuery) ([]StoreDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	stores, err := s.stores.FindAll(ctx, limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return ToStoreDTOs(stores), nil
}

// SaveRequirement creates or replaces a staffing requirement
func (s *SchedulingApplicationService) SaveRequirement(ctx context.Context, cmd SaveRequirementCommand) (*RequirementDTO, error) {
	for _, role := range cmd.Roles {
		if role.MinStaff < 0 || (role.MaxStaff > 0 && role.MaxStaff < role.MinStaff) {
			return nil, errors.ErrValidation(fmt.Sprintf("invalid staffing band for role %q", role.RoleName))
		}
	}

	req := &domain.StaffRequirement{
		RequirementID: cmd.RequirementID,
		StoreID:       cmd.StoreID,
		DayOfWeek:     cmd.DayOfWeek,
		Roles:         cmd.Roles,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if req.RequirementID == "" {
		req.RequirementID = uuid.New().String()
	}

	if err := s.requirements.SaveRequirement(ctx, req); err != nil {
		s.logger.WithError(err).Error("Failed to save requirement", "storeId", cmd.StoreID, "dayOfWeek", cmd.DayOfWeek)
		return nil, fmt.Errorf("failed to save requirement: %w", err)
	}

	return ToRequirementDTO(req), nil
}

// ListRequirements retrieves a store's staffing requirements
func (s *SchedulingApplicationService) ListRequirements(ctx context.Context, query GetStoreQuery) ([]RequirementDTO, error) {
	reqs, err := s.requirements.FindRequirementsByStore(ctx, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	return ToRequirementDTOs(reqs), nil
}

// DuplicateRequirements copies one weekday's requirement onto target days.
// The new requirement set is computed as a single transform and replaced
// in one repository call.
func (s *SchedulingApplicationService) DuplicateRequirements(ctx context.Context, cmd DuplicateRequirementsCommand) ([]RequirementDTO, error) {
	existing, err := s.requirements.FindRequirementsByStore(ctx, cmd.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}

	next := domain.DuplicateRequirements(existing, cmd.StoreID, cmd.SourceDay, cmd.TargetDays, func() string {
		return uuid.New().String()
	})
	if len(next) == len(existing) && len(cmd.TargetDays) > 0 {
		// Unchanged length with targets requested means no source entry.
		found := false
		for _, r := range existing {
			if r.DayOfWeek == cmd.SourceDay {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.ErrNotFound("source requirement")
		}
	}

	if err := s.requirements.ReplaceStoreRequirements(ctx, cmd.StoreID, next); err != nil {
		s.logger.WithError(err).Error("Failed to replace requirements", "storeId", cmd.StoreID)
		return nil, fmt.Errorf("failed to replace requirements: %w", err)
	}

	s.logger.Info("Duplicated requirements", "storeId", cmd.StoreID, "sourceDay", cmd.SourceDay, "targetDays", len(cmd.TargetDays))
	return ToRequirementDTOs(next), nil
}

// CreateWeightingEvent creates a demand weighting event
func (s *SchedulingApplicationService) CreateWeightingEvent(ctx context.Context, cmd CreateWeightingEventCommand) (*WeightingEventDTO, error) {
	event, err := domain.NewWeightingEvent(uuid.New().String(), cmd.Name, cmd.StartDate, cmd.EndDate, cmd.Multiplier)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}
	event.DaysOfWeek = cmd.DaysOfWeek
	event.StoreIDs = cmd.StoreIDs

	if err := s.requirements.SaveWeightingEvent(ctx, event); err != nil {
		s.logger.WithError(err).Error("Failed to save weighting event", "name", cmd.Name)
		return nil, fmt.Errorf("failed to save weighting event: %w", err)
	}

	s.logger.Info("Created weighting event", "eventId", event.EventID, "multiplier", event.Multiplier)
	return ToWeightingEventDTO(event), nil
}

// ListWeightingEvents retrieves weighting events active for a store and range
func (s *SchedulingApplicationService) ListWeightingEvents(ctx context.Context, storeID string, from, to time.Time) ([]WeightingEventDTO, error) {
	events, err := s.requirements.FindWeightingEvents(ctx, storeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list weighting events: %w", err)
	}
	return ToWeightingEventDTOs(events), nil
}

// CreateShift creates a shift in draft status
func (s *SchedulingApplicationService) CreateShift(ctx context.Context, cmd CreateShiftCommand) (*ShiftDTO, error) {
	employee, err := s.employees.FindByID(ctx, cmd.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if employee == nil {
		return nil, errors.ErrNotFound("employee")
	}

	storeID := cmd.StoreID
	if storeID == "" {
		storeID = employee.StoreID
	}
	if storeID == "" {
		return nil, errors.ErrValidation("shift requires a store assignment")
	}

	shift, err := domain.NewShift(uuid.New().String(), cmd.EmployeeID, storeID, cmd.RoleName, cmd.Date, cmd.StartTime, cmd.EndTime, cmd.BreakMinutes)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.shifts.Save(ctx, shift); err != nil {
		s.logger.WithError(err).Error("Failed to save shift", "shiftId", shift.ShiftID)
		return nil, fmt.Errorf("failed to save shift: %w", err)
	}

	s.logger.Info("Created shift", "shiftId", shift.ShiftID, "employeeId", cmd.EmployeeID, "storeId", storeID)
	return ToShiftDTO(shift), nil
}

// UpdateShift changes shift times, subject to lock and workflow gates
func (s *SchedulingApplicationService) UpdateShift(ctx context.Context, cmd UpdateShiftCommand) (*ShiftDTO, error) {
	shift, err := s.shifts.FindByID(ctx, cmd.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	if shift == nil {
		return nil, errors.ErrNotFound("shift")
	}

	if err := shift.Update(cmd.ActorRole, cmd.StartTime, cmd.EndTime, cmd.BreakMinutes); err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.shifts.Save(ctx, shift); err != nil {
		s.logger.WithError(err).Error("Failed to save shift", "shiftId", cmd.ShiftID)
		return nil, fmt.Errorf("failed to save shift: %w", err)
	}

	s.logger.Info("Updated shift", "shiftId", cmd.ShiftID)
	return ToShiftDTO(shift), nil
}

// GetShift retrieves a shift by ID
func (s *SchedulingApplicationService) GetShift(ctx context.Context, shiftID string) (*ShiftDTO, error) {
	shift, err := s.shifts.FindByID(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	if shift == nil {
		return nil, errors.ErrNotFound("shift")
	}
	return ToShiftDTO(shift), nil
}

// ListShifts retrieves a store week's shifts
func (s *SchedulingApplicationService) ListShifts(ctx context.Context, query ListShiftsQuery) ([]ShiftDTO, error) {
	shifts, err := s.shifts.FindByStoreWeek(ctx, query.StoreID, domain.WeekStart(query.WeekStart))
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return ToShiftDTOs(shifts), nil
}

// DeleteShift cancels and removes a shift
func (s *SchedulingApplicationService) DeleteShift(ctx context.Context, cmd DeleteShiftCommand) error {
	shift, err := s.shifts.FindByID(ctx, cmd.ShiftID)
	if err != nil {
		return fmt.Errorf("failed to get shift: %w", err)
	}
	if shift == nil {
		return errors.ErrNotFound("shift")
	}

	if err := shift.Cancel(cmd.ActorRole); err != nil {
		return errors.MapDomainError(err)
	}
	if err := s.shifts.Delete(ctx, cmd.ShiftID); err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}

	s.logger.Info("Deleted shift", "shiftId", cmd.ShiftID)
	return nil
}

// TransitionShift moves one shift through the validation workflow
func (s *SchedulingApplicationService) TransitionShift(ctx context.Context, cmd TransitionShiftCommand) (*ShiftDTO, error) {
	shift, err := s.shifts.FindByID(ctx, cmd.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	if shift == nil {
		return nil, errors.ErrNotFound("shift")
	}

	if err := shift.Transition(cmd.ActorRole, cmd.Target); err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.shifts.Save(ctx, shift); err != nil {
		s.logger.WithError(err).Error("Failed to save shift", "shiftId", cmd.ShiftID)
		return nil, fmt.Errorf("failed to save shift: %w", err)
	}

	s.logger.Info("Transitioned shift", "shiftId", cmd.ShiftID, "target", string(cmd.Target))
	return ToShiftDTO(shift), nil
}

// BulkTransition moves every shift of a store week through the workflow.
// The full next state is computed first; nothing is persisted unless all
// shifts accept the transition, and the save happens in one call.
func (s *SchedulingApplicationService) BulkTransition(ctx context.Context, cmd BulkTransitionCommand) ([]ShiftDTO, error) {
	weekStart := domain.WeekStart(cmd.WeekStart)
	shifts, err := s.shifts.FindByStoreWeek(ctx, cmd.StoreID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}
	if len(shifts) == 0 {
		return nil, errors.ErrNotFound("shifts for week")
	}

	for _, shift := range shifts {
		if err := shift.Transition(cmd.ActorRole, cmd.Target); err != nil {
			return nil, errors.MapDomainError(fmt.Errorf("shift %s: %w", shift.ShiftID, err))
		}
	}

	if err := s.shifts.SaveAll(ctx, shifts); err != nil {
		s.logger.WithError(err).Error("Failed to save shifts", "storeId", cmd.StoreID)
		return nil, fmt.Errorf("failed to save shifts: %w", err)
	}

	s.logger.Info("Bulk transitioned shifts", "storeId", cmd.StoreID, "target", string(cmd.Target), "count", len(shifts))
	return ToShiftDTOs(shifts), nil
}

// GetCoverage runs the coverage validator for a store week
func (s *SchedulingApplicationService) GetCoverage(ctx context.Context, query CoverageQuery) (*coverage.WeekReport, error) {
	store, err := s.stores.FindByID(ctx, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return nil, errors.ErrNotFound("store")
	}

	weekStart := domain.WeekStart(query.WeekStart)
	reqs, err := s.requirements.FindRequirementsByStore(ctx, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}
	events, err := s.requirements.FindWeightingEvents(ctx, query.StoreID, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		return nil, fmt.Errorf("failed to load weighting events: %w", err)
	}
	shifts, err := s.shifts.FindByStoreWeek(ctx, query.StoreID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}

	start := time.Now()
	report := s.validator.ValidateWeek(store, reqs, events, shifts, weekStart)
	s.logger.ValidationRun(ctx, "coverage", query.StoreID, domain.FormatDate(weekStart), len(report.Issues), time.Since(start))
	return report, nil
}

// GetCompliance runs the rest-rule checker for an employee week. Shifts
// from the adjacent days are included so boundary rest is measured.
func (s *SchedulingApplicationService) GetCompliance(ctx context.Context, query ComplianceQuery) (*compliance.Report, error) {
	employee, err := s.employees.FindByID(ctx, query.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if employee == nil {
		return nil, errors.ErrNotFound("employee")
	}

	weekStart := domain.WeekStart(query.WeekStart)
	// The range query is date-exclusive on the upper bound, so reaching
	// the day after the week keeps the boundary shifts on both edges.
	// Without the trailing day the checker sees the week's last rest
	// window as open ended and can never flag it.
	from := weekStart.AddDate(0, 0, -1)
	to := weekStart.AddDate(0, 0, 8)
	shifts, err := s.shifts.FindByEmployeeRange(ctx, query.EmployeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}

	start := time.Now()
	report := s.checker.CheckWeek(query.EmployeeID, shifts, weekStart)
	s.logger.ValidationRun(ctx, "compliance", employee.StoreID, domain.FormatDate(weekStart), len(report.Violations), time.Since(start))
	return report, nil
}
