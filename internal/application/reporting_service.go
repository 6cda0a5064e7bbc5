package application

import (
	"context"
	"fmt"
	"time"

	"github.com/hrops-platform/scheduling-service/internal/compliance"
	"github.com/hrops-platform/scheduling-service/internal/coverage"
	"github.com/hrops-platform/scheduling-service/internal/domain"
	"github.com/hrops-platform/scheduling-service/pkg/errors"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
)

// ReportingApplicationService builds the combined weekly validation
// report: coverage, per-employee compliance and projected hour-bank
// movement for one store week.
type ReportingApplicationService struct {
	employees    domain.EmployeeRepository
	stores       domain.StoreRepository
	shifts       domain.ShiftRepository
	requirements domain.RequirementRepository
	validator    *coverage.Validator
	checker      *compliance.Checker
	logger       *logging.Logger
}

// NewReportingApplicationService creates a new ReportingApplicationService
func NewReportingApplicationService(
	employees domain.EmployeeRepository,
	stores domain.StoreRepository,
	shifts domain.ShiftRepository,
	requirements domain.RequirementRepository,
	validator *coverage.Validator,
	checker *compliance.Checker,
	logger *logging.Logger,
) *ReportingApplicationService {
	return &ReportingApplicationService{
		employees:    employees,
		stores:       stores,
		shifts:       shifts,
		requirements: requirements,
		validator:    validator,
		checker:      checker,
		logger:       logger,
	}
}

// BuildValidationReport assembles the full weekly report for a store
func (s *ReportingApplicationService) BuildValidationReport(ctx context.Context, query ValidationReportQuery) (*ValidationReportDTO, error) {
	store, err := s.stores.FindByID(ctx, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return nil, errors.ErrNotFound("store")
	}

	weekStart := domain.WeekStart(query.WeekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	reqs, err := s.requirements.FindRequirementsByStore(ctx, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}
	events, err := s.requirements.FindWeightingEvents(ctx, query.StoreID, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		return nil, fmt.Errorf("failed to load weighting events: %w", err)
	}
	weekShifts, err := s.shifts.FindByStoreWeek(ctx, query.StoreID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}
	employees, err := s.employees.FindByStore(ctx, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	report := &ValidationReportDTO{
		StoreID:     query.StoreID,
		WeekStart:   weekStart,
		Coverage:    s.validator.ValidateWeek(store, reqs, events, weekShifts, weekStart),
		GeneratedAt: time.Now(),
	}

	for _, employee := range employees {
		if !employee.IsActive {
			continue
		}

		// Context shifts from the adjacent days bound the boundary
		// rest checks. The upper bound is exclusive, so it reaches one
		// day past the week to include the following day's first shift.
		contextShifts, err := s.shifts.FindByEmployeeRange(ctx, employee.EmployeeID, weekStart.AddDate(0, 0, -1), weekEnd.AddDate(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("failed to load employee shifts: %w", err)
		}
		report.Compliance = append(report.Compliance, s.checker.CheckWeek(employee.EmployeeID, contextShifts, weekStart))

		actual := 0.0
		for _, shift := range weekShifts {
			if shift.EmployeeID == employee.EmployeeID && shift.CountsForWork() {
				actual += shift.ActualHours()
			}
		}
		report.HourBank = append(report.HourBank, WeeklyDeltaDTO{
			EmployeeID:    employee.EmployeeID,
			ContractHours: employee.ContractHours,
			ActualHours:   actual,
			Difference:    actual - employee.ContractHours,
		})
	}

	s.logger.Info("Built validation report",
		"storeId", query.StoreID,
		"weekStart", domain.FormatDate(weekStart),
		"coverageScore", report.Coverage.Score,
		"employees", len(report.Compliance),
	)
	return report, nil
}
