package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hrops-platform/scheduling-service/internal/domain"
	"github.com/hrops-platform/scheduling-service/pkg/errors"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
)

// HourBankApplicationService maintains per employee+store balances of
// worked-vs-contracted hours and processes recovery requests.
type HourBankApplicationService struct {
	employees domain.EmployeeRepository
	shifts    domain.ShiftRepository
	hourBank  domain.HourBankRepository
	logger    *logging.Logger
}

// NewHourBankApplicationService creates a new HourBankApplicationService
func NewHourBankApplicationService(
	employees domain.EmployeeRepository,
	shifts domain.ShiftRepository,
	hourBank domain.HourBankRepository,
	logger *logging.Logger,
) *HourBankApplicationService {
	return &HourBankApplicationService{
		employees: employees,
		shifts:    shifts,
		hourBank:  hourBank,
		logger:    logger,
	}
}

// Calculate runs the weekly hour-bank calculation for the requested
// employees and range. Weeks that already carry a processed entry are
// skipped, so re-running with identical inputs is a no-op. Failures on
// one account do not abort the batch: completed accounts stay updated
// and the caller can retry safely.
func (s *HourBankApplicationService) Calculate(ctx context.Context, cmd CalculateHourBankCommand) (*CalculationResultDTO, error) {
	if !cmd.ActorRole.AtLeast(domain.RolePlanner) {
		return nil, errors.ErrForbidden("hour bank calculation requires planner role")
	}
	if cmd.To.Before(cmd.From) {
		return nil, errors.ErrValidation("invalid date range: to before from")
	}

	employees, err := s.resolveEmployees(ctx, cmd.StoreID, cmd.EmployeeIDs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &CalculationResultDTO{Success: true}

	for _, employee := range employees {
		if err := s.calculateEmployee(ctx, employee, cmd, result); err != nil {
			s.logger.WithError(err).Error("Hour bank calculation failed for employee", "employeeId", employee.EmployeeID)
			result.Failures++
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", employee.EmployeeID, err))
		}
	}

	result.DurationMillis = time.Since(start).Milliseconds()
	s.logger.Info("Hour bank calculation finished",
		"entriesCreated", result.EntriesCreated,
		"accountsUpdated", result.AccountsUpdated,
		"weeksSkipped", result.WeeksSkipped,
		"failures", result.Failures,
	)
	return result, nil
}

func (s *HourBankApplicationService) calculateEmployee(ctx context.Context, employee *domain.Employee, cmd CalculateHourBankCommand, result *CalculationResultDTO) error {
	storeID := cmd.StoreID
	if storeID == "" {
		storeID = employee.StoreID
	}
	if storeID == "" {
		result.WeeksSkipped++
		return nil
	}

	account, err := s.hourBank.FindAccount(ctx, employee.EmployeeID, storeID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		account = domain.NewHourBankAccount(uuid.New().String(), employee.EmployeeID, storeID)
	}

	if cmd.RecalculateFromStart {
		account.Reset()
	}

	from := domain.WeekStart(cmd.From)
	updated := false
	for week := from; !week.After(domain.WeekStart(cmd.To)); week = week.AddDate(0, 0, 7) {
		if !cmd.RecalculateFromStart {
			existing, err := s.hourBank.FindEntryForWeek(ctx, account.AccountID, week)
			if err != nil {
				return fmt.Errorf("failed to check week entry: %w", err)
			}
			if existing != nil && existing.IsProcessed {
				result.WeeksSkipped++
				continue
			}
		}

		shifts, err := s.shifts.FindByEmployeeStore(ctx, employee.EmployeeID, storeID, week, week.AddDate(0, 0, 7))
		if err != nil {
			return fmt.Errorf("failed to load shifts: %w", err)
		}

		actual := 0.0
		for _, shift := range shifts {
			if !shift.CountsForWork() {
				continue
			}
			if cmd.OnlyLockedShifts && !shift.IsLocked && shift.ValidationStatus != domain.ValidationLockedFinal {
				continue
			}
			if !statusAllowed(shift.Status, cmd.Statuses) {
				continue
			}
			actual += shift.ActualHours()
		}

		entry := domain.NewHourBankEntry(uuid.New().String(), account.AccountID, employee.EmployeeID, storeID, week, employee.ContractHours, actual)
		account.PostEntry(entry)

		if err := s.hourBank.SaveEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
		s.logger.HourBankPosting(ctx, employee.EmployeeID, domain.FormatDate(week), entry.Difference, string(entry.Type))
		result.EntriesCreated++
		updated = true
	}

	if updated || cmd.RecalculateFromStart {
		if err := s.hourBank.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		result.AccountsUpdated++
	}
	return nil
}

// statusAllowed reports whether a shift status passes the command's
// status filter. An empty filter admits everything.
func statusAllowed(status domain.ShiftStatus, filter []domain.ShiftStatus) bool {
	if len(filter) == 0 {
		return true
	}
	for _, s := range filter {
		if s == status {
			return true
		}
	}
	return false
}

// RecalculateAll destructively rebuilds the hour bank for a store, or
// globally when no store is given. History is deleted first, then the
// calculation reruns from the earliest stored shift, so a narrow caller
// window can never truncate the regenerated ledger.
func (s *HourBankApplicationService) RecalculateAll(ctx context.Context, cmd RecalculateAllCommand) (*CalculationResultDTO, error) {
	if !cmd.ActorRole.AtLeast(domain.RoleManager) {
		return nil, errors.ErrForbidden("hour bank rebuild requires manager role")
	}

	earliest, err := s.shifts.FindEarliestDate(ctx, cmd.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to find earliest shift: %w", err)
	}
	if earliest.IsZero() {
		return nil, errors.ErrValidation("no shifts recorded, nothing to rebuild")
	}
	if cmd.To.Before(earliest) {
		return nil, errors.ErrValidation("invalid date range: to before earliest shift")
	}

	var accounts, entries, requests int64
	if cmd.StoreID != "" {
		accounts, entries, requests, err = s.hourBank.DeleteByStore(ctx, cmd.StoreID)
	} else {
		accounts, entries, requests, err = s.hourBank.DeleteAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete hour bank data: %w", err)
	}
	s.logger.Info("Deleted hour bank data for rebuild",
		"storeId", cmd.StoreID, "accounts", accounts, "entries", entries, "requests", requests)

	start := time.Now()
	result, err := s.Calculate(ctx, CalculateHourBankCommand{
		StoreID:              cmd.StoreID,
		From:                 earliest,
		To:                   cmd.To,
		RecalculateFromStart: true,
		ActorRole:            cmd.ActorRole,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Performance(ctx, "hour_bank.recalculate", time.Since(start), true, map[string]any{
		"storeId":        cmd.StoreID,
		"entriesCreated": result.EntriesCreated,
	})
	return result, nil
}

// CreateRecoveryRequest validates and records a pending recovery request.
// The requested hours are reserved on the account; both mutations are
// persisted together and nothing changes on validation failure.
func (s *HourBankApplicationService) CreateRecoveryRequest(ctx context.Context, cmd CreateRecoveryRequestCommand) (*RecoveryRequestDTO, error) {
	account, err := s.hourBank.FindAccount(ctx, cmd.EmployeeID, cmd.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, errors.ErrNotFound("hour bank account")
	}

	request, err := domain.NewRecoveryRequest(uuid.New().String(), account, cmd.RequestedHours, cmd.ScheduledDate, cmd.Reason, time.Now())
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.hourBank.SaveRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}
	if err := s.hourBank.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("Created recovery request", "requestId", request.RequestID, "employeeId", cmd.EmployeeID, "hours", cmd.RequestedHours)
	return ToRecoveryRequestDTO(request), nil
}

// DecideRecoveryRequest approves or rejects a pending request
func (s *HourBankApplicationService) DecideRecoveryRequest(ctx context.Context, cmd DecideRecoveryRequestCommand) (*RecoveryRequestDTO, error) {
	request, err := s.hourBank.FindRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if request == nil {
		return nil, errors.ErrNotFound("recovery request")
	}

	account, err := s.hourBank.FindAccount(ctx, request.EmployeeID, request.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, errors.ErrNotFound("hour bank account")
	}

	if cmd.Approve {
		err = request.Approve(cmd.ActorRole, cmd.DecidedBy)
	} else {
		err = request.Reject(cmd.ActorRole, cmd.DecidedBy, account)
	}
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.hourBank.SaveRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}
	if !cmd.Approve {
		if err := s.hourBank.SaveAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to save account: %w", err)
		}
	}

	s.logger.Audit(ctx, "recovery_request.decide", "recovery_request", cmd.RequestID, cmd.DecidedBy, map[string]any{
		"status": string(request.Status),
		"hours":  request.RequestedHours,
	})
	return ToRecoveryRequestDTO(request), nil
}

// UseRecoveryRequest settles an approved request: the balance is debited
// and the reservation released.
func (s *HourBankApplicationService) UseRecoveryRequest(ctx context.Context, cmd UseRecoveryRequestCommand) (*RecoveryRequestDTO, error) {
	request, err := s.hourBank.FindRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if request == nil {
		return nil, errors.ErrNotFound("recovery request")
	}

	account, err := s.hourBank.FindAccount(ctx, request.EmployeeID, request.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, errors.ErrNotFound("hour bank account")
	}

	if err := request.MarkUsed(cmd.ActorRole, account); err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.hourBank.SaveRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}
	if err := s.hourBank.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("Settled recovery request", "requestId", cmd.RequestID, "hours", request.RequestedHours)
	return ToRecoveryRequestDTO(request), nil
}

// GetStoreSummary aggregates a store's hour-bank accounts. Net balance is
// total credit minus total debt; the average includes negative balances.
func (s *HourBankApplicationService) GetStoreSummary(ctx context.Context, query StoreSummaryQuery) (*StoreSummaryDTO, error) {
	accounts, err := s.hourBank.FindAccountsByStore(ctx, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	summary := &StoreSummaryDTO{StoreID: query.StoreID, AccountCount: len(accounts)}
	summarize(accounts, &summary.TotalCredit, &summary.TotalDebt, &summary.AverageBalance)
	summary.NetBalance = summary.TotalCredit - summary.TotalDebt

	sorted := make([]*domain.HourBankAccount, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CurrentBalance > sorted[j].CurrentBalance })
	for i := 0; i < len(sorted) && i < 5; i++ {
		if sorted[i].CurrentBalance > 0 {
			summary.TopCreditors = append(summary.TopCreditors, *ToAccountDTO(sorted[i]))
		}
	}
	for i := len(sorted) - 1; i >= 0 && len(summary.TopDebtors) < 5; i-- {
		if sorted[i].CurrentBalance < 0 {
			summary.TopDebtors = append(summary.TopDebtors, *ToAccountDTO(sorted[i]))
		}
	}
	return summary, nil
}

// GetEmployeeReport retrieves one employee's hour-bank history
func (s *HourBankApplicationService) GetEmployeeReport(ctx context.Context, query EmployeeReportQuery) (*EmployeeReportDTO, error) {
	account, err := s.hourBank.FindAccount(ctx, query.EmployeeID, query.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, errors.ErrNotFound("hour bank account")
	}

	entries, err := s.hourBank.FindEntries(ctx, account.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	requests, err := s.hourBank.FindRequestsByEmployee(ctx, query.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}

	report := &EmployeeReportDTO{Account: ToAccountDTO(account)}
	sort.Slice(entries, func(i, j int) bool { return entries[i].WeekStart.Before(entries[j].WeekStart) })
	for _, e := range entries {
		report.Entries = append(report.Entries, ToEntryDTO(e))
	}
	for _, r := range requests {
		report.Requests = append(report.Requests, *ToRecoveryRequestDTO(r))
	}
	return report, nil
}

// GetStatistics returns the global hour-bank aggregate view
func (s *HourBankApplicationService) GetStatistics(ctx context.Context) (*StatisticsDTO, error) {
	accounts, err := s.hourBank.FindAllAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	pending, err := s.hourBank.FindRequestsByStatus(ctx, domain.RecoveryPending)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending requests: %w", err)
	}

	stats := &StatisticsDTO{AccountCount: len(accounts), PendingRequests: len(pending)}
	summarize(accounts, &stats.TotalCredit, &stats.TotalDebt, &stats.AverageBalance)
	stats.NetBalance = stats.TotalCredit - stats.TotalDebt
	return stats, nil
}

// Reset deletes hour-bank data for a store, or globally when no store is
// given. Admin only; returns the deletion counts.
func (s *HourBankApplicationService) Reset(ctx context.Context, cmd ResetHourBankCommand) (*ResetResultDTO, error) {
	if !cmd.ActorRole.AtLeast(domain.RoleAdmin) {
		return nil, errors.ErrForbidden("hour bank reset requires admin role")
	}

	var accounts, entries, requests int64
	var err error
	if cmd.StoreID != "" {
		accounts, entries, requests, err = s.hourBank.DeleteByStore(ctx, cmd.StoreID)
	} else {
		accounts, entries, requests, err = s.hourBank.DeleteAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reset hour bank: %w", err)
	}

	s.logger.Audit(ctx, "hour_bank.reset", "store", cmd.StoreID, string(cmd.ActorRole), map[string]any{
		"accounts": accounts,
		"entries":  entries,
		"requests": requests,
	})
	return &ResetResultDTO{AccountsDeleted: accounts, EntriesDeleted: entries, RequestsDeleted: requests}, nil
}

func (s *HourBankApplicationService) resolveEmployees(ctx context.Context, storeID string, employeeIDs []string) ([]*domain.Employee, error) {
	if len(employeeIDs) > 0 {
		employees := make([]*domain.Employee, 0, len(employeeIDs))
		for _, id := range employeeIDs {
			employee, err := s.employees.FindByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to get employee: %w", err)
			}
			if employee == nil {
				return nil, errors.ErrNotFoundWithID("employee", id)
			}
			employees = append(employees, employee)
		}
		return employees, nil
	}

	if storeID != "" {
		employees, err := s.employees.FindByStore(ctx, storeID)
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}
		return activeOnly(employees), nil
	}

	employees, err := s.employees.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

func activeOnly(employees []*domain.Employee) []*domain.Employee {
	out := make([]*domain.Employee, 0, len(employees))
	for _, e := range employees {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out
}

func summarize(accounts []*domain.HourBankAccount, credit, debt, average *float64) {
	if len(accounts) == 0 {
		return
	}
	sum := 0.0
	for _, a := range accounts {
		if a.CurrentBalance > 0 {
			*credit += a.CurrentBalance
		} else {
			*debt += -a.CurrentBalance
		}
		sum += a.CurrentBalance
	}
	*average = sum / float64(len(accounts))
}
