package application

import (
	"context"
	"time"

	"github.com/hrops-platform/scheduling-service/internal/domain"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}

type stubEmployeeRepo struct {
	SaveFn              func(ctx context.Context, employee *domain.Employee) error
	FindByIDFn          func(ctx context.Context, employeeID string) (*domain.Employee, error)
	FindByExternalRefFn func(ctx context.Context, ref string) (*domain.Employee, error)
	FindByStoreFn       func(ctx context.Context, storeID string) ([]*domain.Employee, error)
	FindActiveFn        func(ctx context.Context) ([]*domain.Employee, error)
	FindAllFn           func(ctx context.Context, limit, offset int) ([]*domain.Employee, error)
	DeleteFn            func(ctx context.Context, employeeID string) error
}

func (s *stubEmployeeRepo) Save(ctx context.Context, employee *domain.Employee) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, employee)
	}
	return nil
}

func (s *stubEmployeeRepo) FindByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, employeeID)
	}
	return nil, nil
}

func (s *stubEmployeeRepo) FindByExternalRef(ctx context.Context, ref string) (*domain.Employee, error) {
	if s.FindByExternalRefFn != nil {
		return s.FindByExternalRefFn(ctx, ref)
	}
	return nil, nil
}

func (s *stubEmployeeRepo) FindByStore(ctx context.Context, storeID string) ([]*domain.Employee, error) {
	if s.FindByStoreFn != nil {
		return s.FindByStoreFn(ctx, storeID)
	}
	return nil, nil
}

func (s *stubEmployeeRepo) FindActive(ctx context.Context) ([]*domain.Employee, error) {
	if s.FindActiveFn != nil {
		return s.FindActiveFn(ctx)
	}
	return nil, nil
}

func (s *stubEmployeeRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.Employee, error) {
	if s.FindAllFn != nil {
		return s.FindAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubEmployeeRepo) Delete(ctx context.Context, employeeID string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, employeeID)
	}
	return nil
}

type stubStoreRepo struct {
	SaveFn        func(ctx context.Context, store *domain.Store) error
	FindByIDFn    func(ctx context.Context, storeID string) (*domain.Store, error)
	FindDefaultFn func(ctx context.Context) (*domain.Store, error)
	FindActiveFn  func(ctx context.Context) ([]*domain.Store, error)
	FindAllFn     func(ctx context.Context, limit, offset int) ([]*domain.Store, error)
	DeleteFn      func(ctx context.Context, storeID string) error
}

func (s *stubStoreRepo) Save(ctx context.Context, store *domain.Store) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, store)
	}
	return nil
}

func (s *stubStoreRepo) FindByID(ctx context.Context, storeID string) (*domain.Store, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, storeID)
	}
	return nil, nil
}

func (s *stubStoreRepo) FindDefault(ctx context.Context) (*domain.Store, error) {
	if s.FindDefaultFn != nil {
		return s.FindDefaultFn(ctx)
	}
	return nil, nil
}

func (s *stubStoreRepo) FindActive(ctx context.Context) ([]*domain.Store, error) {
	if s.FindActiveFn != nil {
		return s.FindActiveFn(ctx)
	}
	return nil, nil
}

func (s *stubStoreRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.Store, error) {
	if s.FindAllFn != nil {
		return s.FindAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubStoreRepo) Delete(ctx context.Context, storeID string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, storeID)
	}
	return nil
}

type stubShiftRepo struct {
	SaveFn                func(ctx context.Context, shift *domain.Shift) error
	SaveAllFn             func(ctx context.Context, shifts []*domain.Shift) error
	FindByIDFn            func(ctx context.Context, shiftID string) (*domain.Shift, error)
	FindByStoreWeekFn     func(ctx context.Context, storeID string, weekStart time.Time) ([]*domain.Shift, error)
	FindByEmployeeRangeFn func(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Shift, error)
	FindByEmployeeStoreFn func(ctx context.Context, employeeID, storeID string, from, to time.Time) ([]*domain.Shift, error)
	FindEarliestDateFn    func(ctx context.Context, storeID string) (time.Time, error)
	DeleteFn              func(ctx context.Context, shiftID string) error
}

func (s *stubShiftRepo) Save(ctx context.Context, shift *domain.Shift) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, shift)
	}
	return nil
}

func (s *stubShiftRepo) SaveAll(ctx context.Context, shifts []*domain.Shift) error {
	if s.SaveAllFn != nil {
		return s.SaveAllFn(ctx, shifts)
	}
	return nil
}

func (s *stubShiftRepo) FindByID(ctx context.Context, shiftID string) (*domain.Shift, error) {
	if s.FindByIDFn != nil {
		return s.FindByIDFn(ctx, shiftID)
	}
	return nil, nil
}

func (s *stubShiftRepo) FindByStoreWeek(ctx context.Context, storeID string, weekStart time.Time) ([]*domain.Shift, error) {
	if s.FindByStoreWeekFn != nil {
		return s.FindByStoreWeekFn(ctx, storeID, weekStart)
	}
	return nil, nil
}

func (s *stubShiftRepo) FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Shift, error) {
	if s.FindByEmployeeRangeFn != nil {
		return s.FindByEmployeeRangeFn(ctx, employeeID, from, to)
	}
	return nil, nil
}

func (s *stubShiftRepo) FindByEmployeeStore(ctx context.Context, employeeID, storeID string, from, to time.Time) ([]*domain.Shift, error) {
	if s.FindByEmployeeStoreFn != nil {
		return s.FindByEmployeeStoreFn(ctx, employeeID, storeID, from, to)
	}
	return nil, nil
}

func (s *stubShiftRepo) FindEarliestDate(ctx context.Context, storeID string) (time.Time, error) {
	if s.FindEarliestDateFn != nil {
		return s.FindEarliestDateFn(ctx, storeID)
	}
	return time.Time{}, nil
}

func (s *stubShiftRepo) Delete(ctx context.Context, shiftID string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, shiftID)
	}
	return nil
}

type stubRequirementRepo struct {
	SaveRequirementFn           func(ctx context.Context, req *domain.StaffRequirement) error
	ReplaceStoreRequirementsFn  func(ctx context.Context, storeID string, reqs []*domain.StaffRequirement) error
	FindRequirementsByStoreFn   func(ctx context.Context, storeID string) ([]*domain.StaffRequirement, error)
	DeleteRequirementFn         func(ctx context.Context, requirementID string) error
	SaveWeightingEventFn        func(ctx context.Context, event *domain.WeightingEvent) error
	FindWeightingEventsFn       func(ctx context.Context, storeID string, from, to time.Time) ([]*domain.WeightingEvent, error)
	DeleteWeightingEventFn      func(ctx context.Context, eventID string) error
}

func (s *stubRequirementRepo) SaveRequirement(ctx context.Context, req *domain.StaffRequirement) error {
	if s.SaveRequirementFn != nil {
		return s.SaveRequirementFn(ctx, req)
	}
	return nil
}

func (s *stubRequirementRepo) ReplaceStoreRequirements(ctx context.Context, storeID string, reqs []*domain.StaffRequirement) error {
	if s.ReplaceStoreRequirementsFn != nil {
		return s.ReplaceStoreRequirementsFn(ctx, storeID, reqs)
	}
	return nil
}

func (s *stubRequirementRepo) FindRequirementsByStore(ctx context.Context, storeID string) ([]*domain.StaffRequirement, error) {
	if s.FindRequirementsByStoreFn != nil {
		return s.FindRequirementsByStoreFn(ctx, storeID)
	}
	return nil, nil
}

func (s *stubRequirementRepo) DeleteRequirement(ctx context.Context, requirementID string) error {
	if s.DeleteRequirementFn != nil {
		return s.DeleteRequirementFn(ctx, requirementID)
	}
	return nil
}

func (s *stubRequirementRepo) SaveWeightingEvent(ctx context.Context, event *domain.WeightingEvent) error {
	if s.SaveWeightingEventFn != nil {
		return s.SaveWeightingEventFn(ctx, event)
	}
	return nil
}

func (s *stubRequirementRepo) FindWeightingEvents(ctx context.Context, storeID string, from, to time.Time) ([]*domain.WeightingEvent, error) {
	if s.FindWeightingEventsFn != nil {
		return s.FindWeightingEventsFn(ctx, storeID, from, to)
	}
	return nil, nil
}

func (s *stubRequirementRepo) DeleteWeightingEvent(ctx context.Context, eventID string) error {
	if s.DeleteWeightingEventFn != nil {
		return s.DeleteWeightingEventFn(ctx, eventID)
	}
	return nil
}

// memHourBankRepo is an in-memory hour bank used by the calculation and
// recovery tests, which need state across calls.
type memHourBankRepo struct {
	accounts map[string]*domain.HourBankAccount
	entries  map[string][]*domain.HourBankEntry
	requests map[string]*domain.HourRecoveryRequest
}

func newMemHourBankRepo() *memHourBankRepo {
	return &memHourBankRepo{
		accounts: make(map[string]*domain.HourBankAccount),
		entries:  make(map[string][]*domain.HourBankEntry),
		requests: make(map[string]*domain.HourRecoveryRequest),
	}
}

func (m *memHourBankRepo) SaveAccount(_ context.Context, account *domain.HourBankAccount) error {
	m.accounts[account.EmployeeID+"/"+account.StoreID] = account
	return nil
}

func (m *memHourBankRepo) FindAccount(_ context.Context, employeeID, storeID string) (*domain.HourBankAccount, error) {
	return m.accounts[employeeID+"/"+storeID], nil
}

func (m *memHourBankRepo) FindAccountsByStore(_ context.Context, storeID string) ([]*domain.HourBankAccount, error) {
	var out []*domain.HourBankAccount
	for _, a := range m.accounts {
		if a.StoreID == storeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memHourBankRepo) FindAllAccounts(_ context.Context) ([]*domain.HourBankAccount, error) {
	var out []*domain.HourBankAccount
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (m *memHourBankRepo) SaveEntry(_ context.Context, entry *domain.HourBankEntry) error {
	m.entries[entry.AccountID] = append(m.entries[entry.AccountID], entry)
	return nil
}

func (m *memHourBankRepo) FindEntries(_ context.Context, accountID string) ([]*domain.HourBankEntry, error) {
	return m.entries[accountID], nil
}

func (m *memHourBankRepo) FindEntryForWeek(_ context.Context, accountID string, weekStart time.Time) (*domain.HourBankEntry, error) {
	for _, e := range m.entries[accountID] {
		if e.WeekStart.Equal(weekStart) {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memHourBankRepo) SaveRequest(_ context.Context, request *domain.HourRecoveryRequest) error {
	m.requests[request.RequestID] = request
	return nil
}

func (m *memHourBankRepo) FindRequest(_ context.Context, requestID string) (*domain.HourRecoveryRequest, error) {
	return m.requests[requestID], nil
}

func (m *memHourBankRepo) FindRequestsByEmployee(_ context.Context, employeeID string) ([]*domain.HourRecoveryRequest, error) {
	var out []*domain.HourRecoveryRequest
	for _, r := range m.requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memHourBankRepo) FindRequestsByStatus(_ context.Context, status domain.RecoveryStatus) ([]*domain.HourRecoveryRequest, error) {
	var out []*domain.HourRecoveryRequest
	for _, r := range m.requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memHourBankRepo) DeleteByStore(_ context.Context, storeID string) (int64, int64, int64, error) {
	var accounts, entries, requests int64
	for k, a := range m.accounts {
		if a.StoreID == storeID {
			accounts++
			entries += int64(len(m.entries[a.AccountID]))
			delete(m.entries, a.AccountID)
			delete(m.accounts, k)
		}
	}
	for k, r := range m.requests {
		if r.StoreID == storeID {
			requests++
			delete(m.requests, k)
		}
	}
	return accounts, entries, requests, nil
}

func (m *memHourBankRepo) DeleteAll(_ context.Context) (int64, int64, int64, error) {
	accounts := int64(len(m.accounts))
	requests := int64(len(m.requests))
	var entries int64
	for _, e := range m.entries {
		entries += int64(len(e))
	}
	m.accounts = make(map[string]*domain.HourBankAccount)
	m.entries = make(map[string][]*domain.HourBankEntry)
	m.requests = make(map[string]*domain.HourRecoveryRequest)
	return accounts, entries, requests, nil
}
