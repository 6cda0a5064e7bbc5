package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrops-platform/scheduling-service/internal/domain"
	"github.com/hrops-platform/scheduling-service/pkg/errors"
	"github.com/hrops-platform/scheduling-service/pkg/logging"
)

// HREmployeeRecord is the shape delivered by the external HR system.
type HREmployeeRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	Department string `json:"department"`
	HireDate   string `json:"hireDate"`
	Status     string `json:"status"`
	OrgUnit    string `json:"orgUnit"`
}

// HRDirectoryClient pulls employee records from the external HR system.
type HRDirectoryClient interface {
	FetchEmployees(ctx context.Context) ([]HREmployeeRecord, error)
}

// StoreMatch is the result of mapping an HR organizational unit onto a
// store record.
type StoreMatch struct {
	StoreID    string
	Confidence float64
}

// MatchStore maps an organizational-unit name onto a store with a
// deterministic tie-break order: exact name match, then substring
// containment in either direction, then the default store. Confidence
// tiers: 1.0 exact, 0.7 substring, 0.3 default fallback.
func MatchStore(stores []*domain.Store, orgUnit string) StoreMatch {
	needle := strings.ToLower(strings.TrimSpace(orgUnit))

	if needle != "" {
		for _, store := range stores {
			if strings.ToLower(store.Name) == needle {
				return StoreMatch{StoreID: store.StoreID, Confidence: 1.0}
			}
		}
		for _, store := range stores {
			name := strings.ToLower(store.Name)
			if name != "" && (strings.Contains(needle, name) || strings.Contains(name, needle)) {
				return StoreMatch{StoreID: store.StoreID, Confidence: 0.7}
			}
		}
	}

	for _, store := range stores {
		if store.IsDefault {
			return StoreMatch{StoreID: store.StoreID, Confidence: 0.3}
		}
	}
	return StoreMatch{}
}

// HRSyncApplicationService imports employees from the external HR system
// into the scheduling domain.
type HRSyncApplicationService struct {
	client    HRDirectoryClient
	employees domain.EmployeeRepository
	stores    domain.StoreRepository
	logger    *logging.Logger

	// DefaultContractHours is assigned to imported employees; the HR
	// system does not carry contract data.
	DefaultContractHours float64
}

// NewHRSyncApplicationService creates a new HRSyncApplicationService
func NewHRSyncApplicationService(
	client HRDirectoryClient,
	employees domain.EmployeeRepository,
	stores domain.StoreRepository,
	logger *logging.Logger,
) *HRSyncApplicationService {
	return &HRSyncApplicationService{
		client:               client,
		employees:            employees,
		stores:               stores,
		logger:               logger,
		DefaultContractHours: 40,
	}
}

// SyncEmployees pulls records from the HR system, maps them into the
// employee shape and upserts them. Failures on one record do not abort
// the run; each record carries its own outcome.
func (s *HRSyncApplicationService) SyncEmployees(ctx context.Context, cmd SyncEmployeesCommand) (*SyncResultDTO, error) {
	if !cmd.ActorRole.AtLeast(domain.RoleManager) {
		return nil, errors.ErrForbidden("employee sync requires manager role")
	}

	start := time.Now()
	records, err := s.client.FetchEmployees(ctx)
	s.logger.HRSyncCall(ctx, "employees", err == nil, time.Since(start), len(records))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HR employees: %w", err)
	}

	stores, err := s.stores.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}

	result := &SyncResultDTO{Records: make([]SyncRecordDTO, 0, len(records))}
	for _, record := range records {
		outcome := s.syncRecord(ctx, record, stores)
		switch outcome.Outcome {
		case "imported":
			result.Imported++
		case "updated":
			result.Updated++
		default:
			result.Skipped++
		}
		result.Records = append(result.Records, outcome)
	}

	s.logger.Info("Employee sync finished",
		"imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

func (s *HRSyncApplicationService) syncRecord(ctx context.Context, record HREmployeeRecord, stores []*domain.Store) SyncRecordDTO {
	outcome := SyncRecordDTO{ExternalID: record.ID}

	if record.ID == "" || record.Name == "" {
		outcome.Outcome = "skipped"
		outcome.Reason = "missing id or name"
		return outcome
	}
	if !strings.EqualFold(record.Status, "active") {
		outcome.Outcome = "skipped"
		outcome.Reason = fmt.Sprintf("status %q not active", record.Status)
		return outcome
	}

	match := MatchStore(stores, record.OrgUnit)
	outcome.StoreID = match.StoreID
	outcome.MatchConfidence = match.Confidence

	existing, err := s.employees.FindByExternalRef(ctx, record.ID)
	if err != nil {
		outcome.Outcome = "skipped"
		outcome.Reason = err.Error()
		return outcome
	}

	if existing != nil {
		existing.Name = record.Name
		existing.Email = record.Email
		existing.Position = record.Position
		if match.StoreID != "" {
			existing.AssignToStore(match.StoreID)
		}
		if err := s.employees.Save(ctx, existing); err != nil {
			s.logger.WithError(err).Error("Failed to update synced employee", "externalId", record.ID)
			outcome.Outcome = "skipped"
			outcome.Reason = err.Error()
			return outcome
		}
		outcome.EmployeeID = existing.EmployeeID
		outcome.Outcome = "updated"
		return outcome
	}

	employee, err := domain.NewEmployee(uuid.New().String(), record.Name, s.DefaultContractHours, 0)
	if err != nil {
		outcome.Outcome = "skipped"
		outcome.Reason = err.Error()
		return outcome
	}
	employee.Email = record.Email
	employee.Position = record.Position
	employee.ExternalRef = record.ID
	if match.StoreID != "" {
		employee.AssignToStore(match.StoreID)
	}
	if hired, err := domain.ParseDate(record.HireDate); err == nil {
		employee.HireDate = &hired
	}

	if err := s.employees.Save(ctx, employee); err != nil {
		s.logger.WithError(err).Error("Failed to import synced employee", "externalId", record.ID)
		outcome.Outcome = "skipped"
		outcome.Reason = err.Error()
		return outcome
	}
	outcome.EmployeeID = employee.EmployeeID
	outcome.Outcome = "imported"
	return outcome
}
