package application

import "github.com/hrops-platform/scheduling-service/internal/domain"

// ToEmployeeDTO converts a domain Employee to EmployeeDTO
func ToEmployeeDTO(e *domain.Employee) *EmployeeDTO {
	if e == nil {
		return nil
	}
	return &EmployeeDTO{
		EmployeeID:    e.EmployeeID,
		Name:          e.Name,
		Email:         e.Email,
		Position:      e.Position,
		Role:          string(e.Role),
		ContractHours: e.ContractHours,
		FixedHours:    e.FixedHours,
		StoreID:       e.StoreID,
		HireDate:      e.HireDate,
		IsActive:      e.IsActive,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ToEmployeeDTOs converts a slice of domain Employees to EmployeeDTOs
func ToEmployeeDTOs(employees []*domain.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		if dto := ToEmployeeDTO(e); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToStoreDTO converts a domain Store to StoreDTO
func ToStoreDTO(s *domain.Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		StoreID:      s.StoreID,
		Name:         s.Name,
		OpeningHours: s.OpeningHours,
		ClosureDays:  s.ClosureDays,
		IsDefault:    s.IsDefault,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// ToStoreDTOs converts a slice of domain Stores to StoreDTOs
func ToStoreDTOs(stores []*domain.Store) []StoreDTO {
	dtos := make([]StoreDTO, 0, len(stores))
	for _, s := range stores {
		if dto := ToStoreDTO(s); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToShiftDTO converts a domain Shift to ShiftDTO
func ToShiftDTO(s *domain.Shift) *ShiftDTO {
	if s == nil {
		return nil
	}
	return &ShiftDTO{
		ShiftID:          s.ShiftID,
		EmployeeID:       s.EmployeeID,
		StoreID:          s.StoreID,
		RoleName:         s.RoleName,
		Date:             s.Date,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		BreakMinutes:     s.BreakMinutes,
		ActualHours:      s.ActualHours(),
		Status:           string(s.Status),
		ValidationStatus: string(s.ValidationStatus),
		IsLocked:         s.IsLocked,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ToShiftDTOs converts a slice of domain Shifts to ShiftDTOs
func ToShiftDTOs(shifts []*domain.Shift) []ShiftDTO {
	dtos := make([]ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		if dto := ToShiftDTO(s); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToRequirementDTO converts a domain StaffRequirement to RequirementDTO
func ToRequirementDTO(r *domain.StaffRequirement) *RequirementDTO {
	if r == nil {
		return nil
	}
	return &RequirementDTO{
		RequirementID: r.RequirementID,
		StoreID:       r.StoreID,
		DayOfWeek:     r.DayOfWeek,
		Roles:         r.Roles,
	}
}

// ToRequirementDTOs converts a slice of StaffRequirements to DTOs
func ToRequirementDTOs(reqs []*domain.StaffRequirement) []RequirementDTO {
	dtos := make([]RequirementDTO, 0, len(reqs))
	for _, r := range reqs {
		if dto := ToRequirementDTO(r); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToWeightingEventDTO converts a domain WeightingEvent to its DTO
func ToWeightingEventDTO(w *domain.WeightingEvent) *WeightingEventDTO {
	if w == nil {
		return nil
	}
	return &WeightingEventDTO{
		EventID:    w.EventID,
		Name:       w.Name,
		StartDate:  w.StartDate,
		EndDate:    w.EndDate,
		Multiplier: w.Multiplier,
		DaysOfWeek: w.DaysOfWeek,
		StoreIDs:   w.StoreIDs,
		IsActive:   w.IsActive,
	}
}

// ToWeightingEventDTOs converts a slice of WeightingEvents to DTOs
func ToWeightingEventDTOs(events []*domain.WeightingEvent) []WeightingEventDTO {
	dtos := make([]WeightingEventDTO, 0, len(events))
	for _, w := range events {
		if dto := ToWeightingEventDTO(w); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToAccountDTO converts a domain HourBankAccount to AccountDTO
func ToAccountDTO(a *domain.HourBankAccount) *AccountDTO {
	if a == nil {
		return nil
	}
	return &AccountDTO{
		AccountID:        a.AccountID,
		EmployeeID:       a.EmployeeID,
		StoreID:          a.StoreID,
		CurrentBalance:   a.CurrentBalance,
		ReservedHours:    a.ReservedHours,
		AvailableBalance: a.AvailableBalance(),
		TotalAccumulated: a.TotalAccumulated,
		TotalRecovered:   a.TotalRecovered,
		LastCalculatedAt: a.LastCalculatedAt,
	}
}

// ToEntryDTO converts a domain HourBankEntry to EntryDTO
func ToEntryDTO(e *domain.HourBankEntry) EntryDTO {
	return EntryDTO{
		EntryID:       e.EntryID,
		WeekStart:     e.WeekStart,
		ContractHours: e.ContractHours,
		ActualHours:   e.ActualHours,
		Difference:    e.Difference,
		Type:          string(e.Type),
	}
}

// ToRecoveryRequestDTO converts a domain HourRecoveryRequest to its DTO
func ToRecoveryRequestDTO(r *domain.HourRecoveryRequest) *RecoveryRequestDTO {
	if r == nil {
		return nil
	}
	return &RecoveryRequestDTO{
		RequestID:      r.RequestID,
		EmployeeID:     r.EmployeeID,
		StoreID:        r.StoreID,
		RequestedHours: r.RequestedHours,
		ScheduledDate:  r.ScheduledDate,
		Status:         string(r.Status),
		Reason:         r.Reason,
		DecidedBy:      r.DecidedBy,
		DecidedAt:      r.DecidedAt,
		CreatedAt:      r.CreatedAt,
	}
}
