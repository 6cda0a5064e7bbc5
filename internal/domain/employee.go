package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role gates mutating operations. Roles are ordered: each role includes the
// capabilities of the ones below it.
type Role string

const (
	RoleEmployee Role = "employee"
	RolePlanner  Role = "planner"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

var roleRank = map[Role]int{
	RoleEmployee: 0,
	RolePlanner:  1,
	RoleManager:  2,
	RoleAdmin:    3,
}

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role has the capabilities of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// Employee is an aggregate root in the scheduling bounded context.
type Employee struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EmployeeID    string             `bson:"employeeId" json:"employeeId"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Position      string             `bson:"position,omitempty" json:"position,omitempty"`
	Role          Role               `bson:"role" json:"role"`
	ContractHours float64            `bson:"contractHours" json:"contractHours"`
	FixedHours    float64            `bson:"fixedHours" json:"fixedHours"`
	StoreID       string             `bson:"storeId,omitempty" json:"storeId,omitempty"`
	HireDate      *time.Time         `bson:"hireDate,omitempty" json:"hireDate,omitempty"`
	ExternalRef   string             `bson:"externalRef,omitempty" json:"externalRef,omitempty"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents  []DomainEvent      `bson:"-" json:"-"`
}

// NewEmployee creates a new Employee aggregate.
func NewEmployee(employeeID, name string, contractHours, fixedHours float64) (*Employee, error) {
	if contractHours <= 0 {
		return nil, ErrInvalidContractHours
	}
	if fixedHours < 0 || fixedHours > contractHours {
		return nil, ErrInvalidContractHours
	}

	now := time.Now()
	return &Employee{
		EmployeeID:    employeeID,
		Name:          name,
		Role:          RoleEmployee,
		ContractHours: contractHours,
		FixedHours:    fixedHours,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
		DomainEvents:  make([]DomainEvent, 0),
	}, nil
}

// UpdateContract changes the contracted weekly hours.
func (e *Employee) UpdateContract(contractHours, fixedHours float64) error {
	if contractHours <= 0 || fixedHours < 0 || fixedHours > contractHours {
		return ErrInvalidContractHours
	}
	e.ContractHours = contractHours
	e.FixedHours = fixedHours
	e.UpdatedAt = time.Now()
	return nil
}

// AssignToStore sets the employee's store assignment.
func (e *Employee) AssignToStore(storeID string) {
	e.StoreID = storeID
	e.UpdatedAt = time.Now()
}

// Deactivate marks the employee as inactive. Inactive employees are
// excluded from coverage and hour-bank runs.
func (e *Employee) Deactivate() {
	e.IsActive = false
	e.UpdatedAt = time.Now()
}

// AddDomainEvent records a domain event for later publication.
func (e *Employee) AddDomainEvent(event DomainEvent) {
	e.DomainEvents = append(e.DomainEvents, event)
}

// ClearDomainEvents clears all pending domain events.
func (e *Employee) ClearDomainEvents() {
	e.DomainEvents = make([]DomainEvent, 0)
}
