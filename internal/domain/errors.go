package domain

import "errors"

// Errors surfaced by the domain layer. Message wording matters because the
// HTTP layer maps these onto error codes by content.
var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrStoreNotFound    = errors.New("store not found")
	ErrShiftNotFound    = errors.New("shift not found")
	ErrAccountNotFound  = errors.New("hour bank account not found")
	ErrRequestNotFound  = errors.New("recovery request not found")

	ErrShiftLocked          = errors.New("shift is locked and cannot be modified")
	ErrInvalidTransition    = errors.New("cannot transition shift to requested status")
	ErrRoleNotAllowed       = errors.New("operation not allowed for actor role")
	ErrInvalidShiftTimes    = errors.New("invalid shift times: end must be after start")
	ErrInvalidContractHours = errors.New("invalid contract hours: fixed hours must not exceed contract hours")
	ErrInsufficientBalance  = errors.New("insufficient hour bank balance")
	ErrInvalidRecoveryHours = errors.New("invalid requested hours: must be positive")
	ErrInvalidRequestState  = errors.New("cannot transition recovery request from current state")
	ErrPastScheduledDate    = errors.New("invalid scheduled date: must be in the future")
	ErrInvalidMultiplier    = errors.New("invalid multiplier: must be between 0.1 and 3.0")
)
