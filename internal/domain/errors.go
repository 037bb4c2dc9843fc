package domain

import "errors"

// Error taxonomy shared by services and transports. Call sites wrap these with
// fmt.Errorf("%w: ...") and callers match them with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("conflicting state")
	ErrUnavailable         = errors.New("vehicle not available")
	ErrAvailabilityUnknown = errors.New("availability could not be determined")
	ErrSecurityViolation   = errors.New("security violation")
	ErrNotFound            = errors.New("not found")
	ErrDownstream          = errors.New("downstream service error")
)
