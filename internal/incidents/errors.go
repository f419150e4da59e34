package incidents

import "errors"

// Incident errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrInvalidStatus    = errors.New("invalid incident status")
	ErrInvalidSeverity  = errors.New("invalid severity")
	ErrAlreadyResolved  = errors.New("incident already resolved")
)
