package catalog

import "errors"

// Catalog errors.
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrSlugExists      = errors.New("service slug already exists")
	ErrInvalidStatus   = errors.New("invalid service status")
)
