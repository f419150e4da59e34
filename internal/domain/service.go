package domain

import "time"

// ServiceStatus represents the operational status of a single service.
type ServiceStatus string

// Service statuses.
const (
	ServiceStatusOperational   ServiceStatus = "operational"
	ServiceStatusDegraded      ServiceStatus = "degraded"
	ServiceStatusPartialOutage ServiceStatus = "partial_outage"
	ServiceStatusMajorOutage   ServiceStatus = "major_outage"
	ServiceStatusMaintenance   ServiceStatus = "maintenance"
)

// IsValid checks if the service status is valid.
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusOperational, ServiceStatusDegraded,
		ServiceStatusPartialOutage, ServiceStatusMajorOutage,
		ServiceStatusMaintenance:
		return true
	}
	return false
}

// SystemStatus is the aggregate health of the whole system, derived from the
// statuses of all monitored services. It is never persisted.
type SystemStatus string

// Aggregate system statuses.
const (
	SystemStatusOperational SystemStatus = "operational"
	SystemStatusDegraded    SystemStatus = "degraded"
	SystemStatusOutage      SystemStatus = "outage"
)

// Service represents a monitored service.
type Service struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Status      ServiceStatus `json:"status"`
	Group       string        `json:"group"`
	Order       int           `json:"order"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
