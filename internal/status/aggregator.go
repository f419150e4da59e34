// Package status derives the aggregate system health from the service catalog.
package status

import "github.com/statusdeck/statusdeck/internal/domain"

// Aggregate reduces the full service set to a single system status:
// any major outage wins, then any degradation, otherwise operational.
// Maintenance does not count against health. An empty set is operational.
func Aggregate(services []domain.Service) domain.SystemStatus {
	result := domain.SystemStatusOperational

	for _, svc := range services {
		switch svc.Status {
		case domain.ServiceStatusMajorOutage:
			return domain.SystemStatusOutage
		case domain.ServiceStatusDegraded, domain.ServiceStatusPartialOutage:
			result = domain.SystemStatusDegraded
		}
	}

	return result
}

// severityRank orders system statuses from healthy to broken.
var severityRank = map[domain.SystemStatus]int{
	domain.SystemStatusOperational: 0,
	domain.SystemStatusDegraded:    1,
	domain.SystemStatusOutage:      2,
}

// IsDegradation reports whether moving from prev to current is a step
// toward worse health.
func IsDegradation(prev, current domain.SystemStatus) bool {
	return severityRank[current] > severityRank[prev]
}
