package status

import (
	"testing"

	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/stretchr/testify/assert"
)

func servicesWith(statuses ...domain.ServiceStatus) []domain.Service {
	services := make([]domain.Service, len(statuses))
	for i, s := range statuses {
		services[i] = domain.Service{Status: s}
	}
	return services
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []domain.ServiceStatus
		want     domain.SystemStatus
	}{
		{
			name:     "empty set is operational",
			statuses: nil,
			want:     domain.SystemStatusOperational,
		},
		{
			name:     "all operational",
			statuses: []domain.ServiceStatus{domain.ServiceStatusOperational, domain.ServiceStatusOperational},
			want:     domain.SystemStatusOperational,
		},
		{
			name:     "maintenance does not count against health",
			statuses: []domain.ServiceStatus{domain.ServiceStatusOperational, domain.ServiceStatusMaintenance},
			want:     domain.SystemStatusOperational,
		},
		{
			name:     "single degraded service",
			statuses: []domain.ServiceStatus{domain.ServiceStatusOperational, domain.ServiceStatusDegraded},
			want:     domain.SystemStatusDegraded,
		},
		{
			name:     "partial outage counts as degraded",
			statuses: []domain.ServiceStatus{domain.ServiceStatusPartialOutage, domain.ServiceStatusOperational},
			want:     domain.SystemStatusDegraded,
		},
		{
			name:     "major outage wins over everything",
			statuses: []domain.ServiceStatus{domain.ServiceStatusDegraded, domain.ServiceStatusMajorOutage, domain.ServiceStatusOperational},
			want:     domain.SystemStatusOutage,
		},
		{
			name:     "major outage alone",
			statuses: []domain.ServiceStatus{domain.ServiceStatusMajorOutage},
			want:     domain.SystemStatusOutage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(servicesWith(tt.statuses...)))
		})
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	forward := servicesWith(domain.ServiceStatusOperational, domain.ServiceStatusDegraded, domain.ServiceStatusMajorOutage)
	backward := servicesWith(domain.ServiceStatusMajorOutage, domain.ServiceStatusDegraded, domain.ServiceStatusOperational)

	assert.Equal(t, Aggregate(forward), Aggregate(backward))
}

func TestIsDegradation(t *testing.T) {
	assert.True(t, IsDegradation(domain.SystemStatusOperational, domain.SystemStatusDegraded))
	assert.True(t, IsDegradation(domain.SystemStatusOperational, domain.SystemStatusOutage))
	assert.True(t, IsDegradation(domain.SystemStatusDegraded, domain.SystemStatusOutage))

	assert.False(t, IsDegradation(domain.SystemStatusOutage, domain.SystemStatusOperational))
	assert.False(t, IsDegradation(domain.SystemStatusDegraded, domain.SystemStatusOperational))
	assert.False(t, IsDegradation(domain.SystemStatusOutage, domain.SystemStatusDegraded))
	assert.False(t, IsDegradation(domain.SystemStatusOperational, domain.SystemStatusOperational))
}
