// Package incidents provides business logic and HTTP handlers for incident
// history and its narrative timeline.
package incidents

import (
	"context"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Repository defines the interface for incident data operations.
type Repository interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) error
	GetIncidentByID(ctx context.Context, id string) (*domain.Incident, error)
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]domain.Incident, int, error)
	UpdateIncident(ctx context.Context, incident *domain.Incident) error
	DeleteIncident(ctx context.Context, id string) error

	CreateUpdate(ctx context.Context, update *domain.IncidentUpdate) error
	ListUpdates(ctx context.Context, incidentID string) ([]domain.IncidentUpdate, error)
}

// IncidentFilter represents filter criteria for listing incidents.
type IncidentFilter struct {
	ActiveOnly bool
	ServiceID  *string
	Limit      int
	Offset     int
}
