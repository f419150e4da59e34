package incidents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/ctxlog"
)

// Service implements incident business logic.
type Service struct {
	repo Repository
}

// NewService creates a new incident service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateIncidentInput holds data for creating an incident.
type CreateIncidentInput struct {
	Title       string
	Description string
	Status      domain.IncidentStatus
	Severity    domain.Severity
	ServiceIDs  []string
	StartedAt   *time.Time
}

// CreateIncident creates a new incident with an initial timeline entry.
func (s *Service) CreateIncident(ctx context.Context, input CreateIncidentInput, createdBy string) (*domain.Incident, error) {
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if !input.Severity.IsValid() {
		return nil, ErrInvalidSeverity
	}

	startedAt := time.Now().UTC()
	if input.StartedAt != nil {
		startedAt = *input.StartedAt
	}

	incident := &domain.Incident{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Severity:    input.Severity,
		ServiceIDs:  input.ServiceIDs,
		StartedAt:   startedAt,
		CreatedBy:   createdBy,
	}

	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		return nil, err
	}

	update := &domain.IncidentUpdate{
		IncidentID: incident.ID,
		Status:     incident.Status,
		Message:    incident.Description,
		CreatedBy:  createdBy,
	}
	if err := s.repo.CreateUpdate(ctx, update); err != nil {
		ctxlog.FromContext(ctx).Error("create initial incident update",
			"incident_id", incident.ID,
			"error", err,
		)
	}

	ctxlog.FromContext(ctx).Info("incident created",
		"incident_id", incident.ID,
		"severity", incident.Severity,
	)
	return incident, nil
}

// GetIncident retrieves an incident by ID.
func (s *Service) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	// A malformed ID would error at the driver level; treat it as absent.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrIncidentNotFound
	}
	return s.repo.GetIncidentByID(ctx, id)
}

// ListIncidents lists incidents matching the filter, newest first.
func (s *Service) ListIncidents(ctx context.Context, filter IncidentFilter) ([]domain.Incident, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.ListIncidents(ctx, filter)
}

// AddUpdateInput holds data for adding a timeline entry.
type AddUpdateInput struct {
	Status  domain.IncidentStatus
	Message string
}

// AddUpdate appends a timeline entry and moves the incident to the entry's
// status. Resolving an incident stamps its resolution time.
func (s *Service) AddUpdate(ctx context.Context, incidentID string, input AddUpdateInput, createdBy string) (*domain.IncidentUpdate, error) {
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	incident, err := s.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	if incident.IsResolved() && input.Status != domain.IncidentStatusResolved {
		return nil, ErrAlreadyResolved
	}

	update := &domain.IncidentUpdate{
		IncidentID: incidentID,
		Status:     input.Status,
		Message:    input.Message,
		CreatedBy:  createdBy,
	}
	if err := s.repo.CreateUpdate(ctx, update); err != nil {
		return nil, err
	}

	incident.Status = input.Status
	if input.Status == domain.IncidentStatusResolved && incident.ResolvedAt == nil {
		now := time.Now().UTC()
		incident.ResolvedAt = &now
	}
	if err := s.repo.UpdateIncident(ctx, incident); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("incident update added",
		"incident_id", incidentID,
		"status", input.Status,
	)
	return update, nil
}

// ListUpdates lists the timeline of an incident, oldest first.
func (s *Service) ListUpdates(ctx context.Context, incidentID string) ([]domain.IncidentUpdate, error) {
	if _, err := s.GetIncident(ctx, incidentID); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, incidentID)
}

// UpdateIncidentInput holds data for editing incident metadata.
type UpdateIncidentInput struct {
	Title       string
	Description string
	Severity    domain.Severity
	ServiceIDs  []string
}

// UpdateIncident edits incident metadata without touching the timeline.
func (s *Service) UpdateIncident(ctx context.Context, id string, input UpdateIncidentInput) (*domain.Incident, error) {
	if !input.Severity.IsValid() {
		return nil, ErrInvalidSeverity
	}

	incident, err := s.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	incident.Title = input.Title
	incident.Description = input.Description
	incident.Severity = input.Severity
	incident.ServiceIDs = input.ServiceIDs

	if err := s.repo.UpdateIncident(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// DeleteIncident removes an incident and its timeline.
func (s *Service) DeleteIncident(ctx context.Context, id string) error {
	if _, err := s.GetIncident(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteIncident(ctx, id)
}
