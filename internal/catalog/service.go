package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/ctxlog"
)

// Service implements catalog business logic.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateService creates a new monitored service.
func (s *Service) CreateService(ctx context.Context, service *domain.Service) error {
	if !service.Status.IsValid() {
		return ErrInvalidStatus
	}

	existing, err := s.repo.GetServiceBySlug(ctx, service.Slug)
	if err != nil && !errors.Is(err, ErrServiceNotFound) {
		return fmt.Errorf("check slug: %w", err)
	}
	if existing != nil {
		return ErrSlugExists
	}

	if err := s.repo.CreateService(ctx, service); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("service created",
		"service_id", service.ID,
		"slug", service.Slug,
	)
	return nil
}

// GetServiceBySlug retrieves a service by its slug.
func (s *Service) GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	return s.repo.GetServiceBySlug(ctx, slug)
}

// GetServiceByID retrieves a service by its ID.
func (s *Service) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	return s.repo.GetServiceByID(ctx, id)
}

// ListServices lists services matching the filter.
func (s *Service) ListServices(ctx context.Context, filter ServiceFilter) ([]domain.Service, error) {
	return s.repo.ListServices(ctx, filter)
}

// UpdateService updates a service identified by slug.
func (s *Service) UpdateService(ctx context.Context, slug string, update *domain.Service) (*domain.Service, error) {
	if !update.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetServiceBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if update.Slug != current.Slug {
		existing, err := s.repo.GetServiceBySlug(ctx, update.Slug)
		if err != nil && !errors.Is(err, ErrServiceNotFound) {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if existing != nil {
			return nil, ErrSlugExists
		}
	}

	update.ID = current.ID
	if err := s.repo.UpdateService(ctx, update); err != nil {
		return nil, err
	}

	if update.Status != current.Status {
		ctxlog.FromContext(ctx).Info("service status changed",
			"service_id", current.ID,
			"from", current.Status,
			"to", update.Status,
		)
	}

	return update, nil
}

// UpdateServiceStatus changes only the status of a service.
func (s *Service) UpdateServiceStatus(ctx context.Context, slug string, status domain.ServiceStatus) (*domain.Service, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	service, err := s.repo.GetServiceBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if service.Status == status {
		return service, nil
	}

	if err := s.repo.UpdateServiceStatus(ctx, service.ID, status); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("service status changed",
		"service_id", service.ID,
		"from", service.Status,
		"to", status,
	)

	service.Status = status
	return service, nil
}

// DeleteService deletes a service identified by slug.
func (s *Service) DeleteService(ctx context.Context, slug string) error {
	service, err := s.repo.GetServiceBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.repo.DeleteService(ctx, service.ID)
}
