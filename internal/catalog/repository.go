// Package catalog provides business logic and HTTP handlers for the
// monitored service catalog.
package catalog

import (
	"context"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Repository defines the interface for catalog data operations.
type Repository interface {
	CreateService(ctx context.Context, service *domain.Service) error
	GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error)
	GetServiceByID(ctx context.Context, id string) (*domain.Service, error)
	ListServices(ctx context.Context, filter ServiceFilter) ([]domain.Service, error)
	UpdateService(ctx context.Context, service *domain.Service) error
	UpdateServiceStatus(ctx context.Context, id string, status domain.ServiceStatus) error
	DeleteService(ctx context.Context, id string) error
}

// ServiceFilter represents filter criteria for listing services.
type ServiceFilter struct {
	Group  *string
	Status *domain.ServiceStatus
}
