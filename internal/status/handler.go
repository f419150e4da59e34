package status

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/statusdeck/statusdeck/internal/catalog"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
)

// ServiceSource lists the services the aggregate is computed over.
type ServiceSource interface {
	ListServices(ctx context.Context, filter catalog.ServiceFilter) ([]domain.Service, error)
}

// Handler handles HTTP requests for the status module.
type Handler struct {
	services ServiceSource
}

// NewHandler creates a new status handler.
func NewHandler(services ServiceSource) *Handler {
	return &Handler{services: services}
}

// RegisterPublicRoutes registers public read-only routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/status", h.GetStatus)
}

// GetStatus handles GET /status. Returns the aggregate system status
// with per-service detail.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.ListServices(r.Context(), catalog.ServiceFilter{})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, map[string]interface{}{
		"status":   Aggregate(services),
		"services": services,
	})
}
