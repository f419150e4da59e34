package uptime

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/statusdeck/statusdeck/internal/catalog"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
)

// ServiceResolver resolves service slugs to domain services.
type ServiceResolver interface {
	GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error)
}

// Handler handles HTTP requests for the uptime module.
type Handler struct {
	service  *Service
	resolver ServiceResolver
}

// NewHandler creates a new uptime handler.
func NewHandler(service *Service, resolver ServiceResolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

// RegisterPublicRoutes registers public read-only routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/services/{slug}/uptime", h.GetUptime)
}

// GetUptime handles GET /services/{slug}/uptime.
func (h *Handler) GetUptime(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	service, err := h.resolver.GetServiceBySlug(r.Context(), slug)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: catalog.ErrServiceNotFound, Status: http.StatusNotFound},
		})
		return
	}

	days := 0
	if d := r.URL.Query().Get("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil {
			days = n
		}
	}

	history, err := h.service.GetHistory(r.Context(), service.ID, days)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, history)
}
