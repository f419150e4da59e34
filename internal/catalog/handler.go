package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers admin routes for the catalog module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/services", func(r chi.Router) {
		r.Post("/", h.CreateService)
		r.Patch("/{slug}", h.UpdateService)
		r.Put("/{slug}/status", h.UpdateServiceStatus)
		r.Delete("/{slug}", h.DeleteService)
	})
}

// RegisterPublicRoutes registers public read-only routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/services", h.ListServices)
	r.Get("/services/{slug}", h.GetService)
}

// CreateServiceRequest represents the request body for creating a service.
type CreateServiceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Slug        string `json:"slug" validate:"required,min=1,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=operational degraded partial_outage major_outage maintenance"`
	Group       string `json:"group" validate:"max=255"`
	Order       int    `json:"order"`
}

// ToDomain converts the request to a domain model.
func (r *CreateServiceRequest) ToDomain() *domain.Service {
	status := domain.ServiceStatus(r.Status)
	if status == "" {
		status = domain.ServiceStatusOperational
	}

	return &domain.Service{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Status:      status,
		Group:       r.Group,
		Order:       r.Order,
	}
}

// UpdateServiceRequest represents the request body for updating a service.
type UpdateServiceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Slug        string `json:"slug" validate:"required,min=1,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"required,oneof=operational degraded partial_outage major_outage maintenance"`
	Group       string `json:"group" validate:"max=255"`
	Order       int    `json:"order"`
}

// UpdateStatusRequest represents the request body for a status-only update.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=operational degraded partial_outage major_outage maintenance"`
}

// CreateService handles POST /services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service := req.ToDomain()
	if err := h.service.CreateService(r.Context(), service); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, service)
}

// GetService handles GET /services/{slug}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	service, err := h.service.GetServiceBySlug(r.Context(), slug)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, service)
}

// ListServices handles GET /services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	filter := ServiceFilter{}

	if group := r.URL.Query().Get("group"); group != "" {
		filter.Group = &group
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.ServiceStatus(status)
		if !s.IsValid() {
			httputil.Error(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = &s
	}

	services, err := h.service.ListServices(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, services)
}

// UpdateService handles PATCH /services/{slug}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	update := &domain.Service{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Status:      domain.ServiceStatus(req.Status),
		Group:       req.Group,
		Order:       req.Order,
	}

	service, err := h.service.UpdateService(r.Context(), slug, update)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, service)
}

// UpdateServiceStatus handles PUT /services/{slug}/status.
func (h *Handler) UpdateServiceStatus(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.UpdateServiceStatus(r.Context(), slug, domain.ServiceStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, service)
}

// DeleteService handles DELETE /services/{slug}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := h.service.DeleteService(r.Context(), slug); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.NoContent(w)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrServiceNotFound, Status: http.StatusNotFound},
		{Error: ErrSlugExists, Status: http.StatusConflict},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
	})
}
