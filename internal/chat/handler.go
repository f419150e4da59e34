package chat

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statusdeck/statusdeck/internal/catalog"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
	"github.com/statusdeck/statusdeck/internal/status"
)

// ServiceDirectory covers the catalog operations chat commands need.
type ServiceDirectory interface {
	ListServices(ctx context.Context, filter catalog.ServiceFilter) ([]domain.Service, error)
	UpdateServiceStatus(ctx context.Context, slug string, status domain.ServiceStatus) (*domain.Service, error)
}

// Handler handles HTTP requests for the chat module.
type Handler struct {
	notifier  *Notifier
	services  ServiceDirectory
	tokens    httputil.TokenValidator
	validator *validator.Validate
}

// NewHandler creates a new chat handler.
func NewHandler(notifier *Notifier, services ServiceDirectory, tokens httputil.TokenValidator) *Handler {
	return &Handler{
		notifier:  notifier,
		services:  services,
		tokens:    tokens,
		validator: validator.New(),
	}
}

// RegisterCommandRoutes registers the bot command endpoint. The bot
// authenticates end users itself via the check-admin action, so the
// endpoint sits outside the JWT middleware.
func (h *Handler) RegisterCommandRoutes(r chi.Router) {
	r.Post("/chat/commands", h.HandleCommand)
}

// RegisterAdminRoutes registers settings management routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
		r.Post("/verify", h.VerifyConnection)
	})
}

// CommandRequest is the envelope for all bot commands. Fields beyond
// Action are interpreted per action.
type CommandRequest struct {
	Action  string `json:"action" validate:"required"`
	Service string `json:"service,omitempty"`
	Status  string `json:"status,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Color   int    `json:"color,omitempty"`
	Token   string `json:"token,omitempty"`
}

// HandleCommand handles POST /chat/commands. Malformed requests get a
// 400; everything else, including failed platform calls, gets a 200
// with the outcome in the body so the bot can relay it to the user.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	commandsTotal.WithLabelValues(req.Action).Inc()

	switch req.Action {
	case "check-status":
		h.checkStatus(w, r)
	case "check-system-status":
		h.checkSystemStatus(w, r)
	case "update-status":
		h.updateStatus(w, r, req)
	case "auto-update-embed":
		h.autoUpdateEmbed(w, r)
	case "send-announcement":
		h.sendAnnouncement(w, r, req)
	case "check-admin":
		h.checkAdmin(w, r, req)
	default:
		httputil.Error(w, http.StatusBadRequest, "unknown action")
	}
}

func (h *Handler) loadServices(ctx context.Context) ([]domain.Service, domain.SystemStatus, error) {
	services, err := h.services.ListServices(ctx, catalog.ServiceFilter{})
	if err != nil {
		return nil, "", err
	}
	return services, status.Aggregate(services), nil
}

func (h *Handler) checkStatus(w http.ResponseWriter, r *http.Request) {
	services, aggregate, err := h.loadServices(r.Context())
	if err != nil {
		httputil.JSON(w, http.StatusOK, map[string]string{"error": "failed to load services"})
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"status":   aggregate,
		"services": services,
	})
}

func (h *Handler) checkSystemStatus(w http.ResponseWriter, r *http.Request) {
	_, aggregate, err := h.loadServices(r.Context())
	if err != nil {
		httputil.JSON(w, http.StatusOK, map[string]string{"error": "failed to load services"})
		return
	}

	result := h.notifier.CheckAndMaybeAlert(r.Context(), aggregate)
	httputil.JSON(w, http.StatusOK, result)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, req CommandRequest) {
	if req.Service == "" || !domain.ServiceStatus(req.Status).IsValid() {
		httputil.Error(w, http.StatusBadRequest, "service and a valid status are required")
		return
	}

	service, err := h.services.UpdateServiceStatus(r.Context(), req.Service, domain.ServiceStatus(req.Status))
	if err != nil {
		httputil.JSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	// A manual status change feeds straight back into the mirror so
	// the channel reflects it without waiting for the next trigger.
	services, aggregate, err := h.loadServices(r.Context())
	if err != nil {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"service": service,
			"error":   "status updated but failed to reload services",
		})
		return
	}

	check := h.notifier.CheckAndMaybeAlert(r.Context(), aggregate)
	refresh := h.notifier.RefreshLiveStatus(r.Context(), services, aggregate)

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"service": service,
		"check":   check,
		"refresh": refresh,
	})
}

func (h *Handler) autoUpdateEmbed(w http.ResponseWriter, r *http.Request) {
	services, aggregate, err := h.loadServices(r.Context())
	if err != nil {
		httputil.JSON(w, http.StatusOK, map[string]string{"error": "failed to load services"})
		return
	}

	result := h.notifier.RefreshLiveStatus(r.Context(), services, aggregate)
	httputil.JSON(w, http.StatusOK, result)
}

func (h *Handler) sendAnnouncement(w http.ResponseWriter, r *http.Request, req CommandRequest) {
	if req.Title == "" || req.Content == "" {
		httputil.Error(w, http.StatusBadRequest, "title and content are required")
		return
	}

	result := h.notifier.PostAnnouncement(r.Context(), req.Title, req.Content, req.Color)
	httputil.JSON(w, http.StatusOK, result)
}

func (h *Handler) checkAdmin(w http.ResponseWriter, r *http.Request, req CommandRequest) {
	if req.Token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	_, role, err := h.tokens.ValidateToken(r.Context(), req.Token)
	isAdmin := err == nil && role.HasPermission(domain.RoleAdmin)

	httputil.JSON(w, http.StatusOK, map[string]bool{"is_admin": isAdmin})
}

// SettingsRequest represents the request body for updating settings.
type SettingsRequest struct {
	BotToken  string `json:"bot_token"`
	ChannelID string `json:"channel_id"`
	Enabled   bool   `json:"enabled"`
}

// GetSettings handles GET /chat/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.notifier.GetSettings(r.Context())
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.Success(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /chat/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	settings := &domain.ChatSettings{
		BotToken:  req.BotToken,
		ChannelID: req.ChannelID,
		Enabled:   req.Enabled,
	}
	if err := h.notifier.UpdateSettings(r.Context(), settings); err != nil {
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.Success(w, http.StatusOK, settings)
}

// VerifyConnection handles POST /chat/verify.
func (h *Handler) VerifyConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.notifier.VerifyConnection(r.Context()); err != nil {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"verified": false,
			"error":    err.Error(),
		})
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]bool{"verified": true})
}
