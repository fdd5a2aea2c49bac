package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock-backend/internal/inventory/service"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// AlertHandler handles alert and notification preference requests
type AlertHandler struct {
	service *service.AlertService
	logger  *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(svc *service.AlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{service: svc, logger: log}
}

// RegisterRoutes registers alert routes, available to all staff
func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.List)
	r.Put("/alerts/{id}/read", h.MarkRead)
	r.Get("/notification-preferences", h.GetPreferences)
	r.Put("/notification-preferences", h.UpdatePreferences)
}

// List handles GET /alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := parseIntDefault(q.Get("limit"), 100)
	if limit > 500 {
		limit = 500
	}

	alerts, err := h.service.List(r.Context(), q.Get("unread") == "true", limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}

// MarkRead handles PUT /alerts/{id}/read
func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// GetPreferences handles GET /notification-preferences
func (h *AlertHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, errors.Unauthorized("authentication required"))
		return
	}

	prefs, err := h.service.Preferences(r.Context(), userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /notification-preferences
func (h *AlertHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, errors.Unauthorized("authentication required"))
		return
	}

	var req service.PreferencesRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), userID, &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, prefs)
}
