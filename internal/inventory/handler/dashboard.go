package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock-backend/internal/inventory/service"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// DashboardHandler handles the dashboard summary endpoints
type DashboardHandler struct {
	service *service.DashboardService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{service: svc, logger: log}
}

// RegisterRoutes registers dashboard routes, available to all staff
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.Stats)
	r.Get("/dashboard/activity", h.RecentActivity)
}

// Stats handles GET /dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// RecentActivity handles GET /dashboard/activity
func (h *DashboardHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	if limit > 100 {
		limit = 100
	}

	movements, err := h.service.RecentActivity(r.Context(), limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, movements)
}
