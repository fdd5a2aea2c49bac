package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock-backend/internal/inventory/service"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// defaultAnalyticsWindowDays is used when no date range is supplied
const defaultAnalyticsWindowDays = 30

// AnalyticsHandler handles the analytics endpoints
type AnalyticsHandler struct {
	service *service.AnalyticsService
	logger  *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc *service.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc, logger: log}
}

// RegisterRoutes registers the analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/analytics/stock-trends", h.StockTrends)
	r.Get("/analytics/categories", h.Categories)
	r.Get("/analytics/moving-items", h.MovingItems)
	r.Get("/analytics/expiry-loss", h.ExpiryLoss)
	r.Get("/analytics/suppliers", h.Suppliers)
	r.Get("/analytics/revenue", h.Revenue)
}

// parseDateRange reads from/to query params as YYYY-MM-DD dates,
// defaulting to the last 30 days.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	now := time.Now().UTC()

	from := now.AddDate(0, 0, -(defaultAnalyticsWindowDays - 1))
	to := now

	if s := q.Get("from"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.BadRequest("from must be a date in YYYY-MM-DD format")
		}
		from = parsed
	}
	if s := q.Get("to"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.BadRequest("to must be a date in YYYY-MM-DD format")
		}
		to = parsed
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.BadRequest("to must not be before from")
	}

	return from, to, nil
}

// StockTrends handles GET /analytics/stock-trends
func (h *AnalyticsHandler) StockTrends(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	points, err := h.service.StockTrend(r.Context(), from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, points)
}

// Categories handles GET /analytics/categories
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	slices, err := h.service.CategoryDistribution(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, slices)
}

// MovingItems handles GET /analytics/moving-items
func (h *AnalyticsHandler) MovingItems(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	items, err := h.service.MovingItems(r.Context(), from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// ExpiryLoss handles GET /analytics/expiry-loss
func (h *AnalyticsHandler) ExpiryLoss(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ExpiryLoss(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// Suppliers handles GET /analytics/suppliers
func (h *AnalyticsHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.SupplierPerformanceReport(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// Revenue handles GET /analytics/revenue
func (h *AnalyticsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	points, err := h.service.Revenue(r.Context(), from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, points)
}
