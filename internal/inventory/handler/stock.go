package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock-backend/internal/inventory/service"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// StockHandler handles stock operations, sales and the movement ledger
type StockHandler struct {
	service *service.StockService
	logger  *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(svc *service.StockService, log *logger.Logger) *StockHandler {
	return &StockHandler{service: svc, logger: log}
}

// RegisterReadRoutes registers the movement listing routes
func (h *StockHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/stock/movements", h.Movements)
}

// RegisterOperationRoutes registers the stock mutation route
func (h *StockHandler) RegisterOperationRoutes(r chi.Router) {
	r.Post("/stock/operations", h.PerformOperation)
}

// RegisterSaleRoutes registers the sale route
func (h *StockHandler) RegisterSaleRoutes(r chi.Router) {
	r.Post("/sales", h.RecordSale)
}

// PerformOperation handles POST /stock/operations
func (h *StockHandler) PerformOperation(w http.ResponseWriter, r *http.Request) {
	var req service.StockOperationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.PerformStockOperation(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// RecordSale handles POST /sales
func (h *StockHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req service.SaleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.RecordSale(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// Movements handles GET /stock/movements
func (h *StockHandler) Movements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := parseIntDefault(q.Get("limit"), 50)
	if limit > 200 {
		limit = 200
	}

	movements, err := h.service.Movements(r.Context(), q.Get("medicine_id"), limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, movements)
}
