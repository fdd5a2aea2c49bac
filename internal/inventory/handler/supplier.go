package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/internal/inventory/service"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// SupplierHandler handles supplier and purchase order requests
type SupplierHandler struct {
	service *service.SupplierService
	logger  *logger.Logger
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(svc *service.SupplierService, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{service: svc, logger: log}
}

// RegisterReadRoutes registers routes readable by any staff member
func (h *SupplierHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/suppliers", h.List)
	r.Get("/suppliers/{id}", h.Get)
	r.Get("/purchase-orders", h.ListOrders)
	r.Get("/purchase-orders/{id}", h.GetOrder)
}

// RegisterWriteRoutes registers the supplier and order write routes
func (h *SupplierHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/suppliers", h.Create)
	r.Put("/suppliers/{id}", h.Update)
	r.Delete("/suppliers/{id}", h.Delete)
	r.Post("/purchase-orders", h.CreateOrder)
	r.Put("/purchase-orders/{id}/status", h.UpdateOrderStatus)
}

// List handles GET /suppliers
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, suppliers)
}

// supplierDetail is the supplier plus its order history
type supplierDetail struct {
	*repository.Supplier
	Orders []*repository.PurchaseOrder `json:"orders"`
}

// Get handles GET /suppliers/{id}
func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	supplier, orders, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplierDetail{Supplier: supplier, Orders: orders})
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.SupplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	supplier, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, supplier)
}

// Update handles PUT /suppliers/{id}
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.SupplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	supplier, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplier)
}

// Delete handles DELETE /suppliers/{id}
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// orderDetail is a purchase order plus its line items
type orderDetail struct {
	*repository.PurchaseOrder
	Items []*repository.PurchaseOrderItem `json:"items"`
}

// CreateOrder handles POST /purchase-orders
func (h *SupplierHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.OrderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	order, items, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, orderDetail{PurchaseOrder: order, Items: items})
}

// GetOrder handles GET /purchase-orders/{id}
func (h *SupplierHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, items, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, orderDetail{PurchaseOrder: order, Items: items})
}

// ListOrders handles GET /purchase-orders
func (h *SupplierHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus handles PUT /purchase-orders/{id}/status
func (h *SupplierHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required,oneof=approved shipped delivered cancelled"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, order)
}
