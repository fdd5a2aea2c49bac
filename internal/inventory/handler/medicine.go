// Package handler exposes the inventory HTTP endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/internal/inventory/service"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// MedicineHandler handles medicine catalog requests
type MedicineHandler struct {
	service *service.MedicineService
	logger  *logger.Logger
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(svc *service.MedicineService, log *logger.Logger) *MedicineHandler {
	return &MedicineHandler{service: svc, logger: log}
}

// RegisterReadRoutes registers routes readable by any staff member
func (h *MedicineHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/medicines", h.List)
	r.Get("/medicines/categories", h.Categories)
	r.Get("/medicines/{id}", h.Get)
}

// RegisterWriteRoutes registers the create/update routes
func (h *MedicineHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/medicines", h.Create)
	r.Put("/medicines/{id}", h.Update)
}

// RegisterDeleteRoutes registers the delete route
func (h *MedicineHandler) RegisterDeleteRoutes(r chi.Router) {
	r.Delete("/medicines/{id}", h.Delete)
}

// List handles GET /medicines
func (h *MedicineHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := repository.ListParams{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_order") == "desc",
		Page:     parseIntDefault(q.Get("page"), 1),
		PerPage:  parseIntDefault(q.Get("per_page"), 20),
	}
	if params.PerPage > 100 {
		params.PerPage = 100
	}

	medicines, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / params.PerPage
	if int(total)%params.PerPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, medicines, &httputil.Meta{
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get handles GET /medicines/{id}
func (h *MedicineHandler) Get(w http.ResponseWriter, r *http.Request) {
	medicine, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, medicine)
}

// Create handles POST /medicines
func (h *MedicineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.MedicineRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	medicine, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, medicine)
}

// Update handles PUT /medicines/{id}
func (h *MedicineHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.MedicineRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	medicine, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, medicine)
}

// Delete handles DELETE /medicines/{id}
func (h *MedicineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Categories handles GET /medicines/categories
func (h *MedicineHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, categories)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
