package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// SupplierService handles suppliers and purchase orders
type SupplierService struct {
	suppliers *repository.SupplierRepository
	logger    *logger.Logger
}

// NewSupplierService creates a new supplier service
func NewSupplierService(suppliers *repository.SupplierRepository, log *logger.Logger) *SupplierService {
	return &SupplierService{suppliers: suppliers, logger: log}
}

// SupplierRequest is the create/update payload
type SupplierRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	PaymentTerms  string `json:"payment_terms,omitempty"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (req *SupplierRequest) apply(s *repository.Supplier) {
	s.Name = req.Name
	s.ContactPerson = optional(req.ContactPerson)
	s.Email = optional(req.Email)
	s.Phone = optional(req.Phone)
	s.Address = optional(req.Address)
	s.PaymentTerms = optional(req.PaymentTerms)
	if req.Status != "" {
		s.Status = req.Status
	}
}

// Create creates a supplier
func (s *SupplierService) Create(ctx context.Context, req *SupplierRequest) (*repository.Supplier, error) {
	var supplier repository.Supplier
	req.apply(&supplier)

	if err := s.suppliers.Create(ctx, &supplier); err != nil {
		return nil, err
	}

	return &supplier, nil
}

// Get returns one supplier with its order history
func (s *SupplierService) Get(ctx context.Context, id string) (*repository.Supplier, []*repository.PurchaseOrder, error) {
	supplier, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	orders, err := s.suppliers.ListOrdersBySupplier(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return supplier, orders, nil
}

// List returns all suppliers
func (s *SupplierService) List(ctx context.Context) ([]*repository.Supplier, error) {
	return s.suppliers.List(ctx)
}

// Update updates a supplier
func (s *SupplierService) Update(ctx context.Context, id string, req *SupplierRequest) (*repository.Supplier, error) {
	supplier, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.apply(supplier)
	if err := s.suppliers.Update(ctx, supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}

// Delete deletes a supplier
func (s *SupplierService) Delete(ctx context.Context, id string) error {
	return s.suppliers.Delete(ctx, id)
}

// OrderItemRequest is one line of a purchase order payload
type OrderItemRequest struct {
	MedicineID   string          `json:"medicine_id,omitempty"`
	MedicineName string          `json:"medicine_name" validate:"required"`
	Quantity     int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// OrderRequest is the create payload for a purchase order
type OrderRequest struct {
	SupplierID   string             `json:"supplier_id" validate:"required,uuid"`
	ExpectedDate *time.Time         `json:"expected_date,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrder creates a purchase order. Line subtotals and the order total
// are computed server side from quantity and unit price.
func (s *SupplierService) CreateOrder(ctx context.Context, req *OrderRequest) (*repository.PurchaseOrder, []*repository.PurchaseOrderItem, error) {
	if _, err := s.suppliers.GetByID(ctx, req.SupplierID); err != nil {
		return nil, nil, err
	}

	total := decimal.Zero
	items := make([]*repository.PurchaseOrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.UnitPrice.IsNegative() {
			return nil, nil, errors.BadRequest("unit price must not be negative")
		}

		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)

		item := &repository.PurchaseOrderItem{
			MedicineName: line.MedicineName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			Subtotal:     subtotal,
		}
		if line.MedicineID != "" {
			item.MedicineID = &line.MedicineID
		}
		items = append(items, item)
	}

	order := &repository.PurchaseOrder{
		OrderNumber:  generateOrderNumber(),
		SupplierID:   &req.SupplierID,
		Status:       repository.OrderPending,
		TotalAmount:  total,
		ExpectedDate: req.ExpectedDate,
		Notes:        optional(req.Notes),
	}
	if userID := httputil.GetUserID(ctx); userID != "" {
		order.CreatedBy = &userID
	}

	if err := s.suppliers.CreateOrder(ctx, order, items); err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("supplier_id", req.SupplierID).
		Str("total_amount", total.String()).
		Msg("purchase order created")

	return order, items, nil
}

// GetOrder returns a purchase order with its items
func (s *SupplierService) GetOrder(ctx context.Context, id string) (*repository.PurchaseOrder, []*repository.PurchaseOrderItem, error) {
	return s.suppliers.GetOrderByID(ctx, id)
}

// ListOrders lists purchase orders, optionally filtered by status
func (s *SupplierService) ListOrders(ctx context.Context, status string) ([]*repository.PurchaseOrder, error) {
	return s.suppliers.ListOrders(ctx, status)
}

// validOrderTransitions defines the allowed status changes
var validOrderTransitions = map[string][]string{
	repository.OrderPending:  {repository.OrderApproved, repository.OrderCancelled},
	repository.OrderApproved: {repository.OrderShipped, repository.OrderCancelled},
	repository.OrderShipped:  {repository.OrderDelivered, repository.OrderCancelled},
}

// UpdateOrderStatus advances an order through its lifecycle. Marking an
// order delivered stamps the delivery date.
func (s *SupplierService) UpdateOrderStatus(ctx context.Context, id, status string) (*repository.PurchaseOrder, error) {
	order, _, err := s.suppliers.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validOrderTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.BadRequest(fmt.Sprintf("cannot change order status from %q to %q", order.Status, status))
	}

	deliveredDate := order.DeliveredDate
	if status == repository.OrderDelivered {
		now := time.Now()
		deliveredDate = &now
	}

	if err := s.suppliers.UpdateOrderStatus(ctx, id, status, deliveredDate); err != nil {
		return nil, err
	}

	order.Status = status
	order.DeliveredDate = deliveredDate
	return order, nil
}

func generateOrderNumber() string {
	return fmt.Sprintf("PO-%s-%s", time.Now().UTC().Format("20060102"), strings.ToUpper(uuid.New().String()[:8]))
}
