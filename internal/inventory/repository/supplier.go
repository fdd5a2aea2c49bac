package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/errors"
)

// Purchase order status values
const (
	OrderPending   = "pending"
	OrderApproved  = "approved"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Supplier represents a supplier record
type Supplier struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	ContactPerson *string   `db:"contact_person" json:"contact_person,omitempty"`
	Email         *string   `db:"email" json:"email,omitempty"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	Address       *string   `db:"address" json:"address,omitempty"`
	PaymentTerms  *string   `db:"payment_terms" json:"payment_terms,omitempty"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// PurchaseOrder represents an order placed with a supplier
type PurchaseOrder struct {
	ID            string          `db:"id" json:"id"`
	OrderNumber   string          `db:"order_number" json:"order_number"`
	SupplierID    *string         `db:"supplier_id" json:"supplier_id,omitempty"`
	Status        string          `db:"status" json:"status"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	ExpectedDate  *time.Time      `db:"expected_date" json:"expected_date,omitempty"`
	DeliveredDate *time.Time      `db:"delivered_date" json:"delivered_date,omitempty"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	CreatedBy     *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// PurchaseOrderItem is one line of a purchase order
type PurchaseOrderItem struct {
	ID           string          `db:"id" json:"id"`
	OrderID      string          `db:"order_id" json:"order_id"`
	MedicineID   *string         `db:"medicine_id" json:"medicine_id,omitempty"`
	MedicineName string          `db:"medicine_name" json:"medicine_name"`
	Quantity     int             `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// SupplierRepository handles suppliers and purchase orders
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create creates a new supplier
func (r *SupplierRepository) Create(ctx context.Context, s *Supplier) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = "active"
	}

	query := `
		INSERT INTO suppliers (id, name, contact_person, email, phone, address, payment_terms, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		s.ID, s.Name, s.ContactPerson, s.Email, s.Phone, s.Address, s.PaymentTerms, s.Status,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByID gets a supplier by ID
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*Supplier, error) {
	var s Supplier
	query := `
		SELECT id, name, contact_person, email, phone, address, payment_terms, status, created_at, updated_at
		FROM suppliers WHERE id = $1
	`

	err := r.db.GetContext(ctx, &s, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("supplier")
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// List lists all suppliers ordered by name
func (r *SupplierRepository) List(ctx context.Context) ([]*Supplier, error) {
	var suppliers []*Supplier
	query := `
		SELECT id, name, contact_person, email, phone, address, payment_terms, status, created_at, updated_at
		FROM suppliers ORDER BY name
	`

	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, err
	}

	return suppliers, nil
}

// Update updates a supplier
func (r *SupplierRepository) Update(ctx context.Context, s *Supplier) error {
	query := `
		UPDATE suppliers SET
			name = $2, contact_person = $3, email = $4, phone = $5,
			address = $6, payment_terms = $7, status = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.ContactPerson, s.Email, s.Phone, s.Address, s.PaymentTerms, s.Status,
	)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}

	return nil
}

// Delete deletes a supplier
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}

	return nil
}

// CreateOrder creates a purchase order and its items in one transaction
func (r *SupplierRepository) CreateOrder(ctx context.Context, order *PurchaseOrder, items []*PurchaseOrderItem) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = OrderPending
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		insertOrder := `
			INSERT INTO purchase_orders (
				id, order_number, supplier_id, status, total_amount,
				expected_date, delivered_date, notes, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`

		err := tx.QueryRowxContext(ctx, insertOrder,
			order.ID, order.OrderNumber, order.SupplierID, order.Status, order.TotalAmount,
			order.ExpectedDate, order.DeliveredDate, order.Notes, order.CreatedBy,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return database.MapPQError(err)
		}

		insertItem := `
			INSERT INTO purchase_order_items (id, order_id, medicine_id, medicine_name, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at
		`

		for _, item := range items {
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.OrderID = order.ID

			err := tx.QueryRowxContext(ctx, insertItem,
				item.ID, item.OrderID, item.MedicineID, item.MedicineName,
				item.Quantity, item.UnitPrice, item.Subtotal,
			).Scan(&item.CreatedAt)
			if err != nil {
				return database.MapPQError(err)
			}
		}

		return nil
	})
}

// GetOrderByID gets a purchase order with its items
func (r *SupplierRepository) GetOrderByID(ctx context.Context, id string) (*PurchaseOrder, []*PurchaseOrderItem, error) {
	var order PurchaseOrder
	query := `
		SELECT id, order_number, supplier_id, status, total_amount,
		       expected_date, delivered_date, notes, created_by, created_at, updated_at
		FROM purchase_orders WHERE id = $1
	`

	err := r.db.GetContext(ctx, &order, query, id)
	if err == sql.ErrNoRows {
		return nil, nil, errors.NotFound("purchase order")
	}
	if err != nil {
		return nil, nil, err
	}

	var items []*PurchaseOrderItem
	itemsQuery := `
		SELECT id, order_id, medicine_id, medicine_name, quantity, unit_price, subtotal, created_at
		FROM purchase_order_items WHERE order_id = $1 ORDER BY created_at
	`

	if err := r.db.SelectContext(ctx, &items, itemsQuery, id); err != nil {
		return nil, nil, err
	}

	return &order, items, nil
}

// ListOrders lists purchase orders, newest first, optionally filtered by status
func (r *SupplierRepository) ListOrders(ctx context.Context, status string) ([]*PurchaseOrder, error) {
	var orders []*PurchaseOrder
	query := `
		SELECT id, order_number, supplier_id, status, total_amount,
		       expected_date, delivered_date, notes, created_by, created_at, updated_at
		FROM purchase_orders
	`
	args := []interface{}{}

	if status != "" && status != FilterAll {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, err
	}

	return orders, nil
}

// ListOrdersBySupplier lists all orders for the given suppliers
func (r *SupplierRepository) ListOrdersBySupplier(ctx context.Context, supplierID string) ([]*PurchaseOrder, error) {
	var orders []*PurchaseOrder
	query := `
		SELECT id, order_number, supplier_id, status, total_amount,
		       expected_date, delivered_date, notes, created_by, created_at, updated_at
		FROM purchase_orders WHERE supplier_id = $1 ORDER BY created_at DESC
	`

	if err := r.db.SelectContext(ctx, &orders, query, supplierID); err != nil {
		return nil, err
	}

	return orders, nil
}

// ListAllOrders lists every purchase order, used by supplier analytics
func (r *SupplierRepository) ListAllOrders(ctx context.Context) ([]*PurchaseOrder, error) {
	var orders []*PurchaseOrder
	query := `
		SELECT id, order_number, supplier_id, status, total_amount,
		       expected_date, delivered_date, notes, created_by, created_at, updated_at
		FROM purchase_orders ORDER BY created_at
	`

	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateOrderStatus updates an order's status; delivered orders record the delivery date
func (r *SupplierRepository) UpdateOrderStatus(ctx context.Context, id, status string, deliveredDate *time.Time) error {
	query := `
		UPDATE purchase_orders SET status = $2, delivered_date = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, deliveredDate)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("purchase order")
	}

	return nil
}
