// Package repository implements persistence for the pharmacy inventory.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/errors"
)

// Medicine stock status values
const (
	StatusInStock      = "in-stock"
	StatusLowStock     = "low-stock"
	StatusOutOfStock   = "out-of-stock"
	StatusExpired      = "expired"
	StatusExpiringSoon = "expiring-soon"
)

// FilterAll is the sentinel value that disables a category or status filter
const FilterAll = "all"

// Medicine represents a catalog entry
type Medicine struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	GenericName   *string         `db:"generic_name" json:"generic_name,omitempty"`
	Category      string          `db:"category" json:"category"`
	Manufacturer  *string         `db:"manufacturer" json:"manufacturer,omitempty"`
	BatchNumber   string          `db:"batch_number" json:"batch_number"`
	Quantity      int             `db:"quantity" json:"quantity"`
	MinStockLevel int             `db:"min_stock_level" json:"min_stock_level"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	ExpiryDate    time.Time       `db:"expiry_date" json:"expiry_date"`
	Location      *string         `db:"location" json:"location,omitempty"`
	Barcode       *string         `db:"barcode" json:"barcode,omitempty"`
	Status        string          `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// ListParams controls filtering, sorting and pagination for medicine queries
type ListParams struct {
	Search   string
	Category string
	Status   string
	SortBy   string
	SortDesc bool
	Page     int
	PerPage  int
}

// sortColumns whitelists the sortable fields
var sortColumns = map[string]string{
	"name":        "name",
	"category":    "category",
	"quantity":    "quantity",
	"unit_price":  "unit_price",
	"expiry_date": "expiry_date",
	"status":      "status",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

const medicineColumns = `id, name, generic_name, category, manufacturer, batch_number,
		       quantity, min_stock_level, unit_price, expiry_date, location,
		       barcode, status, created_at, updated_at`

// MedicineRepository handles medicine persistence
type MedicineRepository struct {
	db *database.DB
}

// NewMedicineRepository creates a new medicine repository
func NewMedicineRepository(db *database.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

// Create creates a new medicine
func (r *MedicineRepository) Create(ctx context.Context, m *Medicine) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	query := `
		INSERT INTO medicines (
			id, name, generic_name, category, manufacturer, batch_number,
			quantity, min_stock_level, unit_price, expiry_date, location, barcode, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		m.ID, m.Name, m.GenericName, m.Category, m.Manufacturer, m.BatchNumber,
		m.Quantity, m.MinStockLevel, m.UnitPrice, m.ExpiryDate, m.Location,
		m.Barcode, m.Status,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByID gets a medicine by ID
func (r *MedicineRepository) GetByID(ctx context.Context, id string) (*Medicine, error) {
	var m Medicine
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`

	err := r.db.GetContext(ctx, &m, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("medicine")
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// GetByIDForUpdate gets a medicine by ID with a row lock, inside a transaction
func (r *MedicineRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*Medicine, error) {
	var m Medicine
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1 FOR UPDATE`

	err := tx.GetContext(ctx, &m, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("medicine")
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// List lists medicines with search, filters, sorting and pagination.
// Search matches name, generic name and batch number case-insensitively.
// Category and status accept "all" to disable the filter.
func (r *MedicineRepository) List(ctx context.Context, params ListParams) ([]*Medicine, int64, error) {
	where := []string{}
	args := []interface{}{}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(name ILIKE $%d OR generic_name ILIKE $%d OR batch_number ILIKE $%d)", n, n, n))
	}
	if params.Category != "" && params.Category != FilterAll {
		args = append(args, params.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if params.Status != "" && params.Status != FilterAll {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM medicines` + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := sortColumns[params.SortBy]
	if !ok {
		sortColumn = "name"
	}
	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = 20
	}
	offset := (params.Page - 1) * params.PerPage

	args = append(args, params.PerPage, offset)
	query := fmt.Sprintf(
		`SELECT `+medicineColumns+` FROM medicines%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		whereClause, sortColumn, direction, len(args)-1, len(args),
	)

	var medicines []*Medicine
	if err := r.db.SelectContext(ctx, &medicines, query, args...); err != nil {
		return nil, 0, err
	}

	return medicines, total, nil
}

// GetAll gets the full catalog, used by analytics and the alert scanner
func (r *MedicineRepository) GetAll(ctx context.Context) ([]*Medicine, error) {
	var medicines []*Medicine
	query := `SELECT ` + medicineColumns + ` FROM medicines ORDER BY name`

	if err := r.db.SelectContext(ctx, &medicines, query); err != nil {
		return nil, err
	}

	return medicines, nil
}

// GetExpiringWithin gets medicines with stock on hand expiring on or before the cutoff
func (r *MedicineRepository) GetExpiringWithin(ctx context.Context, cutoff time.Time) ([]*Medicine, error) {
	var medicines []*Medicine
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE expiry_date <= $1 AND quantity > 0
		ORDER BY expiry_date ASC
	`

	if err := r.db.SelectContext(ctx, &medicines, query, cutoff); err != nil {
		return nil, err
	}

	return medicines, nil
}

// Update updates a medicine's editable fields
func (r *MedicineRepository) Update(ctx context.Context, m *Medicine) error {
	query := `
		UPDATE medicines SET
			name = $2, generic_name = $3, category = $4, manufacturer = $5,
			batch_number = $6, quantity = $7, min_stock_level = $8, unit_price = $9,
			expiry_date = $10, location = $11, barcode = $12, status = $13,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.GenericName, m.Category, m.Manufacturer,
		m.BatchNumber, m.Quantity, m.MinStockLevel, m.UnitPrice,
		m.ExpiryDate, m.Location, m.Barcode, m.Status,
	)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("medicine")
	}

	return nil
}

// UpdateStock updates quantity, status and optionally batch number inside a transaction
func (r *MedicineRepository) UpdateStock(ctx context.Context, tx *sqlx.Tx, id string, quantity int, status string, batchNumber *string) error {
	var result sql.Result
	var err error

	if batchNumber != nil {
		query := `
			UPDATE medicines SET quantity = $2, status = $3, batch_number = $4, updated_at = NOW()
			WHERE id = $1
		`
		result, err = tx.ExecContext(ctx, query, id, quantity, status, *batchNumber)
	} else {
		query := `
			UPDATE medicines SET quantity = $2, status = $3, updated_at = NOW()
			WHERE id = $1
		`
		result, err = tx.ExecContext(ctx, query, id, quantity, status)
	}
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("medicine")
	}

	return nil
}

// UpdateStatus updates only the derived status, used by the alert scanner
func (r *MedicineRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE medicines SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("medicine")
	}

	return nil
}

// Delete deletes a medicine
func (r *MedicineRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return database.MapPQError(err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("medicine")
	}

	return nil
}

// Categories returns the distinct categories in the catalog
func (r *MedicineRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	query := `SELECT DISTINCT category FROM medicines ORDER BY category`

	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}

	return categories, nil
}
