package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock-backend/pkg/database"
)

// Sale records a dispensed quantity and the revenue it produced
type Sale struct {
	ID           string          `db:"id" json:"id"`
	MedicineID   *string         `db:"medicine_id" json:"medicine_id,omitempty"`
	Quantity     int             `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"total_amount"`
	CustomerName *string         `db:"customer_name" json:"customer_name,omitempty"`
	SoldBy       *string         `db:"sold_by" json:"sold_by,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// SaleRepository handles sales persistence
type SaleRepository struct {
	db *database.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *database.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Create inserts a sale inside a transaction
func (r *SaleRepository) Create(ctx context.Context, tx *sqlx.Tx, s *Sale) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	query := `
		INSERT INTO sales (id, medicine_id, quantity, unit_price, total_amount, customer_name, sold_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := tx.QueryRowxContext(ctx, query,
		s.ID, s.MedicineID, s.Quantity, s.UnitPrice, s.TotalAmount, s.CustomerName, s.SoldBy,
	).Scan(&s.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ListRange lists sales within [from, to), oldest first
func (r *SaleRepository) ListRange(ctx context.Context, from, to time.Time) ([]*Sale, error) {
	var sales []*Sale
	query := `
		SELECT id, medicine_id, quantity, unit_price, total_amount, customer_name, sold_by, created_at
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`

	if err := r.db.SelectContext(ctx, &sales, query, from, to); err != nil {
		return nil, err
	}

	return sales, nil
}

// TotalSince sums sale amounts from the given time onward
func (r *SaleRepository) TotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM sales WHERE created_at >= $1`

	if err := r.db.GetContext(ctx, &total, query, since); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
