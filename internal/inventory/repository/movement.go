package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medistock/medistock-backend/pkg/database"
)

// Stock movement types
const (
	MovementStockIn  = "stock-in"
	MovementStockOut = "stock-out"
)

// StockMovement is one append-only ledger entry
type StockMovement struct {
	ID          string    `db:"id" json:"id"`
	MedicineID  string    `db:"medicine_id" json:"medicine_id"`
	Type        string    `db:"type" json:"type"`
	Quantity    int       `db:"quantity" json:"quantity"`
	BatchNumber *string   `db:"batch_number" json:"batch_number,omitempty"`
	Reason      *string   `db:"reason" json:"reason,omitempty"`
	PerformedBy *string   `db:"performed_by" json:"performed_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MovementWithMedicine joins a movement with its medicine's display fields
type MovementWithMedicine struct {
	StockMovement
	MedicineName string `db:"medicine_name" json:"medicine_name"`
	Category     string `db:"category" json:"category"`
}

// MovementRepository handles the stock movement ledger.
// Movements are never updated or deleted.
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Create inserts a movement inside a transaction
func (r *MovementRepository) Create(ctx context.Context, tx *sqlx.Tx, m *StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	query := `
		INSERT INTO stock_movements (id, medicine_id, type, quantity, batch_number, reason, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := tx.QueryRowxContext(ctx, query,
		m.ID, m.MedicineID, m.Type, m.Quantity, m.BatchNumber, m.Reason, m.PerformedBy,
	).Scan(&m.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ListByMedicine lists the movements for one medicine, newest first
func (r *MovementRepository) ListByMedicine(ctx context.Context, medicineID string, limit int) ([]*StockMovement, error) {
	if limit < 1 {
		limit = 50
	}

	var movements []*StockMovement
	query := `
		SELECT id, medicine_id, type, quantity, batch_number, reason, performed_by, created_at
		FROM stock_movements
		WHERE medicine_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &movements, query, medicineID, limit); err != nil {
		return nil, err
	}

	return movements, nil
}

// ListRange lists movements within [from, to), oldest first, joined with medicine details
func (r *MovementRepository) ListRange(ctx context.Context, from, to time.Time) ([]*MovementWithMedicine, error) {
	var movements []*MovementWithMedicine
	query := `
		SELECT sm.id, sm.medicine_id, sm.type, sm.quantity, sm.batch_number, sm.reason,
		       sm.performed_by, sm.created_at, m.name AS medicine_name, m.category
		FROM stock_movements sm
		JOIN medicines m ON m.id = sm.medicine_id
		WHERE sm.created_at >= $1 AND sm.created_at < $2
		ORDER BY sm.created_at ASC
	`

	if err := r.db.SelectContext(ctx, &movements, query, from, to); err != nil {
		return nil, err
	}

	return movements, nil
}

// ListRecent lists the most recent movements across all medicines
func (r *MovementRepository) ListRecent(ctx context.Context, limit int) ([]*MovementWithMedicine, error) {
	if limit < 1 {
		limit = 20
	}

	var movements []*MovementWithMedicine
	query := `
		SELECT sm.id, sm.medicine_id, sm.type, sm.quantity, sm.batch_number, sm.reason,
		       sm.performed_by, sm.created_at, m.name AS medicine_name, m.category
		FROM stock_movements sm
		JOIN medicines m ON m.id = sm.medicine_id
		ORDER BY sm.created_at DESC
		LIMIT $1
	`

	if err := r.db.SelectContext(ctx, &movements, query, limit); err != nil {
		return nil, err
	}

	return movements, nil
}
