package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock-backend/internal/inventory/events"
	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
	"github.com/medistock/medistock-backend/pkg/messaging"
)

// StockService handles stock mutations. Every mutation updates the medicine
// and appends a movement ledger entry in a single transaction.
type StockService struct {
	db        *database.DB
	medicines *repository.MedicineRepository
	movements *repository.MovementRepository
	sales     *repository.SaleRepository
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewStockService creates a new stock service
func NewStockService(
	db *database.DB,
	medicines *repository.MedicineRepository,
	movements *repository.MovementRepository,
	sales *repository.SaleRepository,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *StockService {
	return &StockService{
		db:        db,
		medicines: medicines,
		movements: movements,
		sales:     sales,
		publisher: publisher,
		logger:    log,
	}
}

// StockOperationRequest describes a stock-in or stock-out
type StockOperationRequest struct {
	MedicineID  string `json:"medicine_id" validate:"required,uuid"`
	Type        string `json:"type" validate:"required,oneof=stock-in stock-out"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	BatchNumber string `json:"batch_number,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// StockOperationResult is returned after a successful mutation
type StockOperationResult struct {
	Medicine *repository.Medicine      `json:"medicine"`
	Movement *repository.StockMovement `json:"movement"`
}

// PerformStockOperation applies a stock-in or stock-out to a medicine.
//
// The medicine row is locked for the duration of the transaction, so
// concurrent operations on the same medicine serialize and a stock-out can
// never drive the quantity negative. The movement ledger entry always
// carries a batch number: the one supplied on stock-in, otherwise the
// medicine's current batch.
func (s *StockService) PerformStockOperation(ctx context.Context, req *StockOperationRequest) (*StockOperationResult, error) {
	if req.Quantity <= 0 {
		return nil, errors.BadRequest("quantity must be positive")
	}
	if req.Type != repository.MovementStockIn && req.Type != repository.MovementStockOut {
		return nil, errors.BadRequest(fmt.Sprintf("unknown operation type %q", req.Type))
	}

	var result StockOperationResult

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		medicine, err := s.medicines.GetByIDForUpdate(ctx, tx, req.MedicineID)
		if err != nil {
			return err
		}

		var newQuantity int
		if req.Type == repository.MovementStockIn {
			newQuantity = medicine.Quantity + req.Quantity
		} else {
			if req.Quantity > medicine.Quantity {
				return errors.InsufficientStock(req.Quantity, medicine.Quantity)
			}
			newQuantity = medicine.Quantity - req.Quantity
		}

		newStatus := DeriveStatusNow(newQuantity, medicine.MinStockLevel, medicine.ExpiryDate)

		// A stock-in with a batch number also updates the medicine's batch
		var newBatch *string
		if req.Type == repository.MovementStockIn && req.BatchNumber != "" {
			newBatch = &req.BatchNumber
		}

		if err := s.medicines.UpdateStock(ctx, tx, medicine.ID, newQuantity, newStatus, newBatch); err != nil {
			return err
		}

		batchNumber := req.BatchNumber
		if batchNumber == "" {
			batchNumber = medicine.BatchNumber
		}

		movement := &repository.StockMovement{
			MedicineID:  medicine.ID,
			Type:        req.Type,
			Quantity:    req.Quantity,
			BatchNumber: &batchNumber,
		}
		if req.Reason != "" {
			movement.Reason = &req.Reason
		}
		if userID := httputil.GetUserID(ctx); userID != "" {
			movement.PerformedBy = &userID
		}

		if err := s.movements.Create(ctx, tx, movement); err != nil {
			return err
		}

		medicine.Quantity = newQuantity
		medicine.Status = newStatus
		if newBatch != nil {
			medicine.BatchNumber = *newBatch
		}

		result.Medicine = medicine
		result.Movement = movement
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("medicine_id", result.Medicine.ID).
		Str("type", req.Type).
		Int("quantity", req.Quantity).
		Int("new_quantity", result.Medicine.Quantity).
		Str("new_status", result.Medicine.Status).
		Msg("stock operation recorded")

	event := &messaging.StockMovementEvent{
		MovementID:  result.Movement.ID,
		MedicineID:  result.Medicine.ID,
		Type:        result.Movement.Type,
		Quantity:    result.Movement.Quantity,
		NewQuantity: result.Medicine.Quantity,
		NewStatus:   result.Medicine.Status,
	}
	if result.Movement.BatchNumber != nil {
		event.BatchNumber = *result.Movement.BatchNumber
	}
	if result.Movement.Reason != nil {
		event.Reason = *result.Movement.Reason
	}
	if result.Movement.PerformedBy != nil {
		event.PerformedBy = *result.Movement.PerformedBy
	}
	s.publisher.PublishStockMovement(ctx, event)

	return &result, nil
}

// SaleRequest describes a dispensing sale
type SaleRequest struct {
	MedicineID   string `json:"medicine_id" validate:"required,uuid"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	CustomerName string `json:"customer_name,omitempty"`
}

// SaleResult is returned after a successful sale
type SaleResult struct {
	Sale     *repository.Sale          `json:"sale"`
	Medicine *repository.Medicine      `json:"medicine"`
	Movement *repository.StockMovement `json:"movement"`
}

// RecordSale dispenses a medicine: a stock-out, its ledger entry and the
// sale row are written in one transaction, priced at the medicine's
// current unit price.
func (s *StockService) RecordSale(ctx context.Context, req *SaleRequest) (*SaleResult, error) {
	if req.Quantity <= 0 {
		return nil, errors.BadRequest("quantity must be positive")
	}

	var result SaleResult

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		medicine, err := s.medicines.GetByIDForUpdate(ctx, tx, req.MedicineID)
		if err != nil {
			return err
		}

		if req.Quantity > medicine.Quantity {
			return errors.InsufficientStock(req.Quantity, medicine.Quantity)
		}

		newQuantity := medicine.Quantity - req.Quantity
		newStatus := DeriveStatusNow(newQuantity, medicine.MinStockLevel, medicine.ExpiryDate)

		if err := s.medicines.UpdateStock(ctx, tx, medicine.ID, newQuantity, newStatus, nil); err != nil {
			return err
		}

		reason := "sale"
		movement := &repository.StockMovement{
			MedicineID:  medicine.ID,
			Type:        repository.MovementStockOut,
			Quantity:    req.Quantity,
			BatchNumber: &medicine.BatchNumber,
			Reason:      &reason,
		}
		if userID := httputil.GetUserID(ctx); userID != "" {
			movement.PerformedBy = &userID
		}

		if err := s.movements.Create(ctx, tx, movement); err != nil {
			return err
		}

		sale := &repository.Sale{
			MedicineID:  &medicine.ID,
			Quantity:    req.Quantity,
			UnitPrice:   medicine.UnitPrice,
			TotalAmount: medicine.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
		}
		if req.CustomerName != "" {
			sale.CustomerName = &req.CustomerName
		}
		if userID := httputil.GetUserID(ctx); userID != "" {
			sale.SoldBy = &userID
		}

		if err := s.sales.Create(ctx, tx, sale); err != nil {
			return err
		}

		medicine.Quantity = newQuantity
		medicine.Status = newStatus

		result.Sale = sale
		result.Medicine = medicine
		result.Movement = movement
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("sale_id", result.Sale.ID).
		Str("medicine_id", result.Medicine.ID).
		Int("quantity", req.Quantity).
		Str("total_amount", result.Sale.TotalAmount.String()).
		Msg("sale recorded")

	event := &messaging.SaleRecordedEvent{
		SaleID:      result.Sale.ID,
		MedicineID:  result.Medicine.ID,
		Quantity:    result.Sale.Quantity,
		TotalAmount: result.Sale.TotalAmount.String(),
	}
	if result.Sale.SoldBy != nil {
		event.SoldBy = *result.Sale.SoldBy
	}
	s.publisher.PublishSaleRecorded(ctx, event)

	return &result, nil
}

// Movements returns recent movements, optionally scoped to one medicine
func (s *StockService) Movements(ctx context.Context, medicineID string, limit int) ([]*repository.MovementWithMedicine, error) {
	if medicineID != "" {
		movements, err := s.movements.ListByMedicine(ctx, medicineID, limit)
		if err != nil {
			return nil, err
		}

		// Scoped listings skip the join; resolve the medicine once
		medicine, err := s.medicines.GetByID(ctx, medicineID)
		if err != nil {
			return nil, err
		}

		result := make([]*repository.MovementWithMedicine, 0, len(movements))
		for _, m := range movements {
			result = append(result, &repository.MovementWithMedicine{
				StockMovement: *m,
				MedicineName:  medicine.Name,
				Category:      medicine.Category,
			})
		}
		return result, nil
	}

	return s.movements.ListRecent(ctx, limit)
}

// MovementsInRange returns movements for the given window
func (s *StockService) MovementsInRange(ctx context.Context, from, to time.Time) ([]*repository.MovementWithMedicine, error) {
	return s.movements.ListRange(ctx, from, to)
}
