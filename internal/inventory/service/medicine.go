package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock-backend/internal/inventory/events"
	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// MedicineService handles catalog CRUD. Status is always derived, never
// taken from client input.
type MedicineService struct {
	medicines *repository.MedicineRepository
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewMedicineService creates a new medicine service
func NewMedicineService(medicines *repository.MedicineRepository, publisher *events.InventoryEventPublisher, log *logger.Logger) *MedicineService {
	return &MedicineService{
		medicines: medicines,
		publisher: publisher,
		logger:    log,
	}
}

// MedicineRequest is the create/update payload
type MedicineRequest struct {
	Name          string          `json:"name" validate:"required"`
	GenericName   string          `json:"generic_name,omitempty"`
	Category      string          `json:"category" validate:"required"`
	Manufacturer  string          `json:"manufacturer,omitempty"`
	BatchNumber   string          `json:"batch_number" validate:"required"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"gte=0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ExpiryDate    time.Time       `json:"expiry_date" validate:"required"`
	Location      string          `json:"location,omitempty"`
	Barcode       string          `json:"barcode,omitempty"`
}

func (req *MedicineRequest) apply(m *repository.Medicine) {
	m.Name = req.Name
	m.Category = req.Category
	m.BatchNumber = req.BatchNumber
	m.Quantity = req.Quantity
	m.MinStockLevel = req.MinStockLevel
	m.UnitPrice = req.UnitPrice
	m.ExpiryDate = req.ExpiryDate

	m.GenericName = optional(req.GenericName)
	m.Manufacturer = optional(req.Manufacturer)
	m.Location = optional(req.Location)
	m.Barcode = optional(req.Barcode)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create adds a medicine to the catalog with its status derived at insert
func (s *MedicineService) Create(ctx context.Context, req *MedicineRequest) (*repository.Medicine, error) {
	if req.UnitPrice.IsNegative() {
		return nil, errors.BadRequest("unit price must not be negative")
	}

	var m repository.Medicine
	req.apply(&m)
	m.Status = DeriveStatusNow(m.Quantity, m.MinStockLevel, m.ExpiryDate)

	if err := s.medicines.Create(ctx, &m); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("medicine_id", m.ID).
		Str("name", m.Name).
		Str("status", m.Status).
		Msg("medicine created")

	s.publisher.PublishMedicineCreated(ctx, m.ID, m.Name)

	return &m, nil
}

// Get returns one medicine
func (s *MedicineService) Get(ctx context.Context, id string) (*repository.Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

// List returns a filtered, sorted page of the catalog
func (s *MedicineService) List(ctx context.Context, params repository.ListParams) ([]*repository.Medicine, int64, error) {
	return s.medicines.List(ctx, params)
}

// Update replaces a medicine's editable fields and re-derives its status
func (s *MedicineService) Update(ctx context.Context, id string, req *MedicineRequest) (*repository.Medicine, error) {
	if req.UnitPrice.IsNegative() {
		return nil, errors.BadRequest("unit price must not be negative")
	}

	m, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.apply(m)
	m.Status = DeriveStatusNow(m.Quantity, m.MinStockLevel, m.ExpiryDate)

	if err := s.medicines.Update(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// Delete removes a medicine from the catalog
func (s *MedicineService) Delete(ctx context.Context, id string) error {
	if err := s.medicines.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("medicine_id", id).Msg("medicine deleted")
	s.publisher.PublishMedicineDeleted(ctx, id)

	return nil
}

// Categories returns the distinct catalog categories
func (s *MedicineService) Categories(ctx context.Context) ([]string, error) {
	return s.medicines.Categories(ctx)
}
