package testutil

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MedicineFixture holds the fields tests commonly need to build medicine rows
type MedicineFixture struct {
	ID            string
	Name          string
	GenericName   string
	Category      string
	Manufacturer  string
	BatchNumber   string
	Quantity      int
	MinStockLevel int
	UnitPrice     decimal.Decimal
	ExpiryDate    time.Time
	Location      string
	Status        string
}

// NewMedicineFixture returns a medicine fixture with sensible defaults.
// Callers override fields as needed before rendering rows.
func NewMedicineFixture() MedicineFixture {
	return MedicineFixture{
		ID:            uuid.New().String(),
		Name:          "Paracetamol 500mg",
		GenericName:   "Acetaminophen",
		Category:      "Analgesic",
		Manufacturer:  "Acme Pharma",
		BatchNumber:   "BATCH-001",
		Quantity:      100,
		MinStockLevel: 20,
		UnitPrice:     decimal.NewFromFloat(2.50),
		ExpiryDate:    time.Now().AddDate(1, 0, 0),
		Location:      "Shelf A1",
		Status:        "in-stock",
	}
}

// MedicineColumns is the column list medicine repository queries select
var MedicineColumns = []string{
	"id", "name", "generic_name", "category", "manufacturer", "batch_number",
	"quantity", "min_stock_level", "unit_price", "expiry_date", "location",
	"barcode", "status", "created_at", "updated_at",
}

// Row renders the fixture as sqlmock row values in MedicineColumns order
func (f MedicineFixture) Row() []driver.Value {
	now := time.Now()
	return []driver.Value{
		f.ID, f.Name, f.GenericName, f.Category, f.Manufacturer, f.BatchNumber,
		f.Quantity, f.MinStockLevel, f.UnitPrice.String(), f.ExpiryDate, f.Location,
		nil, f.Status, now, now,
	}
}
