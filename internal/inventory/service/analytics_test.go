package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func movement(medicineID, name, movementType string, quantity int, at time.Time) *repository.MovementWithMedicine {
	return &repository.MovementWithMedicine{
		StockMovement: repository.StockMovement{
			MedicineID: medicineID,
			Type:       movementType,
			Quantity:   quantity,
			CreatedAt:  at,
		},
		MedicineName: name,
	}
}

func TestBuildStockTrend_ZeroFillsEveryDay(t *testing.T) {
	start := day("2026-03-01")
	end := day("2026-03-05")

	movements := []*repository.MovementWithMedicine{
		movement("m1", "Paracetamol", repository.MovementStockIn, 40, day("2026-03-01").Add(9*time.Hour)),
		movement("m1", "Paracetamol", repository.MovementStockOut, 15, day("2026-03-01").Add(14*time.Hour)),
		movement("m2", "Ibuprofen", repository.MovementStockOut, 5, day("2026-03-04").Add(11*time.Hour)),
	}

	points := BuildStockTrend(movements, start, end)
	require.Len(t, points, 5)

	assert.Equal(t, "2026-03-01", points[0].Date)
	assert.Equal(t, 40, points[0].StockIn)
	assert.Equal(t, 15, points[0].StockOut)

	// Quiet days are present with zeros
	assert.Equal(t, 0, points[1].StockIn)
	assert.Equal(t, 0, points[1].StockOut)
	assert.Equal(t, 0, points[2].StockIn)

	assert.Equal(t, "2026-03-04", points[3].Date)
	assert.Equal(t, 5, points[3].StockOut)
}

func TestBuildCategoryDistribution(t *testing.T) {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	medicines := []*repository.Medicine{
		{Category: "Analgesic", Quantity: 10, UnitPrice: price("2.50")},
		{Category: "Antibiotic", Quantity: 5, UnitPrice: price("8.00")},
		{Category: "Analgesic", Quantity: 4, UnitPrice: price("1.25")},
	}

	slices := BuildCategoryDistribution(medicines)
	require.Len(t, slices, 2)

	// Sorted by category name
	assert.Equal(t, "Analgesic", slices[0].Category)
	assert.Equal(t, 2, slices[0].Count)
	assert.Equal(t, "30", slices[0].TotalValue.String()) // 10*2.50 + 4*1.25

	assert.Equal(t, "Antibiotic", slices[1].Category)
	assert.Equal(t, 1, slices[1].Count)
	assert.Equal(t, "40", slices[1].TotalValue.String())
}

func TestBuildMovingItems_SplitAtMidpoint(t *testing.T) {
	at := day("2026-03-02")
	movements := []*repository.MovementWithMedicine{
		movement("m1", "Paracetamol", repository.MovementStockOut, 10, at),
		movement("m2", "Ibuprofen", repository.MovementStockOut, 50, at),
		movement("m3", "Amoxicillin", repository.MovementStockOut, 30, at),
		movement("m1", "Paracetamol", repository.MovementStockIn, 5, at),
		movement("m4", "Cetirizine", repository.MovementStockOut, 2, at),
	}

	items := BuildMovingItems(movements)
	require.Len(t, items, 4)

	// Descending by total: m2=50, m3=30, m1=15, m4=2
	assert.Equal(t, "m2", items[0].MedicineID)
	assert.Equal(t, 50, items[0].TotalQuantity)
	assert.Equal(t, "m3", items[1].MedicineID)
	assert.Equal(t, "m1", items[2].MedicineID)
	assert.Equal(t, 15, items[2].TotalQuantity)
	assert.Equal(t, "m4", items[3].MedicineID)

	// Four items split at index 2
	assert.Equal(t, MovingFast, items[0].Classification)
	assert.Equal(t, MovingFast, items[1].Classification)
	assert.Equal(t, MovingSlow, items[2].Classification)
	assert.Equal(t, MovingSlow, items[3].Classification)
}

func TestBuildMovingItems_OddCountAndTies(t *testing.T) {
	at := day("2026-03-02")
	movements := []*repository.MovementWithMedicine{
		movement("m1", "A", repository.MovementStockOut, 10, at),
		movement("m2", "B", repository.MovementStockOut, 10, at),
		movement("m3", "C", repository.MovementStockOut, 10, at),
	}

	items := BuildMovingItems(movements)
	require.Len(t, items, 3)

	// Stable sort keeps first-seen order for ties
	assert.Equal(t, "m1", items[0].MedicineID)
	assert.Equal(t, "m2", items[1].MedicineID)
	assert.Equal(t, "m3", items[2].MedicineID)

	// Three items: midpoint 1, so only the first is fast
	assert.Equal(t, MovingFast, items[0].Classification)
	assert.Equal(t, MovingSlow, items[1].Classification)
	assert.Equal(t, MovingSlow, items[2].Classification)
}

func TestBuildExpiryLoss(t *testing.T) {
	today := day("2026-03-15")
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	medicines := []*repository.Medicine{
		{ID: "m1", Name: "Later", BatchNumber: "B1", Quantity: 10, UnitPrice: price("3.00"), ExpiryDate: day("2026-04-01")},
		{ID: "m2", Name: "Already expired", BatchNumber: "B2", Quantity: 2, UnitPrice: price("5.00"), ExpiryDate: day("2026-03-10")},
		{ID: "m3", Name: "Soon", BatchNumber: "B3", Quantity: 4, UnitPrice: price("2.00"), ExpiryDate: day("2026-03-20")},
	}

	items := BuildExpiryLoss(medicines, today)
	require.Len(t, items, 3)

	// Soonest expiry first, expired stock included with negative days
	assert.Equal(t, "m2", items[0].MedicineID)
	assert.Equal(t, -5, items[0].DaysUntilExpiry)
	assert.Equal(t, "10", items[0].PotentialLoss.String())

	assert.Equal(t, "m3", items[1].MedicineID)
	assert.Equal(t, 5, items[1].DaysUntilExpiry)

	assert.Equal(t, "m1", items[2].MedicineID)
	assert.Equal(t, 17, items[2].DaysUntilExpiry)
	assert.Equal(t, "30", items[2].PotentialLoss.String())
}

func TestBuildSupplierPerformance(t *testing.T) {
	amount := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	sID := func(s string) *string { return &s }
	date := func(s string) *time.Time { d := day(s); return &d }

	suppliers := []*repository.Supplier{
		{ID: "s1", Name: "Acme Pharma"},
		{ID: "s2", Name: "Beta Supplies"},
		{ID: "s3", Name: "No Orders Yet"},
	}

	orders := []*repository.PurchaseOrder{
		{SupplierID: sID("s1"), Status: repository.OrderDelivered, TotalAmount: amount("100"), CreatedAt: day("2026-03-01"), DeliveredDate: date("2026-03-04")},
		{SupplierID: sID("s1"), Status: repository.OrderDelivered, TotalAmount: amount("50"), CreatedAt: day("2026-03-02"), DeliveredDate: date("2026-03-08")},
		{SupplierID: sID("s1"), Status: repository.OrderPending, TotalAmount: amount("25"), CreatedAt: day("2026-03-10")},
		{SupplierID: sID("s2"), Status: repository.OrderShipped, TotalAmount: amount("200"), CreatedAt: day("2026-03-05")},
	}

	result := BuildSupplierPerformance(suppliers, orders)
	require.Len(t, result, 3)

	// Sorted by supplier name
	acme := result[0]
	assert.Equal(t, "Acme Pharma", acme.SupplierName)
	assert.Equal(t, 3, acme.TotalOrders)
	assert.Equal(t, 2, acme.DeliveredOrders)
	assert.Equal(t, 5, acme.AvgDeliveryDays) // round((3+6)/2) = round(4.5)
	assert.Equal(t, "175", acme.TotalAmount.String())

	beta := result[1]
	assert.Equal(t, 1, beta.TotalOrders)
	assert.Equal(t, 0, beta.DeliveredOrders)
	assert.Equal(t, 0, beta.AvgDeliveryDays)

	// Suppliers without orders still appear with zeros
	none := result[2]
	assert.Equal(t, "No Orders Yet", none.SupplierName)
	assert.Equal(t, 0, none.TotalOrders)
	assert.Equal(t, "0", none.TotalAmount.String())
}

func TestBuildRevenue_FlatDailyCost(t *testing.T) {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	start := day("2026-03-01")
	end := day("2026-03-04")

	medicines := []*repository.Medicine{
		{Quantity: 10, UnitPrice: price("10.00")}, // catalog value 100
	}

	sales := []*repository.Sale{
		{TotalAmount: price("12.50"), CreatedAt: day("2026-03-01").Add(10 * time.Hour)},
		{TotalAmount: price("7.50"), CreatedAt: day("2026-03-01").Add(16 * time.Hour)},
		{TotalAmount: price("40"), CreatedAt: day("2026-03-03").Add(9 * time.Hour)},
	}

	points := BuildRevenue(sales, medicines, start, end)
	require.Len(t, points, 4)

	// 100 catalog value over 4 days
	for _, p := range points {
		assert.Equal(t, "25", p.Cost.String())
	}

	assert.Equal(t, "20", points[0].Revenue.String())
	assert.Equal(t, "0", points[1].Revenue.String())
	assert.Equal(t, "40", points[2].Revenue.String())
	assert.Equal(t, "0", points[3].Revenue.String())
}

func TestBuildRevenue_CostRounding(t *testing.T) {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	medicines := []*repository.Medicine{
		{Quantity: 1, UnitPrice: price("100.00")},
	}

	points := BuildRevenue(nil, medicines, day("2026-03-01"), day("2026-03-03"))
	require.Len(t, points, 3)

	// 100/3 rounded to 2 decimal places
	assert.Equal(t, "33.33", points[0].Cost.String())
}
