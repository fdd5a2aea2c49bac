package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// AnalyticsService computes read-only aggregations over the inventory.
// The date window [from, to] is inclusive at day granularity.
type AnalyticsService struct {
	medicines *repository.MedicineRepository
	movements *repository.MovementRepository
	suppliers *repository.SupplierRepository
	sales     *repository.SaleRepository
	logger    *logger.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	medicines *repository.MedicineRepository,
	movements *repository.MovementRepository,
	suppliers *repository.SupplierRepository,
	sales *repository.SaleRepository,
	log *logger.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		medicines: medicines,
		movements: movements,
		suppliers: suppliers,
		sales:     sales,
		logger:    log,
	}
}

// dayStart truncates a time to midnight UTC
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TrendPoint is one day of stock movement totals
type TrendPoint struct {
	Date     string `json:"date"`
	StockIn  int    `json:"stock_in"`
	StockOut int    `json:"stock_out"`
}

// StockTrend sums stock-in and stock-out quantities per calendar day.
// Every day in the window gets a point, zero-filled when nothing moved.
func (s *AnalyticsService) StockTrend(ctx context.Context, from, to time.Time) ([]TrendPoint, error) {
	start := dayStart(from)
	end := dayStart(to)

	movements, err := s.movements.ListRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return BuildStockTrend(movements, start, end), nil
}

// BuildStockTrend zero-fills one point per day and folds movements into it
func BuildStockTrend(movements []*repository.MovementWithMedicine, start, end time.Time) []TrendPoint {
	points := []TrendPoint{}
	index := map[string]int{}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		index[key] = len(points)
		points = append(points, TrendPoint{Date: key})
	}

	for _, m := range movements {
		key := m.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			continue
		}
		if m.Type == repository.MovementStockIn {
			points[i].StockIn += m.Quantity
		} else {
			points[i].StockOut += m.Quantity
		}
	}

	return points
}

// CategorySlice is one category's share of the catalog
type CategorySlice struct {
	Category   string          `json:"category"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// CategoryDistribution groups the catalog by category with item counts
// and total stock value.
func (s *AnalyticsService) CategoryDistribution(ctx context.Context) ([]CategorySlice, error) {
	medicines, err := s.medicines.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return BuildCategoryDistribution(medicines), nil
}

// BuildCategoryDistribution aggregates per category, sorted by category name
func BuildCategoryDistribution(medicines []*repository.Medicine) []CategorySlice {
	byCategory := map[string]*CategorySlice{}
	order := []string{}

	for _, m := range medicines {
		slice, ok := byCategory[m.Category]
		if !ok {
			slice = &CategorySlice{Category: m.Category, TotalValue: decimal.Zero}
			byCategory[m.Category] = slice
			order = append(order, m.Category)
		}
		slice.Count++
		slice.TotalValue = slice.TotalValue.Add(m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity))))
	}

	sort.Strings(order)
	result := make([]CategorySlice, 0, len(order))
	for _, category := range order {
		result = append(result, *byCategory[category])
	}

	return result
}

// MovingItem ranks a medicine by movement volume
type MovingItem struct {
	MedicineID     string `json:"medicine_id"`
	MedicineName   string `json:"medicine_name"`
	TotalQuantity  int    `json:"total_quantity"`
	Classification string `json:"classification"` // fast or slow
}

// Moving item classifications
const (
	MovingFast = "fast"
	MovingSlow = "slow"
)

// MovingItems ranks medicines by total movement quantity in the window.
// The top half of the ranking is classified fast, the rest slow.
func (s *AnalyticsService) MovingItems(ctx context.Context, from, to time.Time) ([]MovingItem, error) {
	movements, err := s.movements.ListRange(ctx, dayStart(from), dayStart(to).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return BuildMovingItems(movements), nil
}

// BuildMovingItems sums movement quantity per medicine and splits the
// descending ranking at its midpoint. The sort is stable so ties keep
// their first-seen order.
func BuildMovingItems(movements []*repository.MovementWithMedicine) []MovingItem {
	totals := map[string]*MovingItem{}
	order := []string{}

	for _, m := range movements {
		item, ok := totals[m.MedicineID]
		if !ok {
			item = &MovingItem{MedicineID: m.MedicineID, MedicineName: m.MedicineName}
			totals[m.MedicineID] = item
			order = append(order, m.MedicineID)
		}
		item.TotalQuantity += m.Quantity
	}

	items := make([]MovingItem, 0, len(order))
	for _, id := range order {
		items = append(items, *totals[id])
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalQuantity > items[j].TotalQuantity
	})

	midpoint := len(items) / 2
	for i := range items {
		if i < midpoint {
			items[i].Classification = MovingFast
		} else {
			items[i].Classification = MovingSlow
		}
	}

	return items
}

// ExpiryLossItem is a medicine at risk of being written off
type ExpiryLossItem struct {
	MedicineID      string          `json:"medicine_id"`
	MedicineName    string          `json:"medicine_name"`
	BatchNumber     string          `json:"batch_number"`
	Quantity        int             `json:"quantity"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	DaysUntilExpiry int             `json:"days_until_expiry"`
	PotentialLoss   decimal.Decimal `json:"potential_loss"`
}

// ExpiryLoss lists medicines with stock on hand expiring within 30 days,
// soonest first. Already expired stock appears with a negative
// days-until-expiry.
func (s *AnalyticsService) ExpiryLoss(ctx context.Context) ([]ExpiryLossItem, error) {
	today := time.Now()
	cutoff := dayStart(today).AddDate(0, 0, expiringSoonWindowDays)

	medicines, err := s.medicines.GetExpiringWithin(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	return BuildExpiryLoss(medicines, today), nil
}

// BuildExpiryLoss maps expiring medicines to loss rows, soonest expiry first
func BuildExpiryLoss(medicines []*repository.Medicine, today time.Time) []ExpiryLossItem {
	items := make([]ExpiryLossItem, 0, len(medicines))

	for _, m := range medicines {
		items = append(items, ExpiryLossItem{
			MedicineID:      m.ID,
			MedicineName:    m.Name,
			BatchNumber:     m.BatchNumber,
			Quantity:        m.Quantity,
			ExpiryDate:      m.ExpiryDate,
			DaysUntilExpiry: DaysUntilExpiry(m.ExpiryDate, today),
			PotentialLoss:   m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity))),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ExpiryDate.Before(items[j].ExpiryDate)
	})

	return items
}

// SupplierPerformance summarizes one supplier's order history
type SupplierPerformance struct {
	SupplierID      string          `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	TotalOrders     int             `json:"total_orders"`
	DeliveredOrders int             `json:"delivered_orders"`
	AvgDeliveryDays int             `json:"avg_delivery_days"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// SupplierPerformanceReport aggregates purchase orders per supplier
func (s *AnalyticsService) SupplierPerformanceReport(ctx context.Context) ([]SupplierPerformance, error) {
	suppliers, err := s.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.suppliers.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}

	return BuildSupplierPerformance(suppliers, orders), nil
}

// BuildSupplierPerformance computes per-supplier order counts, the rounded
// average delivery time over delivered orders, and the order total sum.
// Suppliers are sorted by name for stable output.
func BuildSupplierPerformance(suppliers []*repository.Supplier, orders []*repository.PurchaseOrder) []SupplierPerformance {
	byID := map[string]*SupplierPerformance{}
	deliveryDays := map[string][]float64{}

	for _, sup := range suppliers {
		byID[sup.ID] = &SupplierPerformance{
			SupplierID:   sup.ID,
			SupplierName: sup.Name,
			TotalAmount:  decimal.Zero,
		}
	}

	for _, order := range orders {
		if order.SupplierID == nil {
			continue
		}
		perf, ok := byID[*order.SupplierID]
		if !ok {
			continue
		}

		perf.TotalOrders++
		perf.TotalAmount = perf.TotalAmount.Add(order.TotalAmount)

		if order.Status == repository.OrderDelivered {
			perf.DeliveredOrders++
			if order.DeliveredDate != nil {
				days := order.DeliveredDate.Sub(order.CreatedAt).Hours() / 24
				deliveryDays[perf.SupplierID] = append(deliveryDays[perf.SupplierID], days)
			}
		}
	}

	result := make([]SupplierPerformance, 0, len(byID))
	for id, perf := range byID {
		if days := deliveryDays[id]; len(days) > 0 {
			var sum float64
			for _, d := range days {
				sum += d
			}
			perf.AvgDeliveryDays = int(math.Round(sum / float64(len(days))))
		}
		result = append(result, *perf)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SupplierName < result[j].SupplierName
	})

	return result
}

// RevenuePoint is one day of revenue against the flat inventory cost
type RevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
}

// Revenue sums daily sale amounts over the window. The cost line is the
// current catalog value spread evenly across the window's days, a flat
// approximation rather than a historical reconstruction.
func (s *AnalyticsService) Revenue(ctx context.Context, from, to time.Time) ([]RevenuePoint, error) {
	start := dayStart(from)
	end := dayStart(to)

	sales, err := s.sales.ListRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	medicines, err := s.medicines.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return BuildRevenue(sales, medicines, start, end), nil
}

// BuildRevenue zero-fills revenue per day and attaches the flat daily cost
func BuildRevenue(sales []*repository.Sale, medicines []*repository.Medicine, start, end time.Time) []RevenuePoint {
	days := int(dayStart(end).Sub(dayStart(start)).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	catalogValue := decimal.Zero
	for _, m := range medicines {
		catalogValue = catalogValue.Add(m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity))))
	}
	dailyCost := catalogValue.Div(decimal.NewFromInt(int64(days))).Round(2)

	points := []RevenuePoint{}
	index := map[string]int{}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		index[key] = len(points)
		points = append(points, RevenuePoint{Date: key, Revenue: decimal.Zero, Cost: dailyCost})
	}

	for _, sale := range sales {
		key := sale.CreatedAt.UTC().Format("2006-01-02")
		if i, ok := index[key]; ok {
			points[i].Revenue = points[i].Revenue.Add(sale.TotalAmount)
		}
	}

	return points
}
