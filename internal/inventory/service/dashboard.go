package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/pkg/logger"
)

// DashboardStats is the at-a-glance summary shown on the dashboard
type DashboardStats struct {
	TotalMedicines  int             `json:"total_medicines"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	LowStock        int             `json:"low_stock"`
	OutOfStock      int             `json:"out_of_stock"`
	ExpiringSoon    int             `json:"expiring_soon"`
	Expired         int             `json:"expired"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
	UnreadAlerts    int64           `json:"unread_alerts"`
}

// DashboardService assembles the dashboard summary and activity feed
type DashboardService struct {
	medicines *repository.MedicineRepository
	movements *repository.MovementRepository
	sales     *repository.SaleRepository
	alerts    *repository.AlertRepository
	logger    *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	medicines *repository.MedicineRepository,
	movements *repository.MovementRepository,
	sales *repository.SaleRepository,
	alerts *repository.AlertRepository,
	log *logger.Logger,
) *DashboardService {
	return &DashboardService{
		medicines: medicines,
		movements: movements,
		sales:     sales,
		alerts:    alerts,
		logger:    log,
	}
}

// Stats computes the dashboard summary from the current catalog
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	medicines, err := s.medicines.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalStockValue: decimal.Zero,
		TodayRevenue:    decimal.Zero,
	}
	stats.TotalMedicines = len(medicines)

	for _, m := range medicines {
		stats.TotalStockValue = stats.TotalStockValue.Add(m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity))))

		switch m.Status {
		case repository.StatusLowStock:
			stats.LowStock++
		case repository.StatusOutOfStock:
			stats.OutOfStock++
		case repository.StatusExpiringSoon:
			stats.ExpiringSoon++
		case repository.StatusExpired:
			stats.Expired++
		}
	}

	today := dayStart(time.Now())
	revenue, err := s.sales.TotalSince(ctx, today)
	if err != nil {
		return nil, err
	}
	stats.TodayRevenue = revenue

	unread, err := s.alerts.CountUnread(ctx)
	if err != nil {
		return nil, err
	}
	stats.UnreadAlerts = unread

	return stats, nil
}

// RecentActivity returns the latest stock movements for the activity feed
func (s *DashboardService) RecentActivity(ctx context.Context, limit int) ([]*repository.MovementWithMedicine, error) {
	return s.movements.ListRecent(ctx, limit)
}
