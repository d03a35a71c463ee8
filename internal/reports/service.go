package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// RepositoryPort abstracts the aggregate queries for the service.
type RepositoryPort interface {
	SalesSummary(ctx context.Context, period DateRange) (SalesSummary, error)
	DailySales(ctx context.Context, period DateRange) ([]DailySales, error)
	TopProducts(ctx context.Context, period DateRange, limit int) ([]TopProduct, error)
	ProfitRows(ctx context.Context, period DateRange) ([]ProfitRow, error)
	InventorySummary(ctx context.Context) (InventoryReport, error)
	PendingOrders(ctx context.Context) (int, error)
	LowStockAlerts(ctx context.Context) (int, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
}

const (
	dashboardCacheKey = "reports:dashboard"
	dashboardCacheTTL = 5 * time.Minute
	topProductsLimit  = 10
	recentOrdersLimit = 5
)

// Service assembles reporting views. The dashboard is cached in Redis since
// it backs the landing page and its queries touch several tables.
type Service struct {
	repo   RepositoryPort
	cache  *redis.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service. cache may be nil, in which case every dashboard
// request recomputes.
func NewService(repo RepositoryPort, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// ParseRange interprets start/end date strings (YYYY-MM-DD). Empty values
// default to the last 30 days.
func (s *Service) ParseRange(startDate, endDate string) (DateRange, error) {
	end := s.now().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -30)
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid start_date", shared.ErrInvalidInput)
		}
		start = parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid end_date", shared.ErrInvalidInput)
		}
		end = parsed
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: end_date before start_date", shared.ErrInvalidInput)
	}
	return DateRange{Start: start, End: end}, nil
}

// Sales builds the sales report for the period.
func (s *Service) Sales(ctx context.Context, period DateRange) (SalesReport, error) {
	summary, err := s.repo.SalesSummary(ctx, period)
	if err != nil {
		return SalesReport{}, err
	}
	daily, err := s.repo.DailySales(ctx, period)
	if err != nil {
		return SalesReport{}, err
	}
	top, err := s.repo.TopProducts(ctx, period, topProductsLimit)
	if err != nil {
		return SalesReport{}, err
	}
	return SalesReport{
		StartDate:   period.Start.Format("2006-01-02"),
		EndDate:     period.End.Format("2006-01-02"),
		Summary:     summary,
		DailySales:  daily,
		TopProducts: top,
	}, nil
}

// Profit builds the margin report. Figures use current catalog prices, which
// the pricing_basis field makes explicit to consumers.
func (s *Service) Profit(ctx context.Context, period DateRange) (ProfitReport, error) {
	rows, err := s.repo.ProfitRows(ctx, period)
	if err != nil {
		return ProfitReport{}, err
	}
	report := ProfitReport{
		StartDate:    period.Start.Format("2006-01-02"),
		EndDate:      period.End.Format("2006-01-02"),
		PricingBasis: PricingBasisCurrentCatalog,
		Rows:         rows,
	}
	for _, row := range rows {
		report.TotalRevenue = report.TotalRevenue.Add(row.Revenue)
		report.TotalCost = report.TotalCost.Add(row.Cost)
	}
	report.TotalProfit = report.TotalRevenue.Sub(report.TotalCost)
	return report, nil
}

// Inventory builds the stock valuation report.
func (s *Service) Inventory(ctx context.Context) (InventoryReport, error) {
	return s.repo.InventorySummary(ctx)
}

// Dashboard returns the operations overview, served from cache when fresh.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var cached Dashboard
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("dashboard cache read", slog.Any("error", err))
		}
	}
	return s.RefreshDashboard(ctx)
}

// RefreshDashboard recomputes the dashboard and rewrites the cache. The
// warmup job calls this on a schedule so interactive requests mostly hit
// cache.
func (s *Service) RefreshDashboard(ctx context.Context) (Dashboard, error) {
	now := s.now()
	today := now.Truncate(24 * time.Hour)

	todaySummary, err := s.repo.SalesSummary(ctx, DateRange{Start: today, End: today})
	if err != nil {
		return Dashboard{}, err
	}
	// The week window anchors to Monday, not a rolling seven days.
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	weekSummary, err := s.repo.SalesSummary(ctx, DateRange{Start: weekStart, End: today})
	if err != nil {
		return Dashboard{}, err
	}
	pending, err := s.repo.PendingOrders(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	lowStock, err := s.repo.LowStockAlerts(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	recent, err := s.repo.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return Dashboard{}, err
	}

	dashboard := Dashboard{
		TodaySales:     todaySummary.TotalSales,
		TodayOrders:    todaySummary.TotalOrders,
		WeekSales:      weekSummary.TotalSales,
		WeekOrders:     weekSummary.TotalOrders,
		PendingOrders:  pending,
		LowStockAlerts: lowStock,
		RecentOrders:   recent,
		GeneratedAt:    now,
	}
	if s.cache != nil {
		data, err := json.Marshal(dashboard)
		if err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("dashboard cache write", slog.Any("error", err))
			}
		}
	}
	return dashboard, nil
}
