package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

type stubRepo struct {
	summaryCalls  int
	summaryRanges []DateRange
	summary       SalesSummary
	daily         []DailySales
	top           []TopProduct
	profit        []ProfitRow
	pending       int
	lowStock      int
	recent        []RecentOrder
}

func (s *stubRepo) SalesSummary(_ context.Context, period DateRange) (SalesSummary, error) {
	s.summaryCalls++
	s.summaryRanges = append(s.summaryRanges, period)
	return s.summary, nil
}

func (s *stubRepo) DailySales(context.Context, DateRange) ([]DailySales, error) {
	return s.daily, nil
}

func (s *stubRepo) TopProducts(context.Context, DateRange, int) ([]TopProduct, error) {
	return s.top, nil
}

func (s *stubRepo) ProfitRows(context.Context, DateRange) ([]ProfitRow, error) {
	return s.profit, nil
}

func (s *stubRepo) InventorySummary(context.Context) (InventoryReport, error) {
	return InventoryReport{}, nil
}

func (s *stubRepo) PendingOrders(context.Context) (int, error) {
	return s.pending, nil
}

func (s *stubRepo) LowStockAlerts(context.Context) (int, error) {
	return s.lowStock, nil
}

func (s *stubRepo) RecentOrders(context.Context, int) ([]RecentOrder, error) {
	return s.recent, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseRange(t *testing.T) {
	svc := NewService(&stubRepo{}, nil, slog.Default())
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	period, err := svc.ParseRange("", "")
	require.NoError(t, err)
	require.Equal(t, "2025-05-16", period.Start.Format("2006-01-02"))
	require.Equal(t, "2025-06-15", period.End.Format("2006-01-02"))

	period, err = svc.ParseRange("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Equal(t, "2025-01-01", period.Start.Format("2006-01-02"))

	_, err = svc.ParseRange("not-a-date", "")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.ParseRange("2025-02-01", "2025-01-01")
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestProfitReportTotalsAndBasis(t *testing.T) {
	repo := &stubRepo{
		profit: []ProfitRow{
			{ProductID: 1, UnitsSold: 4, Revenue: dec("200.00"), Cost: dec("120.00"), Profit: dec("80.00")},
			{ProductID: 2, UnitsSold: 1, Revenue: dec("50.00"), Cost: dec("30.00"), Profit: dec("20.00")},
		},
	}
	svc := NewService(repo, nil, slog.Default())

	report, err := svc.Profit(context.Background(), DateRange{Start: time.Now().AddDate(0, 0, -7), End: time.Now()})
	require.NoError(t, err)
	require.Equal(t, PricingBasisCurrentCatalog, report.PricingBasis)
	require.True(t, report.TotalRevenue.Equal(dec("250.00")))
	require.True(t, report.TotalCost.Equal(dec("150.00")))
	require.True(t, report.TotalProfit.Equal(dec("100.00")))
}

func TestDashboardUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &stubRepo{
		summary:  SalesSummary{TotalSales: dec("99.00"), TotalOrders: 3},
		pending:  2,
		lowStock: 1,
	}
	svc := NewService(repo, client, slog.Default())

	first, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.True(t, first.TodaySales.Equal(dec("99.00")))
	require.Equal(t, 2, repo.summaryCalls, "today and week summaries")

	// Second read comes from cache without touching the repository.
	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.summaryCalls)

	// After the TTL lapses the next read recomputes.
	mr.FastForward(dashboardCacheTTL + time.Second)
	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, repo.summaryCalls)
}

func TestDashboardWeekStartsOnMonday(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil, slog.Default())
	// A Thursday; the week summary must reach back to Monday the 9th.
	svc.now = func() time.Time { return time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC) }

	_, err := svc.RefreshDashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, repo.summaryRanges, 2)
	require.Equal(t, "2025-06-12", repo.summaryRanges[0].Start.Format("2006-01-02"))
	require.Equal(t, "2025-06-09", repo.summaryRanges[1].Start.Format("2006-01-02"))
	require.Equal(t, "2025-06-12", repo.summaryRanges[1].End.Format("2006-01-02"))

	// On a Monday the window collapses to that single day.
	repo.summaryRanges = nil
	svc.now = func() time.Time { return time.Date(2025, 6, 9, 9, 30, 0, 0, time.UTC) }
	_, err = svc.RefreshDashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, repo.summaryRanges[1].Start, repo.summaryRanges[1].End)
}

func TestRefreshDashboardRewritesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &stubRepo{summary: SalesSummary{TotalSales: dec("10.00"), TotalOrders: 1}}
	svc := NewService(repo, client, slog.Default())

	_, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	repo.summary = SalesSummary{TotalSales: dec("500.00"), TotalOrders: 9}
	refreshed, err := svc.RefreshDashboard(context.Background())
	require.NoError(t, err)
	require.True(t, refreshed.TodaySales.Equal(dec("500.00")))

	cached, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.True(t, cached.TodaySales.Equal(dec("500.00")))
}
