package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository runs the aggregate queries behind reports. Only completed
// purchases count toward sales and profit figures.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesSummary aggregates completed purchases inside the range.
func (r *Repository) SalesSummary(ctx context.Context, period DateRange) (SalesSummary, error) {
	var s SalesSummary
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0), COUNT(*), COALESCE(AVG(total_amount), 0)
FROM purchases
WHERE status = 'completed' AND purchase_date >= $1 AND purchase_date < $2`,
		period.Start, period.End.AddDate(0, 0, 1)).Scan(&s.TotalSales, &s.TotalOrders, &s.AverageOrderValue)
	if err != nil {
		return SalesSummary{}, err
	}
	s.AverageOrderValue = s.AverageOrderValue.Round(2)
	return s, nil
}

// DailySales breaks the range down per calendar day. Days without sales are
// omitted.
func (r *Repository) DailySales(ctx context.Context, period DateRange) ([]DailySales, error) {
	rows, err := r.pool.Query(ctx, `SELECT DATE(purchase_date), COALESCE(SUM(total_amount), 0), COUNT(*)
FROM purchases
WHERE status = 'completed' AND purchase_date >= $1 AND purchase_date < $2
GROUP BY DATE(purchase_date)
ORDER BY DATE(purchase_date)`,
		period.Start, period.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []DailySales
	for rows.Next() {
		var day time.Time
		var d DailySales
		if err := rows.Scan(&day, &d.TotalSales, &d.TotalOrders); err != nil {
			return nil, err
		}
		d.Date = day.Format("2006-01-02")
		result = append(result, d)
	}
	return result, rows.Err()
}

// TopProducts ranks items by units sold inside the range.
func (r *Repository) TopProducts(ctx context.Context, period DateRange, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.sku, SUM(pi.quantity)::int, COALESCE(SUM(pi.subtotal), 0)
FROM purchase_items pi
JOIN purchases pu ON pu.id = pi.purchase_id
JOIN products p ON p.id = pi.product_id
WHERE pu.status = 'completed' AND pu.purchase_date >= $1 AND pu.purchase_date < $2
GROUP BY p.id, p.name, p.sku
ORDER BY SUM(pi.quantity) DESC, p.id
LIMIT $3`,
		period.Start, period.End.AddDate(0, 0, 1), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.SKU, &tp.QuantitySold, &tp.Revenue); err != nil {
			return nil, err
		}
		result = append(result, tp)
	}
	return result, rows.Err()
}

// ProfitRows computes per-product margins from current catalog prices.
func (r *Repository) ProfitRows(ctx context.Context, period DateRange) ([]ProfitRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.sku, SUM(pi.quantity)::int,
       SUM(pi.quantity) * p.selling_price,
       SUM(pi.quantity) * p.cost_price
FROM purchase_items pi
JOIN purchases pu ON pu.id = pi.purchase_id
JOIN products p ON p.id = pi.product_id
WHERE pu.status = 'completed' AND pu.purchase_date >= $1 AND pu.purchase_date < $2
GROUP BY p.id, p.name, p.sku, p.selling_price, p.cost_price
ORDER BY SUM(pi.quantity) * (p.selling_price - p.cost_price) DESC`,
		period.Start, period.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ProfitRow
	for rows.Next() {
		var row ProfitRow
		if err := rows.Scan(&row.ProductID, &row.Name, &row.SKU, &row.UnitsSold, &row.Revenue, &row.Cost); err != nil {
			return nil, err
		}
		row.Profit = row.Revenue.Sub(row.Cost)
		if !row.Revenue.IsZero() {
			row.MarginPct = row.Profit.Div(row.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// InventorySummary aggregates stock counts and valuations for active products.
func (r *Repository) InventorySummary(ctx context.Context) (InventoryReport, error) {
	var report InventoryReport
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*),
       COALESCE(SUM(i.quantity_in_stock), 0),
       COALESCE(SUM(i.quantity_in_stock * p.cost_price), 0),
       COALESCE(SUM(i.quantity_in_stock * p.selling_price), 0),
       COUNT(*) FILTER (WHERE i.quantity_in_stock <= i.minimum_stock_level AND i.quantity_in_stock > 0),
       COUNT(*) FILTER (WHERE i.quantity_in_stock = 0)
FROM inventory i
JOIN products p ON p.id = i.product_id
WHERE p.is_active`).Scan(
		&report.TotalProducts, &report.TotalUnits,
		&report.StockValueCost, &report.StockValueRetail,
		&report.LowStockCount, &report.OutOfStockCount)
	if err != nil {
		return InventoryReport{}, err
	}
	return report, nil
}

// PendingOrders counts purchases still awaiting fulfilment.
func (r *Repository) PendingOrders(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases WHERE status = 'pending'`).Scan(&count)
	return count, err
}

// LowStockAlerts counts active products at or below their minimum level.
func (r *Repository) LowStockAlerts(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)
FROM inventory i
JOIN products p ON p.id = i.product_id
WHERE p.is_active AND i.quantity_in_stock <= i.minimum_stock_level`).Scan(&count)
	return count, err
}

// RecentOrders returns the latest purchases across all statuses.
func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `SELECT pu.id, pu.user_id, u.username, pu.status, pu.total_amount, pu.purchase_date
FROM purchases pu
JOIN users u ON u.id = pu.user_id
ORDER BY pu.purchase_date DESC, pu.id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []RecentOrder
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.ID, &o.UserID, &o.Username, &o.Status, &o.TotalAmount, &o.PurchaseDate); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}
