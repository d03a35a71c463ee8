package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummary aggregates completed purchases over a period.
type SalesSummary struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// DailySales is one day of the period breakdown.
type DailySales struct {
	Date        string          `json:"date"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalOrders int             `json:"total_orders"`
}

// TopProduct ranks catalog items by units sold.
type TopProduct struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// SalesReport is the full sales view for a date range.
type SalesReport struct {
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	Summary     SalesSummary `json:"summary"`
	DailySales  []DailySales `json:"daily_sales"`
	TopProducts []TopProduct `json:"top_products"`
}

// ProfitRow is the per-product margin line. Revenue and cost are computed
// from current catalog prices, not the prices frozen on historical orders.
type ProfitRow struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	UnitsSold    int             `json:"units_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
}

// PricingBasisCurrentCatalog marks profit figures derived from today's
// catalog prices rather than the unit prices recorded at order time.
const PricingBasisCurrentCatalog = "current_catalog"

// ProfitReport is the margin view for a date range.
type ProfitReport struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	PricingBasis string          `json:"pricing_basis"`
	Rows         []ProfitRow     `json:"products"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

// InventoryReport summarizes current stock across active products.
type InventoryReport struct {
	TotalProducts    int             `json:"total_products"`
	TotalUnits       int             `json:"total_units"`
	StockValueCost   decimal.Decimal `json:"stock_value_cost"`
	StockValueRetail decimal.Decimal `json:"stock_value_retail"`
	LowStockCount    int             `json:"low_stock_count"`
	OutOfStockCount  int             `json:"out_of_stock_count"`
}

// RecentOrder is a dashboard line for the latest purchases.
type RecentOrder struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Username     string          `json:"username"`
	Status       string          `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PurchaseDate time.Time       `json:"purchase_date"`
}

// Dashboard is the storefront operations overview.
type Dashboard struct {
	TodaySales     decimal.Decimal `json:"today_sales"`
	TodayOrders    int             `json:"today_orders"`
	WeekSales      decimal.Decimal `json:"week_sales"`
	WeekOrders     int             `json:"week_orders"`
	PendingOrders  int             `json:"pending_orders"`
	LowStockAlerts int             `json:"low_stock_alerts"`
	RecentOrders   []RecentOrder   `json:"recent_orders"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// DateRange bounds a report period. End is inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}
