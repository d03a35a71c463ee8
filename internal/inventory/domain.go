package inventory

import "time"

// Record tracks stock for a single product. QuantityInStock never goes
// negative; reservation enforces the floor inside a row-locked transaction.
type Record struct {
	ID                int64      `json:"id"`
	ProductID         int64      `json:"product_id"`
	QuantityInStock   int        `json:"quantity_in_stock"`
	MinimumStockLevel int        `json:"minimum_stock_level"`
	MaximumStockLevel int        `json:"maximum_stock_level"`
	LastRestocked     *time.Time `json:"last_restocked,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	IsLowStock        bool       `json:"is_low_stock"`
	IsOutOfStock      bool       `json:"is_out_of_stock"`
}

// DeriveFlags recomputes the low/out-of-stock indicators from quantities.
func (r *Record) DeriveFlags() {
	r.IsLowStock = r.QuantityInStock <= r.MinimumStockLevel
	r.IsOutOfStock = r.QuantityInStock == 0
}

// AlertItem is an inventory record joined with catalog identity for alert
// listings.
type AlertItem struct {
	Record
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
}

// Alerts groups stock warnings. Low stock excludes items that are already out
// of stock.
type Alerts struct {
	LowStock    []AlertItem `json:"low_stock"`
	OutOfStock  []AlertItem `json:"out_of_stock"`
	TotalAlerts int         `json:"total_alerts"`
}

// ListFilter narrows inventory listings.
type ListFilter struct {
	LowStockOnly   bool
	OutOfStockOnly bool
	Page           int
	PerPage        int
}

// CreateInput describes a new inventory record.
type CreateInput struct {
	ProductID         int64
	QuantityInStock   int
	MinimumStockLevel int
	MaximumStockLevel int
}

// UpdateInput carries optional level changes.
type UpdateInput struct {
	QuantityInStock   *int
	MinimumStockLevel *int
	MaximumStockLevel *int
}
