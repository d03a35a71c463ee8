package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Prices are stored as fixed-point
// decimals; CostPrice and SellingPrice are never negative.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	SKU          string          `json:"sku"`
	Brand        *string         `json:"brand,omitempty"`
	Size         *string         `json:"size,omitempty"`
	Color        *string         `json:"color,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ImageURL     *string         `json:"image_url,omitempty"`
	CategoryID   int64           `json:"category_id"`
	SupplierID   int64           `json:"supplier_id"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search      string
	CategoryID  int64
	SupplierID  int64
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Size        string
	Color       string
	Brand       string
	InStockOnly bool
	Page        int
	PerPage     int
}
