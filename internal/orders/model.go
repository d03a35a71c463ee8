package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the purchase lifecycle state. Transitions only move forward:
// pending orders may complete or cancel, completed and cancelled are final.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Final reports whether the state permits no further transitions.
func (s Status) Final() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentStatus tracks payment settlement separately from the order
// lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether p is a known payment state.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Purchase is a customer order. TotalAmount always equals the sum of its
// item subtotals.
type Purchase struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Status          Status          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   *string         `json:"payment_method,omitempty"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	ShippingAddress *string         `json:"shipping_address,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []PurchaseItem  `json:"items,omitempty"`
}

// PurchaseItem is one order line. UnitPrice is frozen at order time so later
// catalog price changes never alter historical orders.
type PurchaseItem struct {
	ID          int64           `json:"id"`
	PurchaseID  int64           `json:"purchase_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ListFilter narrows purchase listings. UserID scopes results to one
// customer's own orders.
type ListFilter struct {
	UserID  int64
	Status  Status
	Page    int
	PerPage int
}

// CreateItemInput is a requested order line.
type CreateItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateInput describes a new purchase. Status and PaymentStatus default to
// pending; a walk-in sale can be recorded as completed in one request.
type CreateInput struct {
	UserID          int64
	Items           []CreateItemInput
	Status          *Status
	PaymentMethod   *string
	PaymentStatus   *PaymentStatus
	ShippingAddress *string
	Notes           *string
}

// UpdateInput carries staff edits that never touch stock.
type UpdateInput struct {
	Status          *Status
	PaymentMethod   *string
	PaymentStatus   *PaymentStatus
	ShippingAddress *string
	Notes           *string
}
