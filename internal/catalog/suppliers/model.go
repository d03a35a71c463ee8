package suppliers

import "time"

// Supplier holds vendor master data.
type Supplier struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	ContactPerson    *string   `json:"contact_person,omitempty"`
	Email            *string   `json:"email,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	Address          *string   `json:"address,omitempty"`
	PaymentTerms     *string   `json:"payment_terms,omitempty"`
	DeliverySchedule *string   `json:"delivery_schedule,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
