package users

import (
	"time"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Phone        *string     `json:"phone,omitempty"`
	Address      *string     `json:"address,omitempty"`
	Role         shared.Role `json:"role"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ListFilter narrows user listings.
type ListFilter struct {
	Role    shared.Role
	Page    int
	PerPage int
}

// UpdateInput carries profile edits.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}
