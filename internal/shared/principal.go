package shared

// Role is the coarse permission level attached to a user account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Principal describes the authenticated actor for a request.
type Principal struct {
	UserID int64
	Role   Role
}

// IsStaff reports whether the principal holds staff or admin privileges.
func (p Principal) IsStaff() bool {
	return p.Role == RoleStaff || p.Role == RoleAdmin
}

// IsAdmin reports whether the principal holds admin privileges.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
