// Package authz maps (role, action) pairs to an allow/deny decision. Every
// mutating endpoint consults the same policy table instead of re-implementing
// role checks per handler.
package authz

import (
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Action names follow the module.verb convention.
const (
	ActionProductsCreate = "products.create"
	ActionProductsUpdate = "products.update"
	ActionProductsDelete = "products.delete"

	ActionCategoriesCreate = "categories.create"
	ActionCategoriesUpdate = "categories.update"
	ActionCategoriesDelete = "categories.delete"

	ActionSuppliersView   = "suppliers.view"
	ActionSuppliersCreate = "suppliers.create"
	ActionSuppliersUpdate = "suppliers.update"
	ActionSuppliersDelete = "suppliers.delete"

	ActionInventoryView    = "inventory.view"
	ActionInventoryEdit    = "inventory.edit"
	ActionInventoryRestock = "inventory.restock"

	ActionPurchasesView   = "purchases.view"
	ActionPurchasesCreate = "purchases.create"
	ActionPurchasesCancel = "purchases.cancel"
	ActionPurchasesUpdate = "purchases.update"

	ActionReportsView = "reports.view"

	ActionUsersView = "users.view"
	ActionUsersEdit = "users.edit"
)

// rank orders roles so a higher role inherits everything below it.
var rank = map[shared.Role]int{
	shared.RoleCustomer: 1,
	shared.RoleStaff:    2,
	shared.RoleAdmin:    3,
}

// policy holds the minimum role required per action. Deletions are admin-only,
// catalog and inventory mutations are staff level, and purchase placement or
// cancellation is open to any authenticated user (ownership is enforced by the
// order service).
var policy = map[string]shared.Role{
	ActionProductsCreate: shared.RoleStaff,
	ActionProductsUpdate: shared.RoleStaff,
	ActionProductsDelete: shared.RoleAdmin,

	ActionCategoriesCreate: shared.RoleStaff,
	ActionCategoriesUpdate: shared.RoleStaff,
	ActionCategoriesDelete: shared.RoleAdmin,

	ActionSuppliersView:   shared.RoleStaff,
	ActionSuppliersCreate: shared.RoleStaff,
	ActionSuppliersUpdate: shared.RoleStaff,
	ActionSuppliersDelete: shared.RoleAdmin,

	ActionInventoryView:    shared.RoleStaff,
	ActionInventoryEdit:    shared.RoleStaff,
	ActionInventoryRestock: shared.RoleStaff,

	ActionPurchasesView:   shared.RoleCustomer,
	ActionPurchasesCreate: shared.RoleCustomer,
	ActionPurchasesCancel: shared.RoleCustomer,
	ActionPurchasesUpdate: shared.RoleStaff,

	ActionReportsView: shared.RoleStaff,

	ActionUsersView: shared.RoleStaff,
	ActionUsersEdit: shared.RoleAdmin,
}

// Allowed reports whether the role may perform the action. Unknown actions are
// denied.
func Allowed(role shared.Role, action string) bool {
	required, ok := policy[action]
	if !ok {
		return false
	}
	return rank[role] >= rank[required]
}
