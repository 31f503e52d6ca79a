package model

// Role codes
const (
	RoleOwner   = "OWNER"
	RoleCashier = "CASHIER"
)

// Privilege codes checked by middleware.RequirePrivilege
const (
	PrivProductView    = "product:view"
	PrivProductManage  = "product:manage"
	PrivSaleView       = "sale:view"
	PrivSaleCreate     = "sale:create"
	PrivSaleCredit     = "sale:credit"
	PrivSaleEcommerce  = "sale:ecommerce"
	PrivPurchaseView   = "purchase:view"
	PrivPurchaseCreate = "purchase:create"
	PrivStatsView      = "stats:view"
	PrivUserManage     = "user:manage"
)

// RolePrivileges maps each role to what it may do. The owner can do everything.
var RolePrivileges = map[string][]string{
	RoleOwner: {
		PrivProductView, PrivProductManage,
		PrivSaleView, PrivSaleCreate, PrivSaleCredit, PrivSaleEcommerce,
		PrivPurchaseView, PrivPurchaseCreate,
		PrivStatsView,
		PrivUserManage,
	},
	RoleCashier: {
		PrivProductView,
		PrivSaleView, PrivSaleCreate, PrivSaleCredit, PrivSaleEcommerce,
	},
}
