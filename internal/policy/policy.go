// Package policy is the role capability table. Every route and service
// authorization decision goes through it.
package policy

import (
	"slices"
	"time"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type Capability string

const (
	ManageShops         Capability = "shop:manage"
	ViewAccounts        Capability = "account:view"
	ManageAccounts      Capability = "account:manage"
	TransferStaff       Capability = "account:transfer_staff"
	TransferAdmin       Capability = "account:transfer_admin"
	ViewAccountHistory  Capability = "account:history"
	ManageCatalog       Capability = "catalog:manage"
	ViewCatalog         Capability = "catalog:view"
	ReceiveStock        Capability = "stock:receive"
	Sell                Capability = "transaction:create"
	ViewTransactions    Capability = "transaction:view"
	ManageCustomers     Capability = "customer:manage"
	ViewDashboard       Capability = "dashboard:view"
	SubscribeStockFeeds Capability = "stock:subscribe"
)

type grant struct {
	caps     []Capability
	manages  []model.Role // roles this role registers, updates and deactivates
	audience []model.Role // account roles accepted by this role's login endpoint
}

var table = map[model.Role]grant{
	model.RoleSuperadmin: {
		caps:     []Capability{ManageShops, ViewAccounts, ManageAccounts, TransferStaff, TransferAdmin, ViewAccountHistory, ViewCatalog, SubscribeStockFeeds},
		manages:  []model.Role{model.RoleAdmin, model.RoleGudang, model.RoleKasir},
		audience: []model.Role{model.RoleSuperadmin},
	},
	model.RoleAdmin: {
		caps:     []Capability{ViewAccounts, ManageAccounts, ViewAccountHistory, ViewCatalog, ViewTransactions, ViewDashboard, SubscribeStockFeeds},
		manages:  []model.Role{model.RoleGudang, model.RoleKasir},
		audience: []model.Role{model.RoleAdmin},
	},
	model.RoleGudang: {
		caps:     []Capability{ManageCatalog, ViewCatalog, ReceiveStock, ViewDashboard, SubscribeStockFeeds},
		audience: []model.Role{model.RoleGudang, model.RoleAdmin},
	},
	model.RoleKasir: {
		caps:     []Capability{ViewCatalog, Sell, ViewTransactions, ManageCustomers, SubscribeStockFeeds},
		audience: []model.Role{model.RoleKasir, model.RoleAdmin},
	},
}

// Allows reports whether role holds capability.
func Allows(role model.Role, c Capability) bool {
	return slices.Contains(table[role].caps, c)
}

// CanLogin reports whether an account with role may sign in through the endpoint of endpoint.
// Admins may open the warehouse and cashier consoles of their shop.
func CanLogin(endpoint, role model.Role) bool {
	return slices.Contains(table[endpoint].audience, role)
}

// ManagedRoles lists the account roles actor may register, view, update and deactivate.
func ManagedRoles(actor model.Role) []model.Role {
	return slices.Clone(table[actor].manages)
}

func CanManage(actor, target model.Role) bool {
	return slices.Contains(table[actor].manages, target)
}

// ShopScoped reports whether the role only sees data of its own shop.
func ShopScoped(role model.Role) bool {
	return role != model.RoleSuperadmin
}

// SessionReuseWindow is how fresh an existing session must be for a new login
// to return it instead of rotating. Zero means always rotate.
func SessionReuseWindow(role model.Role, window time.Duration) time.Duration {
	if role == model.RoleSuperadmin {
		return window
	}
	return 0
}

// Capabilities returns the capability list of role for client side menus.
func Capabilities(role model.Role) []Capability {
	return slices.Clone(table[role].caps)
}
