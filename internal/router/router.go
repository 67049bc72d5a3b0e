// Package router owns the route table. Every protected route is gated by a
// capability from the policy table, never by comparing role names.
package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/handler"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/middleware"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/ws"
)

type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Shops     service.ShopService
	Catalog   service.CatalogService
	Inventory service.InventoryService
	Sales     service.SalesService
	Customers service.CustomerService
	Dashboard service.DashboardService
}

// Deps is everything the route table needs besides the services.
// LoginLimit may be nil to disable login throttling.
type Deps struct {
	Hub        *ws.Hub
	LoginLimit fiber.Handler
}

func Setup(app *fiber.App, s Services, d Deps) {
	var (
		authH      = handler.NewAuthHandler(s.Auth, s.Users)
		accountH   = handler.NewAccountHandler(s.Users)
		shopH      = handler.NewShopHandler(s.Shops)
		catalogH   = handler.NewCatalogHandler(s.Catalog)
		inventoryH = handler.NewInventoryHandler(s.Inventory)
		salesH     = handler.NewSalesHandler(s.Sales)
		customerH  = handler.NewCustomerHandler(s.Customers)
		dashH      = handler.NewDashboardHandler(s.Dashboard)
	)
	auth := middleware.RequireAuth(s.Auth)
	can := middleware.RequireCapability

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": fiber.Map{"status": "ok"}})
	})

	// ============ PUBLIC ROUTES ============
	app.Post("/registrasi/superadmin", authH.RegisterSuperadmin)
	login := []fiber.Handler{}
	if d.LoginLimit != nil {
		login = append(login, d.LoginLimit)
	}
	app.Post("/login/:role", append(login, authH.Login)...)

	// ============ ANY AUTHENTICATED ROLE ============
	app.Post("/logout", auth, authH.Logout)
	app.Get("/profile", auth, authH.Profile)
	app.Patch("/update-profile", auth, authH.UpdateProfile)
	app.Post("/change-password", auth, authH.ChangePassword)
	app.Get("/roles", auth, authH.Roles)
	app.Post("/registrasi/:role", auth, can(policy.ManageAccounts), authH.Register)

	// ============ SUPERADMIN ============
	sa := app.Group("/superadmin", auth)
	sa.Post("/create-shop", can(policy.ManageShops), shopH.Create)
	sa.Get("/shops", can(policy.ManageShops), shopH.List)
	sa.Get("/shops/:id", can(policy.ManageShops), shopH.Get)
	sa.Get("/shops/:id/history", can(policy.ManageShops), shopH.History)
	sa.Get("/shops/:id/staff", can(policy.ManageShops), shopH.Staff)
	sa.Get("/shops/:id/products", can(policy.ManageShops), shopH.Products)
	sa.Patch("/update-shop/:id", can(policy.ManageShops), shopH.Update)
	sa.Delete("/delete-shop/:id", can(policy.ManageShops), shopH.Delete)

	sa.Get("/accounts", can(policy.ViewAccounts), accountH.List)
	sa.Get("/accounts/:id", can(policy.ViewAccounts), accountH.Get)
	sa.Get("/accounts/:id/history", can(policy.ViewAccountHistory), accountH.History)
	sa.Patch("/update-account/:id", can(policy.ManageAccounts), accountH.Update)
	sa.Delete("/delete-account/:id", can(policy.ManageAccounts), accountH.Delete)
	sa.Post("/transfer-staff", can(policy.TransferStaff), accountH.TransferStaff)
	sa.Post("/transfer-admin", can(policy.TransferAdmin), accountH.TransferAdmin)

	// ============ ADMIN ============
	ad := app.Group("/admin", auth)
	ad.Get("/staff", can(policy.ViewAccounts), accountH.List)
	ad.Get("/staff/:id", can(policy.ViewAccounts), accountH.Get)
	ad.Get("/staff/:id/history", can(policy.ViewAccountHistory), accountH.History)
	ad.Patch("/update-staff/:id", can(policy.ManageAccounts), accountH.Update)
	ad.Delete("/delete-staff/:id", can(policy.ManageAccounts), accountH.Delete)
	ad.Get("/products", can(policy.ViewCatalog), catalogH.ListProducts)
	ad.Get("/products/:id", can(policy.ViewCatalog), catalogH.GetProduct)
	ad.Get("/transactions", can(policy.ViewTransactions), salesH.List)
	ad.Get("/transactions/:id", can(policy.ViewTransactions), salesH.Get)
	ad.Get("/dashboard/stats", can(policy.ViewDashboard), dashH.GetDashboardStats)
	ad.Get("/dashboard/stock-movement", can(policy.ViewDashboard), dashH.GetStockMovement)

	// ============ GUDANG ============
	gd := app.Group("/gudang", auth)
	gd.Post("/products/create-product", can(policy.ReceiveStock), inventoryH.Receive)
	gd.Get("/products", can(policy.ViewCatalog), catalogH.ListProducts)
	gd.Get("/products/:id", can(policy.ViewCatalog), catalogH.GetProduct)
	gd.Get("/products/:id/history", can(policy.ViewCatalog), catalogH.ProductHistory)
	gd.Patch("/update-product/:id", can(policy.ManageCatalog), catalogH.UpdateProduct)
	gd.Delete("/delete-product/:id", can(policy.ManageCatalog), catalogH.DeleteProduct)

	gd.Get("/product-types", can(policy.ViewCatalog), catalogH.ListTypes)
	gd.Post("/create-product-type", can(policy.ManageCatalog), catalogH.CreateType)

	gd.Post("/create-distributor", can(policy.ManageCatalog), catalogH.CreateDistributor)
	gd.Get("/distributors", can(policy.ViewCatalog), catalogH.ListDistributors)
	gd.Get("/distributors/:id", can(policy.ViewCatalog), catalogH.GetDistributor)
	gd.Get("/distributors/:id/history", can(policy.ViewCatalog), catalogH.DistributorHistory)
	gd.Patch("/update-distributor/:id", can(policy.ManageCatalog), catalogH.UpdateDistributor)
	gd.Delete("/delete-distributor/:id", can(policy.ManageCatalog), catalogH.DeleteDistributor)

	gd.Get("/stock-in", can(policy.ReceiveStock), inventoryH.ListStockIn)
	gd.Get("/stock-in/:id", can(policy.ReceiveStock), inventoryH.GetStockIn)
	gd.Get("/dashboard/stats", can(policy.ViewDashboard), dashH.GetDashboardStats)
	gd.Get("/dashboard/stock-movement", can(policy.ViewDashboard), dashH.GetStockMovement)

	// ============ KASIR ============
	ks := app.Group("/kasir", auth)
	ks.Get("/products", can(policy.ViewCatalog), catalogH.ListProducts)
	ks.Get("/products/:id", can(policy.ViewCatalog), catalogH.GetProduct)
	ks.Post("/transactions/create-transaction", can(policy.Sell), salesH.CreateTransaction)
	ks.Get("/transactions", can(policy.ViewTransactions), salesH.List)
	ks.Get("/transactions/:id", can(policy.ViewTransactions), salesH.Get)
	ks.Get("/transactions/:id/receipt", can(policy.ViewTransactions), salesH.Receipt)
	ks.Post("/transactions/:id/installments", can(policy.Sell), salesH.AddInstallment)

	ks.Post("/create-customer", can(policy.ManageCustomers), customerH.Create)
	ks.Get("/customers", can(policy.ManageCustomers), customerH.List)
	ks.Get("/customers/:id", can(policy.ManageCustomers), customerH.Get)
	ks.Get("/customers/:id/history", can(policy.ManageCustomers), customerH.History)
	ks.Patch("/update-customer/:id", can(policy.ManageCustomers), customerH.Update)
	ks.Delete("/delete-customer/:id", can(policy.ManageCustomers), customerH.Delete)

	// ============ REALTIME ============
	if d.Hub != nil {
		wsH := handler.NewWSHandler(s.Auth, d.Hub)
		app.Get("/ws", wsH.Upgrade, wsH.Serve())
	}
}
