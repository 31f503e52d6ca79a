package main

import (
	"perfume-pos/internal/handler"
	"perfume-pos/internal/middleware"
	"perfume-pos/internal/model"
	"perfume-pos/internal/repository"
	"perfume-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type routeDeps struct {
	tokens    *jwt.Manager
	users     repository.UserRepository
	auth      *handler.AuthHandler
	products  *handler.ProductHandler
	sales     *handler.SaleHandler
	purchases *handler.PurchaseHandler
	stats     *handler.StatsHandler
	staff     *handler.UserHandler
}

func registerRoutes(app *fiber.App, d routeDeps) {
	api := app.Group("/api/v1")
	requirePriv := middleware.RequirePrivilege

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ============ PUBLIC ROUTES ============
	api.Post("/auth/login", d.auth.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(d.tokens, d.users))
	protected.Get("/auth/me", d.auth.Me)

	// Product Routes (static paths before /:id)
	protected.Get("/products", requirePriv(model.PrivProductView), d.products.GetProducts)
	protected.Get("/products/low-stock", requirePriv(model.PrivProductView), d.products.GetLowStock)
	protected.Get("/products/best-sellers", requirePriv(model.PrivStatsView), d.products.GetBestSellers)
	protected.Get("/products/:id", requirePriv(model.PrivProductView), d.products.GetProduct)
	protected.Post("/products", requirePriv(model.PrivProductManage), d.products.CreateProduct)
	protected.Put("/products/:id", requirePriv(model.PrivProductManage), d.products.UpdateProduct)
	protected.Patch("/products/:id/stock", requirePriv(model.PrivProductManage), d.products.AdjustStock)
	protected.Post("/products/:id/decants", requirePriv(model.PrivProductManage), d.products.CreateDecant)

	// Sale Routes
	protected.Post("/sales", requirePriv(model.PrivSaleCreate), d.sales.CreateSale)
	protected.Get("/sales", requirePriv(model.PrivSaleView), d.sales.GetSales)
	protected.Get("/sales/ecommerce", requirePriv(model.PrivSaleView), d.sales.GetEcommerceSales)
	protected.Get("/sales/:id", requirePriv(model.PrivSaleView), d.sales.GetSale)
	protected.Patch("/sales/:id/credit", requirePriv(model.PrivSaleCredit), d.sales.ApplyCreditPayment)
	protected.Patch("/sales/:id/ecommerce-status", requirePriv(model.PrivSaleEcommerce), d.sales.UpdateEcommerceStatus)

	// Purchase Routes
	protected.Get("/purchases", requirePriv(model.PrivPurchaseView), d.purchases.GetPurchases)
	protected.Post("/purchases", requirePriv(model.PrivPurchaseCreate), d.purchases.CreatePurchase)

	// Stats Routes
	protected.Get("/stats/daily", requirePriv(model.PrivStatsView), d.stats.GetDaily)
	protected.Get("/stats/monthly", requirePriv(model.PrivStatsView), d.stats.GetMonthly)
	protected.Get("/stats/range", requirePriv(model.PrivStatsView), d.stats.GetRange)
	protected.Get("/stats/inventory", requirePriv(model.PrivStatsView), d.stats.GetInventory)

	// Staff Routes
	protected.Get("/users", requirePriv(model.PrivUserManage), d.staff.GetUsers)
	protected.Get("/users/:id", requirePriv(model.PrivUserManage), d.staff.GetUser)
	protected.Post("/users", requirePriv(model.PrivUserManage), d.staff.CreateUser)
	protected.Put("/users/:id", requirePriv(model.PrivUserManage), d.staff.UpdateUser)
}
