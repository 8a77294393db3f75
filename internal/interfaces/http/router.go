package http

import (
	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
	"github.com/Ey-luccas/luanova-sub000/internal/application/sales"
	"github.com/Ey-luccas/luanova-sub000/internal/application/usecase"
	"github.com/Ey-luccas/luanova-sub000/internal/interfaces/ws"
	"github.com/Ey-luccas/luanova-sub000/pkg/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	Movements *inventory.MovementUseCase
	Units     *inventory.UnitUseCase
	Sales     *sales.SalesUseCase
	Hub       *ws.Hub // nil desactiva /ws
	JWTSecret string
	Log       zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	stockWriters := RequireRole(jwt.RoleAdmin, jwt.RoleWarehouse)
	sellers := RequireRole(jwt.RoleAdmin, jwt.RoleSeller)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products.Post("/", stockWriters, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)

	// Units
	unitHandler := NewUnitHandler(deps.Units, deps.Log)
	products.Post("/:id/units", stockWriters, unitHandler.CreateUnits)
	products.Get("/:id/units", unitHandler.ListByProduct)
	units := protected.Group("/units")
	units.Get("/", unitHandler.ListByDate)
	units.Get("/dates", unitHandler.ListCreationDates)
	units.Post("/:id/sell", sellers, unitHandler.Sell)

	// Inventory movements
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.Log)
	invGroup.Post("/movements", stockWriters, inventoryHandler.RegisterMovement)
	invGroup.Post("/movements/batch", stockWriters, inventoryHandler.CreateBatch)
	invGroup.Get("/movements", inventoryHandler.ListMovements)

	// Sales
	salesGroup := protected.Group("/sales")
	salesHandler := NewSalesHandler(deps.Sales, deps.Log)
	salesGroup.Post("/", sellers, salesHandler.CreateSale)
	salesGroup.Post("/returns", sellers, salesHandler.CreateReturn)
	salesGroup.Get("/", salesHandler.ListSales)
	salesGroup.Get("/customers", salesHandler.FindByCustomer)

	// Stock en tiempo real
	if deps.Hub != nil {
		app.Get("/ws", ws.Upgrade, AuthMiddleware(deps.JWTSecret), deps.Hub.Handler())
	}
}
