package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *catalog.ProductUseCase
	SupplierUC *catalog.SupplierUseCase
	MovementUC *inventory.MovementUseCase
	OrderUC    *ordering.OrderUseCase
	DocumentUC *ordering.DocumentUseCase // opcional
	ReportUC   *analytics.ReportUseCase
	JWTSecret  string
	AdminRoles []string // vacío = sin verificación de rol en los DELETE

	// Health verifica dependencias externas (DB); nil = siempre sano.
	Health func(ctx context.Context) error
	// Metrics handler de Prometheus; nil = /metrics no se expone.
	Metrics http.Handler
}

// NewApp crea la app Fiber con recover, log de peticiones y el manejador de errores de dominio.
func NewApp(name string, log *logger.Logger, observer RequestObserver) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(RequestLogger(log, observer))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.Health))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	adminOnly := func(c *fiber.Ctx) error { return c.Next() }
	if len(deps.AdminRoles) > 0 {
		adminOnly = RequireRole(deps.AdminRoles...)
	}

	// Products + ledger
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.MovementUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/categories", productHandler.Categories)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Post("/:id/stock", inventoryHandler.RegisterMovement)
	products.Get("/:id/movements", inventoryHandler.ListMovements)
	products.Get("/:id/reconcile", inventoryHandler.Reconcile)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", adminOnly, supplierHandler.Delete)
	suppliers.Post("/:id/toggle-status", supplierHandler.ToggleStatus)
	suppliers.Get("/:id/products", supplierHandler.Products)

	// Orders
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.DocumentUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", adminOnly, orderHandler.Delete)
	orders.Put("/:id/status", orderHandler.UpdateStatus)
	orders.Post("/:id/items", orderHandler.AddItem)
	orders.Put("/:id/items/:itemId", orderHandler.UpdateItem)
	orders.Delete("/:id/items/:itemId", orderHandler.RemoveItem)
	orders.Post("/:id/recompute", orderHandler.Recompute)
	orders.Get("/:id/pdf", orderHandler.PDF)

	// Reports
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/inventory-value", reportHandler.InventoryValue)
	reports.Get("/stock-movements", reportHandler.StockMovements)
	reports.Get("/orders", reportHandler.Orders)
}

// healthHandler godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /health [get]
func healthHandler(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				requestLog(c).Warn().Err(err).Msg("health check falló")
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNHEALTHY", Message: "base de datos no disponible"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
