package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Adjust    *inventory.AdjustStockUseCase
	Bulk      *inventory.BulkAdjustUseCase
	Alerts    *inventory.AlertUseCase
	Settings  *inventory.SettingsProvider
	Queries   *inventory.QueryUseCase
	Report    *inventory.StockReportUseCase
	Orders    *inventory.OrderCompletionUseCase
	JWTSecret string
	JWTIssuer string
	Log       *logger.Logger
}

// NewApp crea la app Fiber con recover, /health y /metrics. bodyLimitMB <= 0 usa el defecto de Fiber.
func NewApp(name string, bodyLimitMB int) *fiber.App {
	cfg := fiber.Config{
		AppName:      name,
		ErrorHandler: errorHandler,
	}
	if bodyLimitMB > 0 {
		cfg.BodyLimit = bodyLimitMB * 1024 * 1024
	}
	app := fiber.New(cfg)
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: err.Error()})
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Inventario (personal de la tienda)
	inv := api.Group("/inventory", RequireRole(entity.RoleAdmin, entity.RoleStaff))
	h := NewInventoryHandler(deps.Adjust, deps.Bulk, deps.Alerts, deps.Settings, deps.Queries, deps.Report, deps.Log)
	inv.Post("/adjustments", h.AdjustStock)
	inv.Post("/adjustments/quick", h.QuickAdjust)
	inv.Post("/bulk", h.BulkAdjust)
	inv.Post("/bulk/csv", h.BulkAdjustCSV)
	inv.Get("/transactions", h.ListTransactions)
	inv.Get("/products/:id/history", h.StockHistory)
	inv.Get("/alerts", h.ListAlerts)
	inv.Post("/alerts/:id/resolve", h.ResolveAlert)
	inv.Get("/settings", h.GetSettings)
	inv.Put("/settings", h.UpdateSettings)
	inv.Get("/summary", h.Summary)
	inv.Get("/low-stock", h.LowStock)
	inv.Get("/out-of-stock", h.OutOfStock)
	inv.Get("/report", h.StockReport)

	// Pedidos completados (checkout)
	orders := api.Group("/orders", RequireRole(entity.RoleService, entity.RoleAdmin))
	oh := NewOrderHandler(deps.Orders, deps.Log)
	orders.Post("/completed", oh.OrderCompleted)
}
