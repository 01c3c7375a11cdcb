package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

// ReportHandler endpoints de reportes de solo lectura.
type ReportHandler struct {
	uc *analytics.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *analytics.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Dashboard godoc
// @Summary      Resumen general
// @Description  Totales del catálogo, pedidos abiertos y ventas entregadas del mes en curso.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos bajo mínimo con reposición sugerida
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de productos"  default(100)
// @Success      200    {array}  dto.LowStockItem
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// InventoryValue godoc
// @Summary      Valor del inventario por categoría
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryValueResponse
// @Router       /api/reports/inventory-value [get]
func (h *ReportHandler) InventoryValue(c *fiber.Ctx) error {
	out, err := h.uc.InventoryValue(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// StockMovements godoc
// @Summary      Reporte de movimientos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Producto"
// @Param        movement_type  query  string  false  "in | out | adjustment | return"
// @Param        from           query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to             query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit          query  int     false  "Límite (máx. 1000)"  default(100)
// @Success      200            {array}   dto.MovementReportItem
// @Failure      400            {object}  dto.ErrorResponse
// @Router       /api/reports/stock-movements [get]
func (h *ReportHandler) StockMovements(c *fiber.Ctx) error {
	var q dto.MovementReportQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.MovementReport(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Orders godoc
// @Summary      Pedidos por tipo y estado
// @Description  Sin fechas cubre los últimos 30 días.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200   {object}  dto.OrderSummaryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/orders [get]
func (h *ReportHandler) Orders(c *fiber.Ctx) error {
	out, err := h.uc.OrderSummary(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
