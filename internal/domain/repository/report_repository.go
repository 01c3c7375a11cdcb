package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CatalogStats agregados del catálogo para el dashboard.
type CatalogStats struct {
	TotalProducts   int
	LowStockCount   int
	TotalStockValue decimal.Decimal // Σ stock_quantity × unit_price
}

// OrderStats agregados de pedidos. Pending cuenta pending/confirmed/shipped sin importar la fecha;
// el resto se limita al período consultado.
type OrderStats struct {
	PendingOrders        int
	PeriodOrders         int
	PeriodDeliveredSales decimal.Decimal // Σ total_amount de ventas entregadas
}

// CategoryValue valor del inventario agrupado por categoría.
type CategoryValue struct {
	Category     string
	ProductCount int
	TotalUnits   int
	TotalValue   decimal.Decimal
}

// MovementReportRow movimiento con los datos del producto para el reporte.
type MovementReportRow struct {
	Movement         *entity.StockMovement
	ProductName      string
	ProductReference string
}

// OrderSummaryRow número de pedidos e importe por tipo y estado.
type OrderSummaryRow struct {
	Type   entity.OrderType
	Status entity.OrderStatus
	Count  int
	Total  decimal.Decimal
}

// ReportRepository consultas de solo lectura para reportes. No modifica datos.
type ReportRepository interface {
	CatalogStats(ctx context.Context) (CatalogStats, error)
	ActiveSuppliers(ctx context.Context) (int, error)
	OrderStats(ctx context.Context, from, to time.Time) (OrderStats, error)
	// LowStock productos en o bajo su mínimo, de menor a mayor stock.
	LowStock(ctx context.Context, limit int) ([]*entity.Product, error)
	InventoryValueByCategory(ctx context.Context) ([]CategoryValue, error)
	MovementReport(ctx context.Context, filter MovementFilter) ([]MovementReportRow, error)
	OrderSummary(ctx context.Context, from, to time.Time) ([]OrderSummaryRow, error)
}
