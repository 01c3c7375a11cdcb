package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse resumen de GET /api/reports/dashboard.
type DashboardResponse struct {
	TotalProducts        int             `json:"total_products"`
	ActiveSuppliers      int             `json:"active_suppliers"`
	LowStockProducts     int             `json:"low_stock_products"`
	PendingOrders        int             `json:"pending_orders"`
	TotalStockValue      decimal.Decimal `json:"total_stock_value"`
	MonthlyOrders        int             `json:"monthly_orders"`
	MonthlyDeliveredSale decimal.Decimal `json:"monthly_delivered_sales"`
	Month                string          `json:"month"` // ej: "Octubre 2026"
	GeneratedAt          time.Time       `json:"generated_at"`
}

// LowStockItem producto bajo mínimo con la reposición sugerida.
type LowStockItem struct {
	ProductID          string          `json:"product_id"`
	Reference          string          `json:"reference"`
	Name               string          `json:"name"`
	Category           string          `json:"category"`
	StockQuantity      int             `json:"stock_quantity"`
	MinStockLevel      int             `json:"min_stock_level"`
	IdealStock         int             `json:"ideal_stock"`         // min_stock_level * 1.5
	SuggestedOrderQty  int             `json:"suggested_order_qty"` // ideal - actual
	UnitPrice          decimal.Decimal `json:"unit_price"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	Priority           int             `json:"priority"` // 1 = más urgente
}

// CategoryValueDTO valor del inventario por categoría.
type CategoryValueDTO struct {
	Category     string          `json:"category"`
	ProductCount int             `json:"product_count"`
	TotalUnits   int             `json:"total_units"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// InventoryValueResponse salida de GET /api/reports/inventory-value.
type InventoryValueResponse struct {
	Categories []CategoryValueDTO `json:"categories"`
	TotalValue decimal.Decimal    `json:"total_value"`
}

// MovementReportQuery filtros del reporte de movimientos.
type MovementReportQuery struct {
	ProductID    string `query:"product_id"`
	MovementType string `query:"movement_type"`
	From         string `query:"from"`
	To           string `query:"to"`
	Limit        int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// MovementReportItem movimiento con datos del producto.
type MovementReportItem struct {
	StockMovementResponse
	ProductName      string `json:"product_name"`
	ProductReference string `json:"product_reference"`
}

// OrderSummaryItem pedidos por tipo y estado.
type OrderSummaryItem struct {
	OrderType string          `json:"order_type"`
	Status    string          `json:"status"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
}

// OrderSummaryResponse salida de GET /api/reports/orders.
type OrderSummaryResponse struct {
	From  time.Time          `json:"from"`
	To    time.Time          `json:"to"`
	Items []OrderSummaryItem `json:"items"`
}
