package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo.
// StockQuantity es el nivel autoritativo actual; solo el motor del ledger lo modifica,
// siempre junto con el StockMovement que lo justifica.
type Product struct {
	ID            string
	Name          string
	Description   string
	Category      string
	Reference     string // única en todo el catálogo
	UnitPrice     decimal.Decimal
	StockQuantity int
	MinStockLevel int
	SupplierID    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DefaultMinStockLevel umbral de stock bajo cuando no se indica otro.
const DefaultMinStockLevel = 10

// IsLowStock indica si el producto está en o por debajo de su umbral mínimo.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

// StockValue valor del inventario a precio unitario.
func (p *Product) StockValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}
