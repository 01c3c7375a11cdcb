package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto. StockQuantity es el stock inicial
// y queda registrado como movimiento IN.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   string          `json:"description" validate:"max=2000"`
	Category      string          `json:"category" validate:"max=100"`
	Reference     string          `json:"reference" validate:"required,min=1,max=100"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	MinStockLevel *int            `json:"min_stock_level" validate:"omitempty,min=0"`
	SupplierID    *string         `json:"supplier_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest campos de catálogo; el stock solo cambia vía movimientos.
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" validate:"omitempty,max=2000"`
	Category      *string          `json:"category" validate:"omitempty,max=100"`
	Reference     *string          `json:"reference" validate:"omitempty,min=1,max=100"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	MinStockLevel *int             `json:"min_stock_level" validate:"omitempty,min=0"`
	SupplierID    *string          `json:"supplier_id"` // "" desvincula el proveedor
}

// ProductQuery filtros de GET /api/products.
type ProductQuery struct {
	PageRequest
	Category   string `query:"category"`
	SupplierID string `query:"supplier_id"`
	Search     string `query:"search"`
	LowStock   bool   `query:"low_stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Reference     string          `json:"reference"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	SupplierID    *string         `json:"supplier_id"`
	IsLowStock    bool            `json:"is_low_stock"`
	StockValue    decimal.Decimal `json:"stock_value"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// NewProductResponse mapea la entidad a la salida HTTP.
func NewProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Reference:     p.Reference,
		UnitPrice:     p.UnitPrice,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		SupplierID:    p.SupplierID,
		IsLowStock:    p.IsLowStock(),
		StockValue:    p.StockValue(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewProductList mapea una página de productos.
func NewProductList(list []*entity.Product, page PageResponse) *ProductListResponse {
	items := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *NewProductResponse(p))
	}
	return &ProductListResponse{Items: items, Page: page}
}
