package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductFilter criterios de listado de productos. Los campos vacíos no filtran.
type ProductFilter struct {
	Category   string
	SupplierID string
	Search     string // nombre o referencia, sin distinguir mayúsculas
	LowStock   bool   // stock_quantity <= min_stock_level
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetByReference devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByReference(ctx context.Context, reference string) (*entity.Product, error)
	// Update modifica los campos de catálogo; nunca stock_quantity.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock solo lo invoca el flujo del ledger, junto al movimiento que lo justifica.
	UpdateStock(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
	Categories(ctx context.Context) ([]string, error)
	HasOrderItems(ctx context.Context, productID string) (bool, error)
	// HasMovements indica si el producto tiene historial en el ledger (que nunca se borra).
	HasMovements(ctx context.Context, productID string) (bool, error)
	Delete(ctx context.Context, id string) error
}
