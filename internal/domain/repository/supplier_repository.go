package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// SupplierFilter criterios de listado de proveedores.
type SupplierFilter struct {
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}

// SupplierRepository puerto de persistencia para Supplier. GetByID devuelve (nil, nil) si no existe.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	List(ctx context.Context, filter SupplierFilter) ([]*entity.Supplier, error)
	HasProducts(ctx context.Context, supplierID string) (bool, error)
	HasOrders(ctx context.Context, supplierID string) (bool, error)
	Delete(ctx context.Context, id string) error
}
