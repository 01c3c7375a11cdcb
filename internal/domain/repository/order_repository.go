package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// OrderFilter criterios de listado de pedidos.
type OrderFilter struct {
	Type       entity.OrderType   // cero = todos
	Status     entity.OrderStatus // cero = todos
	SupplierID string
	Search     string // número de pedido o cliente
	From, To   *time.Time
	Limit      int
	Offset     int
}

// OrderRepository puerto de persistencia del agregado Order.
// GetByID y GetForUpdate cargan también los ítems y devuelven (nil, nil) si no existe.
type OrderRepository interface {
	// Create inserta el pedido y todos sus ítems.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Update persiste cabecera, estado, fechas y total (no los ítems).
	Update(ctx context.Context, order *entity.Order) error
	AddItem(ctx context.Context, item *entity.OrderItem) error
	UpdateItem(ctx context.Context, item *entity.OrderItem) error
	DeleteItem(ctx context.Context, orderID, itemID string) error
	// List no carga los ítems.
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	// Delete elimina el pedido junto con sus ítems.
	Delete(ctx context.Context, id string) error
}
