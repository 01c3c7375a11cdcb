package ordering

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner unidad atómica con repositorios de pedidos e inventario (entrega, altas, borrados).
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// StatusObserver recibe los cambios de estado ya confirmados.
type StatusObserver interface {
	StatusChanged(ctx context.Context, order *entity.Order, from entity.OrderStatus)
}

// DocumentLine línea del documento impreso, con los datos del producto resueltos.
type DocumentLine struct {
	Reference   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// OrderDocument datos necesarios para imprimir un pedido.
type OrderDocument struct {
	Order    *entity.Order
	Supplier *entity.Supplier // nil en ventas
	Lines    []DocumentLine
}

// DocumentGenerator genera el PDF de un pedido.
type DocumentGenerator interface {
	OrderPDF(ctx context.Context, doc OrderDocument) ([]byte, error)
}
