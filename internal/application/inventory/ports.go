package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad atómica, pasando repositorios atados a ella.
// Si fn devuelve error no queda nada persistido. Los errores ajenos al dominio salen como
// domain.PersistenceError.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockObserver recibe cada movimiento ya confirmado (métricas, invalidación de caché).
// No puede alterar el resultado de la operación.
type StockObserver interface {
	MovementCommitted(ctx context.Context, movement *entity.StockMovement)
}
