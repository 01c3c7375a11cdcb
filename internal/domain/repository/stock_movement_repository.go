package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementFilter criterios del historial de movimientos.
type MovementFilter struct {
	ProductID string
	Type      entity.MovementType // cero = todos
	From, To  *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository puerto del ledger. Solo inserta y lee: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve los movimientos del más reciente al más antiguo.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// ListChronological devuelve todo el ledger de un producto en orden de inserción.
	ListChronological(ctx context.Context, productID string) ([]*entity.StockMovement, error)
}
