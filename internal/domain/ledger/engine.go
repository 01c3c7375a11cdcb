// Package ledger contiene el motor de movimientos de stock: calcula el stock anterior
// y nuevo de cada movimiento, lo valida y produce el par (movimiento, producto
// actualizado). No toca la base de datos; la atomicidad la da el TxRunner del caller.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Metadata datos descriptivos que acompañan al movimiento en el ledger.
type Metadata struct {
	UnitCost      *decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Reason        string
	Notes         string
	Actor         string
}

// Engine aplica movimientos sobre un producto ya leído (y bloqueado) por el caller.
type Engine struct {
	newID func() string
}

// NewEngine construye el motor con IDs uuid v4.
func NewEngine() *Engine {
	return &Engine{newID: func() string { return uuid.New().String() }}
}

// Apply calcula el movimiento, deja product.StockQuantity en el nuevo nivel y devuelve
// el registro a insertar. Si devuelve error, product queda intacto.
//
// IN y RETURN suman quantity; OUT resta y falla con InsufficientStockError si el
// resultado es negativo; ADJUSTMENT interpreta quantity como el nuevo nivel absoluto
// y guarda la magnitud de la diferencia.
func (e *Engine) Apply(product *entity.Product, t entity.MovementType, quantity int, meta Metadata, now time.Time) (*entity.StockMovement, error) {
	if product == nil || product.ID == "" {
		return nil, domain.NewValidationError("product", "producto requerido")
	}
	previous := product.StockQuantity
	newStock, magnitude, err := Compute(previous, t, quantity)
	if err != nil {
		if insufficient, ok := err.(*domain.InsufficientStockError); ok {
			insufficient.ProductID = product.ID
		}
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:            e.newID(),
		ProductID:     product.ID,
		Type:          t,
		Quantity:      magnitude,
		PreviousStock: previous,
		NewStock:      newStock,
		UnitCost:      meta.UnitCost,
		ReferenceType: meta.ReferenceType,
		ReferenceID:   meta.ReferenceID,
		Reason:        meta.Reason,
		Notes:         meta.Notes,
		CreatedBy:     meta.Actor,
		CreatedAt:     now,
	}
	product.StockQuantity = newStock
	product.UpdatedAt = now
	return mov, nil
}

// Compute aritmética pura del ledger: nuevo stock y magnitud a registrar.
func Compute(previous int, t entity.MovementType, quantity int) (newStock, magnitude int, err error) {
	if quantity < 0 {
		return 0, 0, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	switch t {
	case entity.MovementTypeIN, entity.MovementTypeRETURN:
		return previous + quantity, quantity, nil
	case entity.MovementTypeOUT:
		newStock = previous - quantity
		if newStock < 0 {
			return 0, 0, &domain.InsufficientStockError{Available: previous, Requested: quantity}
		}
		return newStock, quantity, nil
	case entity.MovementTypeADJUSTMENT:
		delta := quantity - previous
		if delta < 0 {
			delta = -delta
		}
		return quantity, delta, nil
	}
	return 0, 0, domain.NewValidationError("movement_type", fmt.Sprintf("tipo no soportado: %s", t))
}

// Replay reconstruye el stock desde initial aplicando movements en orden cronológico
// y verifica que cada instantánea encadene con la anterior.
func Replay(initial int, movements []*entity.StockMovement) (int, error) {
	running := initial
	for i, m := range movements {
		if m.PreviousStock != running {
			return running, fmt.Errorf("%w: movimiento %d (%s) parte de %d, se esperaba %d",
				domain.ErrConflict, i, m.ID, m.PreviousStock, running)
		}
		expected, magnitude, err := Compute(m.PreviousStock, m.Type, replayQuantity(m))
		if err != nil {
			return running, fmt.Errorf("movimiento %d (%s): %w", i, m.ID, err)
		}
		if expected != m.NewStock || magnitude != m.Quantity {
			return running, fmt.Errorf("%w: movimiento %d (%s) registra %d, el cálculo da %d",
				domain.ErrConflict, i, m.ID, m.NewStock, expected)
		}
		running = m.NewStock
	}
	return running, nil
}

// replayQuantity devuelve la cantidad de entrada que produjo el movimiento:
// la magnitud para IN/OUT/RETURN, el nivel final para ADJUSTMENT.
func replayQuantity(m *entity.StockMovement) int {
	if m.Type == entity.MovementTypeADJUSTMENT {
		return m.NewStock
	}
	return m.Quantity
}
