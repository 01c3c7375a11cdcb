// Package ordering reglas puras del pedido: cálculo del total y máquina de estados.
package ordering

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RecomputeTotal suma quantity × unit_price de los ítems actuales y lo guarda en el pedido.
// No se mantiene solo: quien cambie el conjunto de ítems debe invocarlo.
func RecomputeTotal(order *entity.Order) decimal.Decimal {
	total := decimal.Zero
	for _, it := range order.Items {
		total = total.Add(it.CalculateTotalPrice())
	}
	order.TotalAmount = total
	return total
}

// CheckTransition valida un cambio de estado. Desde un estado no terminal se puede ir a
// cualquier estado (la tabla no es secuencial); desde DELIVERED o CANCELLED a ninguno.
func CheckTransition(from, to entity.OrderStatus) error {
	if !to.Valid() {
		return domain.NewValidationError("status", fmt.Sprintf("estado inválido: %s", to))
	}
	if from.IsTerminal() {
		return &domain.InvalidTransitionError{From: from.String(), To: to.String()}
	}
	return nil
}

// CheckMutable los pedidos terminales no admiten ediciones de campos ni de ítems.
func CheckMutable(order *entity.Order) error {
	if order.Status.IsTerminal() {
		return fmt.Errorf("%w: el pedido %s está %s", domain.ErrConflict, order.OrderNumber, order.Status)
	}
	return nil
}

// CheckDeletable solo los pedidos entregados quedan protegidos contra el borrado.
func CheckDeletable(order *entity.Order) error {
	if order.Status == entity.OrderStatusDELIVERED {
		return fmt.Errorf("%w: no se puede eliminar un pedido entregado", domain.ErrConflict)
	}
	return nil
}

// FulfillmentMovement tipo de movimiento que genera la entrega según el tipo de pedido.
func FulfillmentMovement(t entity.OrderType) (entity.MovementType, error) {
	switch t {
	case entity.OrderTypePURCHASE:
		return entity.MovementTypeIN, nil
	case entity.OrderTypeSALE:
		return entity.MovementTypeOUT, nil
	}
	return 0, domain.NewValidationError("order_type", fmt.Sprintf("tipo inválido: %s", t))
}

// FulfillmentReason motivo legible que queda en el ledger por cada línea entregada.
func FulfillmentReason(order *entity.Order) string {
	switch order.Type {
	case entity.OrderTypePURCHASE:
		return "receipt of order " + order.OrderNumber
	case entity.OrderTypeSALE:
		return "sale of order " + order.OrderNumber
	}
	return "order " + order.OrderNumber
}
