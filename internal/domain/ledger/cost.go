package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// WeightedCost costo promedio ponderado tras una entrada:
// ((stock * costo) + (entrada * costoEntrada)) / (stock + entrada).
func WeightedCost(stock, cost, incoming, incomingCost decimal.Decimal) decimal.Decimal {
	sum := stock.Add(incoming)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return stock.Mul(cost).Add(incoming.Mul(incomingCost)).Div(sum)
}

// AverageCost recorre el ledger en orden cronológico y devuelve el costo promedio
// ponderado de las unidades en existencia. Solo las entradas con unit_cost mueven el
// promedio; las salidas y ajustes cambian el stock pero no el costo. nil si ninguna
// entrada trae costo.
func AverageCost(movements []*entity.StockMovement) *decimal.Decimal {
	var (
		avg   decimal.Decimal
		known bool
	)
	for _, m := range movements {
		if (m.Type == entity.MovementTypeIN || m.Type == entity.MovementTypeRETURN) && m.UnitCost != nil {
			avg = WeightedCost(decimal.NewFromInt(int64(m.PreviousStock)), avg,
				decimal.NewFromInt(int64(m.Quantity)), *m.UnitCost)
			known = true
		}
	}
	if !known {
		return nil
	}
	rounded := avg.Round(4)
	return &rounded
}
