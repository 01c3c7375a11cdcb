package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

const (
	defaultLowStockLimit = 100
	maxLowStockLimit     = 500
)

var idealStockFactor = decimal.NewFromFloat(1.5)

// LowStock devuelve los productos en o bajo su mínimo con la cantidad sugerida de pedido
// y un ranking de prioridad.
func (uc *ReportUseCase) LowStock(ctx context.Context, limit int) ([]dto.LowStockItem, error) {
	if limit <= 0 {
		limit = defaultLowStockLimit
	}
	if limit > maxLowStockLimit {
		limit = maxLowStockLimit
	}
	var out []dto.LowStockItem
	key := fmt.Sprintf("reports:low-stock:%d", limit)
	err := uc.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		products, err := uc.repo.LowStock(ctx, limit)
		if err != nil {
			return nil, err
		}
		return replenishmentList(products), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// replenishmentList calcula stock ideal (mínimo × 1.5), cantidad sugerida y prioridad.
// Orden: menor cobertura del mínimo primero, luego mayor déficit absoluto.
func replenishmentList(products []*entity.Product) []dto.LowStockItem {
	items := make([]dto.LowStockItem, 0, len(products))
	for _, p := range products {
		ideal := int(decimal.NewFromInt(int64(p.MinStockLevel)).Mul(idealStockFactor).Ceil().IntPart())
		suggested := ideal - p.StockQuantity
		if suggested < 0 {
			suggested = 0
		}
		items = append(items, dto.LowStockItem{
			ProductID:          p.ID,
			Reference:          p.Reference,
			Name:               p.Name,
			Category:           p.Category,
			StockQuantity:      p.StockQuantity,
			MinStockLevel:      p.MinStockLevel,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitPrice:          p.UnitPrice,
			EstimatedOrderCost: p.UnitPrice.Mul(decimal.NewFromInt(int64(suggested))).Round(2),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ca, cb := coverage(a), coverage(b)
		if !ca.Equal(cb) {
			return ca.LessThan(cb)
		}
		defA := a.MinStockLevel - a.StockQuantity
		defB := b.MinStockLevel - b.StockQuantity
		if defA != defB {
			return defA > defB
		}
		return a.Reference < b.Reference
	})

	// 1 = más urgente
	for i := range items {
		items[i].Priority = i + 1
	}
	return items
}

// coverage fracción del mínimo cubierta por el stock actual.
func coverage(it dto.LowStockItem) decimal.Decimal {
	if it.MinStockLevel <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(it.StockQuantity)).Div(decimal.NewFromInt(int64(it.MinStockLevel)))
}
