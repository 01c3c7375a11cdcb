package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

const (
	defaultMovementReportLimit = 100
	maxMovementReportLimit     = 1000
	defaultSummaryDays         = 30
)

// InventoryValue valor del stock por categoría y total.
func (uc *ReportUseCase) InventoryValue(ctx context.Context) (*dto.InventoryValueResponse, error) {
	var out dto.InventoryValueResponse
	err := uc.cache.FetchJSON(ctx, "reports:inventory-value", &out, func(ctx context.Context) (any, error) {
		rows, err := uc.repo.InventoryValueByCategory(ctx)
		if err != nil {
			return nil, err
		}
		res := &dto.InventoryValueResponse{Categories: make([]dto.CategoryValueDTO, 0, len(rows)), TotalValue: decimal.Zero}
		for _, r := range rows {
			res.Categories = append(res.Categories, dto.CategoryValueDTO{
				Category:     r.Category,
				ProductCount: r.ProductCount,
				TotalUnits:   r.TotalUnits,
				TotalValue:   r.TotalValue.Round(2),
			})
			res.TotalValue = res.TotalValue.Add(r.TotalValue)
		}
		res.TotalValue = res.TotalValue.Round(2)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MovementReport movimientos del ledger con datos del producto, más recientes primero.
func (uc *ReportUseCase) MovementReport(ctx context.Context, q dto.MovementReportQuery) ([]dto.MovementReportItem, error) {
	filter := repository.MovementFilter{ProductID: q.ProductID, Limit: q.Limit}
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementReportLimit
	}
	if filter.Limit > maxMovementReportLimit {
		return nil, domain.NewValidationError("limit", "máximo 1000")
	}
	if q.MovementType != "" {
		t, err := entity.ParseMovementType(q.MovementType)
		if err != nil {
			return nil, domain.NewValidationError("movement_type", err.Error())
		}
		filter.Type = t
	}
	from, to, err := dto.ParseDateRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	filter.From, filter.To = from, to

	rows, err := uc.repo.MovementReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementReportItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MovementReportItem{
			StockMovementResponse: dto.NewStockMovementResponse(r.Movement),
			ProductName:           r.ProductName,
			ProductReference:      r.ProductReference,
		})
	}
	return out, nil
}

// OrderSummary pedidos por tipo y estado en el período. Sin fechas: últimos 30 días.
func (uc *ReportUseCase) OrderSummary(ctx context.Context, fromStr, toStr string) (*dto.OrderSummaryResponse, error) {
	from, to, err := dto.ParseDateRange(fromStr, toStr)
	if err != nil {
		return nil, err
	}
	end := uc.now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -defaultSummaryDays)
	if from != nil {
		start = *from
	}
	if end.Before(start) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}

	rows, err := uc.repo.OrderSummary(ctx, start, end)
	if err != nil {
		return nil, err
	}
	res := &dto.OrderSummaryResponse{From: start, To: end, Items: make([]dto.OrderSummaryItem, 0, len(rows))}
	for _, r := range rows {
		res.Items = append(res.Items, dto.OrderSummaryItem{
			OrderType: r.Type.String(),
			Status:    r.Status.String(),
			Count:     r.Count,
			Total:     r.Total.Round(2),
		})
	}
	return res, nil
}
