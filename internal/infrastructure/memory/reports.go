package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregados calculados sobre el estado publicado.
type ReportRepo struct {
	h *handle
}

func (r *ReportRepo) CatalogStats(_ context.Context) (repository.CatalogStats, error) {
	stats := repository.CatalogStats{TotalStockValue: decimal.Zero}
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			stats.TotalProducts++
			if p.IsLowStock() {
				stats.LowStockCount++
			}
			stats.TotalStockValue = stats.TotalStockValue.Add(p.StockValue())
		}
		return nil
	})
	return stats, err
}

func (r *ReportRepo) ActiveSuppliers(_ context.Context) (int, error) {
	var n int
	err := r.h.read(func(st *state) error {
		for _, s := range st.suppliers {
			if s.IsActive {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ReportRepo) OrderStats(_ context.Context, from, to time.Time) (repository.OrderStats, error) {
	stats := repository.OrderStats{PeriodDeliveredSales: decimal.Zero}
	err := r.h.read(func(st *state) error {
		for _, o := range st.orders {
			if !o.Status.IsTerminal() {
				stats.PendingOrders++
			}
			if o.OrderDate.Before(from) || o.OrderDate.After(to) {
				continue
			}
			stats.PeriodOrders++
			if o.Type == entity.OrderTypeSALE && o.Status == entity.OrderStatusDELIVERED {
				stats.PeriodDeliveredSales = stats.PeriodDeliveredSales.Add(o.TotalAmount)
			}
		}
		return nil
	})
	return stats, err
}

func (r *ReportRepo) LowStock(_ context.Context, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			if p.IsLowStock() {
				out = append(out, copyProduct(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQuantity == out[j].StockQuantity {
			return out[i].Name < out[j].Name
		}
		return out[i].StockQuantity < out[j].StockQuantity
	})
	return page(out, limit, 0), err
}

func (r *ReportRepo) InventoryValueByCategory(_ context.Context) ([]repository.CategoryValue, error) {
	byCategory := make(map[string]*repository.CategoryValue)
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			cv, ok := byCategory[p.Category]
			if !ok {
				cv = &repository.CategoryValue{Category: p.Category, TotalValue: decimal.Zero}
				byCategory[p.Category] = cv
			}
			cv.ProductCount++
			cv.TotalUnits += p.StockQuantity
			cv.TotalValue = cv.TotalValue.Add(p.StockValue())
		}
		return nil
	})
	out := make([]repository.CategoryValue, 0, len(byCategory))
	for _, k := range sortedKeys(byCategory) {
		out = append(out, *byCategory[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalValue.GreaterThan(out[j].TotalValue) })
	return out, err
}

func (r *ReportRepo) MovementReport(_ context.Context, filter repository.MovementFilter) ([]repository.MovementReportRow, error) {
	var out []repository.MovementReportRow
	err := r.h.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if !matchMovement(m, filter) {
				continue
			}
			cp := *m
			row := repository.MovementReportRow{Movement: &cp}
			if p, ok := st.products[m.ProductID]; ok {
				row.ProductName = p.Name
				row.ProductReference = p.Reference
			}
			out = append(out, row)
		}
		return nil
	})
	return page(out, filter.Limit, filter.Offset), err
}

func (r *ReportRepo) OrderSummary(_ context.Context, from, to time.Time) ([]repository.OrderSummaryRow, error) {
	type key struct {
		t entity.OrderType
		s entity.OrderStatus
	}
	acc := make(map[key]*repository.OrderSummaryRow)
	err := r.h.read(func(st *state) error {
		for _, o := range st.orders {
			if o.OrderDate.Before(from) || o.OrderDate.After(to) {
				continue
			}
			k := key{o.Type, o.Status}
			row, ok := acc[k]
			if !ok {
				row = &repository.OrderSummaryRow{Type: o.Type, Status: o.Status, Total: decimal.Zero}
				acc[k] = row
			}
			row.Count++
			row.Total = row.Total.Add(o.TotalAmount)
		}
		return nil
	})
	out := make([]repository.OrderSummaryRow, 0, len(acc))
	for _, row := range acc {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type == out[j].Type {
			return out[i].Status < out[j].Status
		}
		return out[i].Type < out[j].Type
	})
	return out, err
}
