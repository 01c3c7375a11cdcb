package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func (r *ReportRepo) CatalogStats(ctx context.Context) (repository.CatalogStats, error) {
	var s repository.CatalogStats
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE stock_quantity <= min_stock_level),
		       COALESCE(SUM(stock_quantity * unit_price), 0)
		FROM products`).Scan(&s.TotalProducts, &s.LowStockCount, &s.TotalStockValue)
	if err != nil {
		return s, fmt.Errorf("catalog stats: %w", err)
	}
	return s, nil
}

func (r *ReportRepo) ActiveSuppliers(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("active suppliers: %w", err)
	}
	return n, nil
}

func (r *ReportRepo) OrderStats(ctx context.Context, from, to time.Time) (repository.OrderStats, error) {
	var s repository.OrderStats
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status IN ('pending', 'confirmed', 'shipped')),
		       COUNT(*) FILTER (WHERE order_date BETWEEN $1 AND $2),
		       COALESCE(SUM(total_amount) FILTER (
		           WHERE order_date BETWEEN $1 AND $2 AND order_type = 'sale' AND status = 'delivered'), 0)
		FROM orders`, from, to).Scan(&s.PendingOrders, &s.PeriodOrders, &s.PeriodDeliveredSales)
	if err != nil {
		return s, fmt.Errorf("order stats: %w", err)
	}
	return s, nil
}

func (r *ReportRepo) LowStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	w := &where{}
	w.add("stock_quantity <= min_stock_level")
	query := `SELECT ` + productColumns + ` FROM products` + w.String() + ` ORDER BY stock_quantity, name` + w.page(limit, 0)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("low stock: scan: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ReportRepo) InventoryValueByCategory(ctx context.Context) ([]repository.CategoryValue, error) {
	rows, err := r.q.Query(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(stock_quantity), 0), COALESCE(SUM(stock_quantity * unit_price), 0) AS value
		FROM products
		GROUP BY category
		ORDER BY value DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("inventory value: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.CategoryValue, error) {
		var cv repository.CategoryValue
		err := row.Scan(&cv.Category, &cv.ProductCount, &cv.TotalUnits, &cv.TotalValue)
		return cv, err
	})
	if err != nil {
		return nil, fmt.Errorf("inventory value: scan: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) MovementReport(ctx context.Context, f repository.MovementFilter) ([]repository.MovementReportRow, error) {
	w := movementWhere(f)
	query := `SELECT ` + movementColumns + `, p.name, p.reference
		FROM stock_movements m JOIN products p ON p.id = m.product_id` + w.String() +
		` ORDER BY m.created_at DESC, m.seq DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("movement report: %w", err)
	}
	defer rows.Close()
	var out []repository.MovementReportRow
	for rows.Next() {
		var row repository.MovementReportRow
		m, err := scanMovement(rows, &row.ProductName, &row.ProductReference)
		if err != nil {
			return nil, fmt.Errorf("movement report: scan: %w", err)
		}
		row.Movement = m
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *ReportRepo) OrderSummary(ctx context.Context, from, to time.Time) ([]repository.OrderSummaryRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT order_type, status, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE order_date BETWEEN $1 AND $2
		GROUP BY order_type, status`, from, to)
	if err != nil {
		return nil, fmt.Errorf("order summary: %w", err)
	}
	defer rows.Close()
	var out []repository.OrderSummaryRow
	for rows.Next() {
		var (
			row       repository.OrderSummaryRow
			typ, stat string
		)
		if err := rows.Scan(&typ, &stat, &row.Count, &row.Total); err != nil {
			return nil, fmt.Errorf("order summary: scan: %w", err)
		}
		if row.Type, err = entity.ParseOrderType(typ); err != nil {
			return nil, err
		}
		if row.Status, err = entity.ParseOrderStatus(stat); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortSummary(out)
	return out, nil
}

func sortSummary(rows []repository.OrderSummaryRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Type != rows[j].Type {
			return rows[i].Type < rows[j].Type
		}
		return rows[i].Status < rows[j].Status
	})
}
