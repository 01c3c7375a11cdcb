package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `m.id, m.product_id, m.movement_type, m.quantity, m.previous_stock, m.new_stock, m.unit_cost,
	m.reference_type, m.reference_id, m.reason, m.notes, m.created_by, m.created_at`

// StockMovementRepo ledger sobre PostgreSQL. Solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento. seq lo asigna la base.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, previous_stock, new_stock, unit_cost,
			reference_type, reference_id, reason, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Type.String(), m.Quantity, m.PreviousStock, m.NewStock, m.UnitCost,
		m.ReferenceType, m.ReferenceID, m.Reason, m.Notes, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError("producto", m.ProductID)
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func movementWhere(f repository.MovementFilter) *where {
	w := &where{}
	if f.ProductID != "" {
		w.add("m.product_id = ?", f.ProductID)
	}
	if f.Type != 0 {
		w.add("m.movement_type = ?", f.Type.String())
	}
	if f.From != nil {
		w.add("m.created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("m.created_at <= ?", *f.To)
	}
	return w
}

// List del más reciente al más antiguo.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	w := movementWhere(f)
	query := `SELECT ` + movementColumns + ` FROM stock_movements m` + w.String() +
		` ORDER BY m.seq DESC` + w.page(f.Limit, f.Offset)
	return r.query(ctx, "list stock movements", query, w.args...)
}

// ListChronological ledger completo del producto en orden de inserción.
func (r *StockMovementRepo) ListChronological(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements m WHERE m.product_id = $1 ORDER BY m.seq`
	return r.query(ctx, "ledger replay", query, productID)
}

func (r *StockMovementRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// scanMovement escanea las columnas de movementColumns más las extra indicadas.
func scanMovement(row pgx.Row, extra ...any) (*entity.StockMovement, error) {
	var (
		m   entity.StockMovement
		typ string
	)
	dest := append([]any{
		&m.ID, &m.ProductID, &typ, &m.Quantity, &m.PreviousStock, &m.NewStock, &m.UnitCost,
		&m.ReferenceType, &m.ReferenceID, &m.Reason, &m.Notes, &m.CreatedBy, &m.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t, err := entity.ParseMovementType(typ)
	if err != nil {
		return nil, err
	}
	m.Type = t
	return &m, nil
}
