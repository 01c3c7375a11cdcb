package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, order_type, status, supplier_id, customer_name, customer_email,
	customer_phone, order_date, expected_delivery_date, actual_delivery_date, total_amount, notes,
	created_at, updated_at`

// OrderRepo agregado Order (cabecera + ítems) sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
// Create y Delete tocan varias filas: usarlos dentro de una tx.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.Type.String(), o.Status.String(), o.SupplierID, o.CustomerName, o.CustomerEmail,
		o.CustomerPhone, o.OrderDate, o.ExpectedDeliveryDate, o.ActualDeliveryDate, o.TotalAmount, o.Notes,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError("proveedor", deref(o.SupplierID))
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for _, it := range o.Items {
		if err := r.AddItem(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del pedido hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) get(ctx context.Context, query, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o.Items, err = r.items(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) items(ctx context.Context, orderID string) ([]*entity.OrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY seq`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var items []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET status = $2, customer_name = $3, customer_email = $4, customer_phone = $5,
			expected_delivery_date = $6, actual_delivery_date = $7, total_amount = $8, notes = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		o.ID, o.Status.String(), o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.ExpectedDeliveryDate, o.ActualDeliveryDate, o.TotalAmount, o.Notes, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("pedido", o.ID)
	}
	return nil
}

func (r *OrderRepo) AddItem(ctx context.Context, it *entity.OrderItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError("producto o pedido", it.ProductID)
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *OrderRepo) UpdateItem(ctx context.Context, it *entity.OrderItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE order_items SET quantity = $3, unit_price = $4, total_price = $5
		WHERE id = $1 AND order_id = $2`,
		it.ID, it.OrderID, it.Quantity, it.UnitPrice, it.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("ítem", it.ID)
	}
	return nil
}

func (r *OrderRepo) DeleteItem(ctx context.Context, orderID, itemID string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE id = $1 AND order_id = $2`, itemID, orderID)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("ítem", itemID)
	}
	return nil
}

// List pedidos más recientes primero, sin ítems.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	w := &where{}
	if f.Type != 0 {
		w.add("order_type = ?", f.Type.String())
	}
	if f.Status != 0 {
		w.add("status = ?", f.Status.String())
	}
	if f.SupplierID != "" {
		w.add("supplier_id = ?", f.SupplierID)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		w.add("(order_number ILIKE ? OR customer_name ILIKE ?)", pattern, pattern)
	}
	if f.From != nil {
		w.add("order_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("order_date <= ?", *f.To)
	}
	query := `SELECT ` + orderColumns + ` FROM orders` + w.String() + ` ORDER BY order_date DESC, id` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// Delete elimina el pedido; los ítems caen por ON DELETE CASCADE.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFoundError("pedido", id)
	}
	return nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o              entity.Order
		typ, statusStr string
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &typ, &statusStr, &o.SupplierID, &o.CustomerName, &o.CustomerEmail,
		&o.CustomerPhone, &o.OrderDate, &o.ExpectedDeliveryDate, &o.ActualDeliveryDate, &o.TotalAmount, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if o.Type, err = entity.ParseOrderType(typ); err != nil {
		return nil, err
	}
	if o.Status, err = entity.ParseOrderStatus(statusStr); err != nil {
		return nil, err
	}
	return &o, nil
}
