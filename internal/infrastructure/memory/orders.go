package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos en memoria; los ítems viven dentro del pedido.
type OrderRepo struct {
	h *handle
}

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.orders[order.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, o := range st.orders {
			if o.OrderNumber == order.OrderNumber {
				return domain.ErrDuplicate
			}
		}
		st.orders[order.ID] = copyOrder(order)
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.h.read(func(st *state) error {
		if o, ok := st.orders[id]; ok {
			out = copyOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

// Update persiste la cabecera; los ítems guardados no cambian.
func (r *OrderRepo) Update(_ context.Context, order *entity.Order) error {
	return r.h.write(func(st *state) error {
		cur, ok := st.orders[order.ID]
		if !ok {
			return domain.NewNotFoundError("pedido", order.ID)
		}
		next := copyOrder(order)
		next.Items = cur.Items
		next.CreatedAt = cur.CreatedAt
		st.orders[order.ID] = next
		return nil
	})
}

func (r *OrderRepo) AddItem(_ context.Context, item *entity.OrderItem) error {
	return r.h.write(func(st *state) error {
		o, ok := st.orders[item.OrderID]
		if !ok {
			return domain.NewNotFoundError("pedido", item.OrderID)
		}
		if _, exists := o.Item(item.ID); exists {
			return domain.ErrDuplicate
		}
		cp := *item
		o.Items = append(o.Items, &cp)
		return nil
	})
}

func (r *OrderRepo) UpdateItem(_ context.Context, item *entity.OrderItem) error {
	return r.h.write(func(st *state) error {
		o, ok := st.orders[item.OrderID]
		if !ok {
			return domain.NewNotFoundError("pedido", item.OrderID)
		}
		for i, it := range o.Items {
			if it.ID == item.ID {
				cp := *item
				o.Items[i] = &cp
				return nil
			}
		}
		return domain.NewNotFoundError("ítem", item.ID)
	})
}

func (r *OrderRepo) DeleteItem(_ context.Context, orderID, itemID string) error {
	return r.h.write(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return domain.NewNotFoundError("pedido", orderID)
		}
		for i, it := range o.Items {
			if it.ID == itemID {
				o.Items = append(o.Items[:i:i], o.Items[i+1:]...)
				return nil
			}
		}
		return domain.NewNotFoundError("ítem", itemID)
	})
}

func (r *OrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	search := strings.ToLower(filter.Search)
	var out []*entity.Order
	err := r.h.read(func(st *state) error {
		for _, o := range st.orders {
			if !matchOrder(o, filter, search) {
				continue
			}
			cp := copyOrder(o)
			cp.Items = nil
			out = append(out, cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderNumber > out[j].OrderNumber
		}
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return page(out, filter.Limit, filter.Offset), err
}

func (r *OrderRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.orders[id]; !ok {
			return domain.NewNotFoundError("pedido", id)
		}
		delete(st.orders, id)
		return nil
	})
}

func matchOrder(o *entity.Order, f repository.OrderFilter, search string) bool {
	if f.Type != 0 && o.Type != f.Type {
		return false
	}
	if f.Status != 0 && o.Status != f.Status {
		return false
	}
	if f.SupplierID != "" && (o.SupplierID == nil || *o.SupplierID != f.SupplierID) {
		return false
	}
	if f.From != nil && o.OrderDate.Before(*f.From) {
		return false
	}
	if f.To != nil && o.OrderDate.After(*f.To) {
		return false
	}
	if search != "" && !strings.Contains(strings.ToLower(o.OrderNumber), search) &&
		!strings.Contains(strings.ToLower(o.CustomerName), search) {
		return false
	}
	return true
}
