package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	h *handle
}

func (r *SupplierRepo) Create(_ context.Context, supplier *entity.Supplier) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.suppliers[supplier.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *supplier
		st.suppliers[supplier.ID] = &cp
		return nil
	})
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.h.read(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			cp := *s
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) Update(_ context.Context, supplier *entity.Supplier) error {
	return r.h.write(func(st *state) error {
		cur, ok := st.suppliers[supplier.ID]
		if !ok {
			return domain.NewNotFoundError("proveedor", supplier.ID)
		}
		cp := *supplier
		cp.CreatedAt = cur.CreatedAt
		st.suppliers[supplier.ID] = &cp
		return nil
	})
}

func (r *SupplierRepo) List(_ context.Context, filter repository.SupplierFilter) ([]*entity.Supplier, error) {
	search := strings.ToLower(filter.Search)
	var out []*entity.Supplier
	err := r.h.read(func(st *state) error {
		for _, s := range st.suppliers {
			if filter.ActiveOnly && !s.IsActive {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(s.Name), search) &&
				!strings.Contains(strings.ToLower(s.ContactPerson), search) &&
				!strings.Contains(strings.ToLower(s.Email), search) {
				continue
			}
			cp := *s
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return page(out, filter.Limit, filter.Offset), err
}

func (r *SupplierRepo) HasProducts(_ context.Context, supplierID string) (bool, error) {
	var found bool
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			if p.SupplierID != nil && *p.SupplierID == supplierID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *SupplierRepo) HasOrders(_ context.Context, supplierID string) (bool, error) {
	var found bool
	err := r.h.read(func(st *state) error {
		for _, o := range st.orders {
			if o.SupplierID != nil && *o.SupplierID == supplierID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.suppliers[id]; !ok {
			return domain.NewNotFoundError("proveedor", id)
		}
		delete(st.suppliers, id)
		return nil
	})
}
