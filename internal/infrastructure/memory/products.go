package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	h *handle
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		if referenceTaken(st, product.Reference, product.ID) {
			return domain.ErrDuplicate
		}
		if product.StockQuantity < 0 {
			return fmt.Errorf("insert product: stock_quantity negativo")
		}
		st.products[product.ID] = copyProduct(product)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de una transacción del store la fila ya está aislada por el mutex.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByReference(_ context.Context, reference string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			if p.Reference == reference {
				out = copyProduct(p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update no toca stock_quantity.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.h.write(func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.NewNotFoundError("producto", product.ID)
		}
		if referenceTaken(st, product.Reference, product.ID) {
			return domain.ErrDuplicate
		}
		next := copyProduct(product)
		next.StockQuantity = cur.StockQuantity
		next.CreatedAt = cur.CreatedAt
		st.products[product.ID] = next
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, product *entity.Product) error {
	return r.h.write(func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.NewNotFoundError("producto", product.ID)
		}
		if product.StockQuantity < 0 {
			return fmt.Errorf("update stock: check stock_quantity >= 0 violado")
		}
		cur.StockQuantity = product.StockQuantity
		cur.UpdatedAt = product.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.h.read(func(st *state) error {
		out = filterProducts(st, filter)
		return nil
	})
	return page(out, filter.Limit, filter.Offset), err
}

func (r *ProductRepo) Count(_ context.Context, filter repository.ProductFilter) (int, error) {
	var n int
	err := r.h.read(func(st *state) error {
		n = len(filterProducts(st, filter))
		return nil
	})
	return n, err
}

func (r *ProductRepo) Categories(_ context.Context) ([]string, error) {
	var out []string
	err := r.h.read(func(st *state) error {
		seen := make(map[string]bool)
		for _, p := range st.products {
			if p.Category != "" && !seen[p.Category] {
				seen[p.Category] = true
				out = append(out, p.Category)
			}
		}
		sort.Strings(out)
		return nil
	})
	return out, err
}

func (r *ProductRepo) HasOrderItems(_ context.Context, productID string) (bool, error) {
	var found bool
	err := r.h.read(func(st *state) error {
		for _, o := range st.orders {
			for _, it := range o.Items {
				if it.ProductID == productID {
					found = true
					return nil
				}
			}
		}
		return nil
	})
	return found, err
}

func (r *ProductRepo) HasMovements(_ context.Context, productID string) (bool, error) {
	var found bool
	err := r.h.read(func(st *state) error {
		found = hasMovements(st, productID)
		return nil
	})
	return found, err
}

// Delete borra el producto. Como la FK RESTRICT de Postgres, falla si tiene ledger.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.NewNotFoundError("producto", id)
		}
		if hasMovements(st, id) {
			return fmt.Errorf("%w: el producto tiene movimientos de stock", domain.ErrConflict)
		}
		delete(st.products, id)
		return nil
	})
}

func hasMovements(st *state, productID string) bool {
	for _, m := range st.movements {
		if m.ProductID == productID {
			return true
		}
	}
	return false
}

func referenceTaken(st *state, reference, exceptID string) bool {
	for id, p := range st.products {
		if id != exceptID && p.Reference == reference {
			return true
		}
	}
	return false
}

func filterProducts(st *state, f repository.ProductFilter) []*entity.Product {
	search := strings.ToLower(f.Search)
	var out []*entity.Product
	for _, id := range sortedKeys(st.products) {
		p := st.products[id]
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.SupplierID != "" && (p.SupplierID == nil || *p.SupplierID != f.SupplierID) {
			continue
		}
		if f.LowStock && !p.IsLowStock() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Reference), search) {
			continue
		}
		out = append(out, copyProduct(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
