package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger en memoria, en orden de inserción.
type MovementRepo struct {
	h *handle
}

func (r *MovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.products[movement.ProductID]; !ok {
			return domain.NewNotFoundError("producto", movement.ProductID)
		}
		cp := *movement
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.h.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if m := st.movements[i]; matchMovement(m, filter) {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return page(out, filter.Limit, filter.Offset), err
}

func (r *MovementRepo) ListChronological(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.h.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func matchMovement(m *entity.StockMovement, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.Type != 0 && m.Type != f.Type {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
